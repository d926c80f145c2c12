package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campustrack/campustrack-backend/internal/apperr"
	"github.com/campustrack/campustrack-backend/internal/model"
)

// Claim audit actions.
const (
	auditActionClaim    = "claim"
	auditActionUnclaim  = "unclaim"
	auditActionConflict = "claim_conflict"
)

// ClaimRepository handles professor claims over schedule codes. Claim state
// lives on the class_slots row; every transition is written to claim_audit.
type ClaimRepository struct {
	pool *pgxpool.Pool
}

// NewClaimRepository creates a new ClaimRepository.
func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

// Claim attaches a professor's claim to a code. Rules, all checked under the
// per-code lock:
//   - no student entry references the code yet → NotFoundError (a professor
//     cannot claim a code nobody has reported)
//   - the same professor already holds the claim → idempotent no-op
//   - a different professor holds the claim → ConflictError naming the holder
func (r *ClaimRepository) Claim(ctx context.Context, code, professorUID string, minStudents int) (*model.ClassSlot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockScheduleCode(ctx, tx, code); err != nil {
		return nil, fmt.Errorf("lock code: %w", err)
	}

	var entryCount int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM schedule_entries WHERE schedule_code = $1`, code,
	).Scan(&entryCount); err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	if entryCount == 0 {
		return nil, &apperr.NotFoundError{Resource: "schedule code", Key: code}
	}

	var claimedBy *string
	err = tx.QueryRow(ctx,
		`SELECT claimed_by FROM class_slots WHERE schedule_code = $1`, code,
	).Scan(&claimedBy)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("read claim: %w", err)
	}

	if claimedBy != nil && *claimedBy != professorUID {
		if err := r.audit(ctx, tx, code, professorUID, auditActionConflict, "held by "+*claimedBy); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, &apperr.ConflictError{Resource: "schedule code", Key: code, HeldBy: *claimedBy}
	}

	if claimedBy == nil {
		now := time.Now()
		if _, err := tx.Exec(ctx,
			`UPDATE class_slots
			 SET claimed_by = $2, claimed_at = $3,
			     validated = (student_count >= $4),
			     updated_at = CURRENT_TIMESTAMP
			 WHERE schedule_code = $1`,
			code, professorUID, now, minStudents); err != nil {
			return nil, fmt.Errorf("attach claim: %w", err)
		}
		if err := r.audit(ctx, tx, code, professorUID, auditActionClaim, ""); err != nil {
			return nil, err
		}
	}

	slot, err := scanClassSlot(tx.QueryRow(ctx,
		`SELECT `+classSlotColumns+` FROM class_slots WHERE schedule_code = $1`, code))
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return slot, nil
}

// Unclaim removes a professor's claim. Only the holder may release it; the
// slot demotes to unvalidated but student entries are retained. A slot left
// with neither entries nor a claim is deleted.
func (r *ClaimRepository) Unclaim(ctx context.Context, code, professorUID string) (*model.ClassSlot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockScheduleCode(ctx, tx, code); err != nil {
		return nil, fmt.Errorf("lock code: %w", err)
	}

	var claimedBy *string
	var studentCount int
	err = tx.QueryRow(ctx,
		`SELECT claimed_by, student_count FROM class_slots WHERE schedule_code = $1`, code,
	).Scan(&claimedBy, &studentCount)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && claimedBy == nil) {
		return nil, &apperr.NotFoundError{Resource: "claim", Key: code}
	}
	if err != nil {
		return nil, fmt.Errorf("read claim: %w", err)
	}
	if *claimedBy != professorUID {
		return nil, &apperr.PermissionError{
			Action: "unclaim",
			Reason: fmt.Sprintf("schedule code %s is claimed by another professor", code),
		}
	}

	if studentCount == 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM class_slots WHERE schedule_code = $1`, code); err != nil {
			return nil, fmt.Errorf("delete slot: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`UPDATE class_slots
			 SET claimed_by = NULL, claimed_at = NULL, validated = FALSE,
			     updated_at = CURRENT_TIMESTAMP
			 WHERE schedule_code = $1`, code); err != nil {
			return nil, fmt.Errorf("release claim: %w", err)
		}
	}

	if err := r.audit(ctx, tx, code, professorUID, auditActionUnclaim, ""); err != nil {
		return nil, err
	}

	var slot *model.ClassSlot
	if studentCount > 0 {
		slot, err = scanClassSlot(tx.QueryRow(ctx,
			`SELECT `+classSlotColumns+` FROM class_slots WHERE schedule_code = $1`, code))
		if err != nil {
			return nil, fmt.Errorf("read slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return slot, nil
}

func (r *ClaimRepository) audit(ctx context.Context, tx pgx.Tx, code, professorUID, action, detail string) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO claim_audit (schedule_code, professor_uid, action, detail)
		 VALUES ($1, $2, $3, $4)`,
		code, professorUID, action, detail); err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	return nil
}
