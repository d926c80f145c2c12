package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campustrack/campustrack-backend/internal/model"
)

// ClassSlotRepository handles read access to the derived class slot aggregates.
type ClassSlotRepository struct {
	pool *pgxpool.Pool
}

// NewClassSlotRepository creates a new ClassSlotRepository.
func NewClassSlotRepository(pool *pgxpool.Pool) *ClassSlotRepository {
	return &ClassSlotRepository{pool: pool}
}

const classSlotColumns = `schedule_code, subject, day, start_time, end_time, room,
	sections, student_count, coherent, claimed_by, claimed_at, validated, updated_at`

func scanClassSlot(row pgx.Row) (*model.ClassSlot, error) {
	var s model.ClassSlot
	var claimedBy *string
	var claimedAt *time.Time
	err := row.Scan(&s.ScheduleCode, &s.Subject, &s.Day, &s.StartTime, &s.EndTime, &s.Room,
		&s.Sections, &s.StudentCount, &s.Coherent, &claimedBy, &claimedAt, &s.Validated, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if claimedBy != nil && claimedAt != nil {
		s.Claim = &model.ProfessorClaim{
			ProfessorUID: *claimedBy,
			ScheduleCode: s.ScheduleCode,
			ClaimedAt:    *claimedAt,
		}
	}
	return &s, nil
}

// GetByCode retrieves a class slot by its schedule code.
func (r *ClassSlotRepository) GetByCode(ctx context.Context, code string) (*model.ClassSlot, error) {
	return scanClassSlot(r.pool.QueryRow(ctx,
		`SELECT `+classSlotColumns+` FROM class_slots WHERE schedule_code = $1`, code))
}

// ListByProfessor retrieves all slots claimed by a professor, validated or not.
func (r *ClassSlotRepository) ListByProfessor(ctx context.Context, professorUID string) ([]model.ClassSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+classSlotColumns+` FROM class_slots
		 WHERE claimed_by = $1
		 ORDER BY day, start_time, schedule_code`, professorUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.ClassSlot
	for rows.Next() {
		s, err := scanClassSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// ListByDay retrieves the weekly-grid slots for one day: every slot with at
// least one corroborating entry, regardless of claim state.
func (r *ClassSlotRepository) ListByDay(ctx context.Context, day string) ([]model.ClassSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+classSlotColumns+` FROM class_slots
		 WHERE day = $1 AND student_count > 0
		 ORDER BY start_time, schedule_code`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.ClassSlot
	for rows.Next() {
		s, err := scanClassSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// ─── Shared recompute ───────────────────────────────────────────────

// recomputeClassSlot rebuilds the aggregate for one code from its current
// entries inside the caller's transaction. The caller must already hold the
// per-code advisory lock. A slot with zero entries and no claim is deleted;
// otherwise the row is upserted with the freshly derived values.
func recomputeClassSlot(ctx context.Context, tx pgx.Tx, code string, minStudents int) (*model.ClassSlot, error) {
	rows, err := tx.Query(ctx,
		`SELECT subject, day, start_time, end_time, room, section
		 FROM schedule_entries WHERE schedule_code = $1
		 ORDER BY created_at, id`, code)
	if err != nil {
		return nil, err
	}

	slot := &model.ClassSlot{ScheduleCode: code, Coherent: true}
	sectionSet := make(map[string]struct{})
	for rows.Next() {
		var subject, day, start, end, room, section string
		if err := rows.Scan(&subject, &day, &start, &end, &room, &section); err != nil {
			rows.Close()
			return nil, err
		}
		if slot.StudentCount == 0 {
			// Scalar fields come from the earliest entry; later entries
			// only contribute sections and the coherence check.
			slot.Subject, slot.Day, slot.StartTime, slot.EndTime, slot.Room = subject, day, start, end, room
		} else if subject != slot.Subject || day != slot.Day || start != slot.StartTime || end != slot.EndTime {
			slot.Coherent = false
		}
		sectionSet[section] = struct{}{}
		slot.StudentCount++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slot.Sections = make([]string, 0, len(sectionSet))
	for s := range sectionSet {
		slot.Sections = append(slot.Sections, s)
	}
	sort.Strings(slot.Sections)

	// Carry over the active claim, if any.
	var claimedBy *string
	var claimedAt *time.Time
	err = tx.QueryRow(ctx,
		`SELECT claimed_by, claimed_at FROM class_slots WHERE schedule_code = $1`, code,
	).Scan(&claimedBy, &claimedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if claimedBy != nil && claimedAt != nil {
		slot.Claim = &model.ProfessorClaim{ProfessorUID: *claimedBy, ScheduleCode: code, ClaimedAt: *claimedAt}
	}

	if slot.StudentCount == 0 && slot.Claim == nil {
		// Nothing references the code anymore: the slot is logically deleted.
		if _, err := tx.Exec(ctx, `DELETE FROM class_slots WHERE schedule_code = $1`, code); err != nil {
			return nil, err
		}
		slot.UpdatedAt = time.Now()
		return slot, nil
	}

	slot.Validated = slot.ComputeValidated(minStudents)

	err = tx.QueryRow(ctx,
		`INSERT INTO class_slots
		   (schedule_code, subject, day, start_time, end_time, room, sections,
		    student_count, coherent, claimed_by, claimed_at, validated, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP)
		 ON CONFLICT (schedule_code) DO UPDATE SET
		   subject = EXCLUDED.subject,
		   day = EXCLUDED.day,
		   start_time = EXCLUDED.start_time,
		   end_time = EXCLUDED.end_time,
		   room = EXCLUDED.room,
		   sections = EXCLUDED.sections,
		   student_count = EXCLUDED.student_count,
		   coherent = EXCLUDED.coherent,
		   validated = EXCLUDED.validated,
		   updated_at = CURRENT_TIMESTAMP
		 RETURNING updated_at`,
		slot.ScheduleCode, slot.Subject, slot.Day, slot.StartTime, slot.EndTime, slot.Room,
		slot.Sections, slot.StudentCount, slot.Coherent, claimedBy, claimedAt, slot.Validated,
	).Scan(&slot.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// lockScheduleCode serializes all aggregate writes for one code within the
// transaction. Cross-code operations never contend.
func lockScheduleCode(ctx context.Context, tx pgx.Tx, code string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, code)
	return err
}
