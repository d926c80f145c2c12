package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campustrack/campustrack-backend/internal/apperr"
	"github.com/campustrack/campustrack-backend/internal/model"
)

// ScheduleEntryRepository handles schedule entry data access. Every write
// recomputes the owning class slot inside the same transaction so the
// aggregate can never drift from its constituent entries.
type ScheduleEntryRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleEntryRepository creates a new ScheduleEntryRepository.
func NewScheduleEntryRepository(pool *pgxpool.Pool) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{pool: pool}
}

// UpsertAndRecompute inserts a student's entry (replacing their previous one
// for the same code, so one student never counts twice) and recomputes the
// owning slot. Both happen under the per-code advisory lock.
func (r *ScheduleEntryRepository) UpsertAndRecompute(ctx context.Context, e *model.ScheduleEntry, minStudents int) (*model.ClassSlot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockScheduleCode(ctx, tx, e.ScheduleCode); err != nil {
		return nil, fmt.Errorf("lock code: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO schedule_entries
		   (student_uid, schedule_code, subject, day, start_time, end_time, room, section)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (student_uid, schedule_code) DO UPDATE SET
		   subject = EXCLUDED.subject,
		   day = EXCLUDED.day,
		   start_time = EXCLUDED.start_time,
		   end_time = EXCLUDED.end_time,
		   room = EXCLUDED.room,
		   section = EXCLUDED.section
		 RETURNING id, created_at`,
		e.StudentUID, e.ScheduleCode, e.Subject, e.Day, e.StartTime, e.EndTime, e.Room, e.Section,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	slot, err := recomputeClassSlot(ctx, tx, e.ScheduleCode, minStudents)
	if err != nil {
		return nil, fmt.Errorf("recompute slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return slot, nil
}

// WithdrawAndRecompute removes a student's entry for a code and recomputes the
// owning slot. Returns NotFoundError if the student has no entry for the code.
func (r *ScheduleEntryRepository) WithdrawAndRecompute(ctx context.Context, studentUID, code string, minStudents int) (*model.ClassSlot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockScheduleCode(ctx, tx, code); err != nil {
		return nil, fmt.Errorf("lock code: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM schedule_entries WHERE student_uid = $1 AND schedule_code = $2`,
		studentUID, code)
	if err != nil {
		return nil, fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &apperr.NotFoundError{Resource: "schedule entry", Key: code}
	}

	slot, err := recomputeClassSlot(ctx, tx, code, minStudents)
	if err != nil {
		return nil, fmt.Errorf("recompute slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return slot, nil
}

// ListByStudent retrieves all entries submitted by one student.
func (r *ScheduleEntryRepository) ListByStudent(ctx context.Context, studentUID string) ([]model.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_uid, schedule_code, subject, day, start_time, end_time, room, section, created_at
		 FROM schedule_entries WHERE student_uid = $1
		 ORDER BY day, start_time, schedule_code`, studentUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ScheduleEntry
	for rows.Next() {
		var e model.ScheduleEntry
		if err := rows.Scan(&e.ID, &e.StudentUID, &e.ScheduleCode, &e.Subject, &e.Day,
			&e.StartTime, &e.EndTime, &e.Room, &e.Section, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
