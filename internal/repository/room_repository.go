package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campustrack/campustrack-backend/internal/model"
)

// RoomRepository handles the room registry and vacancy exceptions.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// Create registers a room under its normalized name. Idempotent.
func (r *RoomRepository) Create(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rooms (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	return err
}

// ListExisting returns which of the given normalized names are registered rooms.
func (r *RoomRepository) ListExisting(ctx context.Context, names []string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name FROM rooms WHERE name = ANY($1) ORDER BY name`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		existing = append(existing, n)
	}
	return existing, rows.Err()
}

// GetByName retrieves a room with its vacancy exceptions.
func (r *RoomRepository) GetByName(ctx context.Context, name string) (*model.Room, error) {
	room := &model.Room{}
	err := r.pool.QueryRow(ctx,
		`SELECT name, created_at FROM rooms WHERE name = $1`, name,
	).Scan(&room.Name, &room.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT day, start_time, end_time, marked_by, marked_at
		 FROM vacancy_exceptions WHERE room_name = $1
		 ORDER BY day, start_time`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e model.VacancyException
		if err := rows.Scan(&e.Day, &e.StartTime, &e.EndTime, &e.MarkedBy, &e.MarkedAt); err != nil {
			return nil, err
		}
		room.VacancyExceptions = append(room.VacancyExceptions, e)
	}
	return room, rows.Err()
}

// List retrieves all rooms with their vacancy exceptions.
func (r *RoomRepository) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, created_at FROM rooms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := make(map[string]*model.Room)
	var order []string
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.Name, &room.CreatedAt); err != nil {
			return nil, err
		}
		byName[room.Name] = &room
		order = append(order, room.Name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exRows, err := r.pool.Query(ctx,
		`SELECT room_name, day, start_time, end_time, marked_by, marked_at
		 FROM vacancy_exceptions ORDER BY room_name, day, start_time`)
	if err != nil {
		return nil, err
	}
	defer exRows.Close()

	for exRows.Next() {
		var roomName string
		var e model.VacancyException
		if err := exRows.Scan(&roomName, &e.Day, &e.StartTime, &e.EndTime, &e.MarkedBy, &e.MarkedAt); err != nil {
			return nil, err
		}
		if room, ok := byName[roomName]; ok {
			room.VacancyExceptions = append(room.VacancyExceptions, e)
		}
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	rooms := make([]model.Room, 0, len(order))
	for _, n := range order {
		rooms = append(rooms, *byName[n])
	}
	return rooms, nil
}

// ToggleVacancy applies one vacancy toggle to every target room as a single
// transaction. Target rows are locked in sorted name order so two concurrent
// toggles over overlapping combined-room sets serialize instead of
// interleaving partially. Both directions are idempotent per (room, slot).
func (r *RoomRepository) ToggleVacancy(ctx context.Context, names []string, slot model.SlotKey, vacant bool, markedBy string) error {
	targets := append([]string(nil), names...)
	sort.Strings(targets)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT name FROM rooms WHERE name = ANY($1) ORDER BY name FOR UPDATE`, targets)
	if err != nil {
		return fmt.Errorf("lock rooms: %w", err)
	}
	var locked int
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return err
		}
		locked++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if locked != len(targets) {
		// The caller resolves targets against the registry before calling;
		// a mismatch means a room was deregistered in between.
		return fmt.Errorf("expected %d target rooms, locked %d", len(targets), locked)
	}

	now := time.Now()
	for _, name := range targets {
		if vacant {
			if _, err := tx.Exec(ctx,
				`INSERT INTO vacancy_exceptions (room_name, day, start_time, end_time, marked_by, marked_at)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (room_name, day, start_time, end_time) DO NOTHING`,
				name, slot.Day, slot.StartTime, slot.EndTime, markedBy, now); err != nil {
				return fmt.Errorf("mark vacant %s: %w", name, err)
			}
		} else {
			if _, err := tx.Exec(ctx,
				`DELETE FROM vacancy_exceptions
				 WHERE room_name = $1 AND day = $2 AND start_time = $3 AND end_time = $4`,
				name, slot.Day, slot.StartTime, slot.EndTime); err != nil {
				return fmt.Errorf("clear vacancy %s: %w", name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
