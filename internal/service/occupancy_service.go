package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campustrack/campustrack-backend/internal/apperr"
	"github.com/campustrack/campustrack-backend/internal/model"
)

// RoomStore is the record-store surface the occupancy engine needs.
// ToggleVacancy must apply all target rooms as one atomic unit.
type RoomStore interface {
	ListExisting(ctx context.Context, names []string) ([]string, error)
	GetByName(ctx context.Context, name string) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	ToggleVacancy(ctx context.Context, names []string, slot model.SlotKey, vacant bool, markedBy string) error
}

// GridStore reads the weekly class grid: the slots that occupy rooms by default.
type GridStore interface {
	ListByDay(ctx context.Context, day string) ([]model.ClassSlot, error)
}

// RoomNotifier pushes committed room vacancy changes onto the subscription feed.
type RoomNotifier interface {
	RoomStatusChanged(ctx context.Context, result *model.RoomStatusResult)
}

// OccupancyService derives current room state from the weekly grid plus
// vacancy exceptions and applies operator-initiated toggles, including the
// combined-room fan-out. Vacancy is always derived, never a stored flag.
type OccupancyService struct {
	rooms RoomStore
	grid  GridStore
	feed  RoomNotifier
	now   func() time.Time
	log   zerolog.Logger
}

// NewOccupancyService creates a new OccupancyService. now resolves wall-clock
// time for current-vacancy queries; pass time.Now in production.
func NewOccupancyService(rooms RoomStore, grid GridStore, feed RoomNotifier, now func() time.Time, log zerolog.Logger) *OccupancyService {
	if now == nil {
		now = time.Now
	}
	return &OccupancyService{
		rooms: rooms,
		grid:  grid,
		feed:  feed,
		now:   now,
		log:   log.With().Str("component", "occupancy_service").Logger(),
	}
}

// IsScheduleSlotVacant reports whether the room carries a vacancy exception
// for exactly this slot.
func (s *OccupancyService) IsScheduleSlotVacant(room *model.Room, slot model.SlotKey) bool {
	for _, e := range room.VacancyExceptions {
		if e.Matches(slot) {
			return true
		}
	}
	return false
}

// IsRoomCurrentlyVacant derives the room's state at the current wall-clock
// instant. A room with no grid slot covering the instant is vacant by
// default; an occupied room is vacant only if every slot covering the
// instant carries an exception.
func (s *OccupancyService) IsRoomCurrentlyVacant(ctx context.Context, roomName string) (bool, error) {
	name := model.NormalizeRoomName(roomName)
	room, err := s.rooms.GetByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("get room %s: %w", name, err)
	}

	now := s.now()
	return s.roomVacantAt(ctx, room, now)
}

// ListRoomsWithVacancy returns every registered room with its derived state
// at the current instant. Grid slots for the day are fetched once.
func (s *OccupancyService) ListRoomsWithVacancy(ctx context.Context) ([]model.RoomVacancy, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	now := s.now()
	slots, err := s.grid.ListByDay(ctx, now.Weekday().String())
	if err != nil {
		return nil, fmt.Errorf("list grid slots: %w", err)
	}

	clock := now.Format("15:04")
	out := make([]model.RoomVacancy, 0, len(rooms))
	for i := range rooms {
		out = append(out, model.RoomVacancy{
			Room:   rooms[i],
			Vacant: roomVacantAgainst(&rooms[i], slots, clock),
		})
	}
	return out, nil
}

// UpdateRoomStatus applies a vacancy toggle across every registered room the
// (possibly combined) name resolves to. All target updates commit as one
// unit; unregistered components never block the rest and are reported back
// so the caller can surface them.
func (s *OccupancyService) UpdateRoomStatus(ctx context.Context, roomNameField string, markVacant bool, userID string, slot model.SlotKey) (*model.RoomStatusResult, error) {
	requested := model.SplitRoomNames(roomNameField)
	if len(requested) == 0 {
		return nil, &apperr.ValidationError{Field: "room", Reason: "required"}
	}

	existing, err := s.rooms.ListExisting(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("resolve rooms: %w", err)
	}
	if len(existing) == 0 {
		return nil, &apperr.NoMatchingRoomsError{Requested: requested}
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		existingSet[n] = struct{}{}
	}
	var missing []string
	for _, n := range requested {
		if _, ok := existingSet[n]; !ok {
			missing = append(missing, n)
		}
	}

	if err := s.rooms.ToggleVacancy(ctx, existing, slot, markVacant, userID); err != nil {
		return nil, fmt.Errorf("toggle vacancy: %w", err)
	}

	result := &model.RoomStatusResult{
		Updated: existing,
		Missing: missing,
		Vacant:  markVacant,
		Slot:    slot,
	}

	s.log.Info().
		Strs("rooms", existing).
		Strs("missing", missing).
		Bool("vacant", markVacant).
		Str("marked_by", userID).
		Msg("Room vacancy toggled")

	s.feed.RoomStatusChanged(ctx, result)
	return result, nil
}

func (s *OccupancyService) roomVacantAt(ctx context.Context, room *model.Room, at time.Time) (bool, error) {
	slots, err := s.grid.ListByDay(ctx, at.Weekday().String())
	if err != nil {
		return false, fmt.Errorf("list grid slots: %w", err)
	}
	return roomVacantAgainst(room, slots, at.Format("15:04")), nil
}

// roomVacantAgainst is the pure derivation: occupied iff some grid slot books
// the room over the clock instant and lacks an exception. Fixed-width 24h
// time strings compare lexically.
func roomVacantAgainst(room *model.Room, daySlots []model.ClassSlot, clock string) bool {
	for _, slot := range daySlots {
		if !model.RoomOccupies(slot.Room, room.Name) {
			continue
		}
		if clock < slot.StartTime || clock >= slot.EndTime {
			continue
		}
		key := model.SlotKey{Day: slot.Day, StartTime: slot.StartTime, EndTime: slot.EndTime}
		excepted := false
		for _, e := range room.VacancyExceptions {
			if e.Matches(key) {
				excepted = true
				break
			}
		}
		if !excepted {
			return false
		}
	}
	return true
}
