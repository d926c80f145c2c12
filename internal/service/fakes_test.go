package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campustrack/campustrack-backend/internal/apperr"
	"github.com/campustrack/campustrack-backend/internal/model"
)

// fakeSlotStore is an in-memory EntryStore + ClaimStore with the same
// semantics as the Postgres repositories: every write recomputes the owning
// slot, and claim transitions follow the holder rules.
type fakeSlotStore struct {
	mu      sync.Mutex
	entries map[string]map[string]model.ScheduleEntry // code -> student uid -> entry
	claims  map[string]model.ProfessorClaim           // code -> active claim
	seq     int64
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{
		entries: make(map[string]map[string]model.ScheduleEntry),
		claims:  make(map[string]model.ProfessorClaim),
	}
}

func (f *fakeSlotStore) UpsertAndRecompute(_ context.Context, e *model.ScheduleEntry, minStudents int) (*model.ClassSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byStudent, ok := f.entries[e.ScheduleCode]
	if !ok {
		byStudent = make(map[string]model.ScheduleEntry)
		f.entries[e.ScheduleCode] = byStudent
	}
	prev, existed := byStudent[e.StudentUID]
	if existed {
		e.ID, e.CreatedAt = prev.ID, prev.CreatedAt
	} else {
		f.seq++
		e.ID = f.seq
		e.CreatedAt = time.Now()
	}
	byStudent[e.StudentUID] = *e

	return f.recompute(e.ScheduleCode, minStudents), nil
}

func (f *fakeSlotStore) WithdrawAndRecompute(_ context.Context, studentUID, code string, minStudents int) (*model.ClassSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byStudent := f.entries[code]
	if _, ok := byStudent[studentUID]; !ok {
		return nil, &apperr.NotFoundError{Resource: "schedule entry", Key: code}
	}
	delete(byStudent, studentUID)

	return f.recompute(code, minStudents), nil
}

func (f *fakeSlotStore) ListByStudent(_ context.Context, studentUID string) ([]model.ScheduleEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.ScheduleEntry
	for _, byStudent := range f.entries {
		if e, ok := byStudent[studentUID]; ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduleCode < out[j].ScheduleCode })
	return out, nil
}

func (f *fakeSlotStore) Claim(_ context.Context, code, professorUID string, minStudents int) (*model.ClassSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.entries[code]) == 0 {
		return nil, &apperr.NotFoundError{Resource: "schedule code", Key: code}
	}
	if held, ok := f.claims[code]; ok && held.ProfessorUID != professorUID {
		return nil, &apperr.ConflictError{Resource: "schedule code", Key: code, HeldBy: held.ProfessorUID}
	}
	if _, ok := f.claims[code]; !ok {
		f.claims[code] = model.ProfessorClaim{
			ProfessorUID: professorUID,
			ScheduleCode: code,
			ClaimedAt:    time.Now(),
		}
	}
	return f.recompute(code, minStudents), nil
}

func (f *fakeSlotStore) Unclaim(_ context.Context, code, professorUID string) (*model.ClassSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	held, ok := f.claims[code]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "claim", Key: code}
	}
	if held.ProfessorUID != professorUID {
		return nil, &apperr.PermissionError{Action: "unclaim", Reason: "claimed by another professor"}
	}
	delete(f.claims, code)
	if len(f.entries[code]) == 0 {
		return nil, nil
	}
	// With no claim left, validated derives to false at any threshold.
	return f.recompute(code, 0), nil
}

// recompute mirrors the repository's derivation: scalars from the earliest
// entry, sections as a sorted set, coherence across scalar fields.
func (f *fakeSlotStore) recompute(code string, minStudents int) *model.ClassSlot {
	var ordered []model.ScheduleEntry
	for _, e := range f.entries[code] {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	slot := &model.ClassSlot{ScheduleCode: code, Coherent: true, UpdatedAt: time.Now()}
	sectionSet := make(map[string]struct{})
	for i, e := range ordered {
		if i == 0 {
			slot.Subject, slot.Day, slot.StartTime, slot.EndTime, slot.Room =
				e.Subject, e.Day, e.StartTime, e.EndTime, e.Room
		} else if e.Subject != slot.Subject || e.Day != slot.Day ||
			e.StartTime != slot.StartTime || e.EndTime != slot.EndTime {
			slot.Coherent = false
		}
		sectionSet[e.Section] = struct{}{}
		slot.StudentCount++
	}
	slot.Sections = make([]string, 0, len(sectionSet))
	for s := range sectionSet {
		slot.Sections = append(slot.Sections, s)
	}
	sort.Strings(slot.Sections)

	if claim, ok := f.claims[code]; ok {
		c := claim
		slot.Claim = &c
	}
	slot.Validated = slot.ComputeValidated(minStudents)
	return slot
}

// fakeNotifier records feed notifications without delivering anything.
type fakeNotifier struct {
	mu          sync.Mutex
	slotEvents  []model.ClassSlot
	roomResults []model.RoomStatusResult
}

func (f *fakeNotifier) SlotChanged(_ context.Context, slot *model.ClassSlot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slotEvents = append(f.slotEvents, *slot)
}

func (f *fakeNotifier) RoomStatusChanged(_ context.Context, result *model.RoomStatusResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomResults = append(f.roomResults, *result)
}

// fakeRoomStore is an in-memory RoomStore. Toggles are idempotent per
// (room, slot), matching the unique-key semantics of vacancy_exceptions.
type fakeRoomStore struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newFakeRoomStore(names ...string) *fakeRoomStore {
	f := &fakeRoomStore{rooms: make(map[string]*model.Room)}
	for _, n := range names {
		f.rooms[n] = &model.Room{Name: n, CreatedAt: time.Now()}
	}
	return f
}

func (f *fakeRoomStore) ListExisting(_ context.Context, names []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var existing []string
	for _, n := range names {
		if _, ok := f.rooms[n]; ok {
			existing = append(existing, n)
		}
	}
	sort.Strings(existing)
	return existing, nil
}

func (f *fakeRoomStore) GetByName(_ context.Context, name string) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[name]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "room", Key: name}
	}
	copied := *room
	copied.VacancyExceptions = append([]model.VacancyException(nil), room.VacancyExceptions...)
	return &copied, nil
}

func (f *fakeRoomStore) List(_ context.Context) ([]model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var names []string
	for n := range f.rooms {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]model.Room, 0, len(names))
	for _, n := range names {
		room := *f.rooms[n]
		room.VacancyExceptions = append([]model.VacancyException(nil), f.rooms[n].VacancyExceptions...)
		out = append(out, room)
	}
	return out, nil
}

func (f *fakeRoomStore) ToggleVacancy(_ context.Context, names []string, slot model.SlotKey, vacant bool, markedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range names {
		room, ok := f.rooms[n]
		if !ok {
			return &apperr.NotFoundError{Resource: "room", Key: n}
		}
		idx := -1
		for i, e := range room.VacancyExceptions {
			if e.Matches(slot) {
				idx = i
				break
			}
		}
		if vacant && idx < 0 {
			room.VacancyExceptions = append(room.VacancyExceptions, model.VacancyException{
				Day:       slot.Day,
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				MarkedBy:  markedBy,
				MarkedAt:  time.Now(),
			})
		}
		if !vacant && idx >= 0 {
			room.VacancyExceptions = append(room.VacancyExceptions[:idx], room.VacancyExceptions[idx+1:]...)
		}
	}
	return nil
}

// fakeGrid serves weekly-grid slots keyed by day name.
type fakeGrid struct {
	byDay map[string][]model.ClassSlot
}

func (f *fakeGrid) ListByDay(_ context.Context, day string) ([]model.ClassSlot, error) {
	return f.byDay[day], nil
}

// fakeSlotReader serves claimed slots for the query service.
type fakeSlotReader struct {
	byProfessor map[string][]model.ClassSlot
}

func (f *fakeSlotReader) ListByProfessor(_ context.Context, professorUID string) ([]model.ClassSlot, error) {
	return f.byProfessor[professorUID], nil
}
