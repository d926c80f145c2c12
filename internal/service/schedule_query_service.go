package service

import (
	"context"
	"fmt"

	"github.com/campustrack/campustrack-backend/internal/model"
)

// SlotReader reads derived class slots.
type SlotReader interface {
	ListByProfessor(ctx context.Context, professorUID string) ([]model.ClassSlot, error)
}

// ScheduleQueryService answers "what is this professor's validated teaching
// schedule" by composing matching engine output with aggregate statistics.
type ScheduleQueryService struct {
	slots SlotReader
}

// NewScheduleQueryService creates a new ScheduleQueryService.
func NewScheduleQueryService(slots SlotReader) *ScheduleQueryService {
	return &ScheduleQueryService{slots: slots}
}

// GetFacultySchedule returns the professor's validated slots plus statistics.
// Claimed-but-unvalidated slots are excluded from the list but counted as
// pending.
func (s *ScheduleQueryService) GetFacultySchedule(ctx context.Context, professorUID string) (*model.FacultySchedule, error) {
	claimed, err := s.slots.ListByProfessor(ctx, professorUID)
	if err != nil {
		return nil, fmt.Errorf("list claimed slots: %w", err)
	}

	schedule := &model.FacultySchedule{Slots: []model.ClassSlot{}}
	subjects := make(map[string]struct{})
	sections := make(map[string]struct{})

	for _, slot := range claimed {
		if !slot.Validated {
			schedule.Stats.PendingClassesCount++
			continue
		}
		schedule.Slots = append(schedule.Slots, slot)
		schedule.Stats.TotalClasses++
		schedule.Stats.TotalStudents += slot.StudentCount
		subjects[slot.Subject] = struct{}{}
		for _, sec := range slot.Sections {
			sections[sec] = struct{}{}
		}
	}

	schedule.Stats.TotalSubjects = len(subjects)
	schedule.Stats.TotalSections = len(sections)
	return schedule, nil
}
