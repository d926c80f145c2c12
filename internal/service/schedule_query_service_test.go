package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustrack/campustrack-backend/internal/model"
)

func claimedSlot(code, subject string, sections []string, students int, validated bool) model.ClassSlot {
	return model.ClassSlot{
		ScheduleCode: code,
		Subject:      subject,
		Day:          "Wednesday",
		StartTime:    "10:00",
		EndTime:      "11:30",
		Room:         "RM.9",
		Sections:     sections,
		StudentCount: students,
		Coherent:     true,
		Claim: &model.ProfessorClaim{
			ProfessorUID: "prof-reyes",
			ScheduleCode: code,
			ClaimedAt:    time.Now(),
		},
		Validated: validated,
	}
}

func TestGetFacultySchedule_Stats(t *testing.T) {
	reader := &fakeSlotReader{byProfessor: map[string][]model.ClassSlot{
		"prof-reyes": {
			claimedSlot("202510765", "Linear Algebra", []string{"3-A", "3-B"}, 7, true),
			claimedSlot("202510766", "Linear Algebra", []string{"3-B"}, 5, true),
			claimedSlot("202510767", "Statistics", []string{"2-A"}, 6, true),
			claimedSlot("202510768", "Statistics", []string{"2-B"}, 3, false),
		},
	}}
	svc := NewScheduleQueryService(reader)

	schedule, err := svc.GetFacultySchedule(context.Background(), "prof-reyes")
	require.NoError(t, err)

	assert.Len(t, schedule.Slots, 3, "unvalidated slots stay out of the list")
	assert.Equal(t, 3, schedule.Stats.TotalClasses)
	assert.Equal(t, 2, schedule.Stats.TotalSubjects, "subjects count distinct")
	assert.Equal(t, 3, schedule.Stats.TotalSections, "sections count distinct across validated slots")
	assert.Equal(t, 18, schedule.Stats.TotalStudents)
	assert.Equal(t, 1, schedule.Stats.PendingClassesCount)
}

func TestGetFacultySchedule_Empty(t *testing.T) {
	svc := NewScheduleQueryService(&fakeSlotReader{byProfessor: map[string][]model.ClassSlot{}})

	schedule, err := svc.GetFacultySchedule(context.Background(), "prof-reyes")
	require.NoError(t, err)

	assert.NotNil(t, schedule.Slots, "empty schedule serializes as [], not null")
	assert.Empty(t, schedule.Slots)
	assert.Zero(t, schedule.Stats)
}
