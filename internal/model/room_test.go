package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoomName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "rm.9", want: "RM.9"},
		{name: "inner spaces", in: "rm .9", want: "RM.9"},
		{name: "surrounding whitespace", in: "  cl3\t", want: "CL3"},
		{name: "combined with spaces", in: "rm.9 / cl3", want: "RM.9/CL3"},
		{name: "already canonical", in: "RM.9", want: "RM.9"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRoomName(tt.in))
		})
	}
}

func TestSplitRoomNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "single", in: "RM.9", want: []string{"RM.9"}},
		{name: "combined", in: "RM.9/CL3", want: []string{"RM.9", "CL3"}},
		{name: "three way", in: "rm.9 / cl3 / lab a", want: []string{"RM.9", "CL3", "LABA"}},
		{name: "empty components dropped", in: "/RM.9//", want: []string{"RM.9"}},
		{name: "separator only", in: " / ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitRoomNames(tt.in))
		})
	}
}

func TestRoomOccupies(t *testing.T) {
	assert.True(t, RoomOccupies("RM.9/CL3", "RM.9"))
	assert.True(t, RoomOccupies("RM.9/CL3", "CL3"))
	assert.True(t, RoomOccupies("rm.9 / cl3", "CL3"))
	assert.False(t, RoomOccupies("RM.9/CL3", "RM.90"), "component match is exact, not prefix")
	assert.False(t, RoomOccupies("RM.9", "CL3"))
}

func TestVacancyExceptionMatches(t *testing.T) {
	e := VacancyException{Day: "Wednesday", StartTime: "10:00", EndTime: "11:30"}

	assert.True(t, e.Matches(SlotKey{Day: "Wednesday", StartTime: "10:00", EndTime: "11:30"}))
	assert.False(t, e.Matches(SlotKey{Day: "Thursday", StartTime: "10:00", EndTime: "11:30"}))
	assert.False(t, e.Matches(SlotKey{Day: "Wednesday", StartTime: "10:00", EndTime: "11:00"}),
		"an exception binds the exact slot tuple, not a time range")
}

func TestComputeValidated(t *testing.T) {
	claim := &ProfessorClaim{ProfessorUID: "prof-reyes", ScheduleCode: "202510765"}

	tests := []struct {
		name  string
		slot  ClassSlot
		quota int
		want  bool
	}{
		{name: "claimed at quorum", slot: ClassSlot{StudentCount: 5, Claim: claim}, quota: 5, want: true},
		{name: "claimed above quorum", slot: ClassSlot{StudentCount: 9, Claim: claim}, quota: 5, want: true},
		{name: "claimed below quorum", slot: ClassSlot{StudentCount: 4, Claim: claim}, quota: 5, want: false},
		{name: "unclaimed at quorum", slot: ClassSlot{StudentCount: 5}, quota: 5, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.slot.ComputeValidated(tt.quota))
		})
	}
}
