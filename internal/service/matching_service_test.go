package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustrack/campustrack-backend/internal/apperr"
	"github.com/campustrack/campustrack-backend/internal/model"
)

func newMatchingFixture(minStudents int) (*MatchingService, *fakeSlotStore, *fakeNotifier) {
	store := newFakeSlotStore()
	feed := &fakeNotifier{}
	svc := NewMatchingService(store, store, feed, minStudents, zerolog.Nop())
	return svc, store, feed
}

func entryFor(studentUID, code string) *model.ScheduleEntry {
	return &model.ScheduleEntry{
		StudentUID:   studentUID,
		ScheduleCode: code,
		Subject:      "Linear Algebra",
		Day:          "Wednesday",
		StartTime:    "10:00",
		EndTime:      "11:30",
		Room:         "RM.9/CL3",
		Section:      "3-A",
	}
}

func TestValidateScheduleCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "valid nine digits", code: "202510765", wantErr: false},
		{name: "too short", code: "20251076", wantErr: true},
		{name: "too long", code: "2025107650", wantErr: true},
		{name: "non digit", code: "20251O765", wantErr: true},
		{name: "empty", code: "", wantErr: true},
		{name: "unicode digit lookalike", code: "20251076٥", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScheduleCode(tt.code)
			if tt.wantErr {
				var vErr *apperr.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "schedule_code", vErr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestSubmitEntry_QuorumValidation walks a code from first report through the
// quorum threshold: claimed early, it stays unvalidated until the fifth
// distinct student corroborates it.
func TestSubmitEntry_QuorumValidation(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	slot, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)
	assert.Equal(t, 1, slot.StudentCount)
	assert.False(t, slot.Validated, "unclaimed slot can never be validated")

	_, err = svc.ClaimCode(ctx, code, model.ProfessorInfo{UID: "prof-reyes"})
	require.NoError(t, err)

	for i := 2; i <= 4; i++ {
		slot, err = svc.SubmitEntry(ctx, entryFor(fmt.Sprintf("student-%d", i), code))
		require.NoError(t, err)
		assert.False(t, slot.Validated, "below quorum must stay unvalidated")
	}

	slot, err = svc.SubmitEntry(ctx, entryFor("student-5", code))
	require.NoError(t, err)
	assert.Equal(t, 5, slot.StudentCount)
	assert.True(t, slot.Validated, "claim plus quorum must validate")
}

// TestSubmitEntry_Resubmission verifies a student re-reporting the same code
// replaces their entry instead of counting twice.
func TestSubmitEntry_Resubmission(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)

	again := entryFor("student-1", code)
	again.Section = "3-B"
	slot, err := svc.SubmitEntry(ctx, again)
	require.NoError(t, err)

	assert.Equal(t, 1, slot.StudentCount, "resubmission must not inflate the count")
	assert.Equal(t, []string{"3-B"}, slot.Sections)
}

func TestSubmitEntry_SectionUnion(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)

	e := entryFor("student-2", code)
	e.Section = "3-B"
	slot, err := svc.SubmitEntry(ctx, e)
	require.NoError(t, err)

	assert.Equal(t, []string{"3-A", "3-B"}, slot.Sections, "sections accumulate as a sorted set")
	assert.True(t, slot.Coherent)
}

func TestSubmitEntry_IncoherentEntries(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)

	e := entryFor("student-2", code)
	e.StartTime = "13:00"
	e.EndTime = "14:30"
	slot, err := svc.SubmitEntry(ctx, e)
	require.NoError(t, err)

	assert.False(t, slot.Coherent)
	assert.Equal(t, "10:00", slot.StartTime, "scalars stay pinned to the earliest entry")
	assert.Equal(t, 2, slot.StudentCount, "disagreement never blocks the count")
}

func TestSubmitEntry_NormalizesRoom(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()

	e := entryFor("student-1", "202510765")
	e.Room = "rm.9 / cl3"
	slot, err := svc.SubmitEntry(ctx, e)
	require.NoError(t, err)

	assert.Equal(t, "RM.9/CL3", slot.Room)
}

// TestWithdrawEntry_DemotesBelowQuorum covers the full round trip: a
// validated slot loses a student, drops below quorum and demotes to pending
// while the claim survives.
func TestWithdrawEntry_DemotesBelowQuorum(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	for i := 1; i <= 5; i++ {
		_, err := svc.SubmitEntry(ctx, entryFor(fmt.Sprintf("student-%d", i), code))
		require.NoError(t, err)
	}
	slot, err := svc.ClaimCode(ctx, code, model.ProfessorInfo{UID: "prof-reyes"})
	require.NoError(t, err)
	require.True(t, slot.Validated)

	slot, err = svc.WithdrawEntry(ctx, "student-3", code)
	require.NoError(t, err)

	assert.Equal(t, 4, slot.StudentCount)
	assert.False(t, slot.Validated, "dropping below quorum demotes the slot")
	require.NotNil(t, slot.Claim, "withdrawal must not disturb the claim")
	assert.Equal(t, "prof-reyes", slot.Claim.ProfessorUID)
}

func TestWithdrawEntry_NotReported(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()

	_, err := svc.WithdrawEntry(ctx, "student-1", "202510765")
	var nfErr *apperr.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

// TestWithdrawEntry_LastStudentKeepsClaim verifies a claimed slot survives
// its entry count reaching zero, so the professor need not re-claim.
func TestWithdrawEntry_LastStudentKeepsClaim(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)
	_, err = svc.ClaimCode(ctx, code, model.ProfessorInfo{UID: "prof-reyes"})
	require.NoError(t, err)

	slot, err := svc.WithdrawEntry(ctx, "student-1", code)
	require.NoError(t, err)

	assert.Equal(t, 0, slot.StudentCount)
	require.NotNil(t, slot.Claim)
	assert.Equal(t, "prof-reyes", slot.Claim.ProfessorUID)
}

func TestClaimCode_UnreportedCode(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()

	_, err := svc.ClaimCode(ctx, "202510765", model.ProfessorInfo{UID: "prof-reyes"})
	var nfErr *apperr.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "schedule code", nfErr.Resource)
}

func TestClaimCode_IdempotentForHolder(t *testing.T) {
	svc, _, feed := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)

	first, err := svc.ClaimCode(ctx, code, model.ProfessorInfo{UID: "prof-reyes"})
	require.NoError(t, err)
	second, err := svc.ClaimCode(ctx, code, model.ProfessorInfo{UID: "prof-reyes"})
	require.NoError(t, err)

	assert.Equal(t, first.Claim.ClaimedAt, second.Claim.ClaimedAt, "re-claim by the holder keeps the original claim")
	assert.NotEmpty(t, feed.slotEvents)
}

func TestClaimCode_ConflictNamesHolder(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)
	_, err = svc.ClaimCode(ctx, code, model.ProfessorInfo{UID: "prof-reyes"})
	require.NoError(t, err)

	_, err = svc.ClaimCode(ctx, code, model.ProfessorInfo{UID: "prof-tanaka"})
	var cErr *apperr.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "prof-reyes", cErr.HeldBy)
}

func TestUnclaimCode_HolderOnly(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)
	_, err = svc.ClaimCode(ctx, code, model.ProfessorInfo{UID: "prof-reyes"})
	require.NoError(t, err)

	_, err = svc.UnclaimCode(ctx, code, "prof-tanaka")
	var pErr *apperr.PermissionError
	require.ErrorAs(t, err, &pErr)

	slot, err := svc.UnclaimCode(ctx, code, "prof-reyes")
	require.NoError(t, err)
	assert.Nil(t, slot.Claim)
	assert.False(t, slot.Validated)
	assert.Equal(t, 1, slot.StudentCount, "student entries survive the release")
}

func TestUnclaimCode_NoClaim(t *testing.T) {
	svc, _, _ := newMatchingFixture(5)
	ctx := context.Background()
	code := "202510765"

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", code))
	require.NoError(t, err)

	_, err = svc.UnclaimCode(ctx, code, "prof-reyes")
	var nfErr *apperr.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "claim", nfErr.Resource)
}

func TestSubmitEntry_FeedNotified(t *testing.T) {
	svc, _, feed := newMatchingFixture(5)
	ctx := context.Background()

	_, err := svc.SubmitEntry(ctx, entryFor("student-1", "202510765"))
	require.NoError(t, err)

	require.Len(t, feed.slotEvents, 1)
	assert.Equal(t, "202510765", feed.slotEvents[0].ScheduleCode)
}
