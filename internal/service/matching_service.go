package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campustrack/campustrack-backend/internal/apperr"
	"github.com/campustrack/campustrack-backend/internal/model"
)

// EntryStore is the record-store surface the matching engine needs for
// student entries. Writes recompute the owning slot transactionally.
type EntryStore interface {
	UpsertAndRecompute(ctx context.Context, e *model.ScheduleEntry, minStudents int) (*model.ClassSlot, error)
	WithdrawAndRecompute(ctx context.Context, studentUID, code string, minStudents int) (*model.ClassSlot, error)
	ListByStudent(ctx context.Context, studentUID string) ([]model.ScheduleEntry, error)
}

// ClaimStore is the record-store surface for professor claims.
type ClaimStore interface {
	Claim(ctx context.Context, code, professorUID string, minStudents int) (*model.ClassSlot, error)
	Unclaim(ctx context.Context, code, professorUID string) (*model.ClassSlot, error)
}

// SlotNotifier pushes committed slot changes onto the subscription feed.
// Delivery is asynchronous; publishing never blocks on subscribers.
type SlotNotifier interface {
	SlotChanged(ctx context.Context, slot *model.ClassSlot)
}

// MatchingService maintains the eventually-consistent mapping from schedule
// codes to validated (or pending) class slots.
type MatchingService struct {
	entries     EntryStore
	claims      ClaimStore
	feed        SlotNotifier
	minStudents int
	log         zerolog.Logger
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(entries EntryStore, claims ClaimStore, feed SlotNotifier, minStudents int, log zerolog.Logger) *MatchingService {
	return &MatchingService{
		entries:     entries,
		claims:      claims,
		feed:        feed,
		minStudents: minStudents,
		log:         log.With().Str("component", "matching_service").Logger(),
	}
}

// ValidateScheduleCode checks the fixed 9-ASCII-digit code format.
func ValidateScheduleCode(code string) error {
	if len(code) != model.ScheduleCodeLength {
		return &apperr.ValidationError{
			Field:  "schedule_code",
			Reason: fmt.Sprintf("must be exactly %d digits", model.ScheduleCodeLength),
		}
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return &apperr.ValidationError{Field: "schedule_code", Reason: "must contain only digits"}
		}
	}
	return nil
}

// SubmitEntry records a student's attestation and recomputes the owning slot.
// Re-submission by the same student replaces their entry rather than counting
// twice. Has no effect on any professor claim.
func (s *MatchingService) SubmitEntry(ctx context.Context, entry *model.ScheduleEntry) (*model.ClassSlot, error) {
	if err := ValidateScheduleCode(entry.ScheduleCode); err != nil {
		return nil, err
	}
	if entry.StudentUID == "" {
		return nil, &apperr.ValidationError{Field: "student_uid", Reason: "required"}
	}
	entry.Room = model.NormalizeRoomName(entry.Room)

	slot, err := s.entries.UpsertAndRecompute(ctx, entry, s.minStudents)
	if err != nil {
		return nil, fmt.Errorf("submit entry %s: %w", entry.ScheduleCode, err)
	}

	if !slot.Coherent {
		s.log.Warn().
			Str("schedule_code", slot.ScheduleCode).
			Msg("Entries disagree on subject/day/time for this code")
	}

	s.feed.SlotChanged(ctx, slot)
	return slot, nil
}

// WithdrawEntry removes a student's attestation. Dropping below the quorum
// demotes the slot to unvalidated; dropping to zero entries logically deletes
// the slot, but an active claim is kept so a professor need not re-claim when
// students re-populate the code.
func (s *MatchingService) WithdrawEntry(ctx context.Context, studentUID, code string) (*model.ClassSlot, error) {
	if err := ValidateScheduleCode(code); err != nil {
		return nil, err
	}

	slot, err := s.entries.WithdrawAndRecompute(ctx, studentUID, code, s.minStudents)
	if err != nil {
		return nil, err
	}

	s.feed.SlotChanged(ctx, slot)
	return slot, nil
}

// ListStudentEntries returns all entries the student has submitted.
func (s *MatchingService) ListStudentEntries(ctx context.Context, studentUID string) ([]model.ScheduleEntry, error) {
	return s.entries.ListByStudent(ctx, studentUID)
}

// ClaimCode attaches a professor's claim to a schedule code. Claims on codes
// with no student corroboration are rejected, which keeps speculative or
// guessed claims out. Re-claiming by the holder is idempotent; a claim while
// another professor holds the code fails with ConflictError.
func (s *MatchingService) ClaimCode(ctx context.Context, code string, prof model.ProfessorInfo) (*model.ClassSlot, error) {
	if err := ValidateScheduleCode(code); err != nil {
		return nil, err
	}
	if prof.UID == "" {
		return nil, &apperr.ValidationError{Field: "professor", Reason: "uid required"}
	}

	slot, err := s.claims.Claim(ctx, code, prof.UID, s.minStudents)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("schedule_code", code).
		Str("professor_uid", prof.UID).
		Bool("validated", slot.Validated).
		Msg("Schedule code claimed")

	s.feed.SlotChanged(ctx, slot)
	return slot, nil
}

// UnclaimCode releases a professor's claim. Only the holder may release it;
// student entries are retained and the slot demotes to unvalidated.
func (s *MatchingService) UnclaimCode(ctx context.Context, code, professorUID string) (*model.ClassSlot, error) {
	if err := ValidateScheduleCode(code); err != nil {
		return nil, err
	}

	slot, err := s.claims.Unclaim(ctx, code, professorUID)
	if err != nil {
		return nil, err
	}

	// slot is nil when the unclaim deleted the last reference to the code.
	if slot != nil {
		s.feed.SlotChanged(ctx, slot)
	}
	return slot, nil
}
