package model

import "time"

// ProfessorClaim records a professor asserting ownership of a schedule code.
type ProfessorClaim struct {
	ProfessorUID string    `json:"professor_uid"`
	ScheduleCode string    `json:"schedule_code"`
	ClaimedAt    time.Time `json:"claimed_at"`
}

// ClassSlot is the derived aggregate for one schedule code: the union of all
// corroborating student entries plus the active professor claim, if any.
// It has no independent lifecycle — it exists only while at least one entry
// or claim references its code, and is recomputed on every write to either.
type ClassSlot struct {
	ScheduleCode string          `json:"schedule_code"`
	Subject      string          `json:"subject"`
	Day          string          `json:"day"`
	StartTime    string          `json:"start_time"`
	EndTime      string          `json:"end_time"`
	Room         string          `json:"room"`
	Sections     []string        `json:"sections"`
	StudentCount int             `json:"student_count"`
	// Coherent is false when entries sharing this code disagree on
	// subject/day/time — a data-quality signal, never an error.
	Coherent  bool            `json:"coherent"`
	Claim     *ProfessorClaim `json:"professor_claim,omitempty"`
	Validated bool            `json:"validated"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ComputeValidated applies the quorum rule: a slot is trusted once it is
// claimed and enough distinct students corroborate it.
func (s *ClassSlot) ComputeValidated(minStudentsRequired int) bool {
	return s.Claim != nil && s.StudentCount >= minStudentsRequired
}

// ClaimRequest is the payload for a professor claiming a schedule code.
type ClaimRequest struct {
	ScheduleCode string `json:"schedule_code" binding:"required,schedulecode"`
}

// ScheduleStats are the aggregate statistics over a professor's validated slots.
type ScheduleStats struct {
	TotalSubjects       int `json:"total_subjects"`
	TotalClasses        int `json:"total_classes"`
	TotalSections       int `json:"total_sections"`
	TotalStudents       int `json:"total_students"`
	PendingClassesCount int `json:"pending_classes_count"`
}

// FacultySchedule is a professor's validated teaching schedule with statistics.
type FacultySchedule struct {
	Slots []ClassSlot   `json:"slots"`
	Stats ScheduleStats `json:"stats"`
}
