package model

import "time"

// ScheduleCodeLength is the fixed length of an institutional schedule code.
// Codes are always exactly this many ASCII digits and immutable once issued.
const ScheduleCodeLength = 9

// ScheduleEntry is one student's attestation that they attend the class
// meeting identified by a schedule code. Entries are append/remove only:
// a student may withdraw or re-submit theirs, but nothing else mutates them.
type ScheduleEntry struct {
	ID           int64     `json:"id"`
	StudentUID   string    `json:"student_uid"`
	ScheduleCode string    `json:"schedule_code"`
	Subject      string    `json:"subject"`
	Day          string    `json:"day"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Room         string    `json:"room"`
	Section      string    `json:"section"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmitEntryRequest is the payload for a student submitting a schedule entry.
// Day is an English weekday name; times are fixed-width 24h "15:04" strings.
type SubmitEntryRequest struct {
	ScheduleCode string `json:"schedule_code" binding:"required,schedulecode"`
	Subject      string `json:"subject" binding:"required,min=2,max=120"`
	Day          string `json:"day" binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime    string `json:"start_time" binding:"required,len=5"`
	EndTime      string `json:"end_time" binding:"required,len=5"`
	Room         string `json:"room" binding:"required,min=1,max=60"`
	Section      string `json:"section" binding:"required,min=1,max=20"`
}
