package model

import (
	"strings"
	"time"
)

// CombinedRoomSeparator joins room names that host a single class meeting
// across multiple physical rooms (e.g. "RM.9/CL3"). A literal separator
// cannot appear inside a room name; there is no escaping mechanism.
const CombinedRoomSeparator = "/"

// Room is a registered physical room. Identity is the normalized name.
type Room struct {
	Name              string             `json:"name"`
	VacancyExceptions []VacancyException `json:"vacancy_exceptions"`
	CreatedAt         time.Time          `json:"created_at"`
}

// VacancyException overrides the weekly grid for one exact class slot:
// "this room, normally occupied during this slot, is actually vacant."
// Keyed by the exact (day, start, end) tuple so toggling is idempotent.
type VacancyException struct {
	Day       string    `json:"day"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	MarkedBy  string    `json:"marked_by"`
	MarkedAt  time.Time `json:"marked_at"`
}

// SlotKey identifies the weekly-grid slot a vacancy exception refers to.
type SlotKey struct {
	Day       string `json:"day" binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime string `json:"start_time" binding:"required,len=5"`
	EndTime   string `json:"end_time" binding:"required,len=5"`
}

// Matches reports whether the exception refers to exactly this slot.
func (e VacancyException) Matches(slot SlotKey) bool {
	return e.Day == slot.Day && e.StartTime == slot.StartTime && e.EndTime == slot.EndTime
}

// NormalizeRoomName uppercases a room name and strips all whitespace,
// yielding the canonical identity used for matching and storage.
func NormalizeRoomName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), ""))
}

// SplitRoomNames normalizes a possibly combined room field and returns its
// component names in order, skipping empty components.
func SplitRoomNames(field string) []string {
	parts := strings.Split(NormalizeRoomName(field), CombinedRoomSeparator)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// RoomOccupies reports whether a slot booked under roomField (possibly a
// combined name) occupies the room with the given normalized name.
func RoomOccupies(roomField, normalizedName string) bool {
	for _, component := range SplitRoomNames(roomField) {
		if component == normalizedName {
			return true
		}
	}
	return false
}

// UpdateRoomStatusRequest is the payload for toggling a room's vacancy state
// for one exact slot. Room may be a combined name.
type UpdateRoomStatusRequest struct {
	Room   string  `json:"room" binding:"required,min=1,max=120"`
	Vacant *bool   `json:"vacant" binding:"required"`
	Slot   SlotKey `json:"slot" binding:"required"`
}

// RoomStatusResult reports the outcome of a vacancy toggle: which registered
// rooms were updated and which requested components are not registered.
type RoomStatusResult struct {
	Updated []string `json:"updated"`
	Missing []string `json:"missing,omitempty"`
	Vacant  bool     `json:"vacant"`
	Slot    SlotKey  `json:"slot"`
}

// RoomVacancy pairs a room with its derived current state.
type RoomVacancy struct {
	Room   Room `json:"room"`
	Vacant bool `json:"vacant"`
}
