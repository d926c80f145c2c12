package config

import (
	"fmt"
)

type FeedKeyStruct struct{}

func NewFeedKeyStruct() *FeedKeyStruct {
	return &FeedKeyStruct{}
}

// ProfessorSlotsChannel returns the Redis PubSub channel carrying class slot
// updates for every code claimed by the given professor.
func (r *FeedKeyStruct) ProfessorSlotsChannel(professorUID string) string {
	return fmt.Sprintf("feed:professor:%s:slots", professorUID)
}

// ScheduleCodeChannel returns the Redis PubSub channel for a single schedule code.
func (r *FeedKeyStruct) ScheduleCodeChannel(code string) string {
	return fmt.Sprintf("feed:code:%s", code)
}

// RoomsChannel returns the Redis PubSub channel for room vacancy updates.
// All room changes fan out on one channel; clients filter locally.
func (r *FeedKeyStruct) RoomsChannel() string {
	return "feed:rooms"
}

var FeedKey = NewFeedKeyStruct()
