package feed

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionSubscribeSlots subscribes to class slot updates for the
	// authenticated professor's claimed codes.
	ActionSubscribeSlots Action = "subscribe_slots"
	// ActionSubscribeRooms subscribes to room vacancy updates.
	ActionSubscribeRooms Action = "subscribe_rooms"
	ActionPing           Action = "ping"
)

// RequestEnvelope is the single client → server message shape.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	// EventSnapshot carries the full current state right after a subscribe.
	EventSnapshot Event = "snapshot"
	// EventUpdate carries one committed change.
	EventUpdate Event = "update"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// EventKind tags what a queued/published event describes.
type EventKind string

const (
	EventKindSlot  EventKind = "class_slot"
	EventKindRooms EventKind = "rooms"
)

// QueuedEvent is the wire form writers push onto the feed queue; the feed
// worker publishes it verbatim on the resolved channels.
type QueuedEvent struct {
	Kind         EventKind       `json:"kind"`
	ScheduleCode string          `json:"schedule_code,omitempty"`
	ProfessorUID string          `json:"professor_uid,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

// UpdateResponse wraps a published event for WebSocket delivery.
type UpdateResponse struct {
	Event Event           `json:"event"`
	Kind  EventKind       `json:"kind"`
	Data  json.RawMessage `json:"data"`
}

// SnapshotResponse carries the current state on subscribe.
type SnapshotResponse struct {
	Event Event       `json:"event"`
	Kind  EventKind   `json:"kind"`
	Data  interface{} `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
