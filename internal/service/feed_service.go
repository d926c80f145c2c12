package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campustrack/campustrack-backend/internal/config"
	"github.com/campustrack/campustrack-backend/internal/feed"
	"github.com/campustrack/campustrack-backend/internal/model"
)

// FeedService implements the subscription feed's write side: committed
// changes are queued to Redis and fanned out by the feed worker. Writers
// never wait for subscribers; a feed failure is logged, never surfaced.
type FeedService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewFeedService creates a new FeedService.
func NewFeedService(rdb *redis.Client, log zerolog.Logger) *FeedService {
	return &FeedService{
		rdb: rdb,
		log: log.With().Str("component", "feed_service").Logger(),
	}
}

// SlotChanged queues a class slot change for fan-out.
func (f *FeedService) SlotChanged(ctx context.Context, slot *model.ClassSlot) {
	payload, err := json.Marshal(slot)
	if err != nil {
		f.log.Error().Err(err).Str("schedule_code", slot.ScheduleCode).Msg("Marshal slot event")
		return
	}

	ev := feed.QueuedEvent{
		Kind:         feed.EventKindSlot,
		ScheduleCode: slot.ScheduleCode,
		Payload:      payload,
	}
	if slot.Claim != nil {
		ev.ProfessorUID = slot.Claim.ProfessorUID
	}
	f.enqueue(ctx, ev)
}

// RoomStatusChanged queues a room vacancy change for fan-out.
func (f *FeedService) RoomStatusChanged(ctx context.Context, result *model.RoomStatusResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		f.log.Error().Err(err).Msg("Marshal room event")
		return
	}
	f.enqueue(ctx, feed.QueuedEvent{Kind: feed.EventKindRooms, Payload: payload})
}

func (f *FeedService) enqueue(ctx context.Context, ev feed.QueuedEvent) {
	buf, err := json.Marshal(ev)
	if err != nil {
		f.log.Error().Err(err).Msg("Marshal queued event")
		return
	}
	if err := f.rdb.RPush(ctx, config.WorkerKey.FeedEventsQueue, buf).Err(); err != nil {
		f.log.Error().Err(err).Msg("Queue feed event")
	}
}
