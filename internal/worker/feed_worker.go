package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campustrack/campustrack-backend/internal/config"
	"github.com/campustrack/campustrack-backend/internal/feed"
)

const FeedPollTimeout = 1 * time.Second

// FeedWorker drains the feed event queue and publishes each event on its
// per-key PubSub channels. A single consumer drains the queue in order, which
// gives causal ordering per key without writers ever waiting on subscribers.
type FeedWorker struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewFeedWorker(rdb *redis.Client, log zerolog.Logger) *FeedWorker {
	return &FeedWorker{
		rdb: rdb,
		log: log.With().Str("component", "feed_worker").Logger(),
	}
}

func (w *FeedWorker) Start(ctx context.Context) {
	w.log.Info().Msg("FeedWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return
		default:
			item, err := w.rdb.BLPop(ctx, FeedPollTimeout, config.WorkerKey.FeedEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}
			w.publish(ctx, []byte(item[1]))
		}
	}
}

func (w *FeedWorker) publish(ctx context.Context, raw []byte) {
	var ev feed.QueuedEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		w.log.Error().Err(err).Msg("Malformed feed event dropped")
		return
	}

	for _, channel := range w.channelsFor(ev) {
		if err := w.rdb.Publish(ctx, channel, raw).Err(); err != nil {
			w.log.Error().Err(err).Str("channel", channel).Msg("Publish failed")
		}
	}
}

func (w *FeedWorker) channelsFor(ev feed.QueuedEvent) []string {
	switch ev.Kind {
	case feed.EventKindSlot:
		channels := []string{config.FeedKey.ScheduleCodeChannel(ev.ScheduleCode)}
		if ev.ProfessorUID != "" {
			channels = append(channels, config.FeedKey.ProfessorSlotsChannel(ev.ProfessorUID))
		}
		return channels
	case feed.EventKindRooms:
		return []string{config.FeedKey.RoomsChannel()}
	default:
		w.log.Warn().Str("kind", string(ev.Kind)).Msg("Unknown feed event kind")
		return nil
	}
}
