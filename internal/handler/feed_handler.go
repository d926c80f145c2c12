package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campustrack/campustrack-backend/internal/config"
	"github.com/campustrack/campustrack-backend/internal/feed"
	"github.com/campustrack/campustrack-backend/internal/middleware"
	"github.com/campustrack/campustrack-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedHandler streams subscription feed updates over WebSocket.
type FeedHandler struct {
	rdb              *redis.Client
	queryService     *service.ScheduleQueryService
	occupancyService *service.OccupancyService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(
	rdb *redis.Client,
	queryService *service.ScheduleQueryService,
	occupancyService *service.OccupancyService,
	log zerolog.Logger,
	allowedOrigins []string,
) *FeedHandler {
	return &FeedHandler{
		rdb:              rdb,
		queryService:     queryService,
		occupancyService: occupancyService,
		log:              log.With().Str("component", "feed_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// FeedStream godoc
// WS /ws/v1/feed
// Upgrades to WebSocket and streams committed changes for the subscribed
// keys: a professor's claimed slots, or the room collection. A snapshot of
// the current state is sent on each subscribe, then updates as they commit.
func (h *FeedHandler) FeedStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("uid", claims.UID).
		Str("token_type", string(claims.TokenType)).
		Logger()
	wsLog.Info().Msg("Feed client connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// gorilla/websocket allows one concurrent writer; the reader loop and
	// the pubsub pump both reply, so writes go through this lock.
	var writeMu sync.Mutex
	write := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return feed.WriteTyped(conn, v)
	}

	pubsub := h.rdb.Subscribe(ctx)
	defer pubsub.Close()

	go h.pump(ctx, pubsub, write, wsLog)

	for {
		var msg feed.RequestEnvelope
		if err := feed.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case feed.ActionSubscribeSlots:
			h.subscribeSlots(ctx, claims, pubsub, write, wsLog)
		case feed.ActionSubscribeRooms:
			h.subscribeRooms(ctx, pubsub, write, wsLog)
		case feed.ActionPing:
			_ = write(feed.PongResponse{Event: feed.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			writeMu.Lock()
			feed.WriteError(conn, "unknown action: "+string(msg.Action))
			writeMu.Unlock()
		}
	}
}

// subscribeSlots registers for the professor's claimed slot updates and sends
// the current schedule as a snapshot. Professor tokens only.
func (h *FeedHandler) subscribeSlots(ctx context.Context, claims *service.Claims, pubsub *redis.PubSub, write func(interface{}) error, wsLog zerolog.Logger) {
	if claims.TokenType != service.TokenTypeProfessor {
		_ = write(feed.ErrorResponse{Event: feed.EventError, Error: "slot subscriptions are professor-only"})
		return
	}

	schedule, err := h.queryService.GetFacultySchedule(ctx, claims.UID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Slot snapshot failed")
		_ = write(feed.ErrorResponse{Event: feed.EventError, Error: "snapshot failed"})
		return
	}

	if err := pubsub.Subscribe(ctx, config.FeedKey.ProfessorSlotsChannel(claims.UID)); err != nil {
		wsLog.Error().Err(err).Msg("Slot subscribe failed")
		_ = write(feed.ErrorResponse{Event: feed.EventError, Error: "subscribe failed"})
		return
	}

	_ = write(feed.SnapshotResponse{Event: feed.EventSnapshot, Kind: feed.EventKindSlot, Data: schedule})
}

// subscribeRooms registers for room vacancy updates and sends the current
// room collection as a snapshot.
func (h *FeedHandler) subscribeRooms(ctx context.Context, pubsub *redis.PubSub, write func(interface{}) error, wsLog zerolog.Logger) {
	rooms, err := h.occupancyService.ListRoomsWithVacancy(ctx)
	if err != nil {
		wsLog.Error().Err(err).Msg("Room snapshot failed")
		_ = write(feed.ErrorResponse{Event: feed.EventError, Error: "snapshot failed"})
		return
	}

	if err := pubsub.Subscribe(ctx, config.FeedKey.RoomsChannel()); err != nil {
		wsLog.Error().Err(err).Msg("Room subscribe failed")
		_ = write(feed.ErrorResponse{Event: feed.EventError, Error: "subscribe failed"})
		return
	}

	_ = write(feed.SnapshotResponse{Event: feed.EventSnapshot, Kind: feed.EventKindRooms, Data: rooms})
}

// pump forwards published feed events to the client until the context ends.
func (h *FeedHandler) pump(ctx context.Context, pubsub *redis.PubSub, write func(interface{}) error, wsLog zerolog.Logger) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev feed.QueuedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				wsLog.Error().Err(err).Msg("Malformed feed event dropped")
				continue
			}
			if err := write(feed.UpdateResponse{Event: feed.EventUpdate, Kind: ev.Kind, Data: ev.Payload}); err != nil {
				wsLog.Debug().Err(err).Msg("Feed write failed, closing pump")
				return
			}
		}
	}
}
