package notes

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"noteshare/internal/logger"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Subscriber represents a connection that can receive note events
type Subscriber struct {
	UserID bson.ObjectID
	Ch     chan NoteEvent
	Done   chan struct{}
}

// ConnInfo holds connection metadata
type ConnInfo struct {
	ID          ulid.ULID
	ConnectedAt time.Time
	Subscriber  *Subscriber
}

// Hub fans note events out to every live feed connection.
// The feed is public, so every subscriber sees every event.
type Hub struct {
	mu         sync.RWMutex
	conns      map[ulid.ULID]ConnInfo
	bufferSize int
	dropped    atomic.Uint64
}

// NewHub creates a new event hub with configurable buffer size
func NewHub(bufferSize int) *Hub {
	return &Hub{
		conns:      make(map[ulid.ULID]ConnInfo),
		bufferSize: bufferSize,
	}
}

// Subscribe adds a new subscriber to the hub. The returned func unsubscribes it.
func (h *Hub) Subscribe(connULID ulid.ULID, userID bson.ObjectID) (*Subscriber, func()) {
	debug(context.Background(), "subscribing connection", "conn_id", connULID.String(), "user_id", userID.Hex())

	sub := &Subscriber{
		UserID: userID,
		Ch:     make(chan NoteEvent, h.bufferSize),
		Done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.conns[connULID] = ConnInfo{ID: connULID, ConnectedAt: time.Now(), Subscriber: sub}
	h.mu.Unlock()

	return sub, func() { h.Unsubscribe(connULID) }
}

// Unsubscribe removes a subscriber and closes its channels. Unknown ids are ignored.
func (h *Hub) Unsubscribe(connULID ulid.ULID) {
	debug(context.Background(), "unsubscribing connection", "conn_id", connULID.String())

	h.mu.Lock()
	info, ok := h.conns[connULID]
	if ok {
		delete(h.conns, connULID)
	}
	h.mu.Unlock()

	if ok {
		close(info.Subscriber.Ch)
		close(info.Subscriber.Done)
	}
}

// Broadcast delivers ev to every subscriber. A full outbox drops the event for
// that subscriber only.
func (h *Hub) Broadcast(ctx context.Context, ev NoteEvent) {
	if ev.Note == nil {
		return
	}
	debug(ctx, "broadcasting event", "note_id", ev.Note.ID.Hex(), "event_type", ev.Type)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, info := range h.conns {
		sendOrDrop(info.Subscriber.Ch, ev, func() {
			h.dropped.Add(1)
			logger.L().Warn("outbox full, dropping event",
				"conn_id", info.ID.String(), "user_id", info.Subscriber.UserID.Hex(), "event_type", ev.Type)
		})
	}
}

// GetSubscriberCount returns the current number of subscribers
func (h *Hub) GetSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Stats returns current counters for observability and tests.
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	return h.GetSubscriberCount(), h.dropped.Load()
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan NoteEvent, ev NoteEvent, onDrop func()) {
	select {
	case ch <- ev:
	default:
		onDrop()
	}
}

func debug(ctx context.Context, msg string, args ...any) {
	if log := logger.L(); log.Enabled(ctx, slog.LevelDebug) {
		log.Debug(msg, args...)
	}
}
