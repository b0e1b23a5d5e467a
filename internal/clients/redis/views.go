// Package redis holds the Redis-backed helpers of the service.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"noteshare/internal/config"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// New connects to cfg.RedisAddr and pings it.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("successfully connected to redis", "addr", cfg.RedisAddr)
	return rdb, nil
}

// ViewTracker remembers which viewer already opened which note for ttl.
// It implements notes.ViewTracker.
type ViewTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewViewTracker returns a tracker whose marks expire after ttl.
func NewViewTracker(rdb *redis.Client, ttl time.Duration) *ViewTracker {
	return &ViewTracker{rdb: rdb, ttl: ttl}
}

// FirstView sets the viewer's mark for the note and reports whether it was new.
func (t *ViewTracker) FirstView(ctx context.Context, viewerID, noteID bson.ObjectID) (bool, error) {
	created, err := t.rdb.SetNX(ctx, viewKey(viewerID, noteID), 1, t.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("view mark: %w", err)
	}
	return created, nil
}

func viewKey(viewerID, noteID bson.ObjectID) string {
	return "viewed:" + viewerID.Hex() + ":" + noteID.Hex()
}
