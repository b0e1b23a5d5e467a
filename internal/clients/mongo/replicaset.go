package mongo

import (
	"context"
	"log/slog"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var isReplicaSet atomic.Bool

// IsReplicaSet reports whether the connected deployment supports transactions.
// It is a hint cached at Init.
func IsReplicaSet() bool { return isReplicaSet.Load() }

func probeReplicaSet(ctx context.Context, db *mongo.Database, log *slog.Logger) {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := db.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		log.Warn("replica set probe failed, assuming standalone", "err", err)
		isReplicaSet.Store(false)
		return
	}
	// mongos reports msg=isdbgrid and supports transactions too
	isReplicaSet.Store(hello.SetName != "" || hello.Msg == "isdbgrid")
}
