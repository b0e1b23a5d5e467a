package mongo

import (
	"context"
	"errors"
	"time"

	"noteshare/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// RatingsRepo implements notes.RatingsRepository for MongoDB
type RatingsRepo struct {
	collection *mongo.Collection
}

// NewRatingsRepo creates the ratings repository. The unique (note_id, user_id)
// index is what keeps one rating per user per note.
func NewRatingsRepo(ctx context.Context, db *mongo.Database) (*RatingsRepo, error) {
	collection := db.Collection(ratingsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "note_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("note_user_unique"),
		},
	}
	if err := ensureIndexes(ctx, collection, indexes); err != nil {
		return nil, err
	}

	return &RatingsRepo{collection: collection}, nil
}

// Upsert stores score as userID's rating of noteID, replacing any earlier score.
func (r *RatingsRepo) Upsert(ctx context.Context, noteID, userID bson.ObjectID, score int) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"note_id": noteID, "user_id": userID}
	update := bson.M{
		"$set":         bson.M{"score": score, "updated_at": now},
		"$setOnInsert": bson.M{"_id": bson.NewObjectID(), "created_at": now},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// lost an upsert race on the unique index; the other writer's row now exists
		_, err = r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"score": score, "updated_at": now}})
	}
	return err
}

// Delete removes userID's rating of noteID. Removing a missing rating is not an error.
func (r *RatingsRepo) Delete(ctx context.Context, noteID, userID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"note_id": noteID, "user_id": userID})
	return err
}

// FindScore returns userID's score for noteID, or 0.
func (r *RatingsRepo) FindScore(ctx context.Context, noteID, userID bson.ObjectID) (int, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var rating notes.Rating
	err := r.collection.FindOne(ctx, bson.M{"note_id": noteID, "user_id": userID}).Decode(&rating)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rating.Score, nil
}

// Stats returns the average and count of noteID's ratings.
func (r *RatingsRepo) Stats(ctx context.Context, noteID bson.ObjectID) (notes.RatingStats, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"note_id": noteID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$score"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return notes.RatingStats{}, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return notes.RatingStats{}, cursor.Err()
	}

	var row struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cursor.Decode(&row); err != nil {
		return notes.RatingStats{}, err
	}
	return notes.RatingStats{Average: &row.Avg, Count: row.Count}, nil
}
