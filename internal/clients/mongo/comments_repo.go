package mongo

import (
	"context"
	"errors"

	"noteshare/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CommentsRepo implements notes.CommentsRepository for MongoDB
type CommentsRepo struct {
	collection *mongo.Collection
}

// NewCommentsRepo creates the comments repository
func NewCommentsRepo(ctx context.Context, db *mongo.Database) (*CommentsRepo, error) {
	collection := db.Collection(commentsCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "note_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
	}
	if err := ensureIndexes(ctx, collection, indexes); err != nil {
		return nil, err
	}

	return &CommentsRepo{collection: collection}, nil
}

// Create stores a comment
func (r *CommentsRepo) Create(ctx context.Context, c *notes.Comment) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, c)
	return err
}

// FindByID returns a comment or notes.ErrCommentNotFound
func (r *CommentsRepo) FindByID(ctx context.Context, commentID bson.ObjectID) (*notes.Comment, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var c notes.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": commentID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notes.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a comment
func (r *CommentsRepo) Delete(ctx context.Context, commentID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": commentID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notes.ErrCommentNotFound
	}
	return nil
}

// ListByNote returns the note's comments newest first, at most limit when limit > 0.
func (r *CommentsRepo) ListByNote(ctx context.Context, noteID bson.ObjectID, limit int64) ([]*notes.Comment, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"note_id": noteID}, opts)
	if err != nil {
		return nil, err
	}

	comments := []*notes.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
