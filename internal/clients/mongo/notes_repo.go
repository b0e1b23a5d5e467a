package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"noteshare/internal/logger"
	"noteshare/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	notesCollection    = "notes"
	usersCollection    = "users"
	ratingsCollection  = "ratings"
	commentsCollection = "comments"
)

// NotesRepo implements the notes.Repository interface for MongoDB
type NotesRepo struct {
	collection *mongo.Collection
	ratings    *mongo.Collection
	comments   *mongo.Collection
}

// translateNotFound maps the driver ErrNoDocuments to the domain-level ErrNoteNotFound.
func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notes.ErrNoteNotFound
	}
	return err
}

// ensureIndexes creates models on coll, tolerating indexes that already exist.
func ensureIndexes(parentCtx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, model := range models {
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", coll.Name())
				continue
			}
			logger.L().Error("failed to create index", "collection", coll.Name(), "error", err)
			return fmt.Errorf("failed to create %s collection index: %w", coll.Name(), err)
		}
	}
	return nil
}

// NewNotesRepo creates a new notes repository
func NewNotesRepo(ctx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection(notesCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if err := ensureIndexes(ctx, collection, indexes); err != nil {
		return nil, errors.Join(notes.ErrCreateNotesRepo, err)
	}

	return &NotesRepo{
		collection: collection,
		ratings:    db.Collection(ratingsCollection),
		comments:   db.Collection(commentsCollection),
	}, nil
}

// Create creates a new note in the database
func (r *NotesRepo) Create(ctx context.Context, note *notes.Note) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, note)
	return err
}

// FindByID returns the bare note document
func (r *NotesRepo) FindByID(ctx context.Context, noteID bson.ObjectID) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var note notes.Note
	if err := r.collection.FindOne(ctx, bson.M{"_id": noteID}).Decode(&note); err != nil {
		return nil, translateNotFound(err)
	}
	return &note, nil
}

// Update updates a note belonging to the specified user
func (r *NotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch notes.UpdateNote) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": noteID, "user_id": userID}

	set := bson.M{}
	setIf(set, "title", patch.Title)
	setIf(set, "course", patch.Course)
	setIf(set, "tags", patch.Tags)
	setIf(set, "description", patch.Description)
	setIf(set, "file_name", patch.FileName)
	if patch.FileSize != nil {
		set["file_size"] = *patch.FileSize
	}

	// nothing to change: return the current document without bumping updated_at
	if len(set) == 0 {
		var existing notes.Note
		if err := r.collection.FindOne(ctx, filter).Decode(&existing); err != nil {
			return nil, translateNotFound(err)
		}
		return &existing, nil
	}
	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated notes.Note
	if err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return nil, translateNotFound(err)
	}
	return &updated, nil
}

func setIf(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = *v
	}
}

// Delete removes a note owned by userID along with its ratings and comments.
// On a replica set the three deletes share a transaction.
func (r *NotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	if !IsReplicaSet() {
		return r.deleteCascade(ctx, userID, noteID)
	}

	sess, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, r.deleteCascade(txCtx, userID, noteID)
	})
	return err
}

func (r *NotesRepo) deleteCascade(ctx context.Context, userID, noteID bson.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": noteID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notes.ErrNoteNotFound
	}

	if _, err := r.ratings.DeleteMany(ctx, bson.M{"note_id": noteID}); err != nil {
		return fmt.Errorf("delete ratings of note %s: %w", noteID.Hex(), err)
	}
	if _, err := r.comments.DeleteMany(ctx, bson.M{"note_id": noteID}); err != nil {
		return fmt.Errorf("delete comments of note %s: %w", noteID.Hex(), err)
	}
	return nil
}

// IncrementViews atomically adds one to the note's view counter.
func (r *NotesRepo) IncrementViews(ctx context.Context, noteID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": noteID}, bson.M{"$inc": bson.M{"view_count": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notes.ErrNoteNotFound
	}
	return nil
}

// ListWithAggregates returns notes joined with their owner's username, average
// rating and comment count, newest first.
func (r *NotesRepo) ListWithAggregates(ctx context.Context, filter notes.ListFilter) ([]*notes.NoteView, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	match := bson.M{}
	if filter.OwnerID != nil {
		match["user_id"] = *filter.OwnerID
	}

	cursor, err := r.collection.Aggregate(ctx, aggregatePipeline(match))
	if err != nil {
		return nil, err
	}

	views := []*notes.NoteView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetWithAggregates returns one note joined like ListWithAggregates.
func (r *NotesRepo) GetWithAggregates(ctx context.Context, noteID bson.ObjectID) (*notes.NoteView, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, aggregatePipeline(bson.M{"_id": noteID}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return nil, notes.ErrNoteNotFound
	}

	var view notes.NoteView
	if err := cursor.Decode(&view); err != nil {
		return nil, err
	}
	return &view, nil
}

// aggregatePipeline computes the read-time aggregates. Nothing here is stored
// back on the note: avg_rating is null when the note has no ratings.
func aggregatePipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "user_id",
			"foreignField": "_id",
			"pipeline":     bson.A{bson.M{"$project": bson.M{"username": 1}}},
			"as":           "owner",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         ratingsCollection,
			"localField":   "_id",
			"foreignField": "note_id",
			"pipeline":     bson.A{bson.M{"$project": bson.M{"score": 1}}},
			"as":           "ratings",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         commentsCollection,
			"localField":   "_id",
			"foreignField": "note_id",
			"pipeline":     bson.A{bson.M{"$count": "n"}},
			"as":           "comment_stats",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"owner_username": bson.M{"$ifNull": bson.A{bson.M{"$first": "$owner.username"}, ""}},
			"avg_rating":     bson.M{"$avg": "$ratings.score"},
			"comment_count":  bson.M{"$ifNull": bson.A{bson.M{"$first": "$comment_stats.n"}, 0}},
		}}},
		{{Key: "$project", Value: bson.M{"owner": 0, "ratings": 0, "comment_stats": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
	}
}
