package notes

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ListFilter narrows ListWithAggregates. The zero value lists every note.
type ListFilter struct {
	OwnerID *bson.ObjectID
}

// Repository defines the interface for notes repository operations
type Repository interface {
	Create(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, noteID bson.ObjectID) (*Note, error)
	// Update and Delete only match notes owned by ownerID; anything else is ErrNoteNotFound.
	Update(ctx context.Context, ownerID, noteID bson.ObjectID, patch UpdateNote) (*Note, error)
	// Delete also removes the note's ratings and comments.
	Delete(ctx context.Context, ownerID, noteID bson.ObjectID) error

	ListWithAggregates(ctx context.Context, filter ListFilter) ([]*NoteView, error)
	GetWithAggregates(ctx context.Context, noteID bson.ObjectID) (*NoteView, error)
	IncrementViews(ctx context.Context, noteID bson.ObjectID) error
}

// RatingsRepository stores one score per (note, user).
type RatingsRepository interface {
	Upsert(ctx context.Context, noteID, userID bson.ObjectID, score int) error
	Delete(ctx context.Context, noteID, userID bson.ObjectID) error
	// FindScore returns 0 when the user has not rated the note.
	FindScore(ctx context.Context, noteID, userID bson.ObjectID) (int, error)
	Stats(ctx context.Context, noteID bson.ObjectID) (RatingStats, error)
}

// CommentsRepository stores comments on notes.
type CommentsRepository interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, commentID bson.ObjectID) (*Comment, error)
	Delete(ctx context.Context, commentID bson.ObjectID) error
	// ListByNote returns newest first. A limit of 0 returns every comment.
	ListByNote(ctx context.Context, noteID bson.ObjectID, limit int64) ([]*Comment, error)
}

// UserDirectory resolves public usernames.
type UserDirectory interface {
	FindIDByUsername(ctx context.Context, username string) (bson.ObjectID, error)
}

// ViewTracker decides whether a viewer opening a note counts as a new view.
type ViewTracker interface {
	FirstView(ctx context.Context, viewerID, noteID bson.ObjectID) (bool, error)
}

// CountEveryView is the ViewTracker used when no dedup store is configured.
type CountEveryView struct{}

// FirstView always reports a new view.
func (CountEveryView) FirstView(context.Context, bson.ObjectID, bson.ObjectID) (bool, error) {
	return true, nil
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}

// Stores groups the persistence dependencies of the Service.
type Stores struct {
	Notes    Repository
	Ratings  RatingsRepository
	Comments CommentsRepository
	Users    UserDirectory
}
