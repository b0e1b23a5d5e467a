package notes

import (
	"time"

	"noteshare/internal/feed"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Note is an uploaded study note. Aggregates such as the owner's username,
// the average rating or the comment count are never stored on it; see NoteView.
type Note struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	UserID      bson.ObjectID `bson:"user_id" json:"user_id" example:"683cdb8aa96ad71e8e075bd0"`
	Title       string        `bson:"title" json:"title" example:"Linear Algebra"`
	Course      string        `bson:"course" json:"course" example:"MATH 201"`
	Tags        string        `bson:"tags" json:"tags" example:"math, algebra"`
	Description string        `bson:"description" json:"description" example:"Eigenvalues and eigenvectors"`
	FileName    string        `bson:"file_name" json:"file_name" example:"week3.pdf"`
	FileSize    int64         `bson:"file_size" json:"file_size" example:"482133"`
	ViewCount   int64         `bson:"view_count" json:"view_count" example:"17"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// UpdateNote represents the fields that can be updated in a note
type UpdateNote struct {
	Title       *string
	Course      *string
	Tags        *string
	Description *string
	FileName    *string
	FileSize    *int64
}

// NoteView is a note together with the aggregates computed at read time.
type NoteView struct {
	Note          `bson:",inline"`
	OwnerUsername string   `bson:"owner_username" json:"owner_username" example:"algebra_fan"`
	AverageRating *float64 `bson:"avg_rating" json:"avg_rating" example:"4.5"`
	CommentCount  int64    `bson:"comment_count" json:"comment_count" example:"3"`
	FileType      string   `bson:"-" json:"file_type" example:"pdf"`
}

// SearchFields implements feed.Document.
func (v *NoteView) SearchFields() feed.Fields {
	return feed.Fields{
		Title:         v.Title,
		Tags:          v.Tags,
		Course:        v.Course,
		OwnerUsername: v.OwnerUsername,
		Description:   v.Description,
	}
}

// Rating implements feed.Document.
func (v *NoteView) Rating() (float64, bool) {
	if v.AverageRating == nil {
		return 0, false
	}
	return *v.AverageRating, true
}

// Created implements feed.Document.
func (v *NoteView) Created() time.Time { return v.CreatedAt }

// Views implements feed.Document.
func (v *NoteView) Views() int64 { return v.ViewCount }

// Rating is one user's score for one note. A (note, user) pair has at most one.
type Rating struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	NoteID    bson.ObjectID `bson:"note_id" json:"note_id"`
	UserID    bson.ObjectID `bson:"user_id" json:"user_id"`
	Score     int           `bson:"score" json:"score"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

// RatingStats summarises the ratings of a note. Average is nil when nobody rated it.
type RatingStats struct {
	Average *float64
	Count   int64
}

// Comment is a user's remark on a note.
type Comment struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd9"`
	NoteID    bson.ObjectID `bson:"note_id" json:"note_id" example:"683cdb8aa96ad71e8e075bd1"`
	UserID    bson.ObjectID `bson:"user_id" json:"user_id" example:"683cdb8aa96ad71e8e075bd0"`
	Username  string        `bson:"username" json:"username" example:"algebra_fan"`
	Text      string        `bson:"text" json:"text" example:"Great summary of chapter 3"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// Event types pushed to live feed subscribers.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// NoteEvent represents an event that occurred on a note
type NoteEvent struct {
	Type string `json:"type"`
	Note *Note  `json:"note"`
}
