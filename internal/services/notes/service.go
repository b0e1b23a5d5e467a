package notes

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"noteshare/internal/feed"
	"noteshare/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"
)

// MaxFileSize is the largest attachment a note may reference (35 MB).
const MaxFileSize = 35 << 20

// Service handles notes business logic
type Service struct {
	repo     Repository
	ratings  RatingsRepository
	comments CommentsRepository
	users    UserDirectory
	views    ViewTracker
	bus      Bus
	log      *slog.Logger
}

// NewService creates a new notes service. A nil views tracker counts every view.
func NewService(stores Stores, views ViewTracker, bus Bus, log *slog.Logger) *Service {
	if views == nil {
		views = CountEveryView{}
	}
	return &Service{
		repo:     stores.Notes,
		ratings:  stores.Ratings,
		comments: stores.Comments,
		users:    stores.Users,
		views:    views,
		bus:      bus,
		log:      log,
	}
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title       string `json:"title" validate:"required,max=60" example:"Linear Algebra"`
	Course      string `json:"course" validate:"max=30" example:"MATH 201"`
	Tags        string `json:"tags" validate:"max=50" example:"math, algebra"`
	Description string `json:"description" validate:"max=1000" example:"Eigenvalues and eigenvectors"`
	FileName    string `json:"file_name" validate:"max=255" example:"week3.pdf"`
	FileSize    int64  `json:"file_size" validate:"gte=0" example:"482133"`
}

// UpdateNoteRequest represents a note update request
type UpdateNoteRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=60" example:"Linear Algebra II"`
	Course      *string `json:"course,omitempty" validate:"omitempty,max=30" example:"MATH 202"`
	Tags        *string `json:"tags,omitempty" validate:"omitempty,max=50" example:"math"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000" example:"Now with proofs"`
	FileName    *string `json:"file_name,omitempty" validate:"omitempty,max=255" example:"week4.pdf"`
	FileSize    *int64  `json:"file_size,omitempty" validate:"omitempty,gte=0" example:"1024"`
}

// FeedRequest represents the home listing query
type FeedRequest struct {
	Q    string `query:"q"    validate:"omitempty,max=256" example:"math"`
	Sort string `query:"sort" validate:"omitempty,max=32" example:"recent"`
}

// RateRequest represents a rating submission. A score of 0 removes the rating.
type RateRequest struct {
	Score *int `json:"score" validate:"required,min=0,max=5" example:"4"`
}

// CommentRequest represents a new comment
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=500" example:"Great summary of chapter 3"`
}

// NoteResponse represents a single note response
type NoteResponse struct {
	Note *Note `json:"note"`
}

// FeedResponse is the home listing along with the query and sort actually applied.
type FeedResponse struct {
	Notes []*NoteView `json:"notes"`
	Query string      `json:"query" example:"math"`
	Sort  string      `json:"sort" example:"recent"`
}

// ProfileNotesResponse lists one user's notes, newest first.
type ProfileNotesResponse struct {
	Username string      `json:"username,omitempty" example:"algebra_fan"`
	Notes    []*NoteView `json:"notes"`
}

// NoteDetail is everything the note page shows.
type NoteDetail struct {
	Note       *NoteView  `json:"note"`
	AvgRating  float64    `json:"avg_rating" example:"4.5"`
	UserRating int        `json:"user_rating" example:"4"`
	Comments   []*Comment `json:"comments"`
}

// RatingSummary is returned after a rating change.
type RatingSummary struct {
	AvgRating float64 `json:"avg_rating" example:"4.3"`
	UserScore int     `json:"user_score" example:"4"`
	Count     int64   `json:"count" example:"12"`
}

// CommentResponse represents a single comment response
type CommentResponse struct {
	Comment *Comment `json:"comment"`
}

// Create creates a new note
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, req CreateNoteRequest) (*NoteResponse, error) {
	title := sanitize.Line(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if req.FileSize > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	now := time.Now().UTC()
	note := &Note{
		ID:          bson.NewObjectID(),
		UserID:      userID,
		Title:       title,
		Course:      sanitize.Line(req.Course),
		Tags:        sanitize.Line(req.Tags),
		Description: sanitize.Clean(req.Description),
		FileName:    strings.TrimSpace(req.FileName),
		FileSize:    req.FileSize,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrCreateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{Type: EventCreated, Note: note})

	return &NoteResponse{Note: note}, nil
}

// sanitizedUpdateNote converts the request into a patch with cleaned text fields
func sanitizedUpdateNote(req UpdateNoteRequest) (UpdateNote, error) {
	patch := UpdateNote(req)
	patch.Title = sanitize.Ptr(patch.Title, sanitize.Line)
	patch.Course = sanitize.Ptr(patch.Course, sanitize.Line)
	patch.Tags = sanitize.Ptr(patch.Tags, sanitize.Line)
	patch.Description = sanitize.Ptr(patch.Description, sanitize.Clean)

	if patch.Title != nil && *patch.Title == "" {
		return UpdateNote{}, ErrEmptyTitle
	}
	if patch.FileSize != nil && *patch.FileSize > MaxFileSize {
		return UpdateNote{}, ErrFileTooLarge
	}
	patch.FileName = sanitize.Ptr(patch.FileName, strings.TrimSpace)

	return patch, nil
}

// Update updates a note belonging to the user
func (s *Service) Update(ctx context.Context, userID, noteID bson.ObjectID, req UpdateNoteRequest) (*NoteResponse, error) {
	patch, err := sanitizedUpdateNote(req)
	if err != nil {
		return nil, err
	}

	updatedNote, err := s.repo.Update(ctx, userID, noteID, patch)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for update", "user_id", userID.Hex(), "note_id", noteID.Hex())
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: updatedNote})

	return &NoteResponse{Note: updatedNote}, nil
}

// Delete deletes a note belonging to the user together with its ratings and comments
func (s *Service) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	if err := s.repo.Delete(ctx, userID, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for delete", "user_id", userID.Hex(), "note_id", noteID.Hex())
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return ErrDeleteNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: EventDeleted,
		Note: &Note{ID: noteID, UserID: userID},
	})

	return nil
}

// Feed returns the home listing: every note, searched or sorted.
func (s *Service) Feed(ctx context.Context, req FeedRequest) (*FeedResponse, error) {
	term := feed.NormalizeTerm(req.Q)
	sort := feed.ParseSortKey(req.Sort)

	candidates, err := s.repo.ListWithAggregates(ctx, ListFilter{})
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err)
		return nil, ErrListNotes
	}

	return &FeedResponse{
		Notes: withFileTypes(feed.Compose(candidates, term, sort)),
		Query: term,
		Sort:  string(sort),
	}, nil
}

// ListByOwner returns the owner's notes, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID bson.ObjectID) (*ProfileNotesResponse, error) {
	candidates, err := s.repo.ListWithAggregates(ctx, ListFilter{OwnerID: &ownerID})
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", ownerID.Hex())
		return nil, ErrListNotes
	}

	return &ProfileNotesResponse{
		Notes: withFileTypes(feed.Compose(candidates, "", feed.SortRecent)),
	}, nil
}

// ListByUsername returns a public profile's notes, newest first.
func (s *Service) ListByUsername(ctx context.Context, username string) (*ProfileNotesResponse, error) {
	ownerID, err := s.users.FindIDByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error("failed to resolve username", "error", err, "username", username)
		return nil, ErrListNotes
	}

	resp, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	resp.Username = username
	return resp, nil
}

// Get returns the note page for viewerID and counts the view the first time
// that viewer opens the note.
func (s *Service) Get(ctx context.Context, viewerID, noteID bson.ObjectID) (*NoteDetail, error) {
	view, err := s.repo.GetWithAggregates(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrGetNote.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrGetNote
	}

	s.countView(ctx, viewerID, view)

	detail := &NoteDetail{Note: view, AvgRating: roundRating(view.AverageRating)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		score, err := s.ratings.FindScore(gctx, noteID, viewerID)
		detail.UserRating = score
		return err
	})
	g.Go(func() error {
		comments, err := s.comments.ListByNote(gctx, noteID, 0)
		detail.Comments = comments
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error(ErrGetNote.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrGetNote
	}

	if detail.Comments == nil {
		detail.Comments = []*Comment{}
	}
	view.FileType = FileType(view.FileName)

	return detail, nil
}

// countView increments the counter when the tracker reports a first view.
// Tracker or counter failures are logged and never fail the page.
func (s *Service) countView(ctx context.Context, viewerID bson.ObjectID, view *NoteView) {
	first, err := s.views.FirstView(ctx, viewerID, view.ID)
	if err != nil {
		s.log.Warn("view tracker unavailable, view not counted", "error", err, "note_id", view.ID.Hex())
		return
	}
	if !first {
		return
	}
	if err := s.repo.IncrementViews(ctx, view.ID); err != nil {
		s.log.Warn("failed to count view", "error", err, "note_id", view.ID.Hex())
		return
	}
	view.ViewCount++
}

// Rate sets the caller's score for a note. A score of 0 removes it.
func (s *Service) Rate(ctx context.Context, userID, noteID bson.ObjectID, score int) (*RatingSummary, error) {
	if score < 0 || score > 5 {
		return nil, ErrInvalidScore
	}

	if _, err := s.repo.FindByID(ctx, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrRateNote.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrRateNote
	}

	var err error
	if score == 0 {
		err = s.ratings.Delete(ctx, noteID, userID)
	} else {
		err = s.ratings.Upsert(ctx, noteID, userID, score)
	}
	if err != nil {
		s.log.Error(ErrRateNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrRateNote
	}

	stats, err := s.ratings.Stats(ctx, noteID)
	if err != nil {
		s.log.Error(ErrRateNote.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrRateNote
	}

	return &RatingSummary{
		AvgRating: roundRating(stats.Average),
		UserScore: score,
		Count:     stats.Count,
	}, nil
}

// AddComment stores a comment by userID on a note.
func (s *Service) AddComment(ctx context.Context, userID bson.ObjectID, username string, noteID bson.ObjectID, text string) (*CommentResponse, error) {
	text = sanitize.Clean(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.repo.FindByID(ctx, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrComment.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrComment
	}

	c := &Comment{
		ID:        bson.NewObjectID(),
		NoteID:    noteID,
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		s.log.Error(ErrComment.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrComment
	}

	return &CommentResponse{Comment: c}, nil
}

// DeleteComment removes a comment. Only its author or the note's owner may do so.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID bson.ObjectID) error {
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		s.log.Error(ErrComment.Error(), "error", err, "comment_id", commentID.Hex())
		return ErrComment
	}

	if c.UserID != userID {
		note, err := s.repo.FindByID(ctx, c.NoteID)
		switch {
		case errors.Is(err, ErrNoteNotFound):
			return ErrForbidden
		case err != nil:
			s.log.Error(ErrComment.Error(), "error", err, "comment_id", commentID.Hex())
			return ErrComment
		case note.UserID != userID:
			s.log.Info("comment delete denied", "user_id", userID.Hex(), "comment_id", commentID.Hex())
			return ErrForbidden
		}
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		s.log.Error(ErrComment.Error(), "error", err, "comment_id", commentID.Hex())
		return ErrComment
	}
	return nil
}

// Note returns the note with its aggregates without counting a view.
func (s *Service) Note(ctx context.Context, noteID bson.ObjectID) (*NoteView, error) {
	view, err := s.repo.GetWithAggregates(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrGetNote.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrGetNote
	}
	view.FileType = FileType(view.FileName)
	return view, nil
}

// RecentComments returns up to limit comments, newest first.
func (s *Service) RecentComments(ctx context.Context, noteID bson.ObjectID, limit int64) ([]*Comment, error) {
	comments, err := s.comments.ListByNote(ctx, noteID, limit)
	if err != nil {
		s.log.Error("failed to list comments", "error", err, "note_id", noteID.Hex())
		return nil, ErrGetNote
	}
	return comments, nil
}

func withFileTypes(views []*NoteView) []*NoteView {
	for _, v := range views {
		v.FileType = FileType(v.FileName)
	}
	return views
}

// roundRating rounds to one decimal; no ratings reads as 0.
func roundRating(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return math.Round(*avg*10) / 10
}
