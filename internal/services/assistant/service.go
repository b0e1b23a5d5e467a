package assistant

import (
	"context"
	"log/slog"
	"strings"

	"noteshare/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Completer sends a prompt to the language model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NoteSource loads notes and comments without counting views.
type NoteSource interface {
	Note(ctx context.Context, noteID bson.ObjectID) (*notes.NoteView, error)
	RecentComments(ctx context.Context, noteID bson.ObjectID, limit int64) ([]*notes.Comment, error)
}

// PreferenceSource returns a user's saved assistant instructions.
type PreferenceSource interface {
	AIInstructions(ctx context.Context, userID bson.ObjectID) (string, error)
}

// Service answers questions about a note.
type Service struct {
	notes        NoteSource
	prefs        PreferenceSource
	completer    Completer
	maxFileBytes int64
	log          *slog.Logger
}

// NewService creates the assistant. A nil completer disables Chat.
func NewService(source NoteSource, prefs PreferenceSource, completer Completer, maxFileBytes int64, log *slog.Logger) *Service {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &Service{
		notes:        source,
		prefs:        prefs,
		completer:    completer,
		maxFileBytes: maxFileBytes,
		log:          log,
	}
}

// ChatRequest is one question about a note
type ChatRequest struct {
	NoteID  string `json:"note_id" validate:"required,len=24,hexadecimal" example:"683cdb8aa96ad71e8e075bd1"`
	Message string `json:"message" validate:"max=4000" example:"Summarise this note"`
	UseFile bool   `json:"use_file" example:"true"`
}

// ChatResponse carries the model's answer
type ChatResponse struct {
	Response string `json:"response" example:"Eigenvalues are..."`
}

// StatusResponse reports whether the note's file can be given to the model
type StatusResponse struct {
	NoteID  string     `json:"note_id" example:"683cdb8aa96ad71e8e075bd1"`
	Enabled bool       `json:"enabled" example:"true"`
	File    FileStatus `json:"file"`
}

// Status returns the attachment diagnostic for a note.
func (s *Service) Status(ctx context.Context, noteID bson.ObjectID) (*StatusResponse, error) {
	view, err := s.notes.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		NoteID:  noteID.Hex(),
		Enabled: s.completer != nil,
		File:    Diagnose(&view.Note, s.maxFileBytes),
	}, nil
}

// Chat answers req.Message using the note metadata, its latest comments and
// the user's saved preferences.
func (s *Service) Chat(ctx context.Context, userID bson.ObjectID, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if s.completer == nil {
		return nil, ErrAssistantDisabled
	}

	noteID, err := bson.ObjectIDFromHex(req.NoteID)
	if err != nil {
		return nil, notes.ErrNoteNotFound
	}

	view, err := s.notes.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}

	comments, err := s.notes.RecentComments(ctx, noteID, ContextComments)
	if err != nil {
		return nil, err
	}

	preferences, err := s.prefs.AIInstructions(ctx, userID)
	if err != nil {
		// answer without preferences rather than fail the chat
		s.log.Warn("failed to load assistant preferences", "error", err, "user_id", userID.Hex())
		preferences = ""
	}

	var file *FileStatus
	if req.UseFile {
		st := Diagnose(&view.Note, s.maxFileBytes)
		file = &st
	}

	prompt := "=== METADATA & COMMENTS ===\n" + BuildContext(view, comments, file) +
		"\n\n=== USER QUESTION ===\n" + message

	answer, err := s.completer.Complete(ctx, SystemInstructions(preferences), prompt)
	if err != nil {
		s.log.Error(ErrChat.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrChat
	}

	return &ChatResponse{Response: answer}, nil
}
