package notes

import "errors"

// ErrCreateNote is returned when note creation fails.
var ErrCreateNote = errors.New("failed to create note")

// ErrUpdateNote is returned when note update fails.
var ErrUpdateNote = errors.New("failed to update note")

// ErrDeleteNote is returned when note deletion fails.
var ErrDeleteNote = errors.New("failed to delete note")

// ErrCreateNotesRepo is returned when notes repository creation fails.
var ErrCreateNotesRepo = errors.New("failed to create notes repository")

// ErrListNotes is returned when notes listing fails.
var ErrListNotes = errors.New("failed to list notes")

// ErrGetNote is returned when a note detail cannot be assembled.
var ErrGetNote = errors.New("failed to load note")

// ErrNoteNotFound - note not found in DB, or not owned by the caller
var ErrNoteNotFound = errors.New("note not found")

// ErrEmptyTitle is returned when the title is blank after sanitizing.
var ErrEmptyTitle = errors.New("title cannot be empty")

// ErrFileTooLarge is returned when file_size exceeds MaxFileSize.
var ErrFileTooLarge = errors.New("file is larger than 35 MB")

// ErrInvalidScore is returned for ratings outside 0..5.
var ErrInvalidScore = errors.New("score must be between 0 and 5")

// ErrRateNote is returned when storing a rating fails.
var ErrRateNote = errors.New("failed to rate note")

// ErrComment is returned when a comment cannot be stored or removed.
var ErrComment = errors.New("failed to save comment")

// ErrEmptyComment is returned when the comment text is blank after sanitizing.
var ErrEmptyComment = errors.New("comment cannot be empty")

// ErrCommentNotFound - comment not found in DB
var ErrCommentNotFound = errors.New("comment not found")

// ErrForbidden is returned when the caller may not touch the resource.
var ErrForbidden = errors.New("forbidden")

// ErrUserNotFound is returned when a public profile does not exist.
var ErrUserNotFound = errors.New("user not found")
