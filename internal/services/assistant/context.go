package assistant

import (
	"fmt"
	"strings"

	"noteshare/internal/services/notes"
)

// ContextComments is how many of the latest comments go into the model context.
const ContextComments = 10

const baseInstructions = "You are a helpful student assistant. " +
	"Use Markdown for text formatting. " +
	"For Math, use LaTeX wrapped in $ or $$. " +
	"CRITICAL: Wrap commands like \\left in backticks if explaining them. "

// SystemInstructions appends the user's saved preferences to the base prompt.
func SystemInstructions(preferences string) string {
	if strings.TrimSpace(preferences) == "" {
		return baseInstructions
	}
	return baseInstructions + "\n\nUSER PREFERENCES:\n" + preferences + "\n"
}

// BuildContext renders the note metadata and comments the model answers from.
// comments are expected newest first; only the latest ContextComments are used,
// printed oldest first.
func BuildContext(view *notes.NoteView, comments []*notes.Comment, file *FileStatus) string {
	var b strings.Builder

	b.WriteString("=== NOTE METADATA ===\n")
	fmt.Fprintf(&b, "Title: %s\n", view.Title)
	fmt.Fprintf(&b, "Description: %s\n", view.Description)
	fmt.Fprintf(&b, "Course: %s\n", view.Course)
	fmt.Fprintf(&b, "Tags: %s\n", view.Tags)
	fmt.Fprintf(&b, "Uploaded By: %s\n", view.OwnerUsername)
	fmt.Fprintf(&b, "Date: %s\n\n", view.CreatedAt.Format("January 2, 2006"))

	b.WriteString("=== COMMUNITY COMMENTS ===\n")
	if len(comments) > ContextComments {
		comments = comments[:ContextComments]
	}
	if len(comments) == 0 {
		b.WriteString("No comments yet.")
	}
	for i := len(comments) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "- %s: %s\n", comments[i].Username, comments[i].Text)
	}

	if file != nil {
		if note := fileNote(view, *file); note != "" {
			b.WriteString("\n\n")
			b.WriteString(note)
		}
	}

	return b.String()
}

func fileNote(view *notes.NoteView, file FileStatus) string {
	switch file.Status {
	case StatusTooLarge:
		return fmt.Sprintf("[SYSTEM NOTE: File skipped because it is too large (%.1f MB). Answer based on metadata.]",
			megabytes(view.FileSize))
	case StatusUnsupported:
		return fmt.Sprintf("[SYSTEM NOTE: The file type (%s) cannot be read directly by AI. Answer based on Metadata & Comments.]",
			extension(view.FileName))
	case StatusReady:
		return fmt.Sprintf("[SYSTEM NOTE: The attached file %q is not available to you. Answer based on Metadata & Comments.]",
			view.FileName)
	}
	return ""
}
