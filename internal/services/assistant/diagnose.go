package assistant

import (
	"fmt"
	"mime"
	"path"
	"slices"
	"strings"

	"noteshare/internal/services/notes"
)

// File readiness states.
const (
	StatusNoFile      = "no_file"
	StatusTooLarge    = "too_large"
	StatusUnsupported = "unsupported"
	StatusReady       = "ready"
)

// DefaultMaxFileBytes is the largest attachment the model is asked to read.
const DefaultMaxFileBytes = 200 << 20

var readableExts = []string{
	"pdf", "txt", "md", "csv", "html", "htm", "xml", "json", "yaml", "yml",
	"py", "js", "java", "c", "cpp", "h", "css", "sql", "sh", "bat", "php",
}

// FileStatus describes whether a note's attachment can be given to the model.
type FileStatus struct {
	Status  string `json:"status" example:"ready"`
	Message string `json:"message" example:"Full File Context Active"`
}

// Diagnose classifies the note's attachment against maxBytes.
func Diagnose(note *notes.Note, maxBytes int64) FileStatus {
	if note.FileName == "" {
		return FileStatus{Status: StatusNoFile, Message: "Metadata Only (No File)"}
	}
	if note.FileSize > maxBytes {
		return FileStatus{
			Status:  StatusTooLarge,
			Message: fmt.Sprintf("File Too Large (%.0fMB), Metadata Mode", megabytes(note.FileSize)),
		}
	}
	if ext := extension(note.FileName); !readable(ext) {
		return FileStatus{
			Status:  StatusUnsupported,
			Message: fmt.Sprintf("Unsupported Format (%s), Metadata Mode", strings.ToUpper(ext)),
		}
	}
	return FileStatus{Status: StatusReady, Message: "Full File Context Active"}
}

func readable(ext string) bool {
	if slices.Contains(readableExts, ext) {
		return true
	}
	mt := mime.TypeByExtension("." + ext)
	return strings.HasPrefix(mt, "image/") || strings.HasPrefix(mt, "video/") || strings.HasPrefix(mt, "audio/")
}

func extension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
}

func megabytes(n int64) float64 {
	return float64(n) / (1 << 20)
}
