package notes

import (
	"path/filepath"
	"strings"
)

// File type buckets returned by FileType.
const (
	FileTypeNone   = "none"
	FileTypeImage  = "image"
	FileTypeVideo  = "video"
	FileTypeAudio  = "audio"
	FileTypePDF    = "pdf"
	FileTypeOffice = "office"
	FileTypeCode   = "code"
	FileTypeOther  = "other"
)

var fileTypeByExt = func() map[string]string {
	m := make(map[string]string)
	add := func(kind string, exts ...string) {
		for _, e := range exts {
			m[e] = kind
		}
	}
	add(FileTypeImage, ".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp")
	add(FileTypeVideo, ".mp4", ".webm", ".ogg", ".mov")
	add(FileTypeAudio, ".mp3", ".wav")
	add(FileTypePDF, ".pdf")
	add(FileTypeOffice, ".docx", ".doc", ".xlsx", ".xls", ".pptx", ".ppt")
	add(FileTypeCode,
		".txt", ".md", ".csv", ".json", ".xml", ".log",
		".py", ".js", ".html", ".css", ".java", ".cpp", ".c", ".h",
		".sql", ".sh", ".bat", ".php", ".rb", ".go", ".rs", ".ts",
		".yaml", ".yml", ".ini", ".conf", ".env",
	)
	return m
}()

// FileType buckets an attachment by its extension so clients can pick a preview.
func FileType(fileName string) string {
	if fileName == "" {
		return FileTypeNone
	}
	if kind, ok := fileTypeByExt[strings.ToLower(filepath.Ext(fileName))]; ok {
		return kind
	}
	return FileTypeOther
}
