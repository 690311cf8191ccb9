// cmd/dirlens/classify.go
package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/gabriel-vasile/mimetype"
)

const (
	// textPreviewChars caps text previews (decoded characters).
	textPreviewChars = 1000
	// binaryPreviewBytes caps binary previews (raw bytes, pre-base64).
	binaryPreviewBytes = 100
	// languageSniffBytes is how much of a file the language guesser reads.
	languageSniffBytes = 1000

	fallbackMimeType = "application/octet-stream"
	fallbackLanguage = "Plain Text"
)

// defaultTextExtensions are treated as text regardless of detected MIME type.
var defaultTextExtensions = []string{
	".txt", ".md", ".py", ".js", ".html", ".css", ".json",
	".xml", ".csv", ".java", ".cpp", ".c", ".cs", ".rb", ".go",
	".php", ".rs", ".swift", ".kt", ".ts",
}

// FileContent is the result of classifying one file. Content is nil only
// when the file could not be read, in which case Preview carries the
// diagnostic. Language is nil for binary files.
type FileContent struct {
	Content   *string
	Preview   string
	Truncated bool
	Language  *string
}

// Classifier decides text vs binary and extracts bounded previews or full
// payloads. It never returns an error: read failures become diagnostic
// previews so an enclosing walk is never aborted.
type Classifier struct {
	includeFull bool
	textExts    map[string]struct{}
}

// NewClassifier builds a Classifier. textExts augments nothing when empty:
// the default allow-list is used instead.
func NewClassifier(includeFull bool, textExts []string) *Classifier {
	list := textExts
	if len(list) == 0 {
		list = defaultTextExtensions
	}
	return &Classifier{
		includeFull: includeFull,
		textExts:    processExtensions(list),
	}
}

// DetectMIME guesses a MIME type from the path's extension, falling back to
// content-signature detection, then to application/octet-stream.
func (c *Classifier) DetectMIME(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt := mime.TypeByExtension(ext); mt != "" {
		// Strip parameters like "; charset=utf-8" for the stable wire value.
		if base, _, err := mime.ParseMediaType(mt); err == nil {
			return base
		}
		return mt
	}
	if detected, err := mimetype.DetectFile(path); err == nil {
		return detected.String()
	}
	return fallbackMimeType
}

// Classify reads the file at path and produces its content record. The full
// content is always captured; only the preview honors the caps unless the
// classifier was built with includeFull.
func (c *Classifier) Classify(path string) FileContent {
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := c.DetectMIME(path)

	_, isTextExt := c.textExts[ext]
	if isTextExt || strings.Contains(mimeType, "text") {
		return c.classifyText(path)
	}
	return c.classifyBinary(path)
}

func (c *Classifier) classifyText(path string) FileContent {
	data, err := os.ReadFile(path)
	if err != nil {
		return errorContent(path, err)
	}
	// Permissive decode: invalid byte sequences are replaced, never fatal.
	text := strings.ToValidUTF8(string(data), "�")
	language := c.detectLanguage(path, text)

	preview := text
	truncated := false
	if !c.includeFull {
		runes := []rune(text)
		if len(runes) > textPreviewChars {
			preview = string(runes[:textPreviewChars])
			truncated = true
		}
	}
	return FileContent{
		Content:   &text,
		Preview:   preview,
		Truncated: truncated,
		Language:  &language,
	}
}

func (c *Classifier) classifyBinary(path string) FileContent {
	data, err := os.ReadFile(path)
	if err != nil {
		return errorContent(path, err)
	}
	content := base64.StdEncoding.EncodeToString(data)

	preview := content
	truncated := false
	if !c.includeFull {
		head := data
		if len(data) > binaryPreviewBytes {
			head = data[:binaryPreviewBytes]
			truncated = true
		}
		preview = base64.StdEncoding.EncodeToString(head)
	}
	return FileContent{
		Content:   &content,
		Preview:   preview,
		Truncated: truncated,
	}
}

// detectLanguage attempts a lexer lookup by filename, then by sniffing the
// first languageSniffBytes of content. It always returns a label.
func (c *Classifier) detectLanguage(path, text string) string {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		sample := text
		if len(sample) > languageSniffBytes {
			sample = sample[:languageSniffBytes]
		}
		lexer = lexers.Analyse(sample)
	}
	if lexer == nil {
		return fallbackLanguage
	}
	name := lexer.Config().Name
	if name == "" {
		return fallbackLanguage
	}
	return name
}

func errorContent(path string, err error) FileContent {
	slog.Debug("File read failed, recording diagnostic preview.", "path", path, "error", err)
	return FileContent{
		Preview: fmt.Sprintf("Error reading file: %v", err),
	}
}
