// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/session"
	"github.com/jeranaias/battery-assistant/internal/util"
)

// Generator is written into exported documents.
const Generator = "battery-assistant"

var (
	// ErrNoMessages is returned when exporting an empty transcript.
	ErrNoMessages = errors.New("transcript has no messages")

	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("unknown export format")
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is the exportable view of a session.
type Document struct {
	SessionID   string          `json:"session_id"`
	Provider    string          `json:"provider"`
	Model       string          `json:"model"`
	StartedAt   time.Time       `json:"started_at"`
	ExportedAt  time.Time       `json:"exported_at"`
	Attachments []string        `json:"attachments,omitempty"`
	Messages    []model.Message `json:"messages"`
}

// FromSession snapshots a session into a Document.
func FromSession(s *session.State, provider, modelID string) *Document {
	doc := &Document{
		SessionID:  s.ID(),
		Provider:   provider,
		Model:      modelID,
		StartedAt:  s.StartTime(),
		ExportedAt: time.Now(),
		Messages:   s.Messages(),
	}
	for _, a := range s.Attachments() {
		doc.Attachments = append(doc.Attachments, a.Name)
	}
	return doc
}

func (d *Document) validate() error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	if len(d.Messages) == 0 {
		return ErrNoMessages
	}
	return nil
}

// Title derives a title from the first user message.
func (d *Document) Title() string {
	for _, m := range d.Messages {
		if m.IsUser() {
			if line := util.TruncateWidth(util.FirstLine(m.Text), 60); line != "" {
				return line
			}
		}
	}
	return "Battery AI conversation"
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a Document to one output format.
type Exporter interface {
	// Export renders the document.
	Export(doc *Document) ([]byte, error)

	// FileExtension returns the file extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat parses a user supplied format name. Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where generated file names are placed.
	// Default: current working directory
	OutputDir string

	// IncludeMetadata includes the metadata header.
	IncludeMetadata bool

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile renders doc with exporter and writes it atomically. When path is
// empty a name is generated inside opts.OutputDir. The written path is
// returned.
func ToFile(doc *Document, exporter Exporter, opts *Options, path string) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if path == "" {
		dir := opts.OutputDir
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, Filename(doc, exporter.FileExtension(), time.Now()))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Save writes doc in the format named by formatArg ("" means markdown) and
// returns the written path.
func Save(doc *Document, formatArg, path string, opts *Options) (string, error) {
	format, err := ParseFormat(formatArg)
	if err != nil {
		return "", err
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	exp, err := New(format, opts)
	if err != nil {
		return "", err
	}
	return ToFile(doc, exp, opts, path)
}

// Filename builds the default export file name.
func Filename(doc *Document, ext string, now time.Time) string {
	return fmt.Sprintf("battery-chat_%s_%s%s",
		sanitizeFilename(doc.Title()),
		now.Format("20060102_150405"),
		ext,
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	runes := []rune(s)
	if len(runes) > 40 {
		runes = runes[:40]
	}

	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			out = append(out, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = append(out, '_')
		case r < 32 || r == 127:
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}

	result := strings.Trim(string(out), "._-")
	if result == "" {
		return "conversation"
	}
	return result
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
