// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/session"
)

func sampleDocument() *Document {
	start := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	user := model.NewUserMessage("What limits fast charging in LFP cells?")
	user.CreatedAt = start
	reply := model.NewAssistantMessage("## Limits\n\n| Factor | Effect |\n|---|---|\n| Lithium plating | Capacity fade |\n\n```go\nfunc main() {}\n```\n")
	reply.CreatedAt = start.Add(5 * time.Second)
	return &Document{
		SessionID:   "sess_abc12345",
		Provider:    "gemini",
		Model:       "gemini-2.5-flash",
		StartedAt:   start,
		ExportedAt:  start.Add(time.Minute),
		Attachments: []string{"datasheet.txt"},
		Messages:    []model.Message{user, reply},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatMarkdown, "MD": FormatMarkdown, "json": FormatJSON, " html ": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExporters_RejectEmptyDocument(t *testing.T) {
	for _, f := range []Format{FormatMarkdown, FormatJSON, FormatHTML} {
		exp, err := New(f, nil)
		require.NoError(t, err)
		_, err = exp.Export(&Document{})
		assert.ErrorIs(t, err, ErrNoMessages, f)
		_, err = exp.Export(nil)
		assert.Error(t, err)
	}
}

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleDocument())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\ntitle: What limits fast charging in LFP cells?\n"))
	assert.Contains(t, md, "model: gemini-2.5-flash\n")
	assert.Contains(t, md, "- `datasheet.txt`")
	assert.Contains(t, md, "### You <sub>10:30:00</sub>")
	assert.Contains(t, md, "### Battery AI <sub>10:30:05</sub>")
	assert.Contains(t, md, "| Lithium plating | Capacity fade |")
}

func TestMarkdownExporter_ErrorReplyAndNoTimestamps(t *testing.T) {
	doc := sampleDocument()
	doc.Messages[1] = model.NewErrorMessage(dispatch.CredentialsText)

	out, err := NewMarkdownExporter(&Options{}).Export(doc)
	require.NoError(t, err)
	md := string(out)
	assert.False(t, strings.HasPrefix(md, "---"))
	assert.Contains(t, md, "### Battery AI (error)\n")
	assert.NotContains(t, md, "<sub>")
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `""`, escapeYAML(""))
	assert.Equal(t, `"a\nb: c"`, escapeYAML("a\nb: c"))
	assert.Equal(t, `"C:\\cells"`, escapeYAML(`C:\cells`))
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleDocument())
	require.NoError(t, err)

	var decoded struct {
		SessionID string          `json:"session_id"`
		Generator string          `json:"generator"`
		Title     string          `json:"title"`
		Messages  []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "sess_abc12345", decoded.SessionID)
	assert.Equal(t, Generator, decoded.Generator)
	require.Len(t, decoded.Messages, 2)
	assert.Equal(t, model.SenderAssistant, decoded.Messages[1].Sender)
}

func TestHTMLExporter_RendersMarkdown(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(sampleDocument())
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, "<body class=\"dark-theme\">")
	assert.Contains(t, page, "<h2>Limits</h2>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "class=\"chroma\"")
	assert.Contains(t, page, ".chroma")
	assert.Contains(t, page, "<li>datasheet.txt</li>")
}

func TestHTMLExporter_EscapesUntrustedText(t *testing.T) {
	doc := sampleDocument()
	doc.Messages[0].Text = "<script>alert('user')</script>"
	doc.Messages[1].Text = "<script>alert('model')</script>\n\n```<img src=x onerror=alert(1)>\ncode\n```"
	doc.Attachments = []string{"<b>x.txt</b>"}

	out, err := NewHTMLExporter(&Options{Theme: "light", IncludeMetadata: true}).Export(doc)
	require.NoError(t, err)
	page := string(out)

	assert.NotContains(t, page, "<script>")
	assert.NotContains(t, page, "<img")
	assert.NotContains(t, page, "<b>x.txt</b>")
	assert.Contains(t, page, "&lt;script&gt;")
	assert.Contains(t, page, "<body class=\"light-theme\">")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c_d", sanitizeFilename(`a/b:c d`))
	assert.Equal(t, "conversation", sanitizeFilename("///"))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("x", 100))), 40)
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument()

	path, err := ToFile(doc, NewJSONExporter(nil), &Options{OutputDir: dir}, "")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "battery-chat_What_limits"))
	assert.Equal(t, ".json", filepath.Ext(path))

	explicit := filepath.Join(dir, "nested", "out.md")
	path, err = ToFile(doc, NewMarkdownExporter(nil), nil, explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# What limits fast charging in LFP cells?")
}

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(_ context.Context, query string, _ []model.Attachment) dispatch.Result {
	return dispatch.OK("echo: " + query)
}

func TestFromSession(t *testing.T) {
	s := session.New()
	s.Commit([]model.Attachment{{Name: "notes.txt", Content: "x"}})
	_, err := s.Submit(context.Background(), echoDispatcher{}, "hello")
	require.NoError(t, err)

	doc := FromSession(s, "gemini", "gemini-2.5-pro")
	assert.Equal(t, s.ID(), doc.SessionID)
	assert.Equal(t, []string{"notes.txt"}, doc.Attachments)
	require.Len(t, doc.Messages, 2)
	assert.Equal(t, "echo: hello", doc.Messages[1].Text)
	assert.Equal(t, "hello", doc.Title())
}
