// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	gmutil "github.com/yuin/goldmark/util"

	"github.com/jeranaias/battery-assistant/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports documents to a standalone HTML page. Message text is
// rendered as GitHub flavored markdown. Raw HTML inside messages is omitted.
type HTMLExporter struct {
	options  *Options
	markdown goldmark.Markdown
	code     *codeBlockRenderer
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	code := newCodeBlockRenderer(chromaStyleFor(opts.Theme))
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			renderer.WithNodeRenderers(gmutil.Prioritized(code, 100)),
		),
	)
	return &HTMLExporter{options: opts, markdown: md, code: code}
}

// Export converts a document to HTML.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}
	title := html.EscapeString(doc.Title())

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", title)
	fmt.Fprintf(&sb, "    <meta name=\"generator\" content=\"%s\">\n", Generator)
	sb.WriteString("    <style>\n")
	sb.WriteString(pageCSS)
	if err := e.code.writeCSS(&sb); err != nil {
		return nil, fmt.Errorf("highlight css: %w", err)
	}
	sb.WriteString("    </style>\n</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n<div class=\"container\">\n", theme)

	if e.options.IncludeMetadata {
		sb.WriteString("<header class=\"header\">\n")
		fmt.Fprintf(&sb, "    <h1>%s</h1>\n", title)
		sb.WriteString("    <div class=\"metadata\">\n")
		fmt.Fprintf(&sb, "        <span><strong>Model:</strong> %s</span>\n", html.EscapeString(doc.Model))
		fmt.Fprintf(&sb, "        <span><strong>Started:</strong> %s</span>\n", formatTimestamp(doc.StartedAt))
		fmt.Fprintf(&sb, "        <span><strong>Messages:</strong> %d</span>\n", len(doc.Messages))
		sb.WriteString("    </div>\n")
		if len(doc.Attachments) > 0 {
			sb.WriteString("    <ul class=\"attachments\">\n")
			for _, name := range doc.Attachments {
				fmt.Fprintf(&sb, "        <li>%s</li>\n", html.EscapeString(name))
			}
			sb.WriteString("    </ul>\n")
		}
		sb.WriteString("</header>\n")
	}

	sb.WriteString("<main class=\"conversation\">\n")
	for _, msg := range doc.Messages {
		body, err := e.renderMessage(msg)
		if err != nil {
			return nil, err
		}
		sb.WriteString(body)
	}
	sb.WriteString("</main>\n")

	fmt.Fprintf(&sb, "<footer class=\"footer\">Exported from <strong>Battery AI Assistant</strong> on %s</footer>\n",
		doc.ExportedAt.Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) renderMessage(msg model.Message) (string, error) {
	class := string(msg.Sender)
	if msg.IsError {
		class += " error"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<div class=\"message %s\">\n<div class=\"message-header\">", class)
	fmt.Fprintf(&sb, "<span class=\"role\">%s</span>", html.EscapeString(roleLabel(msg)))
	if e.options.IncludeTimestamps {
		fmt.Fprintf(&sb, "<span class=\"time\">%s</span>", formatShortTimestamp(msg.CreatedAt))
	}
	sb.WriteString("</div>\n<div class=\"message-body\">\n")

	if msg.IsUser() {
		// User input is shown literally.
		fmt.Fprintf(&sb, "<p>%s</p>\n", strings.ReplaceAll(html.EscapeString(msg.Text), "\n", "<br>\n"))
	} else {
		var buf bytes.Buffer
		if err := e.markdown.Convert([]byte(msg.Text), &buf); err != nil {
			return "", fmt.Errorf("render message %s: %w", msg.ID, err)
		}
		sb.Write(buf.Bytes())
	}
	sb.WriteString("</div>\n</div>\n")
	return sb.String(), nil
}

const pageCSS = `
* { box-sizing: border-box; }
.dark-theme {
    --bg: #1a1b26; --panel: #24283b; --text: #c0caf5; --muted: #565f89;
    --border: #414868; --user: #1f2335; --accent: #7dcfff; --error: #f7768e;
}
.light-theme {
    --bg: #ffffff; --panel: #f7f8fa; --text: #24292e; --muted: #6a737d;
    --border: #e1e4e8; --user: #eef6ff; --accent: #0366d6; --error: #d73a49;
}
body {
    margin: 0; padding: 20px; background: var(--bg); color: var(--text);
    font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; line-height: 1.6;
}
.container { max-width: 900px; margin: 0 auto; background: var(--panel); border-radius: 12px; overflow: hidden; }
.header { padding: 24px 32px; border-bottom: 2px solid var(--border); }
.header h1 { margin: 0 0 12px; font-size: 26px; }
.metadata { display: flex; flex-wrap: wrap; gap: 16px; font-size: 14px; color: var(--muted); }
.attachments { margin: 12px 0 0; font-size: 14px; color: var(--muted); }
.conversation { padding: 24px 32px; }
.message { margin-bottom: 20px; padding: 16px; border: 1px solid var(--border); border-radius: 8px; }
.message.user { background: var(--user); }
.message.error { border-color: var(--error); }
.message-header { display: flex; justify-content: space-between; font-size: 13px; color: var(--muted); margin-bottom: 8px; }
.message-header .role { font-weight: 600; color: var(--accent); }
.message.error .role { color: var(--error); }
.message-body table { border-collapse: collapse; }
.message-body th, .message-body td { border: 1px solid var(--border); padding: 4px 10px; }
.message-body blockquote { margin: 0; padding-left: 12px; border-left: 3px solid var(--border); color: var(--muted); }
.message-body pre { padding: 12px; border-radius: 6px; overflow-x: auto; }
.message-body code { font-family: "Fira Code", "Source Code Pro", monospace; font-size: 14px; }
.footer { padding: 16px 32px; font-size: 13px; color: var(--muted); border-top: 1px solid var(--border); }
`
