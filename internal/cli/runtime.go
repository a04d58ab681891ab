// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/battery-assistant/internal/config"
	"github.com/jeranaias/battery-assistant/internal/ingest"
	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/session"
	"github.com/jeranaias/battery-assistant/internal/ui/components"
)

// Runtime carries what command handlers need from main.
type Runtime struct {
	Config     *config.Config
	Logger     *zap.Logger
	Dispatcher session.Dispatcher
	Reader     session.AttachmentReader

	Out io.Writer
	Err io.Writer

	// Markdown renders replies with glamour; main enables it on a terminal.
	Markdown bool
	// GlamourStyle is "dark", "light" or "notty".
	GlamourStyle string
	// Width is the markdown wrap width.
	Width int

	md *components.Markdown
}

func (rt *Runtime) logger() *zap.Logger {
	if rt.Logger == nil {
		return zap.NewNop()
	}
	return rt.Logger
}

func (rt *Runtime) config() *config.Config {
	if rt.Config == nil {
		return config.Global()
	}
	return rt.Config
}

func (rt *Runtime) reader() session.AttachmentReader {
	if rt.Reader == nil {
		rt.Reader = ingest.NewReader(rt.Logger)
	}
	return rt.Reader
}

func (rt *Runtime) out() io.Writer {
	if rt.Out == nil {
		return os.Stdout
	}
	return rt.Out
}

func (rt *Runtime) errOut() io.Writer {
	if rt.Err == nil {
		return os.Stderr
	}
	return rt.Err
}

func (rt *Runtime) width() int {
	if w := rt.config().UI.WordWrap; w > 0 {
		return w
	}
	if rt.Width > 0 {
		return rt.Width
	}
	return DefaultTerminalWidth
}

// renderReply formats assistant text for output.
func (rt *Runtime) renderReply(text string) string {
	if !rt.Markdown {
		return strings.TrimRight(text, "\n")
	}
	if rt.md == nil {
		rt.md = components.NewMarkdown(rt.GlamourStyle)
	}
	return rt.md.Render(text, rt.width())
}

// printReply writes a reply to stdout, or an error reply to stderr.
func (rt *Runtime) printReply(msg model.Message) {
	if msg.IsError {
		fmt.Fprintf(rt.errOut(), "%s %s\n", ErrorStyle.Render("[ERROR]"), msg.Text)
		return
	}
	fmt.Fprintln(rt.out(), rt.renderReply(msg.Text))
}

// notice writes a session notification to stderr.
func (rt *Runtime) notice(n session.Notification) {
	if n.Text == "" {
		return
	}
	style := InfoStyle
	switch n.Kind {
	case session.KindSuccess:
		style = SuccessStyle
	case session.KindWarning:
		style = WarningStyle
	case session.KindError:
		style = ErrorStyle
	}
	fmt.Fprintln(rt.errOut(), style.Render(n.Text))
}
