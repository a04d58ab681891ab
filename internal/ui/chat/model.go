// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/battery-assistant/internal/commands"
	"github.com/jeranaias/battery-assistant/internal/ingest"
	"github.com/jeranaias/battery-assistant/internal/session"
	"github.com/jeranaias/battery-assistant/internal/ui/components"
	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

// Placeholder is shown in the empty input.
const Placeholder = "Ask about batteries or your documents..."

// Browse is the TUI-only command that opens the file picker.
const Browse = "/browse"

// Options configures a chat Model.
type Options struct {
	Session    *session.State
	Dispatcher session.Dispatcher
	Reader     session.AttachmentReader

	// Watcher is optional; when set, attached files are watched for changes.
	Watcher *ingest.Watcher

	Theme          *styles.Theme
	Provider       string
	Model          string
	ShowTimestamps bool
	ExportDir      string
	Logger         *zap.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx        context.Context
	sess       *session.State
	dispatcher session.Dispatcher
	reader     session.AttachmentReader
	watcher    *ingest.Watcher
	logger     *zap.Logger

	provider       string
	modelID        string
	showTimestamps bool
	exportDir      string

	// Styling
	theme    *styles.Theme
	markdown *components.Markdown

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	header   *components.Header
	viewport viewport.Model
	input    textinput.Model
	typing   components.Typing
	toasts   *components.ToastManager
	picker   filepicker.Model
	help     help.Model
	keys     KeyMap

	// Modes
	picking  bool
	showHelp bool

	// rendered caches message views by ID for the current width.
	rendered map[string]string

	registry *commands.Registry
	parser   *commands.Parser
}

// New creates the chat model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New()
	}

	input := textinput.New()
	input.Placeholder = Placeholder
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.SendHint
	input.CharLimit = 0
	input.Focus()

	picker := filepicker.New()
	picker.FileAllowed = true
	picker.DirAllowed = false
	if wd, err := os.Getwd(); err == nil {
		picker.CurrentDirectory = wd
	}

	header := components.NewHeader(theme)
	header.SetModel(opts.Provider, opts.Model)

	registry := commands.NewRegistry()
	registry.Register(&commands.Command{
		Name:        Browse,
		Aliases:     []string{"/open"},
		Description: "Pick documents to attach (ctrl+o)",
		TUIOnly:     true,
	})

	return Model{
		ctx:            context.Background(),
		sess:           sess,
		dispatcher:     opts.Dispatcher,
		reader:         opts.Reader,
		watcher:        opts.Watcher,
		logger:         logger,
		provider:       opts.Provider,
		modelID:        opts.Model,
		showTimestamps: opts.ShowTimestamps,
		exportDir:      opts.ExportDir,
		theme:          theme,
		markdown:       components.NewMarkdown(theme.GlamourStyle()),
		header:         header,
		viewport:       viewport.New(80, 20),
		input:          input,
		typing:         components.NewTyping(theme),
		toasts:         components.NewToastManager(),
		picker:         picker,
		help:           help.New(),
		keys:           DefaultKeyMap(),
		rendered:       make(map[string]string),
		registry:       registry,
		parser:         commands.NewParser(registry),
	}
}

// Session returns the session driven by the model.
func (m Model) Session() *session.State {
	return m.sess
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle(components.AppTitle),
		m.waitForChange(),
	)
}
