// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/battery-assistant/internal/commands"
	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/session"
	"github.com/jeranaias/battery-assistant/internal/ui/components"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.layout()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.header.SetWidth(msg.Width)
		m.input.Width = max(msg.Width-8, 10)
		m.help.Width = msg.Width
		clear(m.rendered)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case DispatchDoneMsg:
		return m.handleDispatchDone(msg)

	case AttachDoneMsg:
		return m.handleAttachDone(msg)

	case FileChangedMsg:
		n := session.Changed(msg.Change.Name, msg.Change.Removed)
		return m, tea.Batch(m.notify(n), m.waitForChange())

	case ExportDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("export failed", zap.Error(msg.Err))
			return m, m.toast(components.ToastError, "Export failed: "+msg.Err.Error())
		}
		m.logger.Info("exported transcript", zap.String("path", msg.Path))
		return m, m.toast(components.ToastSuccess, "Exported to "+msg.Path)

	case components.ToastTickMsg:
		if m.toasts.Prune(msg.Time) {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.typing, cmd = m.typing.Update(msg)
		return m, cmd
	}

	// Everything else belongs to the focused sub-component.
	var cmd tea.Cmd
	if m.picking {
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Attach):
		return m.openPicker()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		return m.completeCommand()

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	// Typing is blocked while a reply is pending.
	if m.sess.IsPending() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return m, tea.Batch(cmd, m.attachCmd([]string{path}))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		return m, tea.Batch(cmd, m.toast(components.ToastWarning, "Cannot attach "+path))
	}
	return m, cmd
}

func (m Model) openPicker() (Model, tea.Cmd) {
	m.picking = true
	m.showHelp = false
	return m, m.picker.Init()
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit handles enter: slash commands run locally, anything else starts a
// generation request unless one is already pending.
func (m Model) submit() (Model, tea.Cmd) {
	value := m.input.Value()

	if res := m.parser.Parse(value); res.IsCommand {
		if m.sess.IsPending() {
			return m, nil
		}
		// Keep the text so a query that starts with "/" can be edited.
		if !errors.Is(res.Err, commands.ErrUnknownCommand) {
			m.input.Reset()
		}
		return m.runCommand(res)
	}

	p, err := m.sess.Begin(value)
	switch {
	case errors.Is(err, session.ErrEmptyInput), errors.Is(err, session.ErrRequestPending):
		return m, nil
	case err != nil:
		return m, m.toast(components.ToastError, err.Error())
	}

	m.input.Reset()
	m.input.Blur()
	m.showHelp = false
	m.refreshContent(true)

	m.logger.Debug("query submitted",
		zap.String("session", m.sess.ID()),
		zap.Int("attachments", len(p.Attachments)),
	)
	return m, tea.Batch(m.typing.Start(), dispatchCmd(m.ctx, m.dispatcher, p))
}

// dispatchCmd performs the generation call off the UI goroutine. If no
// Result can be produced the reply falls back to a generic apology.
func dispatchCmd(ctx context.Context, d session.Dispatcher, p session.Pending) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = DispatchDoneMsg{Result: dispatch.Err(dispatch.KindUnavailable, fmt.Sprint(r))}
			}
		}()
		if d == nil {
			return DispatchDoneMsg{Result: dispatch.Err(dispatch.KindUnavailable, "no dispatcher")}
		}
		return DispatchDoneMsg{Result: d.Dispatch(ctx, p.Query, p.Attachments)}
	}
}

func (m Model) handleDispatchDone(msg DispatchDoneMsg) (Model, tea.Cmd) {
	m.typing.Stop()
	if _, err := m.sess.Settle(msg.Result); err != nil {
		m.logger.Warn("reply without pending request", zap.Error(err))
	}
	cmd := m.input.Focus()
	m.refreshContent(true)
	return m, cmd
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// attachCmd reads paths in the background and commits them all or none.
func (m Model) attachCmd(paths []string) tea.Cmd {
	sess, reader, ctx := m.sess, m.reader, m.ctx
	return func() tea.Msg {
		if reader == nil {
			return AttachDoneMsg{Notification: session.AttachFailed(errors.New("file reading is unavailable"))}
		}
		added, n := sess.Attach(ctx, reader, paths)
		return AttachDoneMsg{Added: added, Notification: n}
	}
}

func (m Model) handleAttachDone(msg AttachDoneMsg) (Model, tea.Cmd) {
	if msg.Notification.Err != nil {
		m.logger.Warn("attach failed", zap.Error(msg.Notification.Err))
	}
	if m.watcher != nil {
		for _, a := range msg.Added {
			if a.Path == "" {
				continue
			}
			if err := m.watcher.Add(a.Path); err != nil {
				m.logger.Debug("cannot watch attachment", zap.String("path", a.Path), zap.Error(err))
			}
		}
	}
	return m, m.notify(msg.Notification)
}

// detach removes attachments by name and stops watching sources that are no
// longer attached.
func (m Model) detach(name string) (Model, tea.Cmd) {
	before := m.sess.Attachments()
	_, n := m.sess.Detach(name)

	if m.watcher != nil {
		still := make(map[string]bool)
		for _, a := range m.sess.Attachments() {
			still[a.Path] = true
		}
		for _, a := range before {
			if a.Path != "" && !still[a.Path] {
				m.watcher.Remove(a.Path)
			}
		}
	}
	return m, m.notify(n)
}

// waitForChange blocks on the watcher for the next change.
func (m Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	changes := m.watcher.Changes()
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return nil
		}
		return FileChangedMsg{Change: c}
	}
}

// =============================================================================
// TOASTS
// =============================================================================

func (m Model) notify(n session.Notification) tea.Cmd {
	kind := components.ToastInfo
	switch n.Kind {
	case session.KindSuccess:
		kind = components.ToastSuccess
	case session.KindWarning:
		kind = components.ToastWarning
	case session.KindError:
		kind = components.ToastError
	}
	return m.toast(kind, n.Text)
}

// toast shows a notification and starts the prune loop if it is idle.
func (m Model) toast(kind components.ToastKind, text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	idle := m.toasts.Len() == 0
	m.toasts.Add(components.NewToast(kind, text))
	if idle {
		return components.ToastTickCmd()
	}
	return nil
}
