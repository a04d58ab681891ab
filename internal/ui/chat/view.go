// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/battery-assistant/internal/ui/components"
)

// minViewportHeight keeps the transcript visible on very short terminals.
const minViewportHeight = 3

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	switch {
	case m.picking:
		body = m.pickerView()
	case m.sess.Len() == 0:
		body = components.Welcome(m.theme, m.width, m.viewport.Height)
	default:
		body = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.bottomView(),
	)
}

// bottomView renders everything below the transcript.
func (m Model) bottomView() string {
	var parts []string

	if v := m.typing.View(); v != "" {
		parts = append(parts, v)
	}
	if v := components.RenderToastStack(m.toasts.Toasts(), m.width, m.theme); v != "" {
		parts = append(parts, v)
	}
	if m.showHelp {
		parts = append(parts, m.helpView())
	}
	if v := components.AttachmentBar(m.sess.Attachments(), m.width, m.theme); v != "" {
		parts = append(parts, v)
	}

	box := m.theme.InputBox
	if m.sess.IsPending() {
		box = m.theme.InputDisabled
	}
	parts = append(parts, box.Width(max(m.width-2, 10)).Render(m.input.View()))

	if m.picking {
		parts = append(parts, m.help.View(pickerKeyMap{m.keys}))
	} else {
		parts = append(parts, m.help.View(m.keys))
	}
	return strings.Join(parts, "\n")
}

func (m Model) helpView() string {
	title := m.theme.MessageLabel.Render("Commands")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.theme.HelpDesc.Render(strings.TrimRight(m.registry.HelpText(false), "\n")),
		m.help.FullHelpView(m.keys.FullHelp()),
	)
}

func (m Model) pickerView() string {
	title := m.theme.MessageLabel.Render("Attach a document: ") + m.theme.Muted.Render(m.picker.CurrentDirectory)
	return lipgloss.NewStyle().
		Height(m.viewport.Height).
		MaxHeight(m.viewport.Height).
		Render(title + "\n\n" + m.picker.View())
}

// layout sizes the viewport to the space left by the header and the bottom
// area. It runs after every update because the bottom area grows and shrinks
// with toasts and attachments.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	height := m.height - lipgloss.Height(m.header.View()) - lipgloss.Height(m.bottomView())
	height = max(height, minViewportHeight)

	resized := m.viewport.Width != m.width || m.viewport.Height != height
	m.viewport.Width = m.width
	m.viewport.Height = height
	m.picker.Height = max(height-2, 1)

	if resized {
		m.refreshContent(m.viewport.AtBottom())
	}
}

// refreshContent re-renders the transcript into the viewport.
func (m *Model) refreshContent(toBottom bool) {
	msgs := m.sess.Messages()
	width := max(m.width-2, 24)

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		view, ok := m.rendered[msg.ID]
		if !ok {
			block := components.NewMessageBlock(msg, m.theme, m.markdown)
			block.Width = width
			block.ShowTimestamp = m.showTimestamps
			view = block.View()
			m.rendered[msg.ID] = view
		}
		blocks = append(blocks, view)
	}

	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	if toBottom {
		m.viewport.GotoBottom()
	}
}
