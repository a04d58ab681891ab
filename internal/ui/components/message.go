// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

// MessageBlock renders one transcript entry.
type MessageBlock struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool
	theme         *styles.Theme
	markdown      *Markdown
}

// NewMessageBlock creates a block for msg.
func NewMessageBlock(msg model.Message, theme *styles.Theme, md *Markdown) *MessageBlock {
	return &MessageBlock{Message: msg, Width: 80, theme: theme, markdown: md}
}

// View renders the avatar line followed by the body.
func (b *MessageBlock) View() string {
	msg := b.Message
	width := max(b.Width, 24)

	var avatar string
	if msg.IsUser() {
		avatar = b.theme.UserAvatar.Render("U")
	} else {
		avatar = b.theme.AssistantAvatar.Render("+")
	}
	label := avatar + " " + b.theme.MessageLabel.Render(msg.Sender.DisplayName())
	if b.ShowTimestamp && !msg.CreatedAt.IsZero() {
		label += " " + b.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	}

	bodyWidth := width - 4
	var body string
	switch {
	case msg.IsError:
		body = b.theme.ErrorMessage.Width(bodyWidth).Render(msg.Text)
	case msg.IsUser():
		body = b.theme.UserMessage.Width(bodyWidth).Render(strings.TrimRight(msg.Text, "\n"))
	default:
		text := msg.Text
		if b.markdown != nil {
			text = b.markdown.Render(text, bodyWidth-2)
		}
		body = b.theme.AssistantMessage.Render(text)
	}

	return lipgloss.JoinVertical(lipgloss.Left, label, indent(body, 2))
}

// RenderTranscript renders all messages separated by blank lines.
func RenderTranscript(msgs []model.Message, width int, showTimestamps bool, theme *styles.Theme, md *Markdown) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		block := NewMessageBlock(msg, theme, md)
		block.Width = width
		block.ShowTimestamp = showTimestamps
		parts = append(parts, block.View())
	}
	return strings.Join(parts, "\n\n")
}
