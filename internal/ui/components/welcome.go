// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

// Welcome panel text.
const (
	WelcomeTitle    = "Welcome to the Battery AI Assistant"
	WelcomeSubtitle = "Ask me anything about battery technology, or upload a document to get started."
	WelcomeHint     = "Press ctrl+o or type /attach <path> to add documents, /help for commands."
)

// Welcome renders the empty-transcript panel centered in width x height.
func Welcome(theme *styles.Theme, width, height int) string {
	textWidth := max(min(width-4, 72), 10)
	block := lipgloss.JoinVertical(lipgloss.Center,
		theme.WelcomeTitle.Render(WelcomeTitle),
		theme.WelcomeSubtitle.Width(textWidth).Align(lipgloss.Center).Render(WelcomeSubtitle),
		"",
		theme.Muted.Width(textWidth).Align(lipgloss.Center).Render(WelcomeHint),
	)
	if width <= 0 || height <= 0 {
		return block
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}
