// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

// AppTitle is shown in the header and the terminal title.
const AppTitle = "Battery AI Assistant"

// boltIcon stands in for the lightning bolt logo.
const boltIcon = "(+/-)"

// Header is the title bar.
type Header struct {
	Title    string
	Provider string
	Model    string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header with the application title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Title: AppTitle, Width: 80, theme: theme}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetModel updates the provider and model shown on the right.
func (h *Header) SetModel(provider, model string) {
	h.Provider = provider
	h.Model = model
}

// View renders the header.
func (h *Header) View() string {
	width := max(h.Width, 20)

	left := h.theme.HeaderIcon.Render(boltIcon) + h.theme.HeaderTitle.Render(h.Title)

	right := h.Model
	if h.Provider != "" && h.Model != "" {
		right = h.Provider + " / " + h.Model
	}
	right = h.theme.HeaderMeta.Render(right)

	// Drop the model label on narrow terminals.
	inner := width - h.theme.Header.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap >= 2 {
		line = left + spaces(gap) + right
	}

	return h.theme.Header.Width(width - h.theme.Header.GetHorizontalBorderSize()).Render(line)
}
