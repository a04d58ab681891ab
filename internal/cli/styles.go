// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styles for line-oriented command output.
//
// Colors come from the TUI palette. The lipgloss color profile is set by
// ConfigureColors, so every style degrades to plain text when colors are off.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

var (
	// TitleStyle is used for command titles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.BrandGreen)

	// SectionStyle is used for section headers within commands
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimary).
			MarginTop(1)

	// LabelStyle is used for left-aligned field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(18)

	// ValueStyle is used for regular values
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.BrandGreen).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// DimStyle is used for hints and secondary information
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	InfoStyle = lipgloss.NewStyle().
			Foreground(styles.Sky)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(styles.Border)

	// Chat prompt labels
	UserLabelStyle = lipgloss.NewStyle().
			Foreground(styles.BrandBlue).
			Bold(true)

	AssistantLabelStyle = lipgloss.NewStyle().
				Foreground(styles.BrandGreen).
				Bold(true)
)

// RenderSeparator renders a horizontal rule. Default width is 60.
func RenderSeparator(width ...int) string {
	w := 60
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return SeparatorStyle.Render(strings.Repeat("-", w))
}

// RenderLabel renders a "label:" cell padded to LabelStyle's width.
func RenderLabel(label string) string {
	return LabelStyle.Render(label + ":")
}
