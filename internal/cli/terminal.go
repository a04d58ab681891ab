// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for line-oriented commands.
//
// Markdown is rendered and colors are used only when stdout is a terminal;
// piped output gets the raw reply text.

package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for wrapping
	MinTerminalWidth = 40

	// MaxRenderWidth caps markdown wrapping on very wide terminals
	MaxRenderWidth = 120
)

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the stdout width clamped to
// [MinTerminalWidth, MaxRenderWidth], or DefaultTerminalWidth if unknown.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return min(max(width, MinTerminalWidth), MaxRenderWidth)
}

// ColorsEnabled reports whether colored output should be used.
// NO_COLOR (https://no-color.org/) and noColor disable colors, FORCE_COLOR
// enables them, otherwise stdout must be a terminal.
func ColorsEnabled(noColor bool) bool {
	switch {
	case noColor, os.Getenv("NO_COLOR") != "":
		return false
	case os.Getenv("FORCE_COLOR") != "":
		return true
	default:
		return IsStdoutTTY()
	}
}

// ColorProfile returns the termenv profile matching ColorsEnabled.
func ColorProfile(noColor bool) termenv.Profile {
	if !ColorsEnabled(noColor) {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// ConfigureColors applies the color decision to lipgloss.
func ConfigureColors(noColor bool) {
	lipgloss.SetColorProfile(ColorProfile(noColor))
}
