// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderIcon  lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// Welcome
	WelcomeTitle    lipgloss.Style
	WelcomeSubtitle lipgloss.Style

	// Messages
	UserAvatar       lipgloss.Style
	AssistantAvatar  lipgloss.Style
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	ErrorMessage     lipgloss.Style
	MessageLabel     lipgloss.Style
	Timestamp        lipgloss.Style

	// Typing indicator
	Typing lipgloss.Style

	// Input area
	InputBox      lipgloss.Style
	InputDisabled lipgloss.Style
	InputPrompt   lipgloss.Style
	SendHint      lipgloss.Style

	// Attachments
	Chip     lipgloss.Style
	ChipIcon lipgloss.Style
	ChipHint lipgloss.Style

	// Toasts
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style

	// Help and status line
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
	Muted    lipgloss.Style
}

// NewTheme creates a theme for the detected terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// ThemeFor creates a theme from the ui.theme setting: "dark", "light" or
// "auto" (detect).
func ThemeFor(name string) *Theme {
	t := NewTheme()
	switch name {
	case "dark", "light":
		t.IsDark = name == "dark"
		lipgloss.SetHasDarkBackground(t.IsDark)
		t.initStyles()
	}
	return t
}

// NewPlainTheme creates a theme that emits no color sequences. It also sets
// the lipgloss default renderer profile, so it is meant to be chosen once at
// startup.
func NewPlainTheme() *Theme {
	lipgloss.SetColorProfile(termenv.Ascii)
	t := &Theme{IsDark: true, ColorProfile: termenv.Ascii}
	t.initStyles()
	return t
}

// GlamourStyle returns the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	switch {
	case t.ColorProfile == termenv.Ascii:
		return "notty"
	case t.IsDark:
		return "dark"
	default:
		return "light"
	}
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Border).
		Padding(0, 1)
	t.HeaderIcon = lipgloss.NewStyle().
		Foreground(BrandGreen).
		Bold(true)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginLeft(1)
	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Welcome
	t.WelcomeTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginBottom(1)
	t.WelcomeSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Messages
	t.UserAvatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(BrandBlue).
		Bold(true).
		Padding(0, 1)
	t.AssistantAvatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(BrandGreen).
		Bold(true).
		Padding(0, 1)
	t.UserMessage = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)
	t.AssistantMessage = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(BrandGreen)
	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Rose).
		Padding(0, 1)
	t.MessageLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Faint(true)

	t.Typing = lipgloss.NewStyle().
		Foreground(BrandGreen).
		Bold(true)

	// Input area
	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BrandGreen).
		Padding(0, 1)
	t.InputDisabled = t.InputBox.
		BorderForeground(Border)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(BrandGreen).
		Bold(true)
	t.SendHint = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Attachments
	t.Chip = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceRaised).
		Padding(0, 1).
		MarginRight(1)
	t.ChipIcon = lipgloss.NewStyle().
		Foreground(BrandBlue).
		Background(SurfaceRaised)
	t.ChipHint = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Toasts
	toast := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Bold(true)
	t.ToastSuccess = toast.Foreground(BrandGreen).BorderForeground(BrandGreen)
	t.ToastError = toast.Foreground(Rose).BorderForeground(Rose)
	t.ToastWarning = toast.Foreground(Amber).BorderForeground(Amber)
	t.ToastInfo = toast.Foreground(Sky).BorderForeground(Sky)

	// Help
	t.HelpKey = lipgloss.NewStyle().
		Foreground(BrandGreen).
		Bold(true)
	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextSecondary)
}
