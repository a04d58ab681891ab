// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

// bounceDots animates three dots rising in turn.
var bounceDots = spinner.Spinner{
	Frames: []string{"o..", ".o.", "..o", ".o."},
	FPS:    time.Second / 6,
}

// Typing is the indicator shown while a reply is pending.
type Typing struct {
	spinner   spinner.Model
	startTime time.Time
	active    bool
	theme     *styles.Theme
}

// NewTyping creates an inactive typing indicator.
func NewTyping(theme *styles.Theme) Typing {
	s := spinner.New()
	s.Spinner = bounceDots
	s.Style = theme.Typing
	return Typing{spinner: s, theme: theme}
}

// Start activates the indicator and returns its first tick.
func (t *Typing) Start() tea.Cmd {
	t.active = true
	t.startTime = time.Now()
	return t.spinner.Tick
}

// Stop deactivates the indicator.
func (t *Typing) Stop() {
	t.active = false
}

// IsActive reports whether the indicator is running.
func (t Typing) IsActive() bool {
	return t.active
}

// Elapsed returns the time since Start.
func (t Typing) Elapsed() time.Duration {
	if t.startTime.IsZero() {
		return 0
	}
	return time.Since(t.startTime)
}

// Update advances the animation. Ticks are dropped while inactive, which
// ends the tick loop.
func (t Typing) Update(msg tea.Msg) (Typing, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator, or nothing when inactive.
func (t Typing) View() string {
	if !t.active {
		return ""
	}
	return t.theme.AssistantAvatar.Render("+") + " " +
		t.spinner.View() + " " +
		t.theme.Muted.Render("thinking ("+formatElapsed(t.Elapsed())+")")
}
