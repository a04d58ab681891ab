// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

func plainTheme() *styles.Theme {
	return styles.NewPlainTheme()
}

func TestHeader_View(t *testing.T) {
	h := NewHeader(plainTheme())
	h.SetModel("gemini", "gemini-2.5-flash")
	h.SetWidth(80)

	view := h.View()
	assert.Contains(t, view, AppTitle)
	assert.Contains(t, view, "gemini / gemini-2.5-flash")
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 80)
	}

	h.SetWidth(30)
	assert.NotContains(t, h.View(), "gemini-2.5-flash")
}

func TestWelcome(t *testing.T) {
	view := Welcome(plainTheme(), 100, 20)
	assert.Contains(t, view, WelcomeTitle)
	assert.Contains(t, view, "Ask me anything about battery technology")
	assert.Equal(t, 20, lipgloss.Height(view))
}

func TestMessageBlock_Variants(t *testing.T) {
	theme := plainTheme()
	md := NewMarkdown("notty")

	user := NewMessageBlock(model.NewUserMessage("How do solid-state cells fail?"), theme, md)
	assert.Contains(t, user.View(), "You")
	assert.Contains(t, user.View(), "How do solid-state cells fail?")

	reply := NewMessageBlock(model.NewAssistantMessage("# Dendrites\n\nLithium **dendrites** grow."), theme, md)
	view := reply.View()
	assert.Contains(t, view, "Battery AI")
	assert.Contains(t, view, "Dendrites")
	assert.Contains(t, view, "dendrites")

	failed := NewMessageBlock(model.NewErrorMessage("An unknown error occurred while communicating with the AI."), theme, md)
	assert.Contains(t, failed.View(), "An unknown error occurred")
}

func TestMessageBlock_Timestamp(t *testing.T) {
	msg := model.NewUserMessage("hi")
	msg.CreatedAt = time.Date(2025, 1, 1, 9, 41, 0, 0, time.UTC)
	b := NewMessageBlock(msg, plainTheme(), nil)
	assert.NotContains(t, b.View(), "09:41")
	b.ShowTimestamp = true
	assert.Contains(t, b.View(), "09:41")
}

func TestRenderTranscript_Order(t *testing.T) {
	msgs := []model.Message{
		model.NewUserMessage("first question"),
		model.NewAssistantMessage("first answer"),
		model.NewUserMessage("second question"),
	}
	out := RenderTranscript(msgs, 80, false, plainTheme(), NewMarkdown("notty"))
	i1 := strings.Index(out, "first question")
	i2 := strings.Index(out, "first answer")
	i3 := strings.Index(out, "second question")
	require.True(t, i1 >= 0 && i2 >= 0 && i3 >= 0)
	assert.True(t, i1 < i2 && i2 < i3)
}

func TestAttachmentBar(t *testing.T) {
	theme := plainTheme()
	assert.Empty(t, AttachmentBar(nil, 80, theme))

	atts := []model.Attachment{
		{Name: "cell-datasheet.txt"},
		{Name: "a-very-long-file-name-that-needs-truncation-for-display.md"},
		{Name: "notes.txt"},
	}
	bar := AttachmentBar(atts, 40, theme)
	assert.Contains(t, bar, "cell-datasheet.txt")
	assert.Contains(t, bar, "...")
	assert.Contains(t, bar, "3 attached")
	for _, line := range strings.Split(bar, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
}

func TestTyping_Lifecycle(t *testing.T) {
	typing := NewTyping(plainTheme())
	assert.False(t, typing.IsActive())
	assert.Empty(t, typing.View())

	cmd := typing.Start()
	assert.NotNil(t, cmd)
	assert.True(t, typing.IsActive())
	assert.Contains(t, typing.View(), "thinking")

	typing.Stop()
	next, cmd := typing.Update(nil)
	assert.Nil(t, cmd)
	assert.Empty(t, next.View())
}

func TestToastManager(t *testing.T) {
	m := NewToastManager()
	now := time.Now()

	first := NewToast(ToastSuccess, "2 file(s) attached.")
	first.CreatedAt = now
	m.Add(first)
	errToast := NewToast(ToastError, "Failed to read one or more files.")
	errToast.CreatedAt = now
	id := m.Add(errToast)

	toasts := m.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, "Failed to read one or more files.", toasts[0].Message)

	assert.True(t, m.Prune(now.Add(5*time.Second)))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, id, m.Toasts()[0].ID)

	assert.False(t, m.Prune(now.Add(ErrorToastDuration)))

	for i := 0; i < 5; i++ {
		m.Add(NewToast(ToastInfo, "x"))
	}
	assert.Equal(t, 3, m.Len())
	m.Dismiss(m.Toasts()[0].ID)
	assert.Equal(t, 2, m.Len())
}

func TestRenderToastStack(t *testing.T) {
	theme := plainTheme()
	assert.Empty(t, RenderToastStack(nil, 80, theme))

	out := RenderToastStack([]Toast{NewToast(ToastSuccess, `File "a.txt" removed.`)}, 80, theme)
	assert.Contains(t, out, "[OK]")
	assert.Contains(t, out, `File "a.txt" removed.`)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "4s", formatElapsed(4*time.Second))
	assert.Equal(t, "1m05s", formatElapsed(65*time.Second))
}
