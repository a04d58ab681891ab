// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

// maxChipLabel bounds a single chip's file name.
const maxChipLabel = 28

// AttachmentBar renders attached documents as chips, wrapping onto more lines
// as needed. It returns "" when nothing is attached.
func AttachmentBar(atts []model.Attachment, width int, theme *styles.Theme) string {
	if len(atts) == 0 {
		return ""
	}
	width = max(width, 20)

	var lines []string
	line := ""
	for _, a := range atts {
		chip := theme.Chip.Render(theme.ChipIcon.Render("[doc]") + " " + a.Label(maxChipLabel))
		if line != "" && lipgloss.Width(line)+lipgloss.Width(chip) > width {
			lines = append(lines, line)
			line = ""
		}
		line += chip
	}
	lines = append(lines, line)

	hint := theme.ChipHint.Render(strconv.Itoa(len(atts)) + " attached - /remove <name> to detach")
	lines = append(lines, hint)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
