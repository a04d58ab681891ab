// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/battery-assistant/internal/commands"
	"github.com/jeranaias/battery-assistant/internal/export"
	"github.com/jeranaias/battery-assistant/internal/ui/components"
	"github.com/jeranaias/battery-assistant/internal/util"
)

// runCommand executes a parsed slash command.
func (m Model) runCommand(res commands.ParseResult) (Model, tea.Cmd) {
	if res.Err != nil {
		return m, m.toast(components.ToastError, res.Err.Error())
	}

	switch res.Command.Name {
	case commands.Attach:
		paths := make([]string, len(res.Args))
		for i, p := range res.Args {
			paths[i] = util.ExpandHome(p)
		}
		return m, m.attachCmd(paths)

	case commands.Remove:
		return m.detach(res.Args[0])

	case commands.Files:
		return m, m.toast(components.ToastInfo, m.filesSummary())

	case commands.Export:
		return m, m.exportCmd(res.Args)

	case commands.Info:
		return m, m.toast(components.ToastInfo, m.infoSummary())

	case commands.Help:
		m.showHelp = !m.showHelp
		return m, nil

	case commands.Quit:
		return m, tea.Quit

	case Browse:
		return m.openPicker()
	}
	return m, nil
}

// completeCommand completes a partially typed slash command name.
func (m Model) completeCommand() (Model, tea.Cmd) {
	matches := m.parser.Complete(m.input.Value())
	switch len(matches) {
	case 0:
		return m, nil
	case 1:
		m.input.SetValue(matches[0] + " ")
		m.input.CursorEnd()
		return m, nil
	default:
		return m, m.toast(components.ToastInfo, strings.Join(matches, "  "))
	}
}

func (m Model) filesSummary() string {
	atts := m.sess.Attachments()
	if len(atts) == 0 {
		return "No files attached."
	}
	parts := make([]string, len(atts))
	for i, a := range atts {
		parts[i] = fmt.Sprintf("%s (%s)", a.Name, util.HumanSize(a.Size))
	}
	return "Attached: " + strings.Join(parts, ", ")
}

func (m Model) infoSummary() string {
	return fmt.Sprintf("%s / %s | session %s | %d messages | %d attachments",
		m.provider, m.modelID, m.sess.ID(), m.sess.Len(), len(m.sess.Attachments()))
}

// exportCmd writes the transcript in the background. Arguments are an
// optional format followed by an optional path.
func (m Model) exportCmd(args []string) tea.Cmd {
	var formatArg, path string
	if len(args) > 0 {
		formatArg = args[0]
	}
	if len(args) > 1 {
		path = util.ExpandHome(args[1])
	}

	doc := export.FromSession(m.sess, m.provider, m.modelID)
	dir := m.exportDir
	theme := "dark"
	if !m.theme.IsDark {
		theme = "light"
	}

	return func() tea.Msg {
		opts := export.DefaultOptions()
		if dir != "" {
			opts.OutputDir = dir
		}
		opts.Theme = theme
		written, err := export.Save(doc, formatArg, path, opts)
		return ExportDoneMsg{Path: written, Err: err}
	}
}
