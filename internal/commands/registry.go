// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// Names of the built-in commands.
const (
	Attach = "/attach"
	Remove = "/remove"
	Files  = "/files"
	Export = "/export"
	Info   = "/info"
	Help   = "/help"
	Quit   = "/quit"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command describes a slash command.
type Command struct {
	// Name is the primary command name (e.g., "/attach")
	Name string

	// Aliases are alternative names (e.g., "/a")
	Aliases []string

	// Usage shows argument syntax
	Usage string

	// Description is shown in help
	Description string

	// MinArgs and MaxArgs bound the argument count; MaxArgs < 0 is unbounded
	MinArgs int
	MaxArgs int

	// Values restricts the first argument when set
	Values []string

	// TUIOnly commands are hidden in the REPL
	TUIOnly bool
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds the known commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	for _, c := range builtins() {
		r.Register(c)
	}
	return r
}

// Register adds a command.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias (case-insensitive).
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	return r.aliases[name]
}

// All returns the commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// HelpText renders a help listing. TUI-only commands are skipped when
// forREPL is set.
func (r *Registry) HelpText(forREPL bool) string {
	var sb strings.Builder
	for _, c := range r.All() {
		if forREPL && c.TUIOnly {
			continue
		}
		usage := c.Usage
		if usage == "" {
			usage = c.Name
		}
		sb.WriteString("  ")
		sb.WriteString(usage)
		if pad := 34 - len(usage); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		} else {
			sb.WriteString("  ")
		}
		sb.WriteString(c.Description)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func builtins() []*Command {
	return []*Command{
		{
			Name:        Attach,
			Aliases:     []string{"/a", "/upload"},
			Usage:       "/attach <path> [path...]",
			Description: "Attach text documents to the next questions",
			MinArgs:     1,
			MaxArgs:     -1,
		},
		{
			Name:        Remove,
			Aliases:     []string{"/rm", "/detach"},
			Usage:       "/remove <name>",
			Description: "Remove every attachment with this name",
			MinArgs:     1,
			MaxArgs:     1,
		},
		{
			Name:        Files,
			Aliases:     []string{"/ls"},
			Description: "List attached documents",
		},
		{
			Name:        Export,
			Usage:       "/export [markdown|json|html] [path]",
			Description: "Save the transcript to a file",
			MaxArgs:     2,
			Values:      []string{"markdown", "md", "json", "html"},
		},
		{
			Name:        Info,
			Description: "Show provider, model and session details",
		},
		{
			Name:        Help,
			Aliases:     []string{"/h", "/?"},
			Description: "Show available commands",
		},
		{
			Name:        Quit,
			Aliases:     []string{"/exit", "/q"},
			Description: "Leave the assistant",
		},
	}
}
