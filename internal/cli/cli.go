// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// AppName is the binary name used in help output.
const AppName = "battery-assistant"

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdConfig
	CmdDoctor
	CmdModels
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdConfig:
		return "config"
	case CmdDoctor:
		return "doctor"
	case CmdModels:
		return "models"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// NeedsDispatcher reports whether the command talks to the generation
// service and therefore needs a credential.
func (c Command) NeedsDispatcher() bool {
	return c == CmdTUI || c == CmdAsk || c == CmdChat
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Model      string
	Provider   string
	NoColor    bool
	Verbose    bool

	// Command-specific
	Query      string
	Files      []string
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Force      bool

	// Raw args after the command name
	Raw []string
}

const usageText = `battery-assistant - AI assistant for battery technology

Ask questions about batteries (EV, Li-ion, solid-state, charging, safety,
lifecycle) and about your own documents. Attached documents are sent to the
model together with your question.

Usage:
  battery-assistant                      Start the chat TUI (default)
  battery-assistant tui                  Start the chat TUI
  battery-assistant ask "question"       Ask a single question
  battery-assistant chat                 Line-oriented chat with history
  battery-assistant config [subcommand]  Configuration
  battery-assistant doctor               Check configuration and environment
  battery-assistant models               List known models
  battery-assistant version              Show version
  battery-assistant help                 Show this help

Ask:
  -f, --file PATH       Attach a document (repeatable)

Config:
  config show           Print the effective configuration (key redacted)
  config path           Print the config file path
  config init [--force] Write a default config file
  config get KEY        Print one value, e.g. provider.model
  config set KEY VALUE  Change one value and save

Chat commands (TUI and chat):
  /attach <path>...     Attach documents
  /remove <name>        Detach documents with that name
  /files                List attached documents
  /export [format] [path]
                        Save the conversation (markdown, json, html)
  /info                 Session details
  /help                 Show commands
  /quit                 Exit

Global Flags:
  --config PATH         Use this config file
  --provider NAME       gemini, openai or anthropic
  --model ID            Override the configured model
  --no-color            Disable colors
  -v, --verbose         Debug logging

Environment:
  API_KEY               Credential for the selected provider
  GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY
                        Provider-specific credential (takes precedence)
  BATTERY_ASSISTANT_HOME
                        Config directory (default ~/.battery-assistant)

Examples:
  battery-assistant ask "How does LFP compare to NMC for home storage?"
  battery-assistant ask "Summarize the cycling results" -f test-report.txt
  battery-assistant --provider openai --model gpt-4o-mini chat
  battery-assistant config set ui.show_timestamps true

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "%s version %s\n", AppName, Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args, error) {
	remaining, parsed, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, parsed, err
	}

	if len(remaining) == 0 {
		return CmdTUI, parsed, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed, nil

	case "ask", "a":
		err := parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed, err

	case "chat", "repl":
		return CmdChat, parsed, nil

	case "config", "cfg":
		err := parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed, err

	case "doctor", "diag":
		return CmdDoctor, parsed, nil

	case "models":
		return CmdModels, parsed, nil

	case "version", "--version":
		return CmdVersion, parsed, nil

	case "help", "-h", "--help":
		return CmdHelp, parsed, nil

	default:
		return CmdHelp, parsed, NewValidationErrorWithExample("command", cmd,
			"unknown command", AppName+" help")
	}
}

// parseGlobalFlags extracts global flags from anywhere in args and returns
// the rest in order.
func parseGlobalFlags(args []string) ([]string, Args, error) {
	var remaining []string
	var parsed Args

	value := func(i int, name string) (string, error) {
		if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
			return "", NewValidationError(name, "", "requires a value")
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--no-color":
			parsed.NoColor = true
			continue
		case "-v", "--verbose":
			parsed.Verbose = true
			continue
		case "--config", "--model", "--provider":
			v, err := value(i, arg)
			if err != nil {
				return nil, parsed, err
			}
			setGlobal(&parsed, arg, v)
			i++
			continue
		}

		if name, v, ok := strings.Cut(arg, "="); ok {
			switch name {
			case "--config", "--model", "--provider":
				setGlobal(&parsed, name, v)
				continue
			}
		}
		remaining = append(remaining, arg)
	}
	return remaining, parsed, nil
}

func setGlobal(a *Args, name, v string) {
	switch name {
	case "--config":
		a.ConfigPath = v
	case "--model":
		a.Model = v
	case "--provider":
		a.Provider = strings.ToLower(v)
	}
}

// parseAskArgs collects the question and any -f/--file attachments.
func parseAskArgs(a *Args, remaining []string) error {
	p := NewArgParser(remaining)
	a.Files = p.Values("f", "file")
	a.Query = strings.TrimSpace(strings.Join(p.PositionalFrom(0), " "))
	if a.Query == "" {
		return NewValidationErrorWithExample("question", "", "ask needs a question",
			AppName+` ask "What limits fast charging?"`)
	}
	return nil
}

// parseConfigArgs parses config subcommand arguments.
func parseConfigArgs(a *Args, remaining []string) error {
	p := NewArgParser(remaining, "force")
	a.Subcommand = strings.ToLower(p.Subcommand())
	a.ConfigKey = p.Positional(1)
	a.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
	a.Force = p.BoolFlag("force")

	switch a.Subcommand {
	case "", "show", "path", "init":
		return nil
	case "get":
		if a.ConfigKey == "" {
			return NewValidationErrorWithExample("key", "", "config get needs a key", AppName+" config get provider.model")
		}
		return nil
	case "set":
		if a.ConfigKey == "" || p.PositionalCount() < 3 {
			return NewValidationErrorWithExample("key", a.ConfigKey, "config set needs a key and a value", AppName+" config set ui.theme dark")
		}
		return nil
	default:
		return NewValidationError("subcommand", a.Subcommand, "expected show, path, init, get or set")
	}
}
