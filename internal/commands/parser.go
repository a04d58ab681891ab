// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrUnknownCommand is returned for input that names no command.
var ErrUnknownCommand = errors.New("unknown command")

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing user input.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// Name is the command name as typed
	Name string

	// Args are the parsed arguments
	Args []string

	// Err is set when the command is unknown or its arguments are invalid
	Err error
}

// =============================================================================
// PARSER
// =============================================================================

// Parser parses slash commands against a registry.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser for registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses input. Input that does not start with "/" is a query.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ParseResult{}
	}

	result := ParseResult{IsCommand: true}
	parts := splitCommandLine(input)
	if len(parts) == 0 {
		result.Err = ErrUnknownCommand
		return result
	}

	result.Name = parts[0]
	result.Args = parts[1:]
	result.Command = p.registry.Get(result.Name)
	if result.Command == nil {
		result.Err = fmt.Errorf("%w: %s (try /help)", ErrUnknownCommand, result.Name)
		return result
	}
	result.Err = ValidateArgs(result.Command, result.Args)
	return result
}

// Complete returns command names starting with prefix.
func (p *Parser) Complete(prefix string) []string {
	if !strings.HasPrefix(prefix, "/") || strings.ContainsFunc(prefix, unicode.IsSpace) {
		return nil
	}
	var out []string
	for _, c := range p.registry.All() {
		if strings.HasPrefix(c.Name, strings.ToLower(prefix)) {
			out = append(out, c.Name)
		}
	}
	sort.Strings(out)
	return out
}

// ValidateArgs checks the argument count and allowed values.
func ValidateArgs(cmd *Command, args []string) error {
	if len(args) < cmd.MinArgs {
		return &ValidationError{Command: cmd.Name, Message: "missing argument", Expected: cmd.Usage}
	}
	if cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs {
		return &ValidationError{Command: cmd.Name, Message: "too many arguments", Expected: cmd.Usage}
	}
	if len(cmd.Values) > 0 && len(args) > 0 && !containsFold(cmd.Values, args[0]) {
		return &ValidationError{
			Command:  cmd.Name,
			Message:  "invalid value",
			Got:      args[0],
			Expected: strings.Join(cmd.Values, ", "),
		}
	}
	return nil
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// ValidationError represents an argument validation error.
type ValidationError struct {
	Command  string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}

// =============================================================================
// ARGUMENT SPLITTING
// =============================================================================

// splitCommandLine splits a command line into tokens. Single and double
// quotes group words, so paths with spaces can be attached.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingle, inDouble, quoted bool

	flush := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		quoted = false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			quoted = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			quoted = true
		case r == '\\' && inDouble && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\'):
			current.WriteRune(runes[i+1])
			i++
		case unicode.IsSpace(r) && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

// SplitArgs exposes the tokenizer for front ends that take raw arguments.
func SplitArgs(input string) []string {
	return splitCommandLine(input)
}
