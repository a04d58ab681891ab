// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands defines the slash commands understood by both the TUI and
// the line-oriented chat REPL, and parses user input into them.
//
// Each front end executes commands itself; this package only owns names,
// aliases, argument rules, parsing and completion.
package commands
