// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of the
// battery assistant.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global flags and command-specific arguments
//   - Runtime: Collaborators a command needs (config, logger, dispatcher, reader)
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(ctx, rt, args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(ctx, rt, args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - tui: Full-screen chat (default)
//   - ask: One question, optionally with documents
//   - chat: Line-oriented chat with input history
//   - config: Show, locate, initialize or edit the config file
//   - doctor: Check configuration and environment
//   - models: List known generation models
//   - version, help
package cli
