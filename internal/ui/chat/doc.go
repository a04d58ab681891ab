// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model of the chat screen.
//
// The model owns no conversation state of its own: the transcript,
// attachments and pending flag live in a session.State. Blocking work (file
// reads, the generation call, exports) runs in tea.Cmds and reports back
// through the messages in messages.go.
package chat
