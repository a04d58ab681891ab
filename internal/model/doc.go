// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript and
// attached documents.
//
// # Key Types
//
//   - Message: a single immutable transcript entry with sender, text and timestamp
//   - Transcript: append-only, ordered list of messages for one session
//   - Attachment: a local document reduced to plain text
//   - AttachmentStore: ordered, mutable set of attachments (duplicates allowed)
//   - ModelInfo: a generation model known to one of the providers
//
// # Usage
//
//	var t model.Transcript
//	t.Append(model.NewUserMessage("What is LFP?"))
//
//	var store model.AttachmentStore
//	store.AddBatch([]model.Attachment{{Name: "paper.txt", Content: "..."}})
//	removed := store.RemoveByName("paper.txt")
package model
