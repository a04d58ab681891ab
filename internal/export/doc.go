// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat transcript to disk for the user.
//
// # Supported Formats
//
//   - Markdown: Human-readable with YAML frontmatter
//   - JSON: Machine-readable with full message metadata
//   - HTML: Standalone page; message markdown is rendered with goldmark
//     and fenced code is highlighted with chroma
//
// # Usage
//
//	doc := export.FromSession(state, "gemini", "gemini-2.5-flash")
//	exp, err := export.New(export.FormatHTML, nil)
//	path, err := export.ToFile(doc, exp, nil, "")
package export
