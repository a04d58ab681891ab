// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt turns a user query and the attached documents into the
// single instruction string sent to the generation service.
package prompt

import (
	"strings"

	"github.com/jeranaias/battery-assistant/internal/model"
)

const (
	// frameHeader opens every prompt that carries documents. The second
	// line is two spaces wide and must be kept as is.
	frameHeader = "Based on the following document(s), please answer the user's query.\n  \n"

	startDelimiter = "--- START OF DOCUMENT: "
	endDelimiter   = "--- END OF DOCUMENT: "
	delimiterTail  = " ---"
)

// Build returns the prompt for query. With no attachments the prompt is the
// query itself; otherwise each attachment is wrapped in start/end delimiter
// lines naming it, in store order, followed by the quoted query.
//
// Build is pure: equal inputs always produce equal output.
func Build(query string, attachments []model.Attachment) string {
	if len(attachments) == 0 {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(frameHeader) + len(query) + contentSize(attachments))

	sb.WriteString(frameHeader)
	for i, a := range attachments {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		writeDocument(&sb, a)
	}
	sb.WriteString("\n\nUser Query: \"")
	sb.WriteString(query)
	sb.WriteString("\"")

	return sb.String()
}

// StartDelimiter returns the line that opens the block for a document.
func StartDelimiter(name string) string {
	return startDelimiter + name + delimiterTail
}

// EndDelimiter returns the line that closes the block for a document.
func EndDelimiter(name string) string {
	return endDelimiter + name + delimiterTail
}

func writeDocument(sb *strings.Builder, a model.Attachment) {
	sb.WriteString(StartDelimiter(a.Name))
	sb.WriteByte('\n')
	sb.WriteString(a.Content)
	sb.WriteByte('\n')
	sb.WriteString(EndDelimiter(a.Name))
}

func contentSize(attachments []model.Attachment) int {
	n := 0
	for _, a := range attachments {
		n += len(a.Content) + 2*len(a.Name) + 64
	}
	return n
}
