// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/mattn/go-runewidth"

// =============================================================================
// ATTACHMENT
// =============================================================================

// Attachment is a local document reduced to plain text.
type Attachment struct {
	// Name is the display name used in the prompt delimiters.
	Name string `json:"name"`

	// Content is the decoded text of the file.
	Content string `json:"content"`

	// Path is where the file was read from. It is used for change
	// notifications only and never reaches the prompt.
	Path string `json:"path,omitempty"`

	// Size is the number of bytes read from disk.
	Size int64 `json:"size"`
}

// Label returns the name truncated to maxWidth terminal cells.
func (a Attachment) Label(maxWidth int) string {
	return runewidth.Truncate(a.Name, maxWidth, "...")
}

// =============================================================================
// ATTACHMENT STORE
// =============================================================================

// AttachmentStore is the ordered set of attachments that accompanies the next
// query. Names are not required to be unique.
//
// An AttachmentStore is not safe for concurrent use.
type AttachmentStore struct {
	items []Attachment
}

// AddBatch appends a batch of attachments in order.
func (s *AttachmentStore) AddBatch(batch []Attachment) {
	s.items = append(s.items, batch...)
}

// RemoveByName deletes every attachment with the given name and returns how
// many were removed. The remaining entries keep their relative order.
func (s *AttachmentStore) RemoveByName(name string) int {
	kept := s.items[:0]
	removed := 0
	for _, a := range s.items {
		if a.Name == name {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	// Clear the tail so dropped contents can be collected.
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = Attachment{}
	}
	s.items = kept
	return removed
}

// List returns a copy of the attachments in store order.
func (s *AttachmentStore) List() []Attachment {
	out := make([]Attachment, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns the attachment names in store order.
func (s *AttachmentStore) Names() []string {
	names := make([]string, len(s.items))
	for i, a := range s.items {
		names[i] = a.Name
	}
	return names
}

// Len returns the number of attachments.
func (s *AttachmentStore) Len() int {
	return len(s.items)
}

// Paths returns the distinct source paths of all attachments.
func (s *AttachmentStore) Paths() []string {
	seen := make(map[string]bool, len(s.items))
	var paths []string
	for _, a := range s.items {
		if a.Path == "" || seen[a.Path] {
			continue
		}
		seen[a.Path] = true
		paths = append(paths, a.Path)
	}
	return paths
}
