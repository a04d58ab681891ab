// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "Battery AI"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. Messages are passed by value and
// are never modified after creation.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// IsError marks assistant replies that carry a failure description
	// instead of generated text.
	IsError bool `json:"is_error,omitempty"`
}

// NewMessage creates a message with a fresh ID.
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) Message {
	return NewMessage(SenderUser, text)
}

// NewAssistantMessage creates an assistant reply.
func NewAssistantMessage(text string) Message {
	return NewMessage(SenderAssistant, text)
}

// NewErrorMessage creates an assistant reply describing a failed request.
func NewErrorMessage(text string) Message {
	msg := NewMessage(SenderAssistant, text)
	msg.IsError = true
	return msg
}

// IsUser reports whether the message was sent by the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// Preview returns the text truncated to maxWidth terminal cells.
func (m Message) Preview(maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(m.Text, maxWidth, "...")
}
