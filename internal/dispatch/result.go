// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import "strings"

// Kind tags the outcome of a dispatch.
type Kind int

const (
	// KindOK carries reply text.
	KindOK Kind = iota

	// KindCredentials means the API key is missing or was rejected.
	KindCredentials

	// KindFailure covers every other error.
	KindFailure

	// KindUnavailable means no dispatch outcome was produced at all.
	KindUnavailable
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindCredentials:
		return "credentials"
	case KindFailure:
		return "failure"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Displayed text for results that carry no reply.
const (
	EmptyReplyText   = "I couldn't generate a response. Please try rephrasing your question."
	CredentialsText  = "Error: Could not connect to the AI service. Please check if the API key is configured correctly."
	FailurePrefix    = "An error occurred while communicating with the AI: "
	UnknownErrorText = "An unknown error occurred while communicating with the AI."

	// UnavailableText is shown when no result could be produced at all.
	UnavailableText = "Sorry, I encountered an error. Please try again."
)

// Result is the outcome of one dispatch: reply text or a tagged error.
type Result struct {
	Kind   Kind
	Text   string
	Detail string

	// Cause is the generation error behind a failed result. It is never
	// displayed.
	Cause error
}

// OK returns a successful result.
func OK(text string) Result {
	return Result{Kind: KindOK, Text: text}
}

// Err returns a failed result.
func Err(kind Kind, detail string) Result {
	return Result{Kind: kind, Detail: detail}
}

// IsOK reports whether the result carries reply text.
func (r Result) IsOK() bool {
	return r.Kind == KindOK
}

// Display returns the text to show in the transcript.
func (r Result) Display() string {
	switch r.Kind {
	case KindOK:
		return r.Text
	case KindCredentials:
		return CredentialsText
	case KindUnavailable:
		return UnavailableText
	default:
		if strings.TrimSpace(r.Detail) == "" {
			return UnknownErrorText
		}
		return FailurePrefix + r.Detail
	}
}
