// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/model"
)

// Errors returned by Begin and Settle.
var (
	ErrEmptyInput     = errors.New("input is empty")
	ErrRequestPending = errors.New("a request is already pending")
	ErrNotPending     = errors.New("no request is pending")
)

// AttachmentReader reads a batch of files, all or nothing.
type AttachmentReader interface {
	ReadFiles(ctx context.Context, paths []string) ([]model.Attachment, error)
}

// Dispatcher answers one query.
type Dispatcher interface {
	Dispatch(ctx context.Context, query string, attachments []model.Attachment) dispatch.Result
}

// Pending describes the request started by Begin.
type Pending struct {
	Query       string
	Attachments []model.Attachment
	UserMessage model.Message
}

// =============================================================================
// STATE
// =============================================================================

// State is the mutable state of one session. It is safe for concurrent use.
type State struct {
	mu sync.Mutex

	id        string
	startTime time.Time

	transcript  *model.Transcript
	attachments model.AttachmentStore
	pending     bool
}

// New creates an idle session with an empty transcript.
func New() *State {
	return &State{
		id:         "sess_" + uuid.NewString()[:8],
		startTime:  time.Now(),
		transcript: model.NewTranscript(),
	}
}

// ID returns the session identifier used in logs.
func (s *State) ID() string {
	return s.id
}

// StartTime returns when the session was created.
func (s *State) StartTime() time.Time {
	return s.startTime
}

// Messages returns a snapshot of the transcript.
func (s *State) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// Len returns the number of transcript messages.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Len()
}

// Attachments returns a snapshot of the attachments.
func (s *State) Attachments() []model.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachments.List()
}

// IsPending reports whether a request is outstanding.
func (s *State) IsPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Begin starts a request for input. It appends the user message, marks the
// session pending and snapshots the attachments to send.
func (s *State) Begin(input string) (Pending, error) {
	if strings.TrimSpace(input) == "" {
		return Pending{}, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return Pending{}, ErrRequestPending
	}

	msg := model.NewUserMessage(input)
	s.transcript.Append(msg)
	s.pending = true

	return Pending{
		Query:       input,
		Attachments: s.attachments.List(),
		UserMessage: msg,
	}, nil
}

// Settle appends the reply for the pending request and returns the session
// to idle. Failed results are recorded as error replies.
func (s *State) Settle(res dispatch.Result) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		return model.Message{}, ErrNotPending
	}

	var reply model.Message
	if res.IsOK() {
		reply = model.NewAssistantMessage(res.Display())
	} else {
		reply = model.NewErrorMessage(res.Display())
	}
	s.transcript.Append(reply)
	s.pending = false
	return reply, nil
}

// Submit runs Begin, one dispatch and Settle in sequence.
func (s *State) Submit(ctx context.Context, d Dispatcher, input string) (model.Message, error) {
	p, err := s.Begin(input)
	if err != nil {
		return model.Message{}, err
	}

	res := dispatch.Err(dispatch.KindUnavailable, "no dispatcher")
	if d != nil {
		res = d.Dispatch(ctx, p.Query, p.Attachments)
	}

	reply, err := s.Settle(res)
	if err != nil {
		return model.Message{}, fmt.Errorf("settle: %w", err)
	}
	return reply, nil
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// Attach reads paths and, if every file was read, adds them to the
// attachments. A failed batch leaves earlier attachments untouched.
func (s *State) Attach(ctx context.Context, r AttachmentReader, paths []string) ([]model.Attachment, Notification) {
	batch, err := r.ReadFiles(ctx, paths)
	if err != nil {
		return nil, AttachFailed(err)
	}
	return batch, s.Commit(batch)
}

// Commit adds an already-read batch to the attachments.
func (s *State) Commit(batch []model.Attachment) Notification {
	if len(batch) == 0 {
		return Notification{Kind: KindWarning, Text: "No files selected."}
	}

	s.mu.Lock()
	s.attachments.AddBatch(batch)
	s.mu.Unlock()

	return Attached(len(batch))
}

// Detach removes every attachment named name.
func (s *State) Detach(name string) (int, Notification) {
	s.mu.Lock()
	removed := s.attachments.RemoveByName(name)
	s.mu.Unlock()

	if removed == 0 {
		return 0, Notification{Kind: KindWarning, Text: fmt.Sprintf("No attachment named %q.", name)}
	}
	return removed, Removed(name)
}
