// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/model"
)

type fakeReader struct {
	batch []model.Attachment
	err   error
}

func (f fakeReader) ReadFiles(context.Context, []string) ([]model.Attachment, error) {
	return f.batch, f.err
}

type fakeDispatcher struct {
	result   dispatch.Result
	calls    int
	lastAtts []model.Attachment
}

func (f *fakeDispatcher) Dispatch(_ context.Context, _ string, atts []model.Attachment) dispatch.Result {
	f.calls++
	f.lastAtts = atts
	return f.result
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestBegin_EmptyInputIsNoop(t *testing.T) {
	s := New()
	for _, in := range []string{"", "   ", "\n\t "} {
		_, err := s.Begin(in)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsPending())
}

func TestBegin_RejectsWhilePending(t *testing.T) {
	s := New()

	_, err := s.Begin("first")
	require.NoError(t, err)
	assert.True(t, s.IsPending())

	_, err = s.Begin("second")
	assert.ErrorIs(t, err, ErrRequestPending)
	assert.Equal(t, 1, s.Len())

	_, err = s.Settle(dispatch.OK("answer"))
	require.NoError(t, err)
	assert.False(t, s.IsPending())

	_, err = s.Begin("second")
	assert.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

func TestBegin_ConcurrentSubmissionsAdmitOne(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Begin("q"); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, 1, s.Len())
}

func TestSettle_RequiresPending(t *testing.T) {
	_, err := New().Settle(dispatch.OK("x"))
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestSettle_ErrorResultBecomesErrorReply(t *testing.T) {
	s := New()
	_, err := s.Begin("q")
	require.NoError(t, err)

	reply, err := s.Settle(dispatch.Err(dispatch.KindFailure, "timeout"))
	require.NoError(t, err)
	assert.True(t, reply.IsError)
	assert.Equal(t, model.SenderAssistant, reply.Sender)
	assert.Equal(t, dispatch.FailurePrefix+"timeout", reply.Text)
}

func TestSubmit_PairsEveryUserMessage(t *testing.T) {
	s := New()
	d := &fakeDispatcher{result: dispatch.OK("LFP lasts longer.")}

	reply, err := s.Submit(context.Background(), d, "LFP or NMC?")
	require.NoError(t, err)
	assert.Equal(t, "LFP lasts longer.", reply.Text)

	d.result = dispatch.Err(dispatch.KindCredentials, "bad key")
	reply, err = s.Submit(context.Background(), d, "again")
	require.NoError(t, err)
	assert.Equal(t, dispatch.CredentialsText, reply.Text)

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	for i, m := range msgs {
		if i%2 == 0 {
			assert.Equal(t, model.SenderUser, m.Sender)
		} else {
			assert.Equal(t, model.SenderAssistant, m.Sender)
		}
	}
	assert.Equal(t, 2, d.calls)
}

func TestSubmit_KeepsRawInputText(t *testing.T) {
	s := New()
	_, err := s.Submit(context.Background(), &fakeDispatcher{result: dispatch.OK("ok")}, "  spaced  ")
	require.NoError(t, err)
	assert.Equal(t, "  spaced  ", s.Messages()[0].Text)
}

func TestSubmit_NilDispatcherStillReplies(t *testing.T) {
	s := New()
	reply, err := s.Submit(context.Background(), nil, "q")
	require.NoError(t, err)
	assert.True(t, reply.IsError)
	assert.Equal(t, dispatch.UnavailableText, reply.Text)
	assert.Equal(t, 2, s.Len())
}

func TestSubmit_SendsAttachmentSnapshot(t *testing.T) {
	s := New()
	s.Commit([]model.Attachment{{Name: "a.txt", Content: "X"}})

	d := &fakeDispatcher{result: dispatch.OK("ok")}
	_, err := s.Submit(context.Background(), d, "q")
	require.NoError(t, err)
	require.Len(t, d.lastAtts, 1)
	assert.Equal(t, "a.txt", d.lastAtts[0].Name)

	// Attachments stay for later queries.
	assert.Len(t, s.Attachments(), 1)
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

func TestAttach_SuccessNotification(t *testing.T) {
	s := New()
	r := fakeReader{batch: []model.Attachment{{Name: "a.txt"}, {Name: "b.txt"}}}

	batch, n := s.Attach(context.Background(), r, []string{"a.txt", "b.txt"})
	assert.Len(t, batch, 2)
	assert.Equal(t, KindSuccess, n.Kind)
	assert.Equal(t, "2 file(s) attached.", n.Text)
	assert.Len(t, s.Attachments(), 2)
}

func TestAttach_FailureKeepsPriorAttachments(t *testing.T) {
	s := New()
	s.Commit([]model.Attachment{{Name: "keep.txt"}})

	boom := errors.New("unreadable")
	batch, n := s.Attach(context.Background(), fakeReader{err: boom}, []string{"x", "y"})
	assert.Nil(t, batch)
	assert.Equal(t, KindError, n.Kind)
	assert.Equal(t, "Failed to read one or more files.", n.Text)
	assert.ErrorIs(t, n.Err, boom)

	atts := s.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, "keep.txt", atts[0].Name)
}

func TestCommit_EmptyBatch(t *testing.T) {
	n := New().Commit(nil)
	assert.Equal(t, KindWarning, n.Kind)
}

func TestDetach(t *testing.T) {
	s := New()
	s.Commit([]model.Attachment{{Name: "a"}, {Name: "b"}, {Name: "a"}, {Name: "c"}})

	removed, n := s.Detach("a")
	assert.Equal(t, 2, removed)
	assert.Equal(t, `File "a" removed.`, n.Text)

	var names []string
	for _, a := range s.Attachments() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"b", "c"}, names)

	removed, n = s.Detach("zzz")
	assert.Equal(t, 0, removed)
	assert.Equal(t, KindWarning, n.Kind)
}

func TestNotifications(t *testing.T) {
	assert.Equal(t, "1 file(s) attached.", Attached(1).Text)
	assert.True(t, strings.Contains(Changed("cell.txt", false).Text, "changed on disk"))
	assert.True(t, strings.Contains(Changed("cell.txt", true).Text, "moved or deleted"))
}

func TestNew_SessionIdentity(t *testing.T) {
	s := New()
	assert.True(t, strings.HasPrefix(s.ID(), "sess_"))
	assert.False(t, s.StartTime().IsZero())
	assert.NotEqual(t, s.ID(), New().ID())
}
