// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/battery-assistant/internal/llm"
	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/prompt"
)

type fakeGenerator struct {
	reply   string
	err     error
	panicV  any
	calls   int
	lastReq llm.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.lastReq = req
	if f.panicV != nil {
		panic(f.panicV)
	}
	return f.reply, f.err
}

func TestDispatch_Success(t *testing.T) {
	gen := &fakeGenerator{reply: "## LFP\n- long cycle life"}
	d := New(gen, WithModel("gemini-2.5-flash"))

	atts := []model.Attachment{{Name: "a.txt", Content: "X"}}
	res := d.Dispatch(context.Background(), "Summarize", atts)

	require.True(t, res.IsOK())
	assert.Equal(t, "## LFP\n- long cycle life", res.Display())
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, prompt.Build("Summarize", atts), gen.lastReq.Prompt)
	assert.Equal(t, prompt.SystemInstruction, gen.lastReq.SystemInstruction)
	assert.Equal(t, "gemini-2.5-flash", gen.lastReq.Model)
}

func TestDispatch_EmptyReplyUsesPlaceholder(t *testing.T) {
	for _, reply := range []string{"", "   \n\t"} {
		res := New(&fakeGenerator{reply: reply}).Dispatch(context.Background(), "q", nil)
		assert.True(t, res.IsOK())
		assert.Equal(t, EmptyReplyText, res.Display())
	}
}

func TestDispatch_ErrorsNeverPropagate(t *testing.T) {
	tests := []struct {
		name     string
		gen      *fakeGenerator
		wantKind Kind
		want     string
	}{
		{
			name:     "api key in message",
			gen:      &fakeGenerator{err: errors.New("googleapi: Error 400: API key not valid. Please pass a valid API key.")},
			wantKind: KindCredentials,
			want:     CredentialsText,
		},
		{
			name:     "typed auth failure",
			gen:      &fakeGenerator{err: fmt.Errorf("wrapped: %w", llm.ErrAuthFailed)},
			wantKind: KindCredentials,
			want:     CredentialsText,
		},
		{
			name:     "generic failure",
			gen:      &fakeGenerator{err: errors.New("503 overloaded")},
			wantKind: KindFailure,
			want:     FailurePrefix + "503 overloaded",
		},
		{
			name:     "panic recovered",
			gen:      &fakeGenerator{panicV: "nil map"},
			wantKind: KindFailure,
			want:     FailurePrefix + "nil map",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var res Result
			require.NotPanics(t, func() {
				res = New(tc.gen).Dispatch(context.Background(), "q", nil)
			})
			assert.Equal(t, tc.wantKind, res.Kind)
			assert.Equal(t, tc.want, res.Display())
			assert.Equal(t, 1, tc.gen.calls)
		})
	}
}

func TestDispatch_NilGenerator(t *testing.T) {
	res := New(nil).Dispatch(context.Background(), "q", nil)
	assert.Equal(t, KindCredentials, res.Kind)
	assert.ErrorIs(t, res.Cause, llm.ErrNotConfigured)
}

func TestClassify_KeepsCause(t *testing.T) {
	timeout := fmt.Errorf("gemini generate: %w", context.DeadlineExceeded)
	res := Classify(timeout)
	assert.Equal(t, KindFailure, res.Kind)
	assert.ErrorIs(t, res.Cause, context.DeadlineExceeded)
	assert.NotContains(t, res.Display(), "%!")

	auth := fmt.Errorf("openai: %w", llm.ErrAuthFailed)
	res = New(&fakeGenerator{err: auth}).Dispatch(context.Background(), "q", nil)
	assert.Equal(t, KindCredentials, res.Kind)
	assert.ErrorIs(t, res.Cause, llm.ErrAuthFailed)
	assert.Equal(t, CredentialsText, res.Display())

	assert.NoError(t, OK("fine").Cause)
}

func TestDispatch_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	d := New(&fakeGenerator{reply: "ok"}, WithLogger(zap.New(core)), WithSystemInstruction("sys"))

	d.Dispatch(context.Background(), "q", []model.Attachment{{Name: "a", Content: "b"}})

	entries := logs.FilterMessage("dispatch").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ok", fields["outcome"])
	assert.EqualValues(t, 1, fields["attachments"])
}

func TestResult_Display(t *testing.T) {
	assert.Equal(t, UnknownErrorText, Err(KindFailure, "").Display())
	assert.Equal(t, UnknownErrorText, Classify(nil).Display())
	assert.Equal(t, "credentials", KindCredentials.String())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, UnavailableText, Err(KindUnavailable, "boom").Display())
	assert.Equal(t, "unavailable", KindUnavailable.String())
}
