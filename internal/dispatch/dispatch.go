// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch sends one query, with the attached documents, to the
// generation service and reduces the outcome to a Result. Dispatch never
// returns an error and never panics.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/battery-assistant/internal/llm"
	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/prompt"
)

// credentialMarker appears in provider messages about bad or missing keys.
const credentialMarker = "api key"

// Dispatcher issues generation calls.
type Dispatcher struct {
	gen    llm.Generator
	model  string
	system string
	logger *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for per-call records.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithModel pins the model ID sent with each request.
func WithModel(id string) Option {
	return func(d *Dispatcher) { d.model = id }
}

// WithSystemInstruction replaces the default system instruction.
func WithSystemInstruction(s string) Option {
	return func(d *Dispatcher) { d.system = s }
}

// New creates a Dispatcher around gen.
func New(gen llm.Generator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		gen:    gen,
		system: prompt.SystemInstruction,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch builds the prompt for query and attachments, performs exactly one
// generation call and returns its Result.
func (d *Dispatcher) Dispatch(ctx context.Context, query string, attachments []model.Attachment) (res Result) {
	start := time.Now()
	p := prompt.Build(query, attachments)

	defer func() {
		if r := recover(); r != nil {
			res = Err(KindFailure, fmt.Sprint(r))
			d.logger.Error("generation panicked", zap.Any("panic", r))
		}
		d.logger.Info("dispatch",
			zap.String("model", d.modelLabel()),
			zap.Int("prompt_len", len(p)),
			zap.Int("attachments", len(attachments)),
			zap.Duration("latency", time.Since(start)),
			zap.Stringer("outcome", res.Kind),
		)
	}()

	if d.gen == nil {
		return Classify(llm.ErrNotConfigured)
	}

	text, err := d.gen.Generate(ctx, llm.Request{
		Model:             d.model,
		Prompt:            p,
		SystemInstruction: d.system,
	})
	if err != nil {
		d.logger.Warn("generation failed", zap.Error(err))
		return Classify(err)
	}

	if strings.TrimSpace(text) == "" {
		return OK(EmptyReplyText)
	}
	return OK(text)
}

// Classify converts a generation error into a failed Result.
func Classify(err error) Result {
	if err == nil {
		return Err(KindFailure, "")
	}
	msg := err.Error()
	res := Err(KindFailure, msg)
	if llm.IsCredentialError(err) || strings.Contains(strings.ToLower(msg), credentialMarker) {
		res.Kind = KindCredentials
	}
	res.Cause = err
	return res
}

func (d *Dispatcher) modelLabel() string {
	if d.model != "" {
		return d.model
	}
	if desc, ok := d.gen.(llm.Describer); ok {
		return desc.Provider() + "/" + desc.Model()
	}
	return "default"
}
