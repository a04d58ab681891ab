// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides clients for the hosted generation services.
//
// Every provider implements Generator: one prompt plus a system instruction
// in, one reply text out. Gemini is the default provider; OpenAI-compatible
// endpoints and Anthropic are available through configuration.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/battery-assistant/internal/model"
)

// Request is a single generation call.
type Request struct {
	// Model overrides the client's default model when set.
	Model string

	// Prompt is the user-facing instruction, documents included.
	Prompt string

	// SystemInstruction is sent separately from the prompt.
	SystemInstruction string
}

// Generator issues one generation call and returns the reply text.
// An empty reply is returned as "" with a nil error.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Describer is implemented by generators that can name their backend.
type Describer interface {
	Provider() string
	Model() string
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string

	// BaseURL overrides the provider endpoint (OpenAI-compatible and
	// Anthropic only).
	BaseURL string

	// Timeout bounds a single call. Zero means no timeout.
	Timeout time.Duration

	// RequestsPerMinute paces outgoing calls. Zero means unlimited.
	RequestsPerMinute int
}

// Client is a configured generator together with the resources it owns.
type Client struct {
	Generator
	provider string
	model    string
	closer   func() error
}

// Provider returns the provider name.
func (c *Client) Provider() string { return c.provider }

// Model returns the default model ID.
func (c *Client) Model() string { return c.model }

// Close releases provider resources.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// New builds the client selected by cfg.
func New(ctx context.Context, cfg Config) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = model.DefaultProvider
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrNotConfigured)
	}

	modelID := cfg.Model
	if modelID == "" {
		modelID = model.DefaultModelFor(provider)
	}

	var (
		gen    Generator
		closer func() error
	)
	switch provider {
	case model.ProviderGemini:
		g, err := NewGeminiClient(ctx, cfg.APIKey, modelID)
		if err != nil {
			return nil, err
		}
		gen, closer = g, g.Close
	case model.ProviderOpenAI:
		gen = NewOpenAIClient(cfg.APIKey, cfg.BaseURL, modelID)
	case model.ProviderAnthropic:
		gen = NewAnthropicClient(cfg.APIKey, cfg.BaseURL, modelID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.Timeout > 0 {
		gen = WithTimeout(gen, cfg.Timeout)
	}
	if cfg.RequestsPerMinute > 0 {
		gen = NewRateLimited(gen, cfg.RequestsPerMinute)
	}

	return &Client{Generator: gen, provider: provider, model: modelID, closer: closer}, nil
}

// =============================================================================
// WRAPPERS
// =============================================================================

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every call made through g. A call cut off by the
// deadline returns an error matching context.DeadlineExceeded even when the
// provider SDK reports it in its own terms.
func WithTimeout(g Generator, timeout time.Duration) Generator {
	return &timeoutGenerator{next: g, timeout: timeout}
}

func (t *timeoutGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	text, err := t.next.Generate(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", err, context.DeadlineExceeded)
	}
	return text, err
}

// =============================================================================
// KEY DISPLAY
// =============================================================================

// MaskKey returns a display form of an API key that never includes any part
// of the key itself.
func MaskKey(key string) string {
	if key == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(key), KeyFingerprint(key))
}

// KeyFingerprint returns a short hash of the key for log correlation.
func KeyFingerprint(key string) string {
	if key == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:4])
}
