// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// PROVIDERS
// =============================================================================

// Provider names accepted in configuration.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultProvider is used when nothing is configured.
const DefaultProvider = ProviderGemini

// DefaultModel is the generation model used by the default provider.
const DefaultModel = "gemini-2.5-flash"

// Providers lists every supported provider name.
func Providers() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
}

// IsKnownProvider reports whether name is a supported provider.
func IsKnownProvider(name string) bool {
	for _, p := range Providers() {
		if p == name {
			return true
		}
	}
	return false
}

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes a generation model offered by a provider.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Provider is one of the Provider* constants
	Provider string `json:"provider"`

	// MaxTokens is the context window size
	MaxTokens int `json:"max_tokens"`

	// Description is a brief note shown in `config show`
	Description string `json:"description"`
}

// ContextString returns a formatted context window string.
func (m ModelInfo) ContextString() string {
	if m.MaxTokens >= 1000000 {
		return fmt.Sprintf("%.1fM tokens", float64(m.MaxTokens)/1000000)
	}
	if m.MaxTokens >= 1000 {
		return fmt.Sprintf("%dK tokens", m.MaxTokens/1000)
	}
	return fmt.Sprintf("%d tokens", m.MaxTokens)
}

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// Models is the catalog of well-known models. Other model IDs are still
// accepted; the catalog only drives defaults and display.
var Models = []ModelInfo{
	{
		ID:          "gemini-2.5-flash",
		Name:        "Gemini 2.5 Flash",
		Provider:    ProviderGemini,
		MaxTokens:   1048576,
		Description: "Fast default model for document Q&A",
	},
	{
		ID:          "gemini-2.5-pro",
		Name:        "Gemini 2.5 Pro",
		Provider:    ProviderGemini,
		MaxTokens:   1048576,
		Description: "Slower, stronger reasoning over long papers",
	},
	{
		ID:          "gpt-4o-mini",
		Name:        "GPT-4o Mini",
		Provider:    ProviderOpenAI,
		MaxTokens:   128000,
		Description: "Default for OpenAI-compatible endpoints",
	},
	{
		ID:          "gpt-4o",
		Name:        "GPT-4o",
		Provider:    ProviderOpenAI,
		MaxTokens:   128000,
		Description: "General purpose OpenAI model",
	},
	{
		ID:          "claude-3-5-haiku-latest",
		Name:        "Claude 3.5 Haiku",
		Provider:    ProviderAnthropic,
		MaxTokens:   200000,
		Description: "Default Anthropic model",
	},
	{
		ID:          "claude-sonnet-4-5",
		Name:        "Claude Sonnet 4.5",
		Provider:    ProviderAnthropic,
		MaxTokens:   200000,
		Description: "Larger Anthropic model",
	},
}

// DefaultModelFor returns the default model ID for a provider, or "" if the
// provider is unknown.
func DefaultModelFor(provider string) string {
	for _, m := range Models {
		if m.Provider == provider {
			return m.ID
		}
	}
	return ""
}

// GetModelInfo looks up a model by ID (case-insensitive).
func GetModelInfo(id string) (ModelInfo, bool) {
	for _, m := range Models {
		if strings.EqualFold(m.ID, id) {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// ModelsByProvider returns the catalog entries for a provider sorted by ID.
func ModelsByProvider(provider string) []ModelInfo {
	var out []ModelInfo
	for _, m := range Models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
