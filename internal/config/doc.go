// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and manages battery-assistant configuration.
//
// # Configuration Precedence
//
// Values are resolved in this order (later wins):
//   - Built-in defaults
//   - ~/.battery-assistant/config.toml (or config.json)
//   - .env in the working directory (only fills unset variables)
//   - Environment variables (API_KEY, GEMINI_API_KEY, BATTERY_ASSISTANT_*)
//   - Command-line flags, applied by the caller
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.RequireCredentials(); err != nil {
//	    return err
//	}
//	client, err := llm.New(ctx, cfg.LLM())
package config
