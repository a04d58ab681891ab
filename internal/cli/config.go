// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command.
//
// Command: config [subcommand]
// Short:   Manage the configuration file
// Aliases: cfg
//
// Subcommands:
//   show (default)      Print the effective configuration, key redacted
//   path                Print the config file path
//   init [--force]      Write a default config file
//   get <key>           Print one effective value
//   set <key> <value>   Change one value in the file
//
// Examples:
//   battery-assistant config init
//   battery-assistant config set provider.name openai
//   battery-assistant config get provider.model

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/battery-assistant/internal/config"
	"github.com/jeranaias/battery-assistant/internal/llm"
	"github.com/jeranaias/battery-assistant/internal/model"
)

// HandleConfig runs a config subcommand.
func HandleConfig(rt *Runtime, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(rt, args)
	case "path":
		path, err := configFilePath(args)
		if err != nil {
			return NewCommandError("config", "path", "could not determine config path", err)
		}
		fmt.Fprintln(rt.out(), path)
		return nil
	case "init":
		return handleConfigInit(rt, args)
	case "get":
		return handleConfigGet(rt, args.ConfigKey)
	case "set":
		return handleConfigSet(rt, args)
	default:
		return NewValidationError("subcommand", args.Subcommand, "expected show, path, init, get or set")
	}
}

// configFilePath returns --config or the default TOML path.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func handleConfigShow(rt *Runtime, args Args) error {
	cfg := rt.config()
	out := rt.out()

	path, _ := configFilePath(args)
	source := "defaults (no file)"
	if _, err := os.Stat(path); err == nil {
		source = path
	}

	fmt.Fprintf(out, "%s%s\n", RenderLabel("Config file"), ValueStyle.Render(source))
	key := "not set"
	if cfg.Provider.APIKey != "" {
		key = llm.MaskKey(cfg.Provider.APIKey)
	}
	fmt.Fprintf(out, "%s%s\n", RenderLabel("API key"), ValueStyle.Render(key))
	fmt.Fprintln(out, RenderSeparator())
	fmt.Fprint(out, cfg.String())
	return nil
}

func handleConfigInit(rt *Runtime, args Args) error {
	path, err := configFilePath(args)
	if err != nil {
		return NewCommandError("config", "init", "could not determine config path", err)
	}
	if _, err := os.Stat(path); err == nil && !args.Force {
		return NewCommandError("config", "init", "file already exists (use --force to overwrite)", fs.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return NewCommandError("config", "init", "could not create config directory", err)
	}

	cfg := config.Default()
	cfg.SetDefaults()
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "init", "could not write config", err)
	}
	fmt.Fprintf(rt.out(), "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

func handleConfigGet(rt *Runtime, key string) error {
	v, err := rt.config().Get(key)
	if err != nil {
		return NewValidationErrorWithExample("key", key, err.Error(), "one of: "+strings.Join(config.Keys(), ", "))
	}
	switch val := v.(type) {
	case config.ProviderConfig:
		if val.APIKey != "" {
			val.APIKey = llm.MaskKey(val.APIKey)
		}
		v = val
	case string:
		if key == "provider.api_key" && val != "" {
			v = llm.MaskKey(val)
		}
	}
	fmt.Fprintf(rt.out(), "%+v\n", v)
	return nil
}

// handleConfigSet edits the file itself, so values that came from the
// environment are never written back.
func handleConfigSet(rt *Runtime, args Args) error {
	path, err := configFilePath(args)
	if err != nil {
		return NewCommandError("config", "set", "could not determine config path", err)
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return NewCommandError("config", "set", "could not read config", err)
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return NewCommandError("config", "set", "could not read config", statErr)
	}

	oldProvider := cfg.Provider.Name
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewValidationErrorWithExample("key", args.ConfigKey, err.Error(), "one of: "+strings.Join(config.Keys(), ", "))
	}
	if args.ConfigKey == "provider.name" {
		cfg.Provider.Name = strings.ToLower(cfg.Provider.Name)
		// A default model follows the provider.
		if cfg.Provider.Model == "" || cfg.Provider.Model == model.DefaultModelFor(oldProvider) {
			cfg.Provider.Model = model.DefaultModelFor(cfg.Provider.Name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return NewValidationError(args.ConfigKey, args.ConfigVal, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return NewCommandError("config", "set", "could not create config directory", err)
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "set", "could not write config", err)
	}

	shown := args.ConfigVal
	if args.ConfigKey == "provider.api_key" {
		shown = llm.MaskKey(shown)
	}
	fmt.Fprintf(rt.out(), "%s %s = %s\n", SuccessStyle.Render("[OK]"), args.ConfigKey, shown)
	return nil
}
