// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/battery-assistant/internal/llm"
	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/util"
)

// ErrMissingAPIKey is returned when the selected provider has no credential.
var ErrMissingAPIKey = errors.New("no API key configured")

// HomeEnv overrides the configuration directory.
const HomeEnv = "BATTERY_ASSISTANT_HOME"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete battery-assistant configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Provider ProviderConfig `toml:"provider" json:"provider"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
	Chat     ChatConfig     `toml:"chat" json:"chat"`
}

// ProviderConfig selects the generation service.
type ProviderConfig struct {
	// Name is one of gemini, openai, anthropic
	Name string `toml:"name" json:"name"`
	// Model is the model ID; empty uses the provider default
	Model string `toml:"model" json:"model"`
	// APIKey is the static credential for the provider
	APIKey string `toml:"api_key" json:"api_key"`
	// BaseURL overrides the endpoint (OpenAI-compatible and Anthropic)
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSeconds bounds a single call; 0 waits indefinitely
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds"`
	// RequestsPerMinute paces calls; 0 is unlimited
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
	// WordWrap is the markdown wrap width; 0 follows the terminal
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
	// ShowTimestamps shows message times in the transcript
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// WatchAttachments notifies when attached files change on disk
	WatchAttachments bool `toml:"watch_attachments" json:"watch_attachments"`
}

// LoggingConfig controls the rotating log file.
type LoggingConfig struct {
	Level      string `toml:"level" json:"level"`
	File       string `toml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
	Compress   bool   `toml:"compress" json:"compress"`
}

// ChatConfig contains REPL and export settings.
type ChatConfig struct {
	// HistoryFile stores REPL input history
	HistoryFile string `toml:"history_file" json:"history_file"`
	// ExportDir is where /export writes when no path is given
	ExportDir string `toml:"export_dir" json:"export_dir"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Provider: ProviderConfig{
			Name:  model.DefaultProvider,
			Model: model.DefaultModel,
		},
		UI: UIConfig{
			Theme:            "auto",
			WatchAttachments: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxAgeDays: 14,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".battery-assistant"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the config directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file (TOML first, then JSON), loads .env, applies
// environment overrides and defaults, then validates. A missing file is not
// an error.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	jsonPath, _ := ConfigPathJSON()

	switch {
	case fileExists(tomlPath):
		if err := LoadTOML(cfg, tomlPath); err != nil {
			return nil, err
		}
	case jsonPath != "" && fileExists(jsonPath):
		if err := LoadJSON(cfg, jsonPath); err != nil {
			return nil, err
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from an explicit file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML config %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON config %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg atomically with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# battery-assistant configuration\n")
	buf.WriteString("# API keys may also come from API_KEY / GEMINI_API_KEY or a .env file.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validThemes = map[string]bool{"auto": true, "dark": true, "light": true}

// Validate checks field values. It does not require an API key; see
// RequireCredentials.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !model.IsKnownProvider(c.Provider.Name) {
		errs = append(errs, ValidationError{
			Field:   "provider.name",
			Message: fmt.Sprintf("must be one of %s", strings.Join(model.Providers(), ", ")),
		})
	}
	if c.Provider.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{Field: "provider.timeout_seconds", Message: "must not be negative"})
	}
	if c.Provider.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "provider.requests_per_minute", Message: "must not be negative"})
	}
	if c.Provider.BaseURL != "" && !strings.HasPrefix(c.Provider.BaseURL, "http://") && !strings.HasPrefix(c.Provider.BaseURL, "https://") {
		errs = append(errs, ValidationError{Field: "provider.base_url", Message: "must start with http:// or https://"})
	}
	if c.Provider.BaseURL != "" && c.Provider.Name == model.ProviderGemini {
		errs = append(errs, ValidationError{Field: "provider.base_url", Message: "not supported for gemini"})
	}
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{Field: "ui.theme", Message: "must be auto, dark or light"})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must not be negative"})
	}
	if !validLogLevels[c.Logging.Level] {
		errs = append(errs, ValidationError{Field: "logging.level", Message: "must be debug, info, warn or error"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequireCredentials returns ErrMissingAPIKey when no API key is set.
func (c *Config) RequireCredentials() error {
	if strings.TrimSpace(c.Provider.APIKey) == "" {
		return fmt.Errorf("%w for provider %q: set API_KEY or %s", ErrMissingAPIKey, c.Provider.Name, providerKeyEnv(c.Provider.Name))
	}
	return nil
}

// SetDefaults fills empty fields with defaults and expands a leading ~ in
// file paths.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Provider.Name == "" {
		c.Provider.Name = d.Provider.Name
	}
	c.Provider.Name = strings.ToLower(c.Provider.Name)
	if c.Provider.Model == "" {
		c.Provider.Model = model.DefaultModelFor(c.Provider.Name)
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = d.Logging.MaxSizeMB
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = d.Logging.MaxAgeDays
	}

	c.Chat.ExportDir = util.ExpandHome(c.Chat.ExportDir)
	c.Logging.File = util.ExpandHome(c.Logging.File)
	c.Chat.HistoryFile = util.ExpandHome(c.Chat.HistoryFile)

	dir, err := ConfigDir()
	if err != nil {
		return
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(dir, "logs", "battery-assistant.log")
	}
	if c.Chat.HistoryFile == "" {
		c.Chat.HistoryFile = filepath.Join(dir, "history")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func providerKeyEnv(provider string) string {
	switch provider {
	case model.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case model.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// ApplyEnvOverrides applies environment variables:
//   - BATTERY_ASSISTANT_PROVIDER: provider.name
//   - BATTERY_ASSISTANT_MODEL: provider.model
//   - BATTERY_ASSISTANT_BASE_URL: provider.base_url
//   - BATTERY_ASSISTANT_LOG_LEVEL: logging.level
//   - API_KEY: provider.api_key for any provider
//   - GEMINI_API_KEY / OPENAI_API_KEY / ANTHROPIC_API_KEY: provider.api_key
//     for the matching provider, taking precedence over API_KEY
//
// A provider change drops the file's api_key; it belongs to the old provider.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BATTERY_ASSISTANT_PROVIDER"); v != "" {
		if !strings.EqualFold(v, c.Provider.Name) {
			if c.Provider.Model == model.DefaultModelFor(c.Provider.Name) {
				c.Provider.Model = ""
			}
			c.Provider.APIKey = ""
		}
		c.Provider.Name = strings.ToLower(v)
	}
	if v := os.Getenv("BATTERY_ASSISTANT_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("BATTERY_ASSISTANT_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("BATTERY_ASSISTANT_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := envKey(c.Provider.Name); v != "" {
		c.Provider.APIKey = v
	}
}

// envKey returns the provider-specific key from the environment, falling
// back to API_KEY.
func envKey(provider string) string {
	if v := os.Getenv(providerKeyEnv(strings.ToLower(provider))); v != "" {
		return v
	}
	return os.Getenv("API_KEY")
}

// SwitchProvider selects another provider at runtime. A default model
// follows the provider. The key comes from the environment only, so
// RequireCredentials fails when the new provider has none.
func (c *Config) SwitchProvider(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == c.Provider.Name {
		return
	}
	if c.Provider.Model == "" || c.Provider.Model == model.DefaultModelFor(c.Provider.Name) {
		c.Provider.Model = model.DefaultModelFor(name)
	}
	c.Provider.Name = name
	c.Provider.APIKey = envKey(name)
}

// LLM returns the client configuration for the selected provider.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:          c.Provider.Name,
		Model:             c.Provider.Model,
		APIKey:            c.Provider.APIKey,
		BaseURL:           c.Provider.BaseURL,
		Timeout:           time.Duration(c.Provider.TimeoutSeconds) * time.Second,
		RequestsPerMinute: c.Provider.RequestsPerMinute,
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a value by its TOML key path, e.g. "provider.model".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by TOML key path. String input is converted to the
// field's type.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	v := reflect.ValueOf(c).Elem()
	parts := strings.Split(key, ".")
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setFieldValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %w", err)
			}
			field.SetBool(b)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.IsValid() && val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every settable key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		section := f.Tag.Get("toml")
		if f.Type.Kind() != reflect.Struct {
			keys = append(keys, section)
			continue
		}
		for j := 0; j < f.Type.NumField(); j++ {
			keys = append(keys, section+"."+f.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// String returns the config as TOML with the API key redacted.
func (c *Config) String() string {
	safe := *c
	if safe.Provider.APIKey != "" {
		safe.Provider.APIKey = "[REDACTED]"
	}
	var buf bytes.Buffer
	_ = toml.NewEncoder(&buf).Encode(safe)
	return buf.String()
}

// =============================================================================
// SINGLETON
// =============================================================================

var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// Global returns the process-wide configuration, or defaults if none was set.
func Global() *Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}

// SetGlobal sets the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
