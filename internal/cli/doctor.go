// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Environment and configuration checks.
//
// Command: doctor
// Short:   Run health checks
// Aliases: diag
//
// Health Checks Performed:
//   1. Config Valid       - Config file parses and validates
//   2. API Key            - A credential is set for the selected provider
//   3. Model Known        - The model is in the built-in catalog
//   4. Log Writable       - The log directory can be written
//   5. Export Writable    - The export directory can be written
//   6. Terminal           - stdout is a terminal for the full-screen UI
//
// Exit Codes:
//   0   No check failed
//   1   One or more checks failed

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jeranaias/battery-assistant/internal/config"
	"github.com/jeranaias/battery-assistant/internal/llm"
	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/ui/styles"
	"github.com/jeranaias/battery-assistant/internal/util"
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	CheckPass CheckStatus = iota
	CheckWarn
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Symbol returns the text indicator for the status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return SuccessStyle.Render(styles.StatusIndicators.Success)
	case CheckWarn:
		return WarningStyle.Render(styles.StatusIndicators.Warning)
	case CheckFail:
		return ErrorStyle.Render(styles.StatusIndicators.Error)
	default:
		return "?"
	}
}

// HealthCheck is a single check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // Suggested fix
}

// Render returns the check as one or two lines.
func (c *HealthCheck) Render() string {
	line := fmt.Sprintf("%s %s", c.Status.Symbol(), c.Message)
	if c.Status != CheckPass && c.Fix != "" {
		line += "\n" + DimStyle.Render("    -> "+c.Fix)
	}
	return line
}

// =============================================================================
// DOCTOR COMMAND
// =============================================================================

// HandleDoctor runs every check and prints a summary.
func HandleDoctor(rt *Runtime, args Args) error {
	checks := RunChecks(rt.config(), args)

	passed, warned, failed := 0, 0, 0
	for _, c := range checks {
		switch c.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	out := rt.out()
	fmt.Fprintln(out, TitleStyle.Render(AppName+" doctor"))
	fmt.Fprintln(out, RenderSeparator(41))
	for _, c := range checks {
		fmt.Fprintln(out, c.Render())
	}
	fmt.Fprintln(out, RenderSeparator(41))

	summary := []string{fmt.Sprintf("%d passed", passed)}
	if warned > 0 {
		summary = append(summary, WarningStyle.Render(fmt.Sprintf("%d warning", warned)))
	}
	if failed > 0 {
		summary = append(summary, ErrorStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintln(out, strings.Join(summary, ", "))

	if failed > 0 {
		return fmt.Errorf("%d health check(s) failed", failed)
	}
	return nil
}

// RunChecks returns the results of every check against cfg.
func RunChecks(cfg *config.Config, args Args) []*HealthCheck {
	return []*HealthCheck{
		checkConfigValid(args),
		checkAPIKey(cfg),
		checkModelKnown(cfg),
		checkDirWritable("Log Writable", "Log directory", filepath.Dir(cfg.Logging.File)),
		checkDirWritable("Export Writable", "Export directory", exportDir(cfg)),
		checkTerminal(),
	}
}

func checkConfigValid(args Args) *HealthCheck {
	check := &HealthCheck{Name: "Config Valid"}

	path, err := configFilePath(args)
	if err != nil {
		check.Status = CheckWarn
		check.Message = "Could not determine config path"
		return check
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		check.Status = CheckPass
		check.Message = "Config valid (using defaults)"
		check.Fix = "Run: " + AppName + " config init"
		return check
	}

	if _, err := config.LoadFromPath(path); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config invalid: %s", err)
		check.Fix = "Run: " + AppName + " config init --force"
		return check
	}
	check.Status = CheckPass
	check.Message = "Config valid: " + path
	return check
}

func checkAPIKey(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{Name: "API Key"}
	if err := cfg.RequireCredentials(); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("No API key for %s", cfg.Provider.Name)
		check.Fix = "Set API_KEY in the environment or .env, or run: " + AppName + " config set provider.api_key <key>"
		return check
	}
	check.Status = CheckPass
	check.Message = fmt.Sprintf("API key set for %s (fingerprint %s)", cfg.Provider.Name, llm.KeyFingerprint(cfg.Provider.APIKey))
	return check
}

func checkModelKnown(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{Name: "Model Known"}
	info, ok := model.GetModelInfo(cfg.Provider.Model)
	switch {
	case !ok:
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Model %q is not in the built-in list; it will be sent as is", cfg.Provider.Model)
		check.Fix = "Run: " + AppName + " models"
	case info.Provider != cfg.Provider.Name:
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Model %q belongs to %s, not %s", info.ID, info.Provider, cfg.Provider.Name)
		check.Fix = "Run: " + AppName + " config set provider.model " + model.DefaultModelFor(cfg.Provider.Name)
	default:
		check.Status = CheckPass
		check.Message = fmt.Sprintf("Model %s (%s)", info.Name, info.ContextString())
	}
	return check
}

func checkDirWritable(name, label, dir string) *HealthCheck {
	check := &HealthCheck{Name: name}
	if dir == "" {
		check.Status = CheckWarn
		check.Message = label + " not configured"
		return check
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("%s cannot be created: %s", label, err)
		check.Fix = "Check permissions on " + dir
		return check
	}

	probe := filepath.Join(dir, ".write_test")
	if err := util.AtomicWriteFile(probe, []byte("ok"), 0o600); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("%s not writable: %s", label, err)
		check.Fix = "Check permissions on " + dir
		return check
	}
	_ = os.Remove(probe)

	check.Status = CheckPass
	check.Message = label + " writable: " + dir
	return check
}

func checkTerminal() *HealthCheck {
	check := &HealthCheck{Name: "Terminal"}
	if !IsStdoutTTY() {
		check.Status = CheckWarn
		check.Message = "stdout is not a terminal; the full-screen UI needs one"
		check.Fix = "Use '" + AppName + " ask' or '" + AppName + " chat' in scripts"
		return check
	}

	profile := "no color"
	switch termenv.ColorProfile() {
	case termenv.TrueColor:
		profile = "true color"
	case termenv.ANSI256:
		profile = "256 colors"
	case termenv.ANSI:
		profile = "16 colors"
	}
	check.Status = CheckPass
	check.Message = fmt.Sprintf("Terminal %d cols, %s", GetTerminalWidth(), profile)
	return check
}

func exportDir(cfg *config.Config) string {
	if cfg.Chat.ExportDir != "" {
		return util.ExpandHome(cfg.Chat.ExportDir)
	}
	return "."
}
