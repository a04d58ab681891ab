// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/battery-assistant/internal/config"
	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/ingest"
	"github.com/jeranaias/battery-assistant/internal/llm"
	"github.com/jeranaias/battery-assistant/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeDispatcher struct {
	result    dispatch.Result
	lastQuery string
	lastAtts  []model.Attachment
	calls     int
}

func (f *fakeDispatcher) Dispatch(_ context.Context, query string, atts []model.Attachment) dispatch.Result {
	f.calls++
	f.lastQuery = query
	f.lastAtts = atts
	return f.result
}

type fakeReader struct {
	batch []model.Attachment
	err   error
}

func (f fakeReader) ReadFiles(context.Context, []string) ([]model.Attachment, error) {
	return f.batch, f.err
}

func newTestRuntime(d *fakeDispatcher) (*Runtime, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cfg := config.Default()
	cfg.SetDefaults()
	rt := &Runtime{
		Config: cfg,
		Out:    &out,
		Err:    &errOut,
	}
	if d != nil {
		rt.Dispatcher = d
	}
	return rt, &out, &errOut
}

// =============================================================================
// PARSE
// =============================================================================

func TestParse_DefaultsToTUI(t *testing.T) {
	cmd, args, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, CmdTUI, cmd)
	assert.Empty(t, args.Query)
}

func TestParse_GlobalFlagsAnywhere(t *testing.T) {
	cmd, args, err := Parse([]string{"--provider", "OpenAI", "chat", "--model=gpt-4o", "--no-color", "-v", "--config", "/tmp/c.toml"})
	require.NoError(t, err)
	assert.Equal(t, CmdChat, cmd)
	assert.Equal(t, "openai", args.Provider)
	assert.Equal(t, "gpt-4o", args.Model)
	assert.Equal(t, "/tmp/c.toml", args.ConfigPath)
	assert.True(t, args.NoColor)
	assert.True(t, args.Verbose)
}

func TestParse_GlobalFlagMissingValue(t *testing.T) {
	_, _, err := Parse([]string{"--model"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "--model", ve.Field)
}

func TestParse_AskWithFiles(t *testing.T) {
	cmd, args, err := Parse([]string{"a", "Compare", "-f", "a.txt", "these", "--file=b.md"})
	require.NoError(t, err)
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "Compare these", args.Query)
	assert.Equal(t, []string{"a.txt", "b.md"}, args.Files)
}

func TestParse_AskNeedsQuestion(t *testing.T) {
	cmd, _, err := Parse([]string{"ask", "-f", "a.txt"})
	assert.Equal(t, CmdAsk, cmd)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "question", ve.Field)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestParse_ConfigSubcommands(t *testing.T) {
	tests := []struct {
		argv    []string
		sub     string
		key     string
		val     string
		force   bool
		wantErr bool
	}{
		{argv: []string{"config"}, sub: ""},
		{argv: []string{"cfg", "show"}, sub: "show"},
		{argv: []string{"config", "init", "--force"}, sub: "init", force: true},
		{argv: []string{"config", "get", "provider.model"}, sub: "get", key: "provider.model"},
		{argv: []string{"config", "set", "ui.theme", "dark"}, sub: "set", key: "ui.theme", val: "dark"},
		{argv: []string{"config", "set", "provider.base_url", "https://a", "b"}, sub: "set", key: "provider.base_url", val: "https://a b"},
		{argv: []string{"config", "get"}, sub: "get", wantErr: true},
		{argv: []string{"config", "set", "ui.theme"}, sub: "set", key: "ui.theme", wantErr: true},
		{argv: []string{"config", "bogus"}, sub: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.argv, " "), func(t *testing.T) {
			cmd, args, err := Parse(tt.argv)
			assert.Equal(t, CmdConfig, cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sub, args.Subcommand)
			assert.Equal(t, tt.key, args.ConfigKey)
			assert.Equal(t, tt.val, args.ConfigVal)
			assert.Equal(t, tt.force, args.Force)
		})
	}
}

func TestParse_Aliases(t *testing.T) {
	tests := map[string]Command{
		"tui":       CmdTUI,
		"repl":      CmdChat,
		"diag":      CmdDoctor,
		"models":    CmdModels,
		"--version": CmdVersion,
		"-h":        CmdHelp,
	}
	for arg, want := range tests {
		cmd, _, err := Parse([]string{arg})
		require.NoError(t, err, arg)
		assert.Equal(t, want, cmd, arg)
	}
}

func TestParse_UnknownCommand(t *testing.T) {
	cmd, _, err := Parse([]string{"frobnicate"})
	assert.Equal(t, CmdHelp, cmd)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "frobnicate", ve.Value)
}

func TestCommand_NeedsDispatcher(t *testing.T) {
	assert.True(t, CmdTUI.NeedsDispatcher())
	assert.True(t, CmdAsk.NeedsDispatcher())
	assert.True(t, CmdChat.NeedsDispatcher())
	assert.False(t, CmdConfig.NeedsDispatcher())
	assert.False(t, CmdDoctor.NeedsDispatcher())
}

func TestPrintUsageAndVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	assert.Contains(t, buf.String(), "battery-assistant ask")
	assert.Contains(t, buf.String(), Version)

	buf.Reset()
	PrintVersion(&buf)
	assert.Contains(t, buf.String(), AppName+" version "+Version)
}

// =============================================================================
// ARG PARSER
// =============================================================================

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"set", "-f", "a", "--force", "--name=x", "--", "--literal"}, "force")

	assert.Equal(t, "set", p.Subcommand())
	assert.Equal(t, "a", p.Flag("f"))
	assert.Equal(t, "x", p.Flag("name"))
	assert.True(t, p.BoolFlag("force"))
	assert.False(t, p.BoolFlag("missing"))
	assert.Equal(t, []string{"set", "--literal"}, p.PositionalFrom(0))
	assert.Equal(t, 2, p.PositionalCount())
	assert.Equal(t, "", p.Positional(5))
	assert.Nil(t, p.PositionalFrom(5))
	assert.Len(t, p.Raw(), 7)
}

func TestArgParser_TrailingFlagIsBool(t *testing.T) {
	p := NewArgParser([]string{"query", "--verbose"})
	assert.True(t, p.BoolFlag("verbose"))
	assert.Equal(t, "", p.Flag("verbose"))
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("x"), ExitGeneralError},
		{"validation", NewValidationError("f", "v", "bad"), ExitUsageError},
		{"read error", &ingest.ReadError{Path: "a.txt", Err: ingest.ErrEmptyFile}, ExitFileError},
		{"wrapped read error", NewCommandError("ask", "attach", "x", &ingest.ReadError{Path: "a", Err: os.ErrNotExist}), ExitFileError},
		{"missing key", fmt.Errorf("load: %w", config.ErrMissingAPIKey), ExitConfigError},
		{"invalid config", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}, ExitConfigError},
		{"auth", llm.ErrAuthFailed, ExitAuthError},
		{"timeout", context.DeadlineExceeded, ExitTimeoutError},
		{"reply failed", ErrReplyFailed, ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, ErrReplyFailed)
	assert.Empty(t, buf.String())

	DisplayError(&buf, config.ErrMissingAPIKey)
	assert.Contains(t, buf.String(), "[ERROR]")
	assert.Contains(t, buf.String(), "API_KEY")
}

// =============================================================================
// ASK
// =============================================================================

func TestHandleAsk_PrintsReply(t *testing.T) {
	d := &fakeDispatcher{result: dispatch.OK("LFP trades energy density for cycle life.\n")}
	rt, out, _ := newTestRuntime(d)
	rt.Reader = fakeReader{batch: []model.Attachment{{Name: "report.txt", Content: "data", Size: 4}}}

	err := HandleAsk(context.Background(), rt, Args{Query: "Compare LFP and NMC", Files: []string{"report.txt"}})
	require.NoError(t, err)

	assert.Equal(t, 1, d.calls)
	assert.Equal(t, "Compare LFP and NMC", d.lastQuery)
	require.Len(t, d.lastAtts, 1)
	assert.Equal(t, "report.txt", d.lastAtts[0].Name)
	assert.Equal(t, "LFP trades energy density for cycle life.\n", out.String())
}

func TestHandleAsk_ErrorReply(t *testing.T) {
	d := &fakeDispatcher{result: dispatch.Err(dispatch.KindCredentials, "401")}
	rt, out, errOut := newTestRuntime(d)

	err := HandleAsk(context.Background(), rt, Args{Query: "hi"})
	assert.ErrorIs(t, err, ErrReplyFailed)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), dispatch.CredentialsText)

	var buf bytes.Buffer
	DisplayError(&buf, err)
	assert.Empty(t, buf.String())
}

func TestHandleAsk_ExitCodeFollowsReply(t *testing.T) {
	tests := []struct {
		name   string
		result dispatch.Result
		want   int
	}{
		{"rejected key", dispatch.Classify(fmt.Errorf("openai: %w", llm.ErrAuthFailed)), ExitAuthError},
		{"key in message", dispatch.Classify(errors.New("API key not valid")), ExitAuthError},
		{"not configured", dispatch.Classify(llm.ErrNotConfigured), ExitAuthError},
		{"timeout", dispatch.Classify(fmt.Errorf("gemini generate: %w", context.DeadlineExceeded)), ExitTimeoutError},
		{"rate limited", dispatch.Classify(llm.ErrRateLimited), ExitGeneralError},
		{"generic failure", dispatch.Classify(errors.New("503 overloaded")), ExitGeneralError},
		{"failure without cause", dispatch.Err(dispatch.KindFailure, "boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, _, _ := newTestRuntime(&fakeDispatcher{result: tt.result})
			err := HandleAsk(context.Background(), rt, Args{Query: "hi"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrReplyFailed)
			assert.Equal(t, tt.want, GetExitCode(err))
		})
	}
}

func TestHandleAsk_NoDispatcher(t *testing.T) {
	rt, out, errOut := newTestRuntime(nil)

	err := HandleAsk(context.Background(), rt, Args{Query: "hi"})
	assert.ErrorIs(t, err, ErrReplyFailed)
	assert.Equal(t, ExitGeneralError, GetExitCode(err))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), dispatch.UnavailableText)
}

func TestHandleAsk_AttachFailureStopsBeforeDispatch(t *testing.T) {
	d := &fakeDispatcher{result: dispatch.OK("unused")}
	rt, _, _ := newTestRuntime(d)
	rt.Reader = fakeReader{err: &ingest.ReadError{Path: "empty.txt", Err: ingest.ErrEmptyFile}}

	err := HandleAsk(context.Background(), rt, Args{Query: "hi", Files: []string{"empty.txt"}})
	require.Error(t, err)
	assert.Equal(t, 0, d.calls)
	assert.Equal(t, ExitFileError, GetExitCode(err))
}

func TestHandleAsk_ReadsRealFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cells.md")
	require.NoError(t, os.WriteFile(path, []byte("# Cells\n18650 and 21700"), 0o600))

	d := &fakeDispatcher{result: dispatch.OK("ok")}
	rt, _, errOut := newTestRuntime(d)

	require.NoError(t, HandleAsk(context.Background(), rt, Args{Query: "formats?", Files: []string{path}}))
	require.Len(t, d.lastAtts, 1)
	assert.Equal(t, "cells.md", d.lastAtts[0].Name)
	assert.Contains(t, d.lastAtts[0].Content, "21700")
	assert.Contains(t, errOut.String(), "cells.md")
}

// =============================================================================
// CHAT REPL
// =============================================================================

func TestREPL_QueryAndCommands(t *testing.T) {
	ctx := context.Background()
	d := &fakeDispatcher{result: dispatch.OK("Solid-state cells use a solid electrolyte.")}
	rt, out, errOut := newTestRuntime(d)
	rt.Reader = fakeReader{batch: []model.Attachment{
		{Name: "a.txt", Content: "alpha", Size: 5},
		{Name: "b.txt", Content: "beta", Size: 4},
	}}
	r := newREPL(rt)

	assert.False(t, r.handleLine(ctx, "/attach a.txt b.txt"))
	assert.Contains(t, errOut.String(), "2 file(s) attached.")

	out.Reset()
	assert.False(t, r.handleLine(ctx, "/files"))
	assert.Contains(t, out.String(), "a.txt")
	assert.Contains(t, out.String(), "b.txt")

	assert.False(t, r.handleLine(ctx, "/remove a.txt"))
	require.Len(t, r.sess.Attachments(), 1)
	assert.Equal(t, "b.txt", r.sess.Attachments()[0].Name)

	out.Reset()
	assert.False(t, r.handleLine(ctx, "What is a solid-state battery?"))
	assert.Contains(t, out.String(), "Battery AI")
	assert.Contains(t, out.String(), "solid electrolyte")
	assert.Equal(t, 2, r.sess.Len())
	require.Len(t, d.lastAtts, 1)

	assert.False(t, r.handleLine(ctx, "   "))
	assert.Equal(t, 1, d.calls)

	assert.True(t, r.handleLine(ctx, "/quit"))
}

func TestREPL_UnknownCommand(t *testing.T) {
	rt, _, errOut := newTestRuntime(&fakeDispatcher{})
	r := newREPL(rt)

	assert.False(t, r.handleLine(context.Background(), "/nope"))
	assert.Contains(t, errOut.String(), "[ERROR]")
}

func TestREPL_ErrorReplyGoesToStderr(t *testing.T) {
	d := &fakeDispatcher{result: dispatch.Err(dispatch.KindFailure, "quota exceeded")}
	rt, out, errOut := newTestRuntime(d)
	r := newREPL(rt)

	r.handleLine(context.Background(), "hello")
	assert.NotContains(t, out.String(), "Battery AI")
	assert.Contains(t, errOut.String(), "quota exceeded")
}

func TestREPL_Export(t *testing.T) {
	dir := t.TempDir()
	rt, out, _ := newTestRuntime(&fakeDispatcher{result: dispatch.OK("**Answer**")})
	rt.Config.Chat.ExportDir = dir
	r := newREPL(rt)

	r.handleLine(context.Background(), "question")
	out.Reset()
	r.handleLine(context.Background(), "/export json")
	assert.Contains(t, out.String(), "Exported to")

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "question")
}

func TestREPL_ExportEmptyConversation(t *testing.T) {
	rt, _, errOut := newTestRuntime(&fakeDispatcher{})
	rt.Config.Chat.ExportDir = t.TempDir()
	r := newREPL(rt)

	r.handleLine(context.Background(), "/export")
	assert.Contains(t, errOut.String(), "Export failed")
}

func TestREPL_RunScanner(t *testing.T) {
	d := &fakeDispatcher{result: dispatch.OK("ok")}
	rt, _, _ := newTestRuntime(d)
	r := newREPL(rt)

	src := strings.NewReader("first\n/quit\nnever sent\n")
	require.NoError(t, r.runScanner(context.Background(), src))
	assert.Equal(t, 1, d.calls)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestHandleConfig_InitSetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	rt, out, _ := newTestRuntime(nil)
	args := Args{ConfigPath: path}

	args.Subcommand = "init"
	require.NoError(t, HandleConfig(rt, args))
	assert.FileExists(t, path)

	err := HandleConfig(rt, args)
	require.Error(t, err)

	args.Force = true
	require.NoError(t, HandleConfig(rt, args))

	args.Subcommand = "set"
	args.ConfigKey, args.ConfigVal = "provider.name", "openai"
	require.NoError(t, HandleConfig(rt, args))

	cfg := config.Default()
	require.NoError(t, config.LoadTOML(cfg, path))
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, model.DefaultModelFor("openai"), cfg.Provider.Model)

	args.ConfigKey, args.ConfigVal = "ui.theme", "purple"
	var ve *ValidationError
	require.ErrorAs(t, HandleConfig(rt, args), &ve)

	args.ConfigKey, args.ConfigVal = "provider.api_key", "sk-secret-value"
	out.Reset()
	require.NoError(t, HandleConfig(rt, args))
	assert.NotContains(t, out.String(), "sk-secret-value")

	rt.Config.Provider.APIKey = "sk-secret-value"
	out.Reset()
	require.NoError(t, HandleConfig(rt, Args{Subcommand: "get", ConfigKey: "provider"}))
	assert.NotContains(t, out.String(), "sk-secret-value")
	assert.Contains(t, out.String(), "REDACTED")

	out.Reset()
	require.NoError(t, HandleConfig(rt, Args{Subcommand: "get", ConfigKey: "ui.word_wrap"}))
	assert.Equal(t, "0\n", out.String())

	require.ErrorAs(t, HandleConfig(rt, Args{Subcommand: "get", ConfigKey: "nope"}), &ve)
}

func TestHandleConfig_ShowAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	rt, out, _ := newTestRuntime(nil)
	rt.Config.Provider.APIKey = "sk-abcdef"

	require.NoError(t, HandleConfig(rt, Args{ConfigPath: path, Subcommand: "path"}))
	assert.Equal(t, path+"\n", out.String())

	out.Reset()
	require.NoError(t, HandleConfig(rt, Args{ConfigPath: path}))
	assert.Contains(t, out.String(), "defaults (no file)")
	assert.NotContains(t, out.String(), "sk-abcdef")
}

// =============================================================================
// DOCTOR AND MODELS
// =============================================================================

func TestRunChecks(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SetDefaults()
	cfg.Logging.File = filepath.Join(dir, "logs", "app.log")
	cfg.Chat.ExportDir = filepath.Join(dir, "exports")

	checks := RunChecks(cfg, Args{ConfigPath: filepath.Join(dir, "missing.toml")})
	byName := make(map[string]*HealthCheck, len(checks))
	for _, c := range checks {
		byName[c.Name] = c
	}

	assert.Equal(t, CheckPass, byName["Config Valid"].Status)
	assert.Equal(t, CheckFail, byName["API Key"].Status)
	assert.Equal(t, CheckPass, byName["Model Known"].Status)
	assert.Equal(t, CheckPass, byName["Log Writable"].Status)
	assert.Equal(t, CheckPass, byName["Export Writable"].Status)
	assert.DirExists(t, cfg.Chat.ExportDir)

	cfg.Provider.APIKey = "sk-test"
	cfg.Provider.Model = "gpt-4o"
	checks = RunChecks(cfg, Args{ConfigPath: filepath.Join(dir, "missing.toml")})
	for _, c := range checks {
		switch c.Name {
		case "API Key":
			assert.Equal(t, CheckPass, c.Status)
			assert.NotContains(t, c.Message, "sk-test")
		case "Model Known":
			assert.Equal(t, CheckWarn, c.Status)
		}
	}
}

func TestHandleDoctor_FailsWithoutKey(t *testing.T) {
	dir := t.TempDir()
	rt, out, _ := newTestRuntime(nil)
	rt.Config.Logging.File = filepath.Join(dir, "app.log")
	rt.Config.Chat.ExportDir = dir

	err := HandleDoctor(rt, Args{ConfigPath: filepath.Join(dir, "none.toml")})
	require.Error(t, err)
	assert.Contains(t, out.String(), "No API key")
}

func TestHandleDoctor_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0o600))

	c := checkConfigValid(Args{ConfigPath: path})
	assert.Equal(t, CheckFail, c.Status)
	assert.Contains(t, c.Render(), "config init --force")
}

func TestHandleModels(t *testing.T) {
	rt, out, _ := newTestRuntime(nil)
	require.NoError(t, HandleModels(rt))
	for _, p := range model.Providers() {
		assert.Contains(t, out.String(), p)
	}
	assert.Contains(t, out.String(), "* "+model.DefaultModel)

	out.Reset()
	rt.Config.Provider.Model = "gemini-experimental"
	require.NoError(t, HandleModels(rt))
	assert.Contains(t, out.String(), "gemini-experimental (custom)")
}
