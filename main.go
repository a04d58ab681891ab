// battery-assistant - A terminal chat client for battery technology questions.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/battery-assistant/internal/cli"
	"github.com/jeranaias/battery-assistant/internal/config"
	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/ingest"
	"github.com/jeranaias/battery-assistant/internal/llm"
	"github.com/jeranaias/battery-assistant/internal/logging"
	"github.com/jeranaias/battery-assistant/internal/prompt"
	"github.com/jeranaias/battery-assistant/internal/ui/chat"
	"github.com/jeranaias/battery-assistant/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code.
func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	cli.ConfigureColors(args.NoColor)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	}

	cfg, err := loadConfig(args)
	if err != nil {
		// doctor and config must still run to report and repair the file.
		if cmd != cli.CmdDoctor && cmd != cli.CmdConfig {
			cli.DisplayError(os.Stderr, err)
			return cli.GetExitCode(err)
		}
		cfg = config.Default()
		cfg.SetDefaults()
	}
	config.SetGlobal(cfg)

	logger, closeLog, err := logging.New(logging.Options{
		File:       cfg.Logging.File,
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s logging disabled: %v\n", cli.WarningStyle.Render("[!]"), err)
		logger, closeLog = zap.NewNop(), func() {}
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	theme := styles.ThemeFor(cfg.UI.Theme)
	if !cli.ColorsEnabled(args.NoColor) {
		theme = styles.NewPlainTheme()
	}

	rt := &cli.Runtime{
		Config:       cfg,
		Logger:       logger,
		Reader:       ingest.NewReader(logger.Named("ingest")),
		Out:          os.Stdout,
		Err:          os.Stderr,
		Markdown:     cli.IsStdoutTTY(),
		GlamourStyle: theme.GlamourStyle(),
		Width:        cli.GetTerminalWidth(),
	}

	var client *llm.Client
	if cmd.NeedsDispatcher() {
		client, err = newClient(ctx, cfg, logger)
		if err != nil {
			cli.DisplayError(os.Stderr, err)
			return cli.GetExitCode(err)
		}
		defer client.Close()

		rt.Dispatcher = dispatch.New(client,
			dispatch.WithLogger(logger.Named("dispatch")),
			dispatch.WithModel(client.Model()),
			dispatch.WithSystemInstruction(prompt.SystemInstruction),
		)
	}

	switch cmd {
	case cli.CmdTUI:
		err = runTUI(ctx, rt, client, theme)
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, rt, args)
	case cli.CmdChat:
		err = cli.HandleChat(ctx, rt, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(rt, args)
	case cli.CmdDoctor:
		err = cli.HandleDoctor(rt, args)
	case cli.CmdModels:
		err = cli.HandleModels(rt)
	}

	if err != nil {
		logger.Debug("command failed", zap.Stringer("command", cmd), zap.Error(err))
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}

// loadConfig reads --config or the default file, then applies the global
// flags on top.
func loadConfig(args cli.Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Provider != "" {
		cfg.SwitchProvider(args.Provider)
	}
	if args.Model != "" {
		cfg.Provider.Model = args.Model
	}
	if args.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func newClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*llm.Client, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	client, err := llm.New(ctx, cfg.LLM())
	if err != nil {
		return nil, err
	}
	logger.Info("client ready",
		zap.String("provider", client.Provider()),
		zap.String("model", client.Model()),
		zap.String("api_key", llm.MaskKey(cfg.Provider.APIKey)),
	)
	return client, nil
}

// runTUI starts the full-screen chat.
func runTUI(ctx context.Context, rt *cli.Runtime, client *llm.Client, theme *styles.Theme) error {
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		return cli.NewValidationErrorWithExample("terminal", "", "the chat UI needs an interactive terminal",
			cli.AppName+` ask "What is thermal runaway?"`)
	}

	var watcher *ingest.Watcher
	if rt.Config.UI.WatchAttachments {
		w, err := ingest.NewWatcher(rt.Logger.Named("watch"), 0)
		if err != nil {
			rt.Logger.Warn("file watching disabled", zap.Error(err))
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	m := chat.New(chat.Options{
		Dispatcher:     rt.Dispatcher,
		Reader:         rt.Reader,
		Watcher:        watcher,
		Theme:          theme,
		Provider:       client.Provider(),
		Model:          client.Model(),
		ShowTimestamps: rt.Config.UI.ShowTimestamps,
		ExportDir:      rt.Config.Chat.ExportDir,
		Logger:         rt.Logger.Named("tui"),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return cli.NewCommandError("tui", "run", "terminal UI exited", err)
	}
	return nil
}
