// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-oriented chat command.
//
// Command: chat
// Short:   Start an interactive chat without the full-screen UI
// Aliases: repl
//
// Interactive Commands (during chat):
//   /attach <path>...   Attach documents
//   /remove <name>      Detach documents by name
//   /files              List attached documents
//   /export [fmt] [path] Save the conversation
//   /info               Session details
//   /help               Show available commands
//   /quit               Exit chat
//   Tab                 Complete a command name
//   Ctrl+D              Exit chat

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/battery-assistant/internal/commands"
	"github.com/jeranaias/battery-assistant/internal/export"
	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/session"
	"github.com/jeranaias/battery-assistant/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides line editing, history and tab completion.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor. historyFile may be empty.
func NewChatCLI(historyFile string, complete func(string) []string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if complete != nil {
		line.SetCompleter(complete)
	}

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// repl holds one chat session and executes input lines against it.
type repl struct {
	rt       *Runtime
	sess     *session.State
	registry *commands.Registry
	parser   *commands.Parser
}

func newREPL(rt *Runtime) *repl {
	registry := commands.NewRegistry()
	return &repl{
		rt:       rt,
		sess:     session.New(),
		registry: registry,
		parser:   commands.NewParser(registry),
	}
}

// handleLine runs one line of input and reports whether the user asked to
// quit.
func (r *repl) handleLine(ctx context.Context, line string) bool {
	if res := r.parser.Parse(line); res.IsCommand {
		return r.runCommand(ctx, res)
	}
	if strings.TrimSpace(line) == "" {
		return false
	}

	if r.rt.Markdown {
		fmt.Fprint(r.rt.errOut(), DimStyle.Render("thinking..."))
	}
	reply, err := r.sess.Submit(ctx, r.rt.Dispatcher, line)
	if r.rt.Markdown {
		fmt.Fprint(r.rt.errOut(), "\r\033[K")
	}
	if err != nil {
		r.rt.logger().Warn("submit rejected", zap.Error(err))
		return false
	}

	if !reply.IsError {
		fmt.Fprintln(r.rt.out(), AssistantLabelStyle.Render(model.SenderAssistant.DisplayName()))
	}
	r.rt.printReply(reply)
	fmt.Fprintln(r.rt.out())
	return false
}

func (r *repl) runCommand(ctx context.Context, res commands.ParseResult) bool {
	if res.Err != nil {
		fmt.Fprintf(r.rt.errOut(), "%s %s\n", ErrorStyle.Render("[ERROR]"), res.Err)
		return false
	}

	switch res.Command.Name {
	case commands.Attach:
		paths := make([]string, len(res.Args))
		for i, p := range res.Args {
			paths[i] = util.ExpandHome(p)
		}
		_, n := r.sess.Attach(ctx, r.rt.reader(), paths)
		if n.Err != nil {
			r.rt.logger().Warn("attach failed", zap.Error(n.Err))
			n.Text += " " + n.Err.Error()
		}
		r.rt.notice(n)

	case commands.Remove:
		_, n := r.sess.Detach(res.Args[0])
		r.rt.notice(n)

	case commands.Files:
		r.printFiles()

	case commands.Export:
		r.export(res.Args)

	case commands.Info:
		r.printInfo()

	case commands.Help:
		fmt.Fprintln(r.rt.out(), SectionStyle.Render("Commands"))
		fmt.Fprint(r.rt.out(), r.registry.HelpText(true))

	case commands.Quit:
		return true

	default:
		fmt.Fprintf(r.rt.errOut(), "%s %s is only available in the full-screen UI\n",
			WarningStyle.Render("[!]"), res.Command.Name)
	}
	return false
}

func (r *repl) printFiles() {
	atts := r.sess.Attachments()
	if len(atts) == 0 {
		fmt.Fprintln(r.rt.out(), DimStyle.Render("No files attached."))
		return
	}
	for _, a := range atts {
		fmt.Fprintf(r.rt.out(), "  %s %s\n", a.Name, DimStyle.Render("("+util.HumanSize(a.Size)+")"))
	}
}

func (r *repl) printInfo() {
	cfg := r.rt.config()
	out := r.rt.out()
	fmt.Fprintf(out, "%s%s\n", RenderLabel("Provider"), ValueStyle.Render(cfg.Provider.Name))
	fmt.Fprintf(out, "%s%s\n", RenderLabel("Model"), ValueStyle.Render(cfg.Provider.Model))
	fmt.Fprintf(out, "%s%s\n", RenderLabel("Session"), ValueStyle.Render(r.sess.ID()))
	fmt.Fprintf(out, "%s%d\n", RenderLabel("Messages"), r.sess.Len())
	fmt.Fprintf(out, "%s%d\n", RenderLabel("Attachments"), len(r.sess.Attachments()))
}

func (r *repl) export(args []string) {
	var formatArg, path string
	if len(args) > 0 {
		formatArg = args[0]
	}
	if len(args) > 1 {
		path = util.ExpandHome(args[1])
	}

	cfg := r.rt.config()
	opts := export.DefaultOptions()
	if cfg.Chat.ExportDir != "" {
		opts.OutputDir = util.ExpandHome(cfg.Chat.ExportDir)
	}
	if r.rt.GlamourStyle == "light" {
		opts.Theme = "light"
	}

	doc := export.FromSession(r.sess, cfg.Provider.Name, cfg.Provider.Model)
	written, err := export.Save(doc, formatArg, path, opts)
	if err != nil {
		fmt.Fprintf(r.rt.errOut(), "%s Export failed: %v\n", ErrorStyle.Render("[ERROR]"), err)
		return
	}
	fmt.Fprintf(r.rt.out(), "%s Exported to %s\n", SuccessStyle.Render("[OK]"), written)
}

func (r *repl) printWelcome() {
	cfg := r.rt.config()
	out := r.rt.out()
	fmt.Fprintln(out, TitleStyle.Render("Battery AI Assistant"))
	fmt.Fprintln(out, DimStyle.Render(fmt.Sprintf("%s / %s", cfg.Provider.Name, cfg.Provider.Model)))
	fmt.Fprintln(out, "Ask me anything about battery technology, or /attach a document to get started.")
	fmt.Fprintln(out, DimStyle.Render("Type /help for commands, /quit or Ctrl+D to exit."))
	fmt.Fprintln(out)
}

func (r *repl) printExitSummary() {
	fmt.Fprintf(r.rt.out(), "\n%s %d messages\n", DimStyle.Render("Session ended:"), r.sess.Len())
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the REPL until /quit or end of input. When stdin is not a
// terminal lines are read without editing or history.
func HandleChat(ctx context.Context, rt *Runtime, args Args) error {
	r := newREPL(rt)
	rt.logger().Info("chat started", zap.String("session", r.sess.ID()))

	if !IsTTY() {
		return r.runScanner(ctx, os.Stdin)
	}

	in := NewChatCLI(rt.config().Chat.HistoryFile, r.parser.Complete)
	defer in.Close()

	r.printWelcome()
	prompt := model.SenderUser.DisplayName() + "> "
	for {
		line, err := in.ReadInput(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			fmt.Fprintln(rt.out(), DimStyle.Render("(/quit or Ctrl+D to exit)"))
			continue
		case errors.Is(err, io.EOF):
			r.printExitSummary()
			return nil
		case err != nil:
			return NewCommandError("chat", "read", "could not read input", err)
		}

		// An interrupt during a request ends the session.
		if r.handleLine(ctx, line) || ctx.Err() != nil {
			r.printExitSummary()
			return nil
		}
	}
}

// runScanner feeds lines from src until EOF or /quit.
func (r *repl) runScanner(ctx context.Context, src io.Reader) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if r.handleLine(ctx, sc.Text()) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return NewCommandError("chat", "read", "could not read input", err)
	}
	return nil
}
