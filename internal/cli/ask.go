// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask [question]
// Short:   Ask a single question
// Aliases: a
//
// Examples:
//   battery-assistant ask "What is thermal runaway?"
//   battery-assistant ask "Summarize the findings" -f report.txt
//   battery-assistant ask "Compare these" -f a.txt -f b.md
//
// Flags:
//   -f, --file PATH     Attach a document (repeatable)
//
// The reply is rendered as markdown when stdout is a terminal and printed
// raw otherwise. An error reply exits with status 1, or 4 when the key was
// rejected and 8 when the request timed out.

package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/logging"
	"github.com/jeranaias/battery-assistant/internal/session"
	"github.com/jeranaias/battery-assistant/internal/util"
)

// HandleAsk attaches args.Files, sends args.Query once and prints the reply.
func HandleAsk(ctx context.Context, rt *Runtime, args Args) error {
	logger := rt.logger()
	defer logging.Timed(logger, "ask")()

	sess := session.New()

	if len(args.Files) > 0 {
		paths := make([]string, len(args.Files))
		for i, f := range args.Files {
			paths[i] = util.ExpandHome(f)
		}
		added, n := sess.Attach(ctx, rt.reader(), paths)
		if n.Kind == session.KindError {
			return NewCommandError("ask", "attach", n.Text, n.Err)
		}
		for _, a := range added {
			fmt.Fprintf(rt.errOut(), "%s %s (%s)\n", DimStyle.Render("attached"), a.Name, util.HumanSize(a.Size))
		}
	}

	logger.Info("ask",
		zap.String("session", sess.ID()),
		zap.Int("attachments", len(sess.Attachments())),
	)

	p, err := sess.Begin(args.Query)
	if err != nil {
		return NewValidationError("question", "", err.Error())
	}
	res := dispatch.Err(dispatch.KindUnavailable, "no dispatcher")
	if rt.Dispatcher != nil {
		res = rt.Dispatcher.Dispatch(ctx, p.Query, p.Attachments)
	}
	reply, err := sess.Settle(res)
	if err != nil {
		return NewCommandError("ask", "settle", "could not record the reply", err)
	}

	rt.printReply(reply)
	if reply.IsError {
		return &ReplyError{Result: res}
	}
	return nil
}
