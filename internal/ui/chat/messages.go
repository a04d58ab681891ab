// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/ingest"
	"github.com/jeranaias/battery-assistant/internal/model"
	"github.com/jeranaias/battery-assistant/internal/session"
)

// DispatchDoneMsg carries the outcome of the pending generation call.
type DispatchDoneMsg struct {
	Result dispatch.Result
}

// AttachDoneMsg reports a finished attach batch.
type AttachDoneMsg struct {
	Added        []model.Attachment
	Notification session.Notification
}

// FileChangedMsg reports that an attached file changed on disk.
type FileChangedMsg struct {
	Change ingest.Change
}

// ExportDoneMsg reports a finished export.
type ExportDoneMsg struct {
	Path string
	Err  error
}
