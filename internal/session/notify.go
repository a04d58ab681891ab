// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "fmt"

// NotificationKind selects how a notification is presented.
type NotificationKind int

const (
	KindInfo NotificationKind = iota
	KindSuccess
	KindWarning
	KindError
)

// Notification is a short, transient message for the user.
type Notification struct {
	Kind NotificationKind
	Text string

	// Err is the cause for KindError notifications.
	Err error
}

// Attached reports a successfully attached batch.
func Attached(n int) Notification {
	return Notification{Kind: KindSuccess, Text: fmt.Sprintf("%d file(s) attached.", n)}
}

// AttachFailed reports a discarded batch.
func AttachFailed(err error) Notification {
	return Notification{Kind: KindError, Text: "Failed to read one or more files.", Err: err}
}

// Removed confirms an attachment removal.
func Removed(name string) Notification {
	return Notification{Kind: KindSuccess, Text: fmt.Sprintf("File %q removed.", name)}
}

// Changed warns that an attached file changed on disk after it was read.
func Changed(name string, removed bool) Notification {
	if removed {
		return Notification{Kind: KindWarning, Text: fmt.Sprintf("%q was moved or deleted; the attached copy is unchanged.", name)}
	}
	return Notification{Kind: KindWarning, Text: fmt.Sprintf("%q changed on disk; re-attach to use the new version.", name)}
}
