// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state of one chat session: the transcript, the
// attachments for the next query and the pending-request flag.
//
// All mutation goes through State's transitions:
//
//	idle --Begin(non-empty input)--> submitting --Settle(result)--> idle
//
// Begin rejects blank input and rejects any input while a request is
// pending, so at most one generation call is outstanding per session and
// every user message receives exactly one reply.
package session
