// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual building blocks of the chat screen:
// header, welcome panel, message blocks, typing indicator, attachment chips
// and toast notifications.
//
// Components are plain values with a View method. Stateful ones (Typing,
// ToastManager) expose bubbletea commands and are driven by the chat model.
package components
