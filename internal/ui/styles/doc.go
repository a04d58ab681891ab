// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the Battery AI
Assistant terminal UI.

All colors use Lip Gloss AdaptiveColor so the palette follows the terminal's
light or dark background.

# Color System (colors.go)

  - BrandGreen - Assistant identity, send affordance, typing indicator
  - BrandBlue - User identity, attachment chips
  - Rose and Amber - Error and warning toasts

# Theme (theme.go)

Theme bundles every lipgloss.Style used by the components. NewTheme detects
the terminal profile with termenv; NewPlainTheme forces ASCII output for
--no-color and non-interactive use.
*/
package styles
