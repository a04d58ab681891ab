// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"
)

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// indent prefixes every line of s with n spaces.
func indent(s string, n int) string {
	pad := spaces(n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

// formatElapsed formats a duration as "4s" or "1m05s".
func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return strconv.Itoa(secs) + "s"
	}
	rem := secs % 60
	pad := ""
	if rem < 10 {
		pad = "0"
	}
	return strconv.Itoa(secs/60) + "m" + pad + strconv.Itoa(rem) + "s"
}
