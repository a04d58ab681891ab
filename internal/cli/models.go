// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - List the built-in model catalog.
//
// Command: models
// Short:   List known models per provider

package cli

import (
	"fmt"

	"github.com/jeranaias/battery-assistant/internal/model"
)

// HandleModels prints every catalog model grouped by provider. The active
// model is marked with "*".
func HandleModels(rt *Runtime) error {
	cfg := rt.config()
	out := rt.out()

	for i, provider := range model.Providers() {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, SectionStyle.Render(provider))
		for _, m := range model.ModelsByProvider(provider) {
			marker := " "
			if provider == cfg.Provider.Name && m.ID == cfg.Provider.Model {
				marker = "*"
			}
			fmt.Fprintf(out, " %s %-26s %-12s %s\n", marker, m.ID,
				m.ContextString(), DimStyle.Render(m.Description))
		}
	}

	if _, ok := model.GetModelInfo(cfg.Provider.Model); !ok && cfg.Provider.Model != "" {
		fmt.Fprintf(out, "\n%s %s (custom)\n", WarningStyle.Render("*"), cfg.Provider.Model)
	}
	return nil
}
