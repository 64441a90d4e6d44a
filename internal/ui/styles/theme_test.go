// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("dark theme should report IsDark")
	}

	light := NewTheme("light")
	if light.IsDark {
		t.Error("light theme should not report IsDark")
	}
}

func TestStatusRenderers(t *testing.T) {
	tests := []struct {
		name      string
		render    func(string) string
		indicator string
	}{
		{"success", RenderSuccess, "[OK]"},
		{"error", RenderError, "[X]"},
		{"warning", RenderWarning, "[!]"},
		{"info", RenderInfo, "[i]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.render("message")
			if !strings.Contains(got, tc.indicator) {
				t.Errorf("output %q missing indicator %q", got, tc.indicator)
			}
			if !strings.Contains(got, "message") {
				t.Errorf("output %q missing the message text", got)
			}
		})
	}
}
