// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"default is tui", nil, CmdTUI},
		{"serve", []string{"serve"}, CmdServe},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"sessions", []string{"sessions"}, CmdSessions},
		{"export", []string{"export", "3"}, CmdExport},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"unknown falls back to help", []string{"frobnicate"}, CmdHelp},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := ParseArgs(tc.argv)
			if got != tc.want {
				t.Errorf("ParseArgs(%v) = %v, want %v", tc.argv, got, tc.want)
			}
		})
	}
}

func TestParseArgs_Flags(t *testing.T) {
	_, args := ParseArgs([]string{"--base-url", "http://x:1", "--theme=light", "--quiet"})
	if args.BaseURL != "http://x:1" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
	if args.Theme != "light" {
		t.Errorf("Theme = %q", args.Theme)
	}
	if !args.Quiet {
		t.Error("Quiet flag not set")
	}
}

func TestParseArgs_ServePort(t *testing.T) {
	cmd, args := ParseArgs([]string{"serve", "--port", "8080"})
	if cmd != CmdServe {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Port != 8080 {
		t.Errorf("Port = %d, want 8080", args.Port)
	}
}

func TestParseArgs_ExportID(t *testing.T) {
	_, args := ParseArgs([]string{"export", "42", "--out", "x.md"})
	if args.TranscriptID != 42 {
		t.Errorf("TranscriptID = %d", args.TranscriptID)
	}
	if args.OutputPath != "x.md" {
		t.Errorf("OutputPath = %q", args.OutputPath)
	}
}
