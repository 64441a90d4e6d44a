// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for resumind.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdServe
	CmdStatus
	CmdSessions
	CmdExport
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	BaseURL    string // --base-url: override the backend URL
	ConfigPath string // --config: alternate config file
	Theme      string // --theme: dark or light
	Quiet      bool   // --quiet: suppress non-essential output

	// Command-specific
	Port       int      // serve: --port
	TranscriptID int64  // export: transcript row id (0 = none given)
	OutputPath string   // export: --out

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `resumind - terminal client for the resumind resume assistant

Resumind is a chat client for the resumind backend. It streams replies,
tracks your remaining free messages, and can upload a resume for review.

Usage:
  resumind                    Start the chat TUI (default)
  resumind serve [--port N]   Run a local stub backend for development
  resumind status             Probe the backend and show quota
  resumind sessions           List archived conversations
  resumind export <id>        Export an archived conversation as markdown
  resumind version            Show version information
  resumind help               Show this help

Flags:
  --base-url URL    Backend base URL (default http://127.0.0.1:5000)
  --config PATH     Config file (default ~/.resumind/config.toml)
  --theme NAME      UI theme: dark or light
  --quiet           Suppress non-essential output
  --out PATH        Output path for export
  --port N          Port for the dev server (default 5000)

Environment:
  RESUMIND_BASE_URL, RESUMIND_USER_ID, RESUMIND_DB_PATH, RESUMIND_THEME

Config file: ~/.resumind/config.toml (TOML; created on first save)
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, *Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list. Split out for testing.
func ParseArgs(argv []string) (Command, *Args) {
	args := &Args{}

	var positional []string
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--quiet" || arg == "-q":
			args.Quiet = true
		case arg == "--base-url":
			if i+1 < len(argv) {
				i++
				args.BaseURL = argv[i]
			}
		case strings.HasPrefix(arg, "--base-url="):
			args.BaseURL = strings.TrimPrefix(arg, "--base-url=")
		case arg == "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--theme":
			if i+1 < len(argv) {
				i++
				args.Theme = argv[i]
			}
		case strings.HasPrefix(arg, "--theme="):
			args.Theme = strings.TrimPrefix(arg, "--theme=")
		case arg == "--out":
			if i+1 < len(argv) {
				i++
				args.OutputPath = argv[i]
			}
		case strings.HasPrefix(arg, "--out="):
			args.OutputPath = strings.TrimPrefix(arg, "--out=")
		case arg == "--port":
			if i+1 < len(argv) {
				i++
				if n, err := strconv.Atoi(argv[i]); err == nil {
					args.Port = n
				}
			}
		case strings.HasPrefix(arg, "--port="):
			if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--port=")); err == nil {
				args.Port = n
			}
		default:
			positional = append(positional, arg)
		}
	}
	args.Raw = positional

	if len(positional) == 0 {
		return CmdTUI, args
	}

	switch positional[0] {
	case "serve":
		return CmdServe, args
	case "status", "s":
		return CmdStatus, args
	case "sessions", "list":
		return CmdSessions, args
	case "export":
		if len(positional) > 1 {
			if id, err := strconv.ParseInt(positional[1], 10, 64); err == nil {
				args.TranscriptID = id
			}
		}
		return CmdExport, args
	case "version", "--version", "-v":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", positional[0])
		return CmdHelp, args
	}
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("resumind %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}
