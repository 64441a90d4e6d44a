// resumind TUI - a terminal client for the resumind resume assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/resumind-tui/internal/api"
	"github.com/jeranaias/resumind-tui/internal/cli"
	"github.com/jeranaias/resumind-tui/internal/config"
	"github.com/jeranaias/resumind-tui/internal/delivery"
	"github.com/jeranaias/resumind-tui/internal/devserver"
	"github.com/jeranaias/resumind-tui/internal/exchange"
	"github.com/jeranaias/resumind-tui/internal/model"
	"github.com/jeranaias/resumind-tui/internal/quota"
	"github.com/jeranaias/resumind-tui/internal/session"
	"github.com/jeranaias/resumind-tui/internal/storage"
	"github.com/jeranaias/resumind-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdServe:
		runServe(args)
	case cli.CmdStatus:
		cli.HandleStatus(loadConfig(args))
	case cli.CmdSessions:
		if err := cli.HandleSessions(loadConfig(args)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdExport:
		if err := cli.HandleExport(loadConfig(args), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

// loadConfig loads configuration and applies command-line overrides.
func loadConfig(args *cli.Args) *config.Config {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if args.BaseURL != "" {
		cfg.Server.BaseURL = args.BaseURL
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// runTUI wires the full client and runs the chat program.
func runTUI(args *cli.Args) {
	cfg := loadConfig(args)

	// The alt screen owns the terminal while the TUI runs; route stdlib
	// logging to a file so stray log lines don't corrupt it.
	if f := logToFile(); f != nil {
		defer f.Close()
	}

	// Local persistence is best-effort: a broken database degrades to an
	// in-memory session rather than blocking the chat.
	var archive *storage.Store
	dbPath := cfg.Storage.DatabasePath
	if dbPath == "" {
		if p, err := storage.DefaultPath(); err == nil {
			dbPath = p
		}
	}
	if dbPath != "" {
		if s, err := storage.Open(dbPath); err == nil {
			archive = s
			defer archive.Close()
		} else {
			fmt.Fprintf(os.Stderr, "Warning: local storage unavailable: %v\n", err)
		}
	}

	var sessionStore session.Store
	if archive != nil {
		sessionStore = archive
	}
	sess := session.NewManager(sessionStore)

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:       cfg.Server.BaseURL,
		HealthTimeout: cfg.HealthTimeout(),
		UserID:        cfg.Server.UserID,
	})

	store := model.NewStore()
	tracker := quota.NewTracker(client, cfg.QuotaMinInterval())
	tracker.OnAdopt(sess.Adopt)
	controller := delivery.NewController(store, delivery.Config{
		WordDelay:          cfg.WordDelay(),
		StreamWordDelay:    cfg.StreamWordDelay(),
		UploadWordDelay:    cfg.UploadWordDelay(),
		ShortWordThreshold: cfg.Delivery.ShortWordThreshold,
	})
	coordinator := exchange.NewCoordinator(store, sess, tracker, controller, client)

	m := chat.New(chat.Options{
		Config:      cfg,
		Store:       store,
		Coordinator: coordinator,
		Tracker:     tracker,
		Client:      client,
		Session:     sess,
		Archive:     archive,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Live-reload config edits into the running program.
	if watcher := watchConfig(args, p); watcher != nil {
		defer watcher.Close()
	}

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Archive the finished conversation on the way out.
	if archive != nil && cfg.Storage.ArchiveTranscripts {
		if _, ok := final.(chat.Model); ok {
			t := storage.TranscriptFromMessages(sess.ID(), store.Snapshot())
			if _, err := archive.ArchiveTranscript(t); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not archive transcript: %v\n", err)
			}
		}
	}
}

// logToFile redirects the stdlib logger to ~/.resumind/resumind.log,
// discarding output when the file cannot be opened.
func logToFile() *os.File {
	path, err := config.ConfigPath()
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	logPath := filepath.Join(filepath.Dir(path), "resumind.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	return f
}

// watchConfig starts the config file watcher, forwarding reloads into the
// program. Returns nil when the config path cannot be resolved.
func watchConfig(args *cli.Args, p *tea.Program) *config.Watcher {
	path := args.ConfigPath
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return nil
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Config: cfg})
	})
	if err != nil {
		return nil
	}
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}

// runServe runs the local stub backend until interrupted.
func runServe(args *cli.Args) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := devserver.NewServer(args.Port)
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
