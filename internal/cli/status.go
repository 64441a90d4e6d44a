// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - backend probe and archive inspection commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/resumind-tui/internal/api"
	"github.com/jeranaias/resumind-tui/internal/config"
	"github.com/jeranaias/resumind-tui/internal/session"
	"github.com/jeranaias/resumind-tui/internal/storage"
	"github.com/jeranaias/resumind-tui/internal/util"
)

// HandleStatus probes the backend and prints reachability plus the
// remaining-message quota for the stored session.
func HandleStatus(cfg *config.Config) {
	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:       cfg.Server.BaseURL,
		HealthTimeout: cfg.HealthTimeout(),
		UserID:        cfg.Server.UserID,
	})

	fmt.Printf("Backend: %s\n", cfg.Server.BaseURL)

	if err := client.Health(context.Background()); err != nil {
		fmt.Printf("Status:  unreachable (%v)\n", err)
		os.Exit(1)
	}
	fmt.Println("Status:  reachable")

	store, err := storage.Open(databasePath(cfg))
	if err != nil {
		fmt.Printf("Quota:   unknown (no local session: %v)\n", err)
		return
	}
	defer store.Close()

	sess := session.NewManager(store)
	status, err := client.RateLimitStatus(context.Background(), sess.ID())
	if err != nil {
		fmt.Printf("Quota:   unavailable (%v)\n", err)
		return
	}
	fmt.Printf("Quota:   %d/%d messages remaining\n", status.MessagesRemaining, status.MessagesLimit)
}

// HandleSessions lists archived conversations.
func HandleSessions(cfg *config.Config) error {
	store, err := storage.Open(databasePath(cfg))
	if err != nil {
		return fmt.Errorf("could not open archive: %w", err)
	}
	defer store.Close()

	metas, err := store.ListTranscripts(50)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No archived conversations.")
		return nil
	}

	for _, meta := range metas {
		fmt.Printf("#%-4d %s  %3d messages  %s\n",
			meta.ID,
			meta.ArchivedAt.Format("2006-01-02 15:04"),
			meta.MessageCount,
			util.TruncateString(meta.Preview, 60))
	}
	return nil
}

// HandleExport writes an archived conversation to a markdown file.
func HandleExport(cfg *config.Config, args *Args) error {
	if args.TranscriptID == 0 {
		return fmt.Errorf("usage: resumind export <id> [--out path]")
	}

	store, err := storage.Open(databasePath(cfg))
	if err != nil {
		return fmt.Errorf("could not open archive: %w", err)
	}
	defer store.Close()

	t, err := store.LoadTranscript(args.TranscriptID)
	if err != nil {
		return fmt.Errorf("transcript #%d: %w", args.TranscriptID, err)
	}

	path := args.OutputPath
	if path == "" {
		path = fmt.Sprintf("resumind-%d.md", t.ID)
	}
	if err := util.AtomicWriteFile(path, []byte(t.ExportMarkdown()), 0644); err != nil {
		return err
	}
	fmt.Printf("Exported transcript #%d to %s\n", t.ID, path)
	return nil
}

// databasePath resolves the archive location from config.
func databasePath(cfg *config.Config) string {
	if cfg.Storage.DatabasePath != "" {
		return cfg.Storage.DatabasePath
	}
	path, err := storage.DefaultPath()
	if err != nil {
		return "resumind.db"
	}
	return path
}
