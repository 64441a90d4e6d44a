// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the resumind TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/resumind-tui/internal/storage"
	"github.com/jeranaias/resumind-tui/internal/upload"
	"github.com/jeranaias/resumind-tui/internal/util"
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// CommandHandler processes one slash command. It receives the model and
// command arguments, and returns an updated model and command.
type CommandHandler func(m Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	// Help & Meta
	"help": handleHelpCommand,
	"h":    handleHelpCommand,
	"quit": handleQuitCommand,
	"q":    handleQuitCommand,
	"exit": handleQuitCommand,

	// Conversation
	"new":   handleNewCommand,
	"n":     handleNewCommand,
	"clear": handleClearCommand,
	"c":     handleClearCommand,

	// Attachments
	"attach": handleAttachCommand,
	"a":      handleAttachCommand,
	"detach": handleDetachCommand,

	// Backend
	"feedback": handleFeedbackCommand,
	"fb":       handleFeedbackCommand,
	"retry":    handleRetryCommand,

	// Archive
	"export":   handleExportCommand,
	"e":        handleExportCommand,
	"sessions": handleSessionsCommand,
	"list":     handleSessionsCommand,
}

// handleCommand processes slash commands using the command registry.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}

	cmdName := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	if handler, ok := commandHandlers[cmdName]; ok {
		return handler(m, args)
	}
	return m.withNotice("Unknown command '" + parts[0] + "'. Type /help for the list.")
}

// =============================================================================
// HELP AND META COMMANDS
// =============================================================================

func handleHelpCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	var b strings.Builder
	b.WriteString("Commands\n\n")
	rows := []struct{ cmd, desc string }{
		{"/attach <path>", "attach a resume file (pdf, doc, docx, txt; max 10 MB)"},
		{"/detach", "drop the pending attachment"},
		{"/new", "start a fresh conversation with a new session"},
		{"/clear", "clear the screen, keep the session"},
		{"/export [path]", "export the conversation as markdown"},
		{"/sessions", "list archived conversations"},
		{"/feedback <text>", "send feedback to the resumind team"},
		{"/retry", "re-check the backend connection"},
		{"/quit", "exit"},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-18s %s\n", r.cmd, r.desc))
	}
	b.WriteString("\nKeys: Enter send, Esc cancel turn, PgUp/PgDn scroll, Ctrl+C quit.")
	b.WriteString("\n\nPress any key to close.")

	m.infoView = b.String()
	return m, nil
}

func handleQuitCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

func handleNewCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	m.archiveCurrent()
	m.coordinator.NewConversation()
	m.busy = false
	m.pendingFile = nil
	m.refreshViewport()
	updated, cmd := m.withNotice("Started a new conversation.")
	return updated, tea.Batch(cmd, updated.refreshQuota())
}

func handleClearCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	m.coordinator.Reset()
	m.busy = false
	m.refreshViewport()
	return m, nil
}

// =============================================================================
// ATTACHMENT COMMANDS
// =============================================================================

func handleAttachCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.withNotice("Usage: /attach <path>")
	}
	path := strings.Join(args, " ")

	file, err := upload.Check(path)
	if err != nil {
		return m.withNotice(attachErrorText(err))
	}

	m.pendingFile = file
	return m.withNotice(fmt.Sprintf("Attached %s (%s). It will be sent with your next message.",
		file.Name, file.DisplaySize()))
}

// attachErrorText maps validation failures to actionable notices.
func attachErrorText(err error) string {
	switch {
	case errors.Is(err, upload.ErrNotFound):
		return "File not found."
	case errors.Is(err, upload.ErrIsDirectory):
		return "That's a directory - attach a file."
	case errors.Is(err, upload.ErrTooLarge):
		return "File too large: the limit is 10 MB."
	case errors.Is(err, upload.ErrBadType):
		return "Unsupported file type: use pdf, doc, docx, or txt."
	default:
		return "Could not attach file: " + err.Error()
	}
}

func handleDetachCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if m.pendingFile == nil {
		return m.withNotice("No pending attachment.")
	}
	m.pendingFile = nil
	return m.withNotice("Attachment dropped.")
}

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

func handleFeedbackCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.withNotice("Usage: /feedback <text>")
	}
	text := strings.Join(args, " ")

	client := m.client
	send := func() tea.Msg {
		return feedbackSentMsg{err: client.Feedback(context.Background(), text)}
	}
	updated, cmd := m.withNotice("Sending feedback...")
	return updated, tea.Batch(cmd, send)
}

func handleRetryCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	updated, cmd := m.withNotice("Checking connection...")
	return updated, tea.Batch(cmd, updated.checkHealth())
}

// =============================================================================
// ARCHIVE COMMANDS
// =============================================================================

func handleExportCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	t := storage.TranscriptFromMessages(m.session.ID(), m.store.Snapshot())
	if len(t.Messages) == 0 {
		return m.withNotice("Nothing to export yet.")
	}

	path := fmt.Sprintf("resumind-%s.md", time.Now().Format("20060102-150405"))
	if len(args) > 0 {
		path = strings.Join(args, " ")
	}

	if err := util.AtomicWriteFile(path, []byte(t.ExportMarkdown()), 0644); err != nil {
		return m.withNotice("Export failed: " + err.Error())
	}
	return m.withNotice("Exported to " + path)
}

func handleSessionsCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if m.archive == nil {
		return m.withNotice("Archiving is disabled.")
	}

	metas, err := m.archive.ListTranscripts(20)
	if err != nil {
		return m.withNotice("Could not list transcripts: " + err.Error())
	}
	if len(metas) == 0 {
		return m.withNotice("No archived conversations yet.")
	}

	var b strings.Builder
	b.WriteString("Archived conversations\n\n")
	for _, meta := range metas {
		b.WriteString(fmt.Sprintf("  #%-4d %s  %3d messages  %s\n",
			meta.ID,
			meta.ArchivedAt.Format("2006-01-02 15:04"),
			meta.MessageCount,
			util.TruncateString(meta.Preview, 50)))
	}
	b.WriteString("\nPress any key to close.")

	m.infoView = b.String()
	return m, nil
}

// archiveCurrent persists the settled conversation, if archiving is on.
func (m Model) archiveCurrent() {
	if m.archive == nil || !m.cfg.Storage.ArchiveTranscripts {
		return
	}
	t := storage.TranscriptFromMessages(m.session.ID(), m.store.Snapshot())
	// Archiving is best-effort; the conversation itself is not at risk.
	_, _ = m.archive.ArchiveTranscript(t)
}
