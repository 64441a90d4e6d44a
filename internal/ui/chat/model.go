// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the resumind TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/resumind-tui/internal/api"
	"github.com/jeranaias/resumind-tui/internal/config"
	"github.com/jeranaias/resumind-tui/internal/exchange"
	"github.com/jeranaias/resumind-tui/internal/model"
	"github.com/jeranaias/resumind-tui/internal/quota"
	"github.com/jeranaias/resumind-tui/internal/session"
	"github.com/jeranaias/resumind-tui/internal/storage"
	"github.com/jeranaias/resumind-tui/internal/ui/components"
	"github.com/jeranaias/resumind-tui/internal/ui/styles"
	"github.com/jeranaias/resumind-tui/internal/upload"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options carries the collaborators the chat view needs. Everything here
// is constructed in main and shared with the coordinator.
type Options struct {
	Config      *config.Config
	Store       *model.Store
	Coordinator *exchange.Coordinator
	Tracker     *quota.Tracker
	Client      *api.Client
	Session     *session.Manager
	Archive     *storage.Store // may be nil when persistence is unavailable
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config
	keys  KeyMap

	// Conversation collaborators. The store is the single source of truth
	// for messages; this model only reads snapshots.
	store       *model.Store
	coordinator *exchange.Coordinator
	tracker     *quota.Tracker
	client      *api.Client
	session     *session.Manager
	archive     *storage.Store

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *components.MessageRenderer

	// Dimensions
	width  int
	height int
	ready  bool

	// Turn state
	busy        bool
	pendingFile *upload.File

	// Connection state
	connected    bool
	healthProbed bool

	// Transient status notice with a sequence number so a stale expiry
	// cannot clear a newer notice.
	notice    string
	noticeSeq int

	// Full-screen info overlay (/help, /sessions). Dismissed on Esc.
	infoView string

	quitting bool
}

// New creates the chat model.
func New(opts Options) Model {
	theme := styles.NewTheme(opts.Config.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Ask about resumes, or /attach one..."
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Spinner),
	)

	return Model{
		theme:       theme,
		cfg:         opts.Config,
		keys:        DefaultKeyMap(),
		store:       opts.Store,
		coordinator: opts.Coordinator,
		tracker:     opts.Tracker,
		client:      opts.Client,
		session:     opts.Session,
		archive:     opts.Archive,
		input:       input,
		spinner:     sp,
		renderer:    components.NewMessageRenderer(theme, 80),
	}
}

// Quitting reports whether the user asked to exit. main checks this after
// the program loop ends before archiving the transcript.
func (m Model) Quitting() bool {
	return m.quitting
}
