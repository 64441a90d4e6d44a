// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the resumind TUI.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/resumind-tui/internal/config"
	"github.com/jeranaias/resumind-tui/internal/exchange"
	"github.com/jeranaias/resumind-tui/internal/ui/components"
	"github.com/jeranaias/resumind-tui/internal/ui/styles"
	"github.com/jeranaias/resumind-tui/internal/upload"
)

// =============================================================================
// MESSAGES
// =============================================================================

// pollInterval drives store re-renders while a turn is in flight. It is
// shorter than the word reveal cadence so every published word is seen.
const pollInterval = 50 * time.Millisecond

// noticeLifetime is how long a transient status notice stays visible.
const noticeLifetime = 4 * time.Second

type healthMsg struct{ err error }

type turnDoneMsg struct{ err error }

type pollTickMsg struct{}

type noticeExpiredMsg struct{ seq int }

type feedbackSentMsg struct{ err error }

type quotaRefreshedMsg struct{}

// ConfigReloadedMsg is sent from main when the config file changes on
// disk. Visual settings apply immediately; delivery cadence applies from
// the next turn.
type ConfigReloadedMsg struct{ Config *config.Config }

// =============================================================================
// INIT
// =============================================================================

// Init probes backend health and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.checkHealth(),
		m.spinner.Tick,
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy {
			m.refreshViewport()
		}
		return m, cmd

	case pollTickMsg:
		if !m.busy {
			return m, nil
		}
		m.refreshViewport()
		return m, m.pollTick()

	case healthMsg:
		m.healthProbed = true
		m.connected = msg.err == nil
		if m.connected {
			return m, m.refreshQuota()
		}
		return m, nil

	case quotaRefreshedMsg:
		return m, nil

	case turnDoneMsg:
		m.busy = false
		m.pendingFile = nil
		m.refreshViewport()
		m.viewport.GotoBottom()
		switch {
		case errors.Is(msg.err, exchange.ErrBusy):
			return m.withNotice("A reply is still in flight - wait for it to settle.")
		case errors.Is(msg.err, exchange.ErrInvalidInput):
			return m.withNotice("Nothing to send: type a message or attach a file.")
		}
		return m, nil

	case feedbackSentMsg:
		if msg.err != nil {
			return m.withNotice("Could not send feedback: " + msg.err.Error())
		}
		return m.withNotice("Thanks for the feedback!")

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.theme = styles.NewTheme(msg.Config.UI.Theme)
		m.renderer = components.NewMessageRenderer(m.theme, m.width)
		m.refreshViewport()
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The info overlay swallows everything until dismissed.
	if m.infoView != "" {
		m.infoView = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.busy {
			m.coordinator.Cancel()
			return m.withNotice("Cancelling...")
		}
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		return m, m.checkHealth()

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keys.PageUp),
		key.Matches(msg, m.keys.PageDown),
		key.Matches(msg, m.keys.Top),
		key.Matches(msg, m.keys.Bottom):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit sends the input line: a slash command, or a chat turn with
// any pending attachment.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())

	if strings.HasPrefix(content, "/") {
		return m.handleCommand(content)
	}

	if content == "" && m.pendingFile == nil {
		return m, nil
	}
	if m.busy {
		return m.withNotice("A reply is still in flight - wait for it to settle.")
	}

	text := content
	file := m.pendingFile
	m.input.Reset()
	m.busy = true
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.submitTurn(text, file), m.pollTick())
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	chromeHeight := m.chromeHeight()
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}

	m.input.Width = msg.Width - 8
	m.renderer.SetWidth(msg.Width)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m
}

// refreshViewport re-renders the conversation from the store snapshot.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	content := m.renderer.RenderConversation(m.store.Snapshot(), m.spinner.View())
	m.viewport.SetContent(content)
	if atBottom || m.busy {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

// checkHealth probes the backend. The client applies its own probe timeout.
func (m Model) checkHealth() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return healthMsg{err: client.Health(context.Background())}
	}
}

// submitTurn runs one full coordinated turn off the UI goroutine. The
// store picks up every intermediate state; the done message only flips
// the busy flag.
func (m Model) submitTurn(text string, file *upload.File) tea.Cmd {
	coord := m.coordinator
	return func() tea.Msg {
		return turnDoneMsg{err: coord.Submit(context.Background(), text, file)}
	}
}

// refreshQuota fetches the remaining-message counter.
func (m Model) refreshQuota() tea.Cmd {
	tracker := m.tracker
	sessionID := m.session.ID()
	return func() tea.Msg {
		tracker.Refresh(context.Background(), sessionID)
		return quotaRefreshedMsg{}
	}
}

func (m Model) pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// withNotice sets a transient status notice and schedules its expiry.
func (m Model) withNotice(text string) (Model, tea.Cmd) {
	m.notice = text
	m.noticeSeq++
	seq := m.noticeSeq
	return m, tea.Tick(noticeLifetime, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
