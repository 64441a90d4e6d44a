// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the resumind TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jeranaias/resumind-tui/internal/model"
	"github.com/jeranaias/resumind-tui/internal/ui/styles"
	"github.com/jeranaias/resumind-tui/internal/util"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer renders conversation messages for the chat viewport.
// Markdown rendering applies only to settled assistant text; in-flight
// text is shown plain so the reveal does not reflow mid-word.
type MessageRenderer struct {
	theme    *styles.Theme
	width    int
	markdown *glamour.TermRenderer
}

// NewMessageRenderer creates a renderer for the given width.
func NewMessageRenderer(theme *styles.Theme, width int) *MessageRenderer {
	r := &MessageRenderer{theme: theme, width: width}
	r.markdown, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth(width)),
	)
	return r
}

// SetWidth rebuilds the markdown renderer for a new viewport width.
func (r *MessageRenderer) SetWidth(width int) {
	if width == r.width {
		return
	}
	r.width = width
	r.markdown, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth(width)),
	)
}

func wrapWidth(width int) int {
	w := width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// Render renders a single message, spinner frame included for pending
// assistant placeholders.
func (r *MessageRenderer) Render(msg model.Message, spinnerFrame string) string {
	var b strings.Builder

	b.WriteString(r.renderLabel(msg))
	b.WriteString("\n")

	if msg.Attachment != nil {
		b.WriteString(r.theme.Attachment.Render(fmt.Sprintf("  [file] %s (%s)",
			msg.Attachment.Name, util.FormatFileSize(msg.Attachment.SizeBytes))))
		b.WriteString("\n")
	}

	switch {
	case msg.State == model.StateError:
		b.WriteString(r.theme.MessageError.Render(r.wrap(msg.Text)))

	case msg.State == model.StatePending && msg.Role == model.RoleAssistant:
		b.WriteString(r.theme.ThinkingText.Render(spinnerFrame + " thinking..."))

	case msg.Role == model.RoleAssistant && msg.State == model.StateComplete:
		b.WriteString(r.renderMarkdown(msg.Text))

	default:
		b.WriteString(r.theme.MessageBody.Render(r.wrap(msg.Text)))
	}

	return b.String()
}

// renderLabel renders the role label with the message timestamp.
func (r *MessageRenderer) renderLabel(msg model.Message) string {
	ts := r.theme.Timestamp.Render(" " + msg.Timestamp)
	if msg.Role == model.RoleUser {
		return r.theme.UserLabel.Render("You") + ts
	}
	return r.theme.AssistantLabel.Render("Assistant") + ts
}

// renderMarkdown renders settled assistant text through glamour, falling
// back to wrapped plain text when the renderer is unavailable.
func (r *MessageRenderer) renderMarkdown(text string) string {
	if r.markdown == nil {
		return r.theme.MessageBody.Render(r.wrap(text))
	}
	rendered, err := r.markdown.Render(text)
	if err != nil {
		return r.theme.MessageBody.Render(r.wrap(text))
	}
	return strings.TrimRight(rendered, "\n")
}

func (r *MessageRenderer) wrap(text string) string {
	return wordwrap.String(text, wrapWidth(r.width))
}

// RenderConversation renders all messages joined with blank lines.
func (r *MessageRenderer) RenderConversation(messages []model.Message, spinnerFrame string) string {
	if len(messages) == 0 {
		return r.renderWelcome()
	}
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, r.Render(msg, spinnerFrame))
	}
	return strings.Join(parts, "\n\n")
}

// renderWelcome renders the empty-conversation greeting.
func (r *MessageRenderer) renderWelcome() string {
	lines := []string{
		r.theme.AssistantLabel.Render("Welcome to resumind"),
		"",
		r.theme.MessageBody.Render(r.wrap(
			"Ask anything about resumes, interviews, or career moves. " +
				"Attach a resume with /attach <path> and I'll review it.")),
		"",
		r.theme.Timestamp.Render("Type /help for commands."),
	}
	return strings.Join(lines, "\n")
}
