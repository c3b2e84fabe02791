// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable UI components for the
// gradebook TUI.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
	"github.com/jeranaias/gradebook-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: app name on the left, the signed-in user
// and their role badge on the right.
type Header struct {
	Title string
	User  model.User
	Width int
	theme *styles.Theme
}

// NewHeader creates a header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "Gradebook",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the available width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetUser updates the signed-in user shown on the right.
func (h *Header) SetUser(user model.User) {
	h.User = user
}

// View renders the header.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	left := h.theme.HeaderTitle.Render("📚 " + h.Title)

	var right string
	if h.User.ID != 0 {
		badge := h.theme.StudentBadge.Render("STUDENT")
		if h.User.Role == model.RoleTeacher {
			badge = h.theme.TeacherBadge.Render("TEACHER")
		}
		name := util.TruncateWidth(h.User.FullName, width/3)
		right = h.theme.HeaderUser.Render(name) + " " + badge
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right

	return h.theme.Header.Width(width).Render(line)
}
