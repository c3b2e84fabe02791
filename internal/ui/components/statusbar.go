// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// KeyHint is one key binding shown in the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusBar is the bottom help line listing active key bindings.
type StatusBar struct {
	Width int
	hints []KeyHint
	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the available width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetHints replaces the displayed key bindings.
func (s *StatusBar) SetHints(hints ...KeyHint) {
	s.hints = hints
}

// View renders the status bar.
func (s *StatusBar) View() string {
	parts := make([]string, 0, len(s.hints))
	for _, h := range s.hints {
		parts = append(parts, s.theme.HelpKey.Render(h.Key)+" "+s.theme.HelpDesc.Render(h.Desc))
	}
	return s.theme.StatusBar.Width(s.Width).Render(strings.Join(parts, "  "))
}
