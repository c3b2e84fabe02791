// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
)

// =============================================================================
// TOAST COMPONENT
// =============================================================================

// ToastKind selects the toast color and prefix.
type ToastKind int

const (
	ToastError ToastKind = iota
	ToastSuccess
	ToastWarning
)

// toastExpiredMsg clears a toast after its lifetime. The id guards
// against an old timer clearing a newer toast.
type toastExpiredMsg struct{ id int }

// Toast is a transient one-line notification.
type Toast struct {
	kind    ToastKind
	message string
	visible bool
	id      int
	theme   *styles.Theme
}

// NewToast creates an empty toast.
func NewToast(theme *styles.Theme) Toast {
	return Toast{theme: theme}
}

// Show displays a message for five seconds and returns the expiry Cmd.
func (t *Toast) Show(kind ToastKind, message string) tea.Cmd {
	t.kind = kind
	t.message = message
	t.visible = true
	t.id++
	id := t.id
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// Update handles toast expiry.
func (t *Toast) Update(msg tea.Msg) {
	if expired, ok := msg.(toastExpiredMsg); ok && expired.id == t.id {
		t.visible = false
	}
}

// Dismiss hides the toast immediately.
func (t *Toast) Dismiss() {
	t.visible = false
}

// Visible reports whether the toast is showing.
func (t Toast) Visible() bool {
	return t.visible
}

// View renders the toast line, or nothing when hidden.
func (t Toast) View() string {
	if !t.visible {
		return ""
	}
	switch t.kind {
	case ToastSuccess:
		return t.theme.Success.Render("✓ " + t.message)
	case ToastWarning:
		return t.theme.Warning.Render("⚠ " + t.message)
	default:
		return t.theme.Error.Render("✗ " + t.message)
	}
}
