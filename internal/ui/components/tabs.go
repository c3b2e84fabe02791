// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
)

// =============================================================================
// TAB BAR COMPONENT
// =============================================================================

// Tabs is a horizontal tab bar. The active tab index wraps on Next and
// Prev, so tab-cycling never dead-ends.
type Tabs struct {
	Labels []string
	Active int
	theme  *styles.Theme
}

// NewTabs creates a tab bar over the given labels.
func NewTabs(theme *styles.Theme, labels ...string) *Tabs {
	return &Tabs{Labels: labels, theme: theme}
}

// Next moves to the next tab, wrapping around.
func (t *Tabs) Next() {
	if len(t.Labels) == 0 {
		return
	}
	t.Active = (t.Active + 1) % len(t.Labels)
}

// Prev moves to the previous tab, wrapping around.
func (t *Tabs) Prev() {
	if len(t.Labels) == 0 {
		return
	}
	t.Active = (t.Active + len(t.Labels) - 1) % len(t.Labels)
}

// Select jumps to a tab by index; out-of-range indexes are ignored.
func (t *Tabs) Select(i int) {
	if i >= 0 && i < len(t.Labels) {
		t.Active = i
	}
}

// View renders the tab bar.
func (t *Tabs) View() string {
	var b strings.Builder
	for i, label := range t.Labels {
		if i > 0 {
			b.WriteString(t.theme.TabGap.Render("│"))
		}
		if i == t.Active {
			b.WriteString(t.theme.TabActive.Render(label))
		} else {
			b.WriteString(t.theme.Tab.Render(label))
		}
	}
	return b.String()
}
