// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
)

func TestTabs_Cycle(t *testing.T) {
	tabs := NewTabs(styles.NewTheme(), "Dashboard", "Assignments", "Grades")

	if tabs.Active != 0 {
		t.Fatalf("initial active = %d", tabs.Active)
	}
	tabs.Next()
	tabs.Next()
	if tabs.Active != 2 {
		t.Errorf("after two Next: %d", tabs.Active)
	}
	tabs.Next()
	if tabs.Active != 0 {
		t.Errorf("Next should wrap, got %d", tabs.Active)
	}
	tabs.Prev()
	if tabs.Active != 2 {
		t.Errorf("Prev should wrap, got %d", tabs.Active)
	}

	tabs.Select(10)
	if tabs.Active != 2 {
		t.Errorf("out-of-range Select must be ignored, got %d", tabs.Active)
	}
	tabs.Select(1)
	if tabs.Active != 1 {
		t.Errorf("Select(1): %d", tabs.Active)
	}
}

func TestTabs_EmptySafe(t *testing.T) {
	tabs := NewTabs(styles.NewTheme())
	tabs.Next()
	tabs.Prev()
	if got := tabs.View(); got != "" {
		t.Errorf("empty tabs rendered %q", got)
	}
}

func TestHeader_ShowsUserAndRole(t *testing.T) {
	theme := styles.NewTheme()
	h := NewHeader(theme)
	h.SetWidth(100)
	h.SetUser(model.User{ID: 1, FullName: "Иван Петров", Role: model.RoleStudent})

	out := h.View()
	if !strings.Contains(out, "Иван Петров") {
		t.Error("header missing user name")
	}
	if !strings.Contains(out, "STUDENT") {
		t.Error("header missing role badge")
	}

	h.SetUser(model.User{ID: 2, FullName: "T", Role: model.RoleTeacher})
	if !strings.Contains(h.View(), "TEACHER") {
		t.Error("header missing teacher badge")
	}
}

func TestHeader_AnonymousHasNoBadge(t *testing.T) {
	h := NewHeader(styles.NewTheme())
	out := h.View()
	if strings.Contains(out, "TEACHER") || strings.Contains(out, "STUDENT") {
		t.Error("anonymous header rendered a role badge")
	}
}

func TestSpinner_Lifecycle(t *testing.T) {
	s := NewSpinner(styles.NewTheme())
	if s.Active() {
		t.Error("spinner active before Start")
	}
	cmd := s.Start("Загрузка...")
	if cmd == nil {
		t.Error("Start returned no tick command")
	}
	if !strings.Contains(s.View(), "Загрузка") {
		t.Errorf("spinner view = %q", s.View())
	}
	s.Stop()
	if s.View() != "" {
		t.Error("stopped spinner still renders")
	}
}

func TestToast_ExpiryGuard(t *testing.T) {
	tt := NewToast(styles.NewTheme())
	_ = tt.Show(ToastError, "first")
	firstID := tt.id
	_ = tt.Show(ToastSuccess, "second")

	// The first toast's timer must not clear the second toast.
	tt.Update(toastExpiredMsg{id: firstID})
	if !tt.Visible() {
		t.Error("stale expiry cleared a newer toast")
	}
	tt.Update(toastExpiredMsg{id: tt.id})
	if tt.Visible() {
		t.Error("toast survived its own expiry")
	}
}

func TestStatusBar_RendersHints(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme())
	sb.SetHints(KeyHint{Key: "tab", Desc: "switch"}, KeyHint{Key: "q", Desc: "logout"})
	out := sb.View()
	for _, want := range []string{"tab", "switch", "q", "logout"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q: %q", want, out)
		}
	}
}
