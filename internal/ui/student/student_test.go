// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package student

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
)

func newTestPanel() Model {
	user := model.User{ID: 2, FullName: "Иван Петров", Role: model.RoleStudent}
	return New(nil, nil, user, styles.NewTheme())
}

func loadedPanel() Model {
	m := newTestPanel()
	m, _ = m.Update(dataLoadedMsg{
		grades: []model.GradeDetails{
			{
				Grade:      model.Grade{ID: 1, AssignmentID: 1, Score: 5, Comment: "Отлично"},
				Assignment: model.Assignment{ID: 1, Title: "Лабораторная 1", MaxScore: 5},
			},
		},
		assignments: []model.Assignment{
			{ID: 1, Title: "Лабораторная 1", MaxScore: 5},
			{ID: 2, Title: "Эссе", MaxScore: 10, Description: "Напишите **эссе** о Go."},
		},
	})
	return m
}

func TestStudent_SummaryFromLoadedData(t *testing.T) {
	m := loadedPanel()
	if m.summary.CompletedAssignments != 1 || m.summary.TotalAssignments != 2 {
		t.Errorf("summary = %+v", m.summary)
	}
	out := m.View()
	if !strings.Contains(out, "1/2") {
		t.Error("completed/total not rendered")
	}
	if !strings.Contains(out, "5.00") {
		t.Error("average not rendered")
	}
}

func TestStudent_CompletionBadges(t *testing.T) {
	m := loadedPanel()
	out := m.viewAssignments()
	if !strings.Contains(out, "✓") {
		t.Error("graded assignment missing completion badge")
	}
	if !strings.Contains(out, "⏳") {
		t.Error("ungraded assignment missing pending badge")
	}
}

func TestStudent_DetailPane(t *testing.T) {
	m := loadedPanel()

	// Move to the second assignment and open its description.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.detailOpen {
		t.Fatal("detail pane did not open")
	}
	if !strings.Contains(m.detailText, "Эссе") {
		t.Error("detail missing assignment title")
	}
	if !strings.Contains(m.View(), "esc назад") {
		t.Error("detail pane missing back hint")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.detailOpen {
		t.Error("esc did not close the detail pane")
	}
}

func TestStudent_LogoutKey(t *testing.T) {
	m := loadedPanel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if cmd == nil {
		t.Fatal("ctrl+l produced no command")
	}
	if _, ok := cmd().(LogoutRequestedMsg); !ok {
		t.Errorf("expected LogoutRequestedMsg, got %T", cmd())
	}
}

func TestStudent_CursorBounds(t *testing.T) {
	m := loadedPanel()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor went negative: %d", m.cursor)
	}
	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor != 1 {
		t.Errorf("cursor overflowed: %d", m.cursor)
	}
}
