// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package teacher

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/ui/components"
	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
	"github.com/jeranaias/gradebook-tui/internal/util"
)

// =============================================================================
// DASHBOARD TAB
// =============================================================================

// dashboardState holds the course totals shown on the first tab.
type dashboardState struct {
	totalAssignments int
	totalStudents    int
	totalGrades      int
	averageScore     float64
	loaded           bool
	stale            bool
	fetchedAt        time.Time
}

type dashboardLoadedMsg struct {
	assignments []model.Assignment
	students    []model.User
	grades      []model.GradeDetails
	stale       bool
	fetchedAt   time.Time
	err         error
}

// loadDashboard fetches the three listings the totals are derived
// from. When the backend is unreachable it falls back to the snapshot
// cache so the teacher still sees last known numbers.
func (m *Model) loadDashboard() tea.Cmd {
	tick := m.spinner.Start("Загрузка статистики...")
	client, snaps, userID := m.client, m.snaps, m.user.ID

	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		assignments, err := client.Assignments(ctx)
		if err == nil {
			var students []model.User
			var grades []model.GradeDetails
			if students, err = client.Students(ctx); err == nil {
				grades, err = client.Grades(ctx, model.GradeFilter{})
			}
			if err == nil {
				if snaps != nil {
					_ = snaps.PutAssignments(userID, assignments)
					_ = snaps.PutGrades(userID, grades)
				}
				return dashboardLoadedMsg{assignments: assignments, students: students, grades: grades}
			}
		}

		if api.IsUnreachable(err) && snaps != nil {
			cachedAssignments, at, cerr := snaps.Assignments(userID)
			if cerr == nil {
				cachedGrades, _, _ := snaps.Grades(userID)
				return dashboardLoadedMsg{
					assignments: cachedAssignments,
					grades:      cachedGrades,
					stale:       true,
					fetchedAt:   at,
				}
			}
		}
		return dashboardLoadedMsg{err: err}
	})
}

func (m Model) onDashboardLoaded(msg dashboardLoadedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		return m, m.toast.Show(components.ToastError, errorText(msg.err))
	}

	var sum float64
	for _, g := range msg.grades {
		sum += g.Score
	}
	avg := 0.0
	if len(msg.grades) > 0 {
		avg = sum / float64(len(msg.grades))
	}

	m.dashboard = dashboardState{
		totalAssignments: len(msg.assignments),
		totalStudents:    len(msg.students),
		totalGrades:      len(msg.grades),
		averageScore:     avg,
		loaded:           true,
		stale:            msg.stale,
		fetchedAt:        msg.fetchedAt,
	}
	if msg.stale {
		return m, m.toast.Show(components.ToastWarning,
			"Сервер недоступен, показаны данные от "+msg.fetchedAt.Format("02.01.2006 15:04"))
	}
	return m, nil
}

func (m Model) viewDashboard() string {
	t := m.theme
	if !m.dashboard.loaded {
		return t.Muted.Render("Статистика ещё не загружена. Нажмите r.")
	}

	card := func(icon, value, label string) string {
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.Overlay).
			Padding(0, 2).
			Render(icon + " " + t.Title.Render(value) + "\n" + t.Muted.Render(label))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		card("📝", util.IntToString(m.dashboard.totalAssignments), "Заданий"),
		" ",
		card("👥", util.IntToString(m.dashboard.totalStudents), "Студентов"),
		" ",
		card("✅", util.IntToString(m.dashboard.totalGrades), "Оценок"),
		" ",
		card("⭐", util.FormatScore(m.dashboard.averageScore), "Средний балл"),
	)

	var b strings.Builder
	b.WriteString(t.Title.Render("📊 Панель управления") + "\n\n")
	b.WriteString(row)
	if m.dashboard.stale {
		b.WriteString("\n\n" + t.Warning.Render(
			fmt.Sprintf("⚠ Офлайн-данные от %s", m.dashboard.fetchedAt.Format("02.01.2006 15:04"))))
	}
	return b.String()
}
