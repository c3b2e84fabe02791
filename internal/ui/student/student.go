// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package student is the student panel: progress stats, the grade
// list, and the assignment list with completion badges. Assignment
// descriptions open in a markdown detail pane.
package student

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/cache"
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/report"
	"github.com/jeranaias/gradebook-tui/internal/ui/components"
	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
	"github.com/jeranaias/gradebook-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// LogoutRequestedMsg asks the app shell to end the session.
type LogoutRequestedMsg struct{}

type dataLoadedMsg struct {
	grades      []model.GradeDetails
	assignments []model.Assignment
	stale       bool
	fetchedAt   time.Time
	err         error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the student panel.
type Model struct {
	client *api.Client
	snaps  *cache.Cache
	user   model.User
	theme  *styles.Theme

	header    *components.Header
	statusBar *components.StatusBar
	spinner   components.Spinner
	toast     components.Toast

	grades      []model.GradeDetails
	assignments []model.Assignment
	summary     report.Summary
	loaded      bool
	stale       bool
	fetchedAt   time.Time

	// Assignment list selection and the open detail pane.
	cursor     int
	detailOpen bool
	detailText string

	width, height int
}

// New creates the student panel for the signed-in student.
func New(client *api.Client, snaps *cache.Cache, user model.User, theme *styles.Theme) Model {
	header := components.NewHeader(theme)
	header.SetUser(user)

	statusBar := components.NewStatusBar(theme)
	statusBar.SetHints(
		components.KeyHint{Key: "↑/↓", Desc: "выбор задания"},
		components.KeyHint{Key: "enter", Desc: "описание"},
		components.KeyHint{Key: "r", Desc: "обновить"},
		components.KeyHint{Key: "ctrl+l", Desc: "выход из аккаунта"},
	)

	return Model{
		client:    client,
		snaps:     snaps,
		user:      user,
		theme:     theme,
		header:    header,
		statusBar: statusBar,
		spinner:   components.NewSpinner(theme),
		toast:     components.NewToast(theme),
		width:     100,
		height:    30,
	}
}

// SetSize updates the layout bounds.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)
}

// Init loads the student's data.
func (m Model) Init() tea.Cmd {
	return m.loadData()
}

// =============================================================================
// COMMANDS
// =============================================================================

// loadData fetches my grades and the assignment list, matching the
// two calls the original dashboard makes. The backend already scopes
// the grade listing to the requesting student.
func (m *Model) loadData() tea.Cmd {
	tick := m.spinner.Start("Загрузка...")
	client, snaps, userID := m.client, m.snaps, m.user.ID

	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		grades, err := client.Grades(ctx, model.GradeFilter{})
		var assignments []model.Assignment
		if err == nil {
			assignments, err = client.Assignments(ctx)
		}
		if err == nil {
			if snaps != nil {
				_ = snaps.PutGrades(userID, grades)
				_ = snaps.PutAssignments(userID, assignments)
			}
			return dataLoadedMsg{grades: grades, assignments: assignments}
		}

		if api.IsUnreachable(err) && snaps != nil {
			cachedGrades, at, cerr := snaps.Grades(userID)
			if cerr == nil {
				cachedAssignments, _, _ := snaps.Assignments(userID)
				return dataLoadedMsg{
					grades:      cachedGrades,
					assignments: cachedAssignments,
					stale:       true,
					fetchedAt:   at,
				}
			}
		}
		return dataLoadedMsg{err: err}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles events for the student panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	m.toast.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case dataLoadedMsg:
		m.spinner.Stop()
		if msg.err != nil {
			return m, m.toast.Show(components.ToastError, loadErrorText(msg.err))
		}
		m.grades = msg.grades
		m.assignments = msg.assignments
		m.summary = report.Summarize(msg.grades, len(msg.assignments))
		m.loaded = true
		m.stale = msg.stale
		m.fetchedAt = msg.fetchedAt
		if m.cursor >= len(msg.assignments) {
			m.cursor = 0
		}
		if msg.stale {
			return m, m.toast.Show(components.ToastWarning,
				"Сервер недоступен, показаны данные от "+msg.fetchedAt.Format("02.01.2006 15:04"))
		}
		return m, nil
	}

	if cmd := m.spinner.Update(msg); cmd != nil {
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.detailOpen {
		switch msg.String() {
		case "esc", "enter", "q":
			m.detailOpen = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+l":
		return m, func() tea.Msg { return LogoutRequestedMsg{} }
	case "r":
		return m, m.loadData()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.assignments)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.assignments) {
			m.openDetail(m.assignments[m.cursor])
		}
	}
	return m, nil
}

// openDetail renders the assignment description as markdown.
func (m *Model) openDetail(a model.Assignment) {
	width := m.width - 8
	if width < 40 {
		width = 40
	}
	if width > 100 {
		width = 100
	}

	source := "# " + a.Title + "\n\n"
	if a.Description == "" {
		source += "_Описания нет._\n"
	} else {
		source += a.Description + "\n"
	}
	if a.Deadline != nil {
		source += "\n**Срок сдачи:** " + a.Deadline.Format("02.01.2006") + "\n"
	}
	source += "\n**Максимальный балл:** " + util.FormatScore(a.MaxScore) + "\n"

	rendered, err := glamour.Render(source, glamourStyle(m.theme.IsDark))
	if err != nil {
		// Plain text is a fine fallback for broken markdown.
		rendered = source
	}
	m.detailText = rendered
	m.detailOpen = true
}

func glamourStyle(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func loadErrorText(err error) string {
	switch {
	case api.IsUnreachable(err):
		return "Сервер недоступен"
	case api.IsTimeout(err):
		return "Превышено время ожидания"
	}
	if detail := api.Detail(err); detail != "" {
		return detail
	}
	return err.Error()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the student panel.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header.View() + "\n\n")

	if m.detailOpen {
		b.WriteString(m.detailText)
		b.WriteString("\n" + m.theme.Hint.Render("esc назад"))
		return b.String()
	}

	b.WriteString(m.theme.Title.Render("📚 Моя успеваемость") + "\n\n")
	if m.spinner.Active() {
		b.WriteString(m.spinner.View() + "\n\n")
	}

	if m.loaded {
		b.WriteString(m.viewStats() + "\n\n")
		b.WriteString(m.viewGrades() + "\n")
		b.WriteString(m.viewAssignments())
	} else if !m.spinner.Active() {
		b.WriteString(m.theme.Muted.Render("Данные ещё не загружены. Нажмите r."))
	}

	if m.stale {
		b.WriteString("\n" + m.theme.Warning.Render(
			"⚠ Офлайн-данные от "+m.fetchedAt.Format("02.01.2006 15:04")))
	}
	if m.toast.Visible() {
		b.WriteString("\n" + m.toast.View())
	}
	b.WriteString("\n" + m.statusBar.View())
	return b.String()
}

func (m Model) viewStats() string {
	t := m.theme
	s := m.summary
	completed := util.IntToString(s.CompletedAssignments) + "/" + util.IntToString(s.TotalAssignments)
	remaining := util.IntToString(s.TotalAssignments - s.CompletedAssignments)

	return "📊 Выполнено: " + t.Title.Render(completed) +
		"   ⭐ Средний балл: " + t.Title.Render(util.FormatScore(s.AverageScore)) +
		"   📝 Осталось: " + t.Title.Render(remaining)
}

func (m Model) viewGrades() string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.Label.Render("✅ Мои оценки") + "\n")
	if len(m.grades) == 0 {
		b.WriteString(t.Muted.Render("  Оценок пока нет") + "\n")
		return b.String()
	}
	for _, g := range m.grades {
		line := "  " + util.PadRight(util.TruncateWidth(g.Assignment.Title, 36), 38) +
			t.Success.Render(util.FormatScore(g.Score)) +
			t.Muted.Render(" / "+util.FormatScore(g.Assignment.MaxScore))
		b.WriteString(line + "\n")
		if g.Comment != "" {
			b.WriteString(t.Muted.Render("    💬 "+util.TruncateWidth(g.Comment, 60)) + "\n")
		}
	}
	return b.String()
}

func (m Model) viewAssignments() string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.Label.Render("📋 Все задания") + "\n")
	if len(m.assignments) == 0 {
		b.WriteString(t.Muted.Render("  Заданий пока нет") + "\n")
		return b.String()
	}

	gradedAssignments := make(map[int]bool, len(m.grades))
	for _, g := range m.grades {
		gradedAssignments[g.AssignmentID] = true
	}

	for i, a := range m.assignments {
		badge := t.Warning.Render("⏳")
		if gradedAssignments[a.ID] {
			badge = t.Success.Render("✓")
		}
		line := badge + " " + util.PadRight(util.TruncateWidth(a.Title, 40), 42)
		if a.Deadline != nil {
			line += t.Muted.Render("до " + a.Deadline.Format("02.01.2006"))
		}
		if i == m.cursor {
			b.WriteString(t.Selected.Render("▶") + " " + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}
