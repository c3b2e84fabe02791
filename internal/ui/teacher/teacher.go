// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package teacher is the teacher panel: a tabbed screen with the
// course dashboard, assignment management, the grade table and report
// generation.
package teacher

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/cache"
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/ui/components"
	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// LogoutRequestedMsg asks the app shell to end the session.
type LogoutRequestedMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Tab indexes, in display order.
const (
	tabDashboard = iota
	tabAssignments
	tabGrades
	tabReports
)

// Model is the teacher panel.
type Model struct {
	client *api.Client
	snaps  *cache.Cache
	user   model.User
	theme  *styles.Theme

	tabs      *components.Tabs
	header    *components.Header
	statusBar *components.StatusBar
	spinner   components.Spinner
	toast     components.Toast

	dashboard   dashboardState
	assignments assignmentsState
	grades      gradesState
	reports     reportsState

	width, height int
}

// New creates the teacher panel for the signed-in teacher.
func New(client *api.Client, snaps *cache.Cache, user model.User, theme *styles.Theme) Model {
	header := components.NewHeader(theme)
	header.SetUser(user)

	statusBar := components.NewStatusBar(theme)
	statusBar.SetHints(
		components.KeyHint{Key: "tab", Desc: "вкладка"},
		components.KeyHint{Key: "r", Desc: "обновить"},
		components.KeyHint{Key: "ctrl+l", Desc: "выход из аккаунта"},
		components.KeyHint{Key: "ctrl+c", Desc: "закрыть"},
	)

	m := Model{
		client:    client,
		snaps:     snaps,
		user:      user,
		theme:     theme,
		tabs:      components.NewTabs(theme, "📊 Панель", "📝 Задания", "📊 Оценки", "📈 Отчёты"),
		header:    components.NewHeader(theme),
		statusBar: statusBar,
		spinner:   components.NewSpinner(theme),
		toast:     components.NewToast(theme),
		width:     100,
		height:    30,
	}
	m.header.SetUser(user)
	m.assignments = newAssignmentsState()
	m.grades = newGradesState()
	return m
}

// SetSize updates the layout bounds.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)
}

// Init loads the dashboard.
func (m Model) Init() tea.Cmd {
	return m.loadDashboard()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles events for the teacher panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	m.toast.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case dashboardLoadedMsg:
		return m.onDashboardLoaded(msg)
	case assignmentsLoadedMsg:
		return m.onAssignmentsLoaded(msg)
	case assignmentSavedMsg:
		return m.onAssignmentSaved(msg)
	case assignmentDeletedMsg:
		return m.onAssignmentDeleted(msg)
	case gradesLoadedMsg:
		return m.onGradesLoaded(msg)
	case gradeSavedMsg:
		return m.onGradeSaved(msg)
	case gradeDeletedMsg:
		return m.onGradeDeleted(msg)
	case reportLoadedMsg:
		return m.onReportLoaded(msg)
	case reportExportedMsg:
		return m.onReportExported(msg)
	}

	var cmds []tea.Cmd
	if cmd := m.spinner.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.assignments.formOpen {
		cmds = append(cmds, m.assignments.updateForm(msg))
	}
	if m.grades.formOpen {
		cmds = append(cmds, m.grades.updateForm(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Form input takes priority over panel navigation.
	if m.assignments.formOpen && m.tabs.Active == tabAssignments {
		return m.handleAssignmentFormKey(msg)
	}
	if m.grades.formOpen && m.tabs.Active == tabGrades {
		return m.handleGradeFormKey(msg)
	}

	switch msg.String() {
	case "ctrl+l":
		return m, func() tea.Msg { return LogoutRequestedMsg{} }
	case "tab":
		m.tabs.Next()
		return m, m.loadActiveTab()
	case "shift+tab":
		m.tabs.Prev()
		return m, m.loadActiveTab()
	case "1", "2", "3", "4":
		m.tabs.Select(int(msg.String()[0] - '1'))
		return m, m.loadActiveTab()
	case "r":
		return m, m.loadActiveTab()
	}

	switch m.tabs.Active {
	case tabAssignments:
		return m.handleAssignmentsKey(msg)
	case tabGrades:
		return m.handleGradesKey(msg)
	case tabReports:
		return m.handleReportsKey(msg)
	}
	return m, nil
}

// loadActiveTab fires the fetch for whichever tab is in front, unless
// that tab already has data.
func (m *Model) loadActiveTab() tea.Cmd {
	switch m.tabs.Active {
	case tabDashboard:
		return m.loadDashboard()
	case tabAssignments:
		return m.loadAssignments()
	case tabGrades:
		return m.loadGrades()
	case tabReports:
		if m.reports.report == nil {
			return m.loadReport()
		}
	}
	return nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the teacher panel.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header.View() + "\n")
	b.WriteString(m.tabs.View() + "\n\n")

	if m.spinner.Active() {
		b.WriteString(m.spinner.View() + "\n\n")
	}

	switch m.tabs.Active {
	case tabDashboard:
		b.WriteString(m.viewDashboard())
	case tabAssignments:
		b.WriteString(m.viewAssignments())
	case tabGrades:
		b.WriteString(m.viewGrades())
	case tabReports:
		b.WriteString(m.viewReports())
	}

	if m.toast.Visible() {
		b.WriteString("\n" + m.toast.View())
	}
	b.WriteString("\n" + m.statusBar.View())
	return b.String()
}

// errorText maps request failures to user-facing text. Forced logout is
// not handled here; the app shell reacts to the invalidation signal.
func errorText(err error) string {
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
