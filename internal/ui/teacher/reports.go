// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package teacher

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/report"
	"github.com/jeranaias/gradebook-tui/internal/ui/components"
	"github.com/jeranaias/gradebook-tui/internal/util"
)

// =============================================================================
// REPORTS TAB
// =============================================================================

type reportsState struct {
	report    *model.CourseReport
	stale     bool
	fetchedAt time.Time
}

type reportLoadedMsg struct {
	report    *model.CourseReport
	stale     bool
	fetchedAt time.Time
	err       error
}

type reportExportedMsg struct {
	path string
	err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) loadReport() tea.Cmd {
	tick := m.spinner.Start("Генерация отчёта...")
	client, snaps, userID := m.client, m.snaps, m.user.ID

	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		rep, err := client.CourseReport(ctx)
		if err == nil {
			if snaps != nil {
				_ = snaps.PutCourseReport(userID, rep)
			}
			return reportLoadedMsg{report: rep}
		}

		if api.IsUnreachable(err) && snaps != nil {
			cached, at, cerr := snaps.CourseReport(userID)
			if cerr == nil {
				return reportLoadedMsg{report: cached, stale: true, fetchedAt: at}
			}
		}
		return reportLoadedMsg{err: err}
	})
}

func (m *Model) exportReport(asXLSX bool) tea.Cmd {
	rep := m.reports.report
	tick := m.spinner.Start("Экспорт...")
	return tea.Batch(tick, func() tea.Msg {
		now := time.Now()
		if asXLSX {
			path := report.XLSXFileName(now)
			return reportExportedMsg{path: path, err: report.ExportXLSX(path, rep)}
		}
		path := report.CSVFileName(now)
		return reportExportedMsg{path: path, err: report.ExportCSV(path, rep)}
	})
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (m Model) handleReportsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "g":
		return m, m.loadReport()
	case "e":
		if m.reports.report != nil {
			return m, m.exportReport(false)
		}
	case "x":
		if m.reports.report != nil {
			return m, m.exportReport(true)
		}
	}
	return m, nil
}

func (m Model) onReportLoaded(msg reportLoadedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		return m, m.toast.Show(components.ToastError, errorText(msg.err))
	}
	m.reports = reportsState{report: msg.report, stale: msg.stale, fetchedAt: msg.fetchedAt}
	if msg.stale {
		return m, m.toast.Show(components.ToastWarning,
			"Сервер недоступен, показан отчёт от "+msg.fetchedAt.Format("02.01.2006 15:04"))
	}
	return m, nil
}

func (m Model) onReportExported(msg reportExportedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		return m, m.toast.Show(components.ToastError, "Ошибка экспорта: "+msg.err.Error())
	}
	return m, m.toast.Show(components.ToastSuccess, "Отчёт сохранён: "+msg.path)
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) viewReports() string {
	t := m.theme
	s := m.reports

	var b strings.Builder
	b.WriteString(t.Title.Render("📈 Генерация отчётов") + "\n")
	b.WriteString(t.Hint.Render("g сгенерировать · e экспорт CSV · x экспорт XLSX") + "\n\n")

	if s.report == nil {
		b.WriteString(t.Muted.Render("Отчёт ещё не сгенерирован. Нажмите g."))
		return b.String()
	}

	b.WriteString(t.Label.Render("Общая статистика курса") + "\n")
	b.WriteString("  Студентов:     " + t.Value.Render(util.IntToString(s.report.TotalStudents)) + "\n")
	b.WriteString("  Всего заданий: " + t.Value.Render(util.IntToString(s.report.TotalAssignments)) + "\n")
	b.WriteString("  Средний балл:  " + t.Value.Render(util.FormatScore(s.report.AverageScore)) + "\n\n")

	header := util.PadRight("Студент", 28) + util.PadRight("Всего", 8) +
		util.PadRight("Выполнено", 12) + "Средний балл"
	b.WriteString(t.Label.Render(header) + "\n")
	for _, sr := range s.report.StudentReports {
		b.WriteString(t.Value.Render(
			util.PadRight(util.TruncateWidth(sr.Student.FullName, 26), 28)+
				util.PadRight(util.IntToString(sr.TotalAssignments), 8)+
				util.PadRight(util.IntToString(sr.CompletedAssignments), 12)+
				util.FormatScore(sr.AverageScore)) + "\n")
	}

	if s.stale {
		b.WriteString("\n" + t.Warning.Render("⚠ Офлайн-отчёт от "+s.fetchedAt.Format("02.01.2006 15:04")))
	}
	return b.String()
}
