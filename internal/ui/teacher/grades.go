// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package teacher

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/ui/components"
	"github.com/jeranaias/gradebook-tui/internal/util"
)

// =============================================================================
// GRADES TAB
// =============================================================================

type gradesState struct {
	grades      []model.GradeDetails
	students    []model.User
	assignments []model.Assignment
	cursor      int
	loaded      bool
	formOpen    bool

	// Create form: pick-by-cursor for student and assignment, text for
	// score and comment.
	studentIdx    int
	assignmentIdx int
	score         textinput.Model
	comment       textinput.Model
	formFocus     int
	formErr       string
}

// Form focus slots.
const (
	gradeFocusStudent = iota
	gradeFocusAssignment
	gradeFocusScore
	gradeFocusComment
	gradeFocusCount
)

type gradesLoadedMsg struct {
	grades      []model.GradeDetails
	students    []model.User
	assignments []model.Assignment
	err         error
}

type gradeSavedMsg struct {
	err error
}

type gradeDeletedMsg struct {
	err error
}

func newGradesState() gradesState {
	s := gradesState{}
	s.score = textinput.New()
	s.score.Placeholder = "0-100"
	s.score.CharLimit = 6
	s.score.Width = 8
	s.comment = textinput.New()
	s.comment.Placeholder = "Комментарий"
	s.comment.CharLimit = 500
	s.comment.Width = 40
	return s
}

func (s *gradesState) openForm() {
	s.formOpen = true
	s.formErr = ""
	s.formFocus = gradeFocusStudent
	s.studentIdx = 0
	s.assignmentIdx = 0
	s.score.SetValue("")
	s.comment.SetValue("")
	s.score.Blur()
	s.comment.Blur()
}

func (s *gradesState) closeForm() {
	s.formOpen = false
	s.score.Blur()
	s.comment.Blur()
}

func (s *gradesState) cycleFormFocus(back bool) {
	if back {
		s.formFocus = (s.formFocus + gradeFocusCount - 1) % gradeFocusCount
	} else {
		s.formFocus = (s.formFocus + 1) % gradeFocusCount
	}
	s.score.Blur()
	s.comment.Blur()
	switch s.formFocus {
	case gradeFocusScore:
		s.score.Focus()
	case gradeFocusComment:
		s.comment.Focus()
	}
}

func (s *gradesState) updateForm(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	s.score, cmd = s.score.Update(msg)
	cmds = append(cmds, cmd)
	s.comment, cmd = s.comment.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// buildCreate validates the form into a create payload.
func (s *gradesState) buildCreate() (model.GradeCreate, string) {
	if len(s.students) == 0 || len(s.assignments) == 0 {
		return model.GradeCreate{}, "Нет студентов или заданий для оценки"
	}

	assignment := s.assignments[s.assignmentIdx]
	scoreText := strings.TrimSpace(s.score.Value())
	if scoreText == "" {
		return model.GradeCreate{}, "Укажите балл"
	}
	score, err := strconv.ParseFloat(scoreText, 64)
	if err != nil || score < 0 {
		return model.GradeCreate{}, "Балл должен быть неотрицательным числом"
	}
	if score > assignment.MaxScore {
		return model.GradeCreate{}, "Балл выше максимума задания (" + util.FormatScore(assignment.MaxScore) + ")"
	}

	return model.GradeCreate{
		StudentID:    s.students[s.studentIdx].ID,
		AssignmentID: assignment.ID,
		Score:        score,
		Comment:      strings.TrimSpace(s.comment.Value()),
	}, ""
}

// =============================================================================
// COMMANDS
// =============================================================================

// loadGrades fetches the grade table plus the student and assignment
// listings the create form needs, the way the original loads all three
// together.
func (m *Model) loadGrades() tea.Cmd {
	tick := m.spinner.Start("Загрузка оценок...")
	client, snaps, userID := m.client, m.snaps, m.user.ID

	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		grades, err := client.Grades(ctx, model.GradeFilter{})
		if err != nil {
			return gradesLoadedMsg{err: err}
		}
		students, err := client.Students(ctx)
		if err != nil {
			return gradesLoadedMsg{err: err}
		}
		assignments, err := client.Assignments(ctx)
		if err != nil {
			return gradesLoadedMsg{err: err}
		}
		if snaps != nil {
			_ = snaps.PutGrades(userID, grades)
			_ = snaps.PutAssignments(userID, assignments)
		}
		return gradesLoadedMsg{grades: grades, students: students, assignments: assignments}
	})
}

func (m *Model) createGrade(req model.GradeCreate) tea.Cmd {
	tick := m.spinner.Start("Сохранение...")
	client := m.client
	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := client.CreateGrade(ctx, req)
		return gradeSavedMsg{err: err}
	})
}

func (m *Model) deleteGrade(id int) tea.Cmd {
	tick := m.spinner.Start("Удаление...")
	client := m.client
	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return gradeDeletedMsg{err: client.DeleteGrade(ctx, id)}
	})
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (m Model) handleGradesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := &m.grades
	switch msg.String() {
	case "n":
		s.openForm()
		return m, textinput.Blink
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.grades)-1 {
			s.cursor++
		}
	case "d":
		if s.cursor < len(s.grades) {
			return m, m.deleteGrade(s.grades[s.cursor].ID)
		}
	}
	return m, nil
}

func (m Model) handleGradeFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := &m.grades
	switch msg.String() {
	case "esc":
		s.closeForm()
		return m, nil
	case "tab":
		s.cycleFormFocus(false)
		return m, nil
	case "shift+tab":
		s.cycleFormFocus(true)
		return m, nil
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch s.formFocus {
		case gradeFocusStudent:
			if n := len(s.students); n > 0 {
				s.studentIdx = (s.studentIdx + n + delta) % n
			}
		case gradeFocusAssignment:
			if n := len(s.assignments); n > 0 {
				s.assignmentIdx = (s.assignmentIdx + n + delta) % n
			}
		}
		return m, nil
	case "enter":
		req, errText := s.buildCreate()
		if errText != "" {
			s.formErr = errText
			return m, nil
		}
		s.closeForm()
		return m, m.createGrade(req)
	}
	return m, s.updateForm(msg)
}

func (m Model) onGradesLoaded(msg gradesLoadedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		return m, m.toast.Show(components.ToastError, errorText(msg.err))
	}
	m.grades.grades = msg.grades
	m.grades.students = msg.students
	m.grades.assignments = msg.assignments
	m.grades.loaded = true
	if m.grades.cursor >= len(msg.grades) {
		m.grades.cursor = 0
	}
	return m, nil
}

func (m Model) onGradeSaved(msg gradeSavedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		// The backend rejects duplicates and out-of-range scores with
		// a detail message worth showing verbatim.
		return m, m.toast.Show(components.ToastError, errorText(msg.err))
	}
	return m, tea.Batch(
		m.toast.Show(components.ToastSuccess, "Оценка добавлена"),
		m.loadGrades(),
	)
}

func (m Model) onGradeDeleted(msg gradeDeletedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		return m, m.toast.Show(components.ToastError, errorText(msg.err))
	}
	return m, tea.Batch(
		m.toast.Show(components.ToastSuccess, "Оценка удалена"),
		m.loadGrades(),
	)
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) viewGrades() string {
	t := m.theme
	s := m.grades

	var b strings.Builder
	b.WriteString(t.Title.Render("📊 Таблица оценок") + "\n")
	if s.formOpen {
		b.WriteString(m.viewGradeForm())
		return b.String()
	}
	b.WriteString(t.Hint.Render("n добавить · d удалить · ↑/↓ выбор") + "\n\n")

	if !s.loaded {
		b.WriteString(t.Muted.Render("Оценки ещё не загружены. Нажмите r."))
		return b.String()
	}
	if len(s.grades) == 0 {
		b.WriteString(t.Muted.Render("Оценок пока нет."))
		return b.String()
	}

	header := util.PadRight("Студент", 24) + util.PadRight("Задание", 28) +
		util.PadRight("Балл", 8) + "Комментарий"
	b.WriteString(t.Label.Render(header) + "\n")

	for i, g := range s.grades {
		line := util.PadRight(util.TruncateWidth(g.Student.FullName, 22), 24) +
			util.PadRight(util.TruncateWidth(g.Assignment.Title, 26), 28) +
			util.PadRight(util.FormatScore(g.Score), 8) +
			util.TruncateWidth(g.Comment, 30)
		if i == s.cursor {
			b.WriteString(t.Selected.Render("▶ "+line) + "\n")
		} else {
			b.WriteString(t.Value.Render("  "+line) + "\n")
		}
	}
	return b.String()
}

func (m Model) viewGradeForm() string {
	t := m.theme
	s := m.grades

	pick := func(focused bool, value string) string {
		if focused {
			return t.Selected.Render("◀ " + value + " ▶")
		}
		return t.Value.Render(value)
	}

	student := "—"
	if len(s.students) > 0 {
		student = s.students[s.studentIdx].FullName
	}
	assignment := "—"
	if len(s.assignments) > 0 {
		assignment = s.assignments[s.assignmentIdx].Title
	}

	var b strings.Builder
	b.WriteString(t.Hint.Render("enter сохранить · tab поле · ←/→ выбор · esc отмена") + "\n\n")
	b.WriteString(t.Label.Render("Студент *") + "\n" + pick(s.formFocus == gradeFocusStudent, student) + "\n")
	b.WriteString(t.Label.Render("Задание *") + "\n" + pick(s.formFocus == gradeFocusAssignment, assignment) + "\n")
	b.WriteString(t.Label.Render("Балл *") + "\n" + s.score.View() + "\n")
	b.WriteString(t.Label.Render("Комментарий") + "\n" + s.comment.View() + "\n")
	if s.formErr != "" {
		b.WriteString("\n" + t.Error.Render(s.formErr) + "\n")
	}
	return b.String()
}
