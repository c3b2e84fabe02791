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
// ASSIGNMENTS TAB
// =============================================================================

// deadlineLayout is the input format for assignment deadlines.
const deadlineLayout = "2006-01-02"

type assignmentsState struct {
	items    []model.Assignment
	cursor   int
	loaded   bool
	formOpen bool

	// Create form fields, cycled with tab.
	title       textinput.Model
	description textinput.Model
	maxScore    textinput.Model
	deadline    textinput.Model
	formFocus   int
	formErr     string
}

type assignmentsLoadedMsg struct {
	items []model.Assignment
	err   error
}

type assignmentSavedMsg struct {
	err error
}

type assignmentDeletedMsg struct {
	err error
}

func newAssignmentsState() assignmentsState {
	s := assignmentsState{}
	s.title = textinput.New()
	s.title.Placeholder = "Название задания"
	s.title.CharLimit = 200
	s.title.Width = 40
	s.description = textinput.New()
	s.description.Placeholder = "Описание (markdown)"
	s.description.CharLimit = 2000
	s.description.Width = 40
	s.maxScore = textinput.New()
	s.maxScore.Placeholder = "100"
	s.maxScore.CharLimit = 6
	s.maxScore.Width = 8
	s.deadline = textinput.New()
	s.deadline.Placeholder = deadlineLayout
	s.deadline.CharLimit = 10
	s.deadline.Width = 12
	return s
}

func (s *assignmentsState) formInputs() []*textinput.Model {
	return []*textinput.Model{&s.title, &s.description, &s.maxScore, &s.deadline}
}

func (s *assignmentsState) openForm() {
	s.formOpen = true
	s.formErr = ""
	s.formFocus = 0
	for i, in := range s.formInputs() {
		in.SetValue("")
		if i == 0 {
			in.Focus()
		} else {
			in.Blur()
		}
	}
	s.maxScore.SetValue("100")
}

func (s *assignmentsState) closeForm() {
	s.formOpen = false
	for _, in := range s.formInputs() {
		in.Blur()
	}
}

func (s *assignmentsState) cycleFormFocus(back bool) {
	inputs := s.formInputs()
	inputs[s.formFocus].Blur()
	if back {
		s.formFocus = (s.formFocus + len(inputs) - 1) % len(inputs)
	} else {
		s.formFocus = (s.formFocus + 1) % len(inputs)
	}
	inputs[s.formFocus].Focus()
}

func (s *assignmentsState) updateForm(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, in := range s.formInputs() {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// buildCreate validates the form into a create payload.
func (s *assignmentsState) buildCreate() (model.AssignmentCreate, string) {
	title := strings.TrimSpace(s.title.Value())
	if title == "" {
		return model.AssignmentCreate{}, "Название обязательно"
	}

	maxScore := 100.0
	if v := strings.TrimSpace(s.maxScore.Value()); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return model.AssignmentCreate{}, "Максимальный балл должен быть положительным числом"
		}
		maxScore = parsed
	}

	req := model.AssignmentCreate{
		Title:       title,
		Description: strings.TrimSpace(s.description.Value()),
		MaxScore:    maxScore,
	}
	if v := strings.TrimSpace(s.deadline.Value()); v != "" {
		deadline, err := time.Parse(deadlineLayout, v)
		if err != nil {
			return model.AssignmentCreate{}, "Срок сдачи в формате ГГГГ-ММ-ДД"
		}
		req.Deadline = &deadline
	}
	return req, ""
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) loadAssignments() tea.Cmd {
	tick := m.spinner.Start("Загрузка заданий...")
	client, snaps, userID := m.client, m.snaps, m.user.ID

	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		items, err := client.Assignments(ctx)
		if err == nil && snaps != nil {
			_ = snaps.PutAssignments(userID, items)
		}
		return assignmentsLoadedMsg{items: items, err: err}
	})
}

func (m *Model) createAssignment(req model.AssignmentCreate) tea.Cmd {
	tick := m.spinner.Start("Сохранение...")
	client := m.client
	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := client.CreateAssignment(ctx, req)
		return assignmentSavedMsg{err: err}
	})
}

func (m *Model) deleteAssignment(id int) tea.Cmd {
	tick := m.spinner.Start("Удаление...")
	client := m.client
	return tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return assignmentDeletedMsg{err: client.DeleteAssignment(ctx, id)}
	})
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (m Model) handleAssignmentsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := &m.assignments
	switch msg.String() {
	case "n":
		s.openForm()
		return m, textinput.Blink
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.items)-1 {
			s.cursor++
		}
	case "d":
		if s.cursor < len(s.items) {
			return m, m.deleteAssignment(s.items[s.cursor].ID)
		}
	}
	return m, nil
}

func (m Model) handleAssignmentFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := &m.assignments
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
	case "enter":
		req, errText := s.buildCreate()
		if errText != "" {
			s.formErr = errText
			return m, nil
		}
		s.closeForm()
		return m, m.createAssignment(req)
	}
	return m, s.updateForm(msg)
}

func (m Model) onAssignmentsLoaded(msg assignmentsLoadedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		return m, m.toast.Show(components.ToastError, errorText(msg.err))
	}
	m.assignments.items = msg.items
	m.assignments.loaded = true
	if m.assignments.cursor >= len(msg.items) {
		m.assignments.cursor = 0
	}
	return m, nil
}

func (m Model) onAssignmentSaved(msg assignmentSavedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		return m, m.toast.Show(components.ToastError, errorText(msg.err))
	}
	return m, tea.Batch(
		m.toast.Show(components.ToastSuccess, "Задание создано"),
		m.loadAssignments(),
	)
}

func (m Model) onAssignmentDeleted(msg assignmentDeletedMsg) (Model, tea.Cmd) {
	m.spinner.Stop()
	if msg.err != nil {
		return m, m.toast.Show(components.ToastError, errorText(msg.err))
	}
	return m, tea.Batch(
		m.toast.Show(components.ToastSuccess, "Задание удалено"),
		m.loadAssignments(),
	)
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) viewAssignments() string {
	t := m.theme
	s := m.assignments

	var b strings.Builder
	b.WriteString(t.Title.Render("📝 Управление заданиями") + "\n")
	if s.formOpen {
		b.WriteString(m.viewAssignmentForm())
		return b.String()
	}
	b.WriteString(t.Hint.Render("n создать · d удалить · ↑/↓ выбор") + "\n\n")

	if !s.loaded {
		b.WriteString(t.Muted.Render("Задания ещё не загружены. Нажмите r."))
		return b.String()
	}
	if len(s.items) == 0 {
		b.WriteString(t.Muted.Render("Заданий пока нет."))
		return b.String()
	}

	for i, a := range s.items {
		line := util.PadRight(util.TruncateWidth(a.Title, 40), 42) +
			util.PadRight("макс. "+util.FormatScore(a.MaxScore), 14)
		if a.Deadline != nil {
			line += "до " + a.Deadline.Format("02.01.2006")
		}
		if i == s.cursor {
			b.WriteString(t.Selected.Render("▶ "+line) + "\n")
		} else {
			b.WriteString(t.Value.Render("  "+line) + "\n")
		}
	}
	return b.String()
}

func (m Model) viewAssignmentForm() string {
	t := m.theme
	s := m.assignments

	var b strings.Builder
	b.WriteString(t.Hint.Render("enter сохранить · tab следующее поле · esc отмена") + "\n\n")
	b.WriteString(t.Label.Render("Название *") + "\n" + s.title.View() + "\n")
	b.WriteString(t.Label.Render("Описание") + "\n" + s.description.View() + "\n")
	b.WriteString(t.Label.Render("Макс. балл") + "\n" + s.maxScore.View() + "\n")
	b.WriteString(t.Label.Render("Срок сдачи") + "\n" + s.deadline.View() + "\n")
	if s.formErr != "" {
		b.WriteString("\n" + t.Error.Render(s.formErr) + "\n")
	}
	return b.String()
}
