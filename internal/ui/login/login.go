// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login is the sign-in screen: email and password inputs, an
// inline error banner, and fill shortcuts for the seeded test accounts.
package login

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/auth"
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/ui/components"
	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SucceededMsg is published to the app shell when a login completes.
type SucceededMsg struct {
	User model.User
}

// resultMsg carries the gateway's answer back onto the event loop.
type resultMsg struct {
	user model.User
	err  error
}

// =============================================================================
// MODEL
// =============================================================================

const (
	focusEmail = iota
	focusPassword
)

// Test accounts seeded by the backend, offered as fill shortcuts.
const (
	testTeacherEmail    = "teacher@example.com"
	testTeacherPassword = "teacher123"
	testStudentEmail    = "student1@example.com"
	testStudentPassword = "student123"
)

// Model is the login screen.
type Model struct {
	gateway *auth.Gateway
	theme   *styles.Theme

	email    textinput.Model
	password textinput.Model
	focus    int

	spinner components.Spinner
	errText string

	showTestAccounts bool
	width, height    int
}

// New creates the login screen.
func New(gateway *auth.Gateway, theme *styles.Theme, showTestAccounts bool) Model {
	email := textinput.New()
	email.Placeholder = "example@mail.com"
	email.CharLimit = 128
	email.Width = 36
	email.Focus()

	password := textinput.New()
	password.Placeholder = "••••••••"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 36

	return Model{
		gateway:          gateway,
		theme:            theme,
		email:            email,
		password:         password,
		spinner:          components.NewSpinner(theme),
		showTestAccounts: showTestAccounts,
		width:            80,
		height:           24,
	}
}

// Reset clears the form, for returning to the screen after a forced
// logout.
func (m *Model) Reset() {
	m.email.SetValue("")
	m.password.SetValue("")
	m.errText = ""
	m.focus = focusEmail
	m.email.Focus()
	m.password.Blur()
	m.spinner.Stop()
}

// SetError shows a banner message, used by the app shell to explain a
// forced logout.
func (m *Model) SetError(text string) {
	m.errText = text
}

// SetSize updates the layout bounds.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Init is the Bubble Tea init hook.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles events for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.spinner.Active() {
			// Ignore typing while a login is in flight.
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.toggleFocus()
			return m, nil
		case "enter":
			return m.submit()
		case "f1":
			if m.showTestAccounts {
				m.fill(testTeacherEmail, testTeacherPassword)
			}
			return m, nil
		case "f2":
			if m.showTestAccounts {
				m.fill(testStudentEmail, testStudentPassword)
			}
			return m, nil
		}

	case resultMsg:
		m.spinner.Stop()
		if msg.err != nil {
			m.errText = loginErrorText(msg.err)
			return m, nil
		}
		return m, func() tea.Msg { return SucceededMsg{User: msg.user} }
	}

	var cmds []tea.Cmd
	if cmd := m.spinner.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) toggleFocus() {
	if m.focus == focusEmail {
		m.focus = focusPassword
		m.email.Blur()
		m.password.Focus()
	} else {
		m.focus = focusEmail
		m.password.Blur()
		m.email.Focus()
	}
}

func (m *Model) fill(email, password string) {
	m.email.SetValue(email)
	m.password.SetValue(password)
	m.errText = ""
}

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errText = "Введите email и пароль"
		return m, nil
	}

	m.errText = ""
	tick := m.spinner.Start("Вход...")
	gateway := m.gateway
	return m, tea.Batch(tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		user, err := gateway.Login(ctx, email, password)
		return resultMsg{user: user, err: err}
	})
}

// loginErrorText maps gateway failures to the banner text.
func loginErrorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return "Введите email и пароль"
	case api.IsUnreachable(err):
		return "Сервер недоступен. Проверьте подключение."
	case api.IsTimeout(err):
		return "Превышено время ожидания ответа"
	}
	if detail := api.Detail(err); detail != "" {
		return detail
	}
	return "Ошибка входа: " + err.Error()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the login screen.
func (m Model) View() string {
	t := m.theme

	var b strings.Builder
	b.WriteString(t.Title.Render("📚 Academic Gradebook") + "\n")
	b.WriteString(t.Muted.Render("Система цифровой зачётной ведомости") + "\n\n")

	b.WriteString(t.Label.Render("Email") + "\n")
	b.WriteString(m.inputStyle(focusEmail).Render(m.email.View()) + "\n")
	b.WriteString(t.Label.Render("Пароль") + "\n")
	b.WriteString(m.inputStyle(focusPassword).Render(m.password.View()) + "\n")

	if m.errText != "" {
		b.WriteString("\n" + t.Error.Render(m.errText) + "\n")
	}
	if m.spinner.Active() {
		b.WriteString("\n" + m.spinner.View() + "\n")
	}

	b.WriteString("\n" + t.Hint.Render("enter войти · tab переключить поле") + "\n")
	if m.showTestAccounts {
		b.WriteString(t.Hint.Render("Тестовые аккаунты: F1 преподаватель · F2 студент") + "\n")
	}

	card := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Indigo).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

func (m Model) inputStyle(field int) lipgloss.Style {
	if m.focus == field {
		return m.theme.InputFocus
	}
	return m.theme.InputBlur
}
