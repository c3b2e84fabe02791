// gradebook TUI - a terminal client for the Academic Gradebook.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/auth"
	"github.com/jeranaias/gradebook-tui/internal/cache"
	"github.com/jeranaias/gradebook-tui/internal/cli"
	"github.com/jeranaias/gradebook-tui/internal/config"
	"github.com/jeranaias/gradebook-tui/internal/router"
	"github.com/jeranaias/gradebook-tui/internal/session"
	"github.com/jeranaias/gradebook-tui/internal/ui/login"
	"github.com/jeranaias/gradebook-tui/internal/ui/student"
	"github.com/jeranaias/gradebook-tui/internal/ui/styles"
	"github.com/jeranaias/gradebook-tui/internal/ui/teacher"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference so the forced-logout signal can reach the
// event loop from the client's goroutine.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		os.Exit(cli.HandleLogin(args))
	case cli.CmdLogout:
		os.Exit(cli.HandleLogout(args))
	case cli.CmdWhoami:
		os.Exit(cli.HandleWhoami(args))
	case cli.CmdReport:
		os.Exit(cli.HandleReport(args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	case cli.CmdVersion:
		os.Exit(cli.HandleVersion())
	case cli.CmdHelp:
		os.Exit(cli.HandleHelp())
	}
}

// =============================================================================
// TUI STARTUP
// =============================================================================

func runTUI(args cli.Args) {
	cfg := config.Global()

	store, err := cli.OpenSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session store: %v\n", err)
		os.Exit(1)
	}

	// The snapshot cache is best-effort; the TUI works without it.
	var snaps *cache.Cache
	if dir, derr := cli.SessionDir(cfg); derr == nil {
		if c, cerr := cache.Open(filepath.Join(dir, "snapshots.db")); cerr == nil {
			snaps = c
			defer snaps.Close()
		} else if args.Verbose {
			fmt.Fprintf(os.Stderr, "warning: snapshot cache unavailable: %v\n", cerr)
		}
	}

	client := cli.NewClient(cfg, store)
	m := NewModel(cfg, store, client, snaps)

	// Reload config on file changes; the shell rewires on the message.
	watcher, err := config.NewWatcher(func(reloaded *config.Config) {
		send(configReloadedMsg{cfg: reloaded})
	})
	if err == nil {
		if werr := watcher.Watch(); werr == nil {
			defer watcher.Close()
		}
	} else if args.Verbose {
		fmt.Fprintf(os.Stderr, "warning: config watcher unavailable: %v\n", err)
	}

	// A 401 anywhere kills the session exactly once; the shell routes
	// back to the login screen when this arrives.
	client.SetInvalidationHandler(func() {
		send(sessionInvalidatedMsg{})
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running gradebook: %v\n", err)
		os.Exit(1)
	}
}

func send(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// State represents the current application screen.
type State int

const (
	StateLoading State = iota // Before session hydration completes
	StateLogin
	StateTeacher
	StateStudent
)

// Shell-level messages.
type hydratedMsg struct{}

type sessionInvalidatedMsg struct{}

type configReloadedMsg struct {
	cfg *config.Config
}

// Model is the main Bubble Tea model for the application.
type Model struct {
	state State
	theme *styles.Theme

	cfg     *config.Config
	store   *session.Store
	client  *api.Client
	gateway *auth.Gateway
	snaps   *cache.Cache

	loginModel   login.Model
	teacherModel teacher.Model
	studentModel student.Model

	width  int
	height int
}

// NewModel creates the application model.
func NewModel(cfg *config.Config, store *session.Store, client *api.Client, snaps *cache.Cache) *Model {
	theme := styles.NewTheme()
	m := &Model{
		state:   StateLoading,
		theme:   theme,
		cfg:     cfg,
		store:   store,
		client:  client,
		gateway: auth.NewGateway(client, store),
		snaps:   snaps,
		width:   100,
		height:  30,
	}
	m.loginModel = login.New(m.gateway, theme, cfg.UI.ShowTestAccounts)
	return m
}

// currentRoute maps the shell state onto a route for the resolver.
func (m *Model) currentRoute() router.Route {
	switch m.state {
	case StateTeacher:
		return router.RouteTeacher
	case StateStudent:
		return router.RouteStudent
	default:
		return router.RouteLogin
	}
}

func stateForRoute(r router.Route) State {
	switch r {
	case router.RouteTeacher:
		return StateTeacher
	case router.RouteStudent:
		return StateStudent
	default:
		return StateLogin
	}
}

// resolve applies the route decision for the current state, switching
// screens when the resolver says so. All navigation flows through
// here; no screen switches itself.
func (m *Model) resolve() tea.Cmd {
	decision := router.Resolve(m.store.Hydrated(), m.store.Current(), m.currentRoute())
	switch decision.Outcome {
	case router.Unresolved:
		m.state = StateLoading
		return nil
	case router.Authorized:
		if m.state == StateLoading {
			return m.enter(stateForRoute(m.currentRoute()))
		}
		return nil
	default:
		return m.enter(stateForRoute(decision.To))
	}
}

// enter builds the screen for a state and returns its init command.
func (m *Model) enter(s State) tea.Cmd {
	m.state = s
	switch s {
	case StateLogin:
		m.loginModel.Reset()
		m.loginModel.SetSize(m.width, m.height)
		return m.loginModel.Init()
	case StateTeacher:
		m.teacherModel = teacher.New(m.client, m.snaps, m.store.Current().User, m.theme)
		m.teacherModel.SetSize(m.width, m.height)
		return m.teacherModel.Init()
	case StateStudent:
		m.studentModel = student.New(m.client, m.snaps, m.store.Current().User, m.theme)
		m.studentModel.SetSize(m.width, m.height)
		return m.studentModel.Init()
	}
	return nil
}

// Init hydrates the persisted session off the event loop.
func (m *Model) Init() tea.Cmd {
	store := m.store
	return tea.Batch(
		func() tea.Msg {
			store.Hydrate()
			return hydratedMsg{}
		},
		m.loginModel.Init(),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the active screen and handles the
// shell-level ones itself.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.loginModel.SetSize(msg.Width, msg.Height)
		switch m.state {
		case StateTeacher:
			m.teacherModel.SetSize(msg.Width, msg.Height)
		case StateStudent:
			m.studentModel.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case hydratedMsg:
		return m, m.resolve()

	case sessionInvalidatedMsg:
		// The client already cleared the store; route to login and say
		// why the user landed there.
		cmd := m.resolve()
		m.loginModel.SetError("Сессия истекла. Войдите снова.")
		return m, cmd

	case configReloadedMsg:
		return m, m.onConfigReloaded(msg.cfg)

	case login.SucceededMsg:
		return m, m.resolve()

	case teacher.LogoutRequestedMsg, student.LogoutRequestedMsg:
		return m, m.logout()
	}

	var cmd tea.Cmd
	switch m.state {
	case StateLogin:
		m.loginModel, cmd = m.loginModel.Update(msg)
	case StateTeacher:
		m.teacherModel, cmd = m.teacherModel.Update(msg)
	case StateStudent:
		m.studentModel, cmd = m.studentModel.Update(msg)
	}
	return m, cmd
}

// logout drops the session and purges the user's cached snapshots.
func (m *Model) logout() tea.Cmd {
	userID := m.store.Current().User.ID
	if m.gateway.Logout() && m.snaps != nil && userID != 0 {
		_ = m.snaps.Purge(userID)
	}
	return m.resolve()
}

// onConfigReloaded rewires the client stack against the new config and
// rebuilds the current screen so everything holds the fresh pointers.
func (m *Model) onConfigReloaded(cfg *config.Config) tea.Cmd {
	m.cfg = cfg
	m.client = cli.NewClient(cfg, m.store)
	m.client.SetInvalidationHandler(func() {
		send(sessionInvalidatedMsg{})
	})
	m.gateway = auth.NewGateway(m.client, m.store)
	m.loginModel = login.New(m.gateway, m.theme, cfg.UI.ShowTestAccounts)
	m.loginModel.SetSize(m.width, m.height)

	if m.state == StateLoading {
		return nil
	}
	return m.enter(m.state)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen.
func (m *Model) View() string {
	switch m.state {
	case StateLogin:
		return m.loginModel.View()
	case StateTeacher:
		return m.teacherModel.View()
	case StateStudent:
		return m.studentModel.View()
	default:
		return m.theme.Muted.Render("Загрузка сессии...")
	}
}
