// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the gradebook
// TUI. All colors use Lip Gloss AdaptiveColor for automatic light/dark
// detection.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// COLORS
// =============================================================================

// Indigo - Primary accent, selections, the active tab
var Indigo = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}

// Cyan - Teacher role badge, info text
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Success states, student role badge, completed work
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, failed requests, overdue deadlines
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, stale cached data, pending grades
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Surface colors
var (
	Surface    = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}
)

// Text colors
var (
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds all configured lip gloss styles.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	App       lipgloss.Style
	Container lipgloss.Style

	// Header
	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	HeaderUser   lipgloss.Style
	TeacherBadge lipgloss.Style
	StudentBadge lipgloss.Style

	// Tabs
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	TabGap    lipgloss.Style

	// Forms
	Label      lipgloss.Style
	InputFocus lipgloss.Style
	InputBlur  lipgloss.Style
	Hint       lipgloss.Style

	// Content
	Title    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Value    lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Footer
	StatusBar lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
}

// NewTheme creates a theme with all styles configured.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Background(SurfaceDim).
		Padding(0, 2)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)
	t.HeaderUser = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.TeacherBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1)
	t.StudentBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Emerald).
		Padding(0, 1)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)
	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Underline(true).
		Padding(0, 2)
	t.TabGap = lipgloss.NewStyle().Foreground(Overlay)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.InputFocus = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(0, 1)
	t.InputBlur = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)
	t.Selected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Indigo)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Value = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Success = lipgloss.NewStyle().Foreground(Emerald)
	t.Error = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.Warning = lipgloss.NewStyle().Foreground(Amber)
	t.Info = lipgloss.NewStyle().Foreground(Cyan)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}
