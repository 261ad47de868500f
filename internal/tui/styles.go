// Package tui is the terminal rendition of the intake wizard and the
// renderers the CLI shares with it.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	Primary     = lipgloss.Color("#1E3A8A")
	Accent      = lipgloss.Color("#10B981")
	Muted       = lipgloss.Color("#6B7280")
	Destructive = lipgloss.Color("#E53935")
	Warning     = lipgloss.Color("#FFC107")
)

// Styles groups every style the renderers use.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Label     lipgloss.Style
	Focused   lipgloss.Style
	Body      lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Badge     lipgloss.Style
	Card      lipgloss.Style
	Help      lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns the standard styles.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(Accent).MarginBottom(1),
		Label:     lipgloss.NewStyle().Width(labelWidth),
		Focused:   lipgloss.NewStyle().Width(labelWidth).Bold(true).Foreground(Accent),
		Body:      lipgloss.NewStyle(),
		Bold:      lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(Muted),
		Error:     lipgloss.NewStyle().Foreground(Destructive),
		Success:   lipgloss.NewStyle().Foreground(Accent),
		Badge:     lipgloss.NewStyle().Bold(true).Foreground(Warning),
		Card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Muted).Padding(0, 1).MarginBottom(1),
		Help:      lipgloss.NewStyle().Foreground(Muted).MarginTop(1),
		Separator: lipgloss.NewStyle().Foreground(Muted),
	}
}

// PlainStyles renders without any decoration, for pipes and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Header: plain, Label: plain.Width(labelWidth), Focused: plain.Width(labelWidth),
		Body: plain, Bold: plain, Muted: plain, Error: plain, Success: plain,
		Badge: plain, Card: plain, Help: plain, Separator: plain,
	}
}

const labelWidth = 34
