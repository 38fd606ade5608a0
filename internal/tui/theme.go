package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the dashboard.
type Theme struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Heading   lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	TabActive lipgloss.Style
	Tab       lipgloss.Style
	Bar       lipgloss.Style
	Gauge     lipgloss.Style
	Muted     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Primary   lipgloss.Color
	Border    lipgloss.Color
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#0ea5e9"),
	Border:  lipgloss.Color("#404040"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Heading: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#38bdf8")).
		MarginTop(1),
	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#d4d4d4")),
	Value: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	TabActive: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#0ea5e9")).
		Padding(0, 1),
	Tab: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		Padding(0, 1),
	Bar: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f97316")),
	Gauge: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0ea5e9")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")),
	Info: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")),
	Error: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ef4444")),
	Success: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
}
