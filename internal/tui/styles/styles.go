// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Emerald and slate palette with banner, panel and table styles

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#10B981") // Emerald
	Secondary = lipgloss.Color("#84CC16") // Lime
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#64748B") // Slate
	Text      = lipgloss.Color("#F1F5F9") // Light
	BgDark    = lipgloss.Color("#0E1420") // Page background

	// Colors - Extended palette
	Accent  = lipgloss.Color("#34D399") // Lighter emerald for highlights
	Surface = lipgloss.Color("#1E293B") // Elevated surface background
	Info    = lipgloss.Color("#3B82F6") // Blue - informational

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Panels
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Banners
	ErrorBanner = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Danger).
			Foreground(lipgloss.Color("#FECACA")).
			Padding(0, 1)

	SuccessBanner = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Foreground(lipgloss.Color("#A7F3D0")).
			Padding(0, 1)

	// Inline field error under a form
	FieldError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171"))

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Key style for keyboard shortcuts
	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// Value style for emphasized data
	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// Table styles
	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CBD5E1")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(Muted)

	TableSelected = lipgloss.NewStyle().
			Foreground(Text).
			Background(lipgloss.Color("#065F46")).
			Bold(true)
)
