// ABOUTME: Progress bar widgets used for fuel tank gauges
// ABOUTME: Tank capacity is drawn against the largest tank the fleet supports

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width      int
	LowMark    float64 // Below this percentage the bar is drawn in LowColor
	FullColor  lipgloss.Color
	LowColor   lipgloss.Color
	EmptyColor lipgloss.Color
}

// DefaultProgressBarConfig returns sensible defaults
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:      20,
		LowMark:    20,
		FullColor:  lipgloss.Color("#10B981"), // Emerald
		LowColor:   lipgloss.Color("#F59E0B"), // Amber
		EmptyColor: lipgloss.Color("#334155"), // Slate
	}
}

// ProgressBar renders a bracketed bar filled to percent
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	percent = max(0, min(100, percent))

	filled := int(percent / 100.0 * float64(config.Width))
	color := config.FullColor
	if percent < config.LowMark {
		color = config.LowColor
	}

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)))
	bar.WriteString(lipgloss.NewStyle().Foreground(config.EmptyColor).Render(strings.Repeat("░", config.Width-filled)))
	bar.WriteString("]")
	return bar.String()
}

// TankGauge renders a tank capacity as a bar with the liters alongside
func TankGauge(capacity float64, width int) string {
	config := DefaultProgressBarConfig()
	config.Width = width
	pct := fleet.TankPercent(capacity)
	return fmt.Sprintf("%s %.0f L", ProgressBar(pct, config), capacity)
}
