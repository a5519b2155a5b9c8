// ABOUTME: Compact metric block widget for fleet KPI rows
// ABOUTME: Combines icon, value, optional sparkline and a subtitle in a bordered box

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       22,
		BorderColor: lipgloss.Color("#64748B"),
		TitleColor:  lipgloss.Color("#10B981"),
		ValueColor:  lipgloss.Color("#F1F5F9"),
	}
}

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	return metricBox(icon, title, lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true).Render(value), subtitle, config)
}

// MetricBlockWithSparkline renders a metric block with a sparkline after the value
func MetricBlockWithSparkline(icon icons.Icon, title, value string, spark []float64, subtitle string, config MetricBlockConfig) string {
	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	line := valueStyle.Render(value) + "  " + Sparkline(spark, 8, config.TitleColor)
	return metricBox(icon, title, line, subtitle, config)
}

// CountBlock renders a simple count metric
func CountBlock(icon icons.Icon, title string, count int, label string, config MetricBlockConfig) string {
	return MetricBlock(icon, title, fmt.Sprintf("%d", count), label, config)
}

func metricBox(icon icons.Icon, title, valueLine, subtitle string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))

	// ┌─ title ───┐ spans config.Width cells
	topFill := max(0, config.Width-5-lipgloss.Width(titleStr))
	top := borderStyle.Render("┌─ ") + titleStyle.Render(titleStr) + borderStyle.Render(" "+strings.Repeat("─", topFill)+"┐")

	return strings.Join([]string{
		top,
		boxLine(valueLine, innerWidth, borderStyle),
		boxLine(subtitleStyle.Render(truncate(subtitle, innerWidth)), innerWidth, borderStyle),
		borderStyle.Render("└" + strings.Repeat("─", config.Width-2) + "┘"),
	}, "\n")
}

func boxLine(content string, innerWidth int, border lipgloss.Style) string {
	pad := max(0, innerWidth-lipgloss.Width(content))
	return border.Render("│ ") + " " + content + strings.Repeat(" ", pad) + border.Render("│")
}

// SummaryBlocks renders the fleet KPI row: availability counts, average
// consumption with a per-vehicle sparkline, and total capacity.
func SummaryBlocks(vehicles []fleet.Vehicle, width int) string {
	s := fleet.Stats(vehicles)
	config := DefaultMetricBlockConfig()
	if width > 0 {
		config.Width = max(18, min(26, width/5-1))
	}

	consumption := make([]float64, 0, len(vehicles))
	for _, v := range vehicles {
		consumption = append(consumption, v.FuelPerKm)
	}

	ok := config
	ok.TitleColor = BadgeOKBg
	warn := config
	warn.TitleColor = BadgeWarnBg
	crit := config
	crit.TitleColor = BadgeCritBg

	blocks := []string{
		CountBlock(icons.CheckOK, "Disponibles", s.Available, fmt.Sprintf("de %d vehículos", s.Total), ok),
		CountBlock(icons.Warning, "Mantenimiento", s.Maintenance, "en taller", warn),
		CountBlock(icons.Critical, "No disponibles", s.Unavailable, "fuera de servicio", crit),
		MetricBlockWithSparkline(icons.Fuel, "Consumo prom.", fmt.Sprintf("%.2f", s.AvgFuelPerKm), consumption, "L/Km", config),
		MetricBlock(icons.Tank, "Capacidad", fmt.Sprintf("%.0f", s.TotalCapacity), "litros en total", config),
	}

	// narrow panes get as many blocks per row as fit
	perRow := len(blocks)
	if width > 0 {
		perRow = max(1, min(len(blocks), width/config.Width))
	}
	var rows []string
	for i := 0; i < len(blocks); i += perRow {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks[i:min(i+perRow, len(blocks))]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// truncate shortens a string to maxLen cells with ellipsis if needed
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:max(0, min(len(r), maxLen))])
	}
	for len(r) > 0 && lipgloss.Width(string(r))+3 > maxLen {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
