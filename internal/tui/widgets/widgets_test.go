// ABOUTME: Tests for the gauge, badge, sparkline and gate widgets
// ABOUTME: Checks rendered text and widths, colors are not asserted

package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/tui/icons"
)

func TestVisibleIf(t *testing.T) {
	called := false
	render := func() string { called = true; return "x" }

	if got := VisibleIf(false, render); got != "" || called {
		t.Errorf("hidden subtree rendered: %q called=%v", got, called)
	}
	if got := VisibleIf(true, nil); got != "" {
		t.Errorf("expected empty for nil render, got %q", got)
	}
	if got := VisibleIf(true, render); got != "x" {
		t.Errorf("expected x, got %q", got)
	}
}

func TestAvailabilityLevel(t *testing.T) {
	tests := []struct {
		raw      string
		expected StatusLevel
	}{
		{"Disponible", StatusOK},
		{" disponible ", StatusOK},
		{"En Mantenimiento", StatusWarning},
		{"en mantenimiento", StatusWarning},
		{"No Disponible", StatusCritical},
		{"Averiado", StatusCritical},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			if got := AvailabilityLevel(tc.raw); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestAvailabilityBadge(t *testing.T) {
	if !strings.Contains(AvailabilityBadge(""), "N/A") {
		t.Error("expected N/A for empty availability")
	}
	if !strings.Contains(AvailabilityBadge("en mantenimiento"), "en mantenimiento") {
		t.Error("expected raw text kept in the chip")
	}
}

func TestProgressBar(t *testing.T) {
	config := DefaultProgressBarConfig()
	config.Width = 10

	bar := ProgressBar(50, config)
	if strings.Count(bar, "█") != 5 || strings.Count(bar, "░") != 5 {
		t.Errorf("expected half filled bar, got %q", bar)
	}
	if got := ProgressBar(250, config); strings.Count(got, "█") != 10 {
		t.Errorf("expected clamp to full, got %q", got)
	}
	if got := ProgressBar(-5, config); strings.Count(got, "█") != 0 {
		t.Errorf("expected clamp to empty, got %q", got)
	}
}

func TestTankGauge(t *testing.T) {
	gauge := TankGauge(fleet.MaxTankCapacity/2, 10)
	if !strings.Contains(gauge, "250 L") {
		t.Errorf("expected liters label, got %q", gauge)
	}
	if strings.Count(gauge, "█") != 5 {
		t.Errorf("expected half tank, got %q", gauge)
	}
}

func TestSparkline(t *testing.T) {
	if Sparkline(nil, 8, "") != "" {
		t.Error("expected empty sparkline for no values")
	}
	line := Sparkline([]float64{1, 2, 3}, 6, "")
	if lipgloss.Width(line) != 6 {
		t.Errorf("expected 6 cells, got %d (%q)", lipgloss.Width(line), line)
	}
	if !strings.HasSuffix(line, "█") || !strings.HasPrefix(line, "▁") {
		t.Errorf("expected low padding and a high last point, got %q", line)
	}
	flat := Sparkline([]float64{2, 2}, 2, "")
	if flat != "▅▅" {
		t.Errorf("expected mid blocks for flat data, got %q", flat)
	}
}

func TestSummaryBlocks_WidthsAndFigures(t *testing.T) {
	vehicles := []fleet.Vehicle{
		{Availability: "Disponible", FuelPerKm: 0.5, FuelCapacity: 200},
		{Availability: "No Disponible", FuelPerKm: 0.3, FuelCapacity: 150},
	}
	out := SummaryBlocks(vehicles, 120)
	for _, expected := range []string{"Disponibles", "de 2 vehículos", "0.40", "350"} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected %q in:\n%s", expected, out)
		}
	}

	config := DefaultMetricBlockConfig()
	block := MetricBlock(icons.Tank, "Capacidad", "350", "litros", config)
	for _, line := range strings.Split(block, "\n") {
		if w := lipgloss.Width(line); w != config.Width {
			t.Errorf("expected line width %d, got %d: %q", config.Width, w, line)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Mantenimiento", 8); got != "Mante..." {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := truncate("corto", 8); got != "corto" {
		t.Errorf("unexpected truncation %q", got)
	}
}
