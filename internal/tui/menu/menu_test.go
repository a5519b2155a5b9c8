// ABOUTME: Tests for the dashboard navigation menu
// ABOUTME: Validates entries and action labels

package menu

import (
	"strings"
	"testing"
)

func TestMenuOptions(t *testing.T) {
	if len(options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(options))
	}
	if options[1].value != ActionVehicles || options[1].description != "Gestión de vehículos" {
		t.Errorf("unexpected vehicles entry: %+v", options[1])
	}
}

func TestMenuStartsOnEntry(t *testing.T) {
	m := New(ActionVehicles)
	if m.selected != ActionVehicles {
		t.Errorf("expected cursor on vehicles, got %v", m.selected)
	}
	if !strings.Contains(m.View(), "Panel de control") {
		t.Error("expected entries in the view")
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionDashboard, "Dashboard"},
		{ActionVehicles, "Vehículos"},
		{ActionLogout, "Cerrar sesión"},
		{ActionQuit, "Salir"},
		{Action(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.action.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
