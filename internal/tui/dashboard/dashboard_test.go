// ABOUTME: Tests for dashboard component
// ABOUTME: Validates the user card placeholders and permission-gated fleet KPIs

package dashboard

import (
	"strings"
	"testing"

	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/session"
)

func sampleVehicles() []fleet.Vehicle {
	return []fleet.Vehicle{
		{ID: 1, Name: "Volqueta", Availability: "Disponible", FuelPerKm: 0.4, FuelCapacity: 300},
		{ID: 2, Name: "Excavadora", Availability: "En Mantenimiento", FuelPerKm: 0.8, FuelCapacity: 400},
	}
}

func TestDashboardView_Supervisor(t *testing.T) {
	s := session.Session{
		Credential:      "x.y.z",
		IsAuthenticated: true,
		Profile:         &session.Profile{Name: "Ana", Email: "ana@fuelwise.test", Role: "Supervisor", RoleID: 2},
	}
	d := New(s, 120, 30)
	d.SetVehicles(sampleVehicles())
	view := d.View()

	for _, expected := range []string{"Dashboard", "Ana", "ana@fuelwise.test", "Supervisor", "Flota", "Disponibles", "700"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestDashboardView_OperatorHidesFleet(t *testing.T) {
	s := session.Session{
		Credential:      "x.y.z",
		IsAuthenticated: true,
		Profile:         &session.Profile{Name: "Omar", RoleID: 3},
	}
	d := New(s, 120, 30)
	d.SetVehicles(sampleVehicles())
	view := d.View()

	if strings.Contains(view, "Flota") {
		t.Error("expected fleet KPIs to be hidden for operators")
	}
	if !strings.Contains(view, "Operador") {
		t.Error("expected resolved role name")
	}
}

func TestDashboardView_Loading(t *testing.T) {
	s := session.Session{Credential: "x", IsAuthenticated: true, Profile: &session.Profile{RoleID: 1}}
	view := New(s, 100, 30).View()
	if !strings.Contains(view, "Cargando vehículos") {
		t.Errorf("expected loading hint, got:\n%s", view)
	}
}

func TestDisplayPlaceholders(t *testing.T) {
	if DisplayName(nil) != DefaultName {
		t.Error("expected name placeholder for nil profile")
	}
	if DisplayEmail(&session.Profile{Name: "Ana"}) != DefaultEmail {
		t.Error("expected email placeholder")
	}
	if DisplayName(&session.Profile{Name: "Ana"}) != "Ana" {
		t.Error("expected profile name")
	}
}
