// ABOUTME: Tests for the vehicles command group
// ABOUTME: Covers role gates, local filtering and paging, server search, and create/update validation

package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/fleettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestedPaths(srv *fleettest.Server) []string {
	var paths []string
	for _, r := range srv.Requests() {
		paths = append(paths, r.Method+" "+r.Path)
	}
	return paths
}

func validForm() fleet.VehicleForm {
	return fleet.VehicleForm{
		Name:         "Camioneta Sur",
		Plate:        "gHi-4321",
		Brand:        "Ford",
		Model:        "Ranger",
		TypeID:       "3",
		Availability: "disponible",
		FuelPerKm:    "0,25",
		FuelCapacity: "80",
	}
}

func TestVehiclesList_NeedsSession(t *testing.T) {
	setupCLI(t)

	code, out := run(runVehiclesList)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "no hay sesión activa")
}

func TestVehiclesList_OperatorDenied(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "oscar", 3)

	code, out := run(runVehiclesList)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Acceso Denegado")
	assert.NotContains(t, strings.Join(requestedPaths(srv), "\n"), "/api/vehiculos")
}

func TestVehiclesList_Human(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "ana", 2)

	code, out := run(runVehiclesList)
	require.Equal(t, 0, code, out)
	for _, expected := range []string{"Placa", "Capacidad (L)", "Volqueta 1", "Excavadora Norte", "XYZ-9876", "Camioneta", "3 vehículos"} {
		assert.Contains(t, out, expected)
	}
}

func TestVehiclesList_FilteredJSON(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "ana", 2)
	filterStatus = "en mantenimiento"
	jsonOutput = true

	code, out := run(runVehiclesList)
	require.Equal(t, 0, code, out)

	var list vehicleList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Vehicles, 1)
	assert.Equal(t, "Excavadora Norte", list.Vehicles[0].Name)
	assert.Equal(t, "Excavadora", list.Vehicles[0].TypeName)
	assert.Zero(t, list.Page, "no paging unless asked")
}

func TestVehiclesList_PageClamped(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "ana", 2)
	listPage = 4
	jsonOutput = true

	code, out := run(runVehiclesList)
	require.Equal(t, 0, code, out)

	var list vehicleList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 1, list.Pages)
	assert.Len(t, list.Vehicles, 3)
}

func TestVehiclesList_NoMatches(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "ana", 2)
	filterTerm = "zzz"

	code, out := run(runVehiclesList)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Ningún vehículo coincide con los filtros.")
}

func TestVehiclesList_RevokedCredentialSignsOut(t *testing.T) {
	srv := setupCLI(t)
	token := signIn(t, srv, "ana", 2)
	srv.Revoke(token)

	code, out := run(runVehiclesList)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Token inválido o expirado")

	code, _ = run(runWhoami)
	assert.Equal(t, 1, code, "401 clears the persisted session")
}

func TestVehiclesSearch_ByTerm(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "ana", 2)
	filterTerm = "volvo"

	code, out := run(runVehiclesSearch)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Volqueta 1")
	assert.NotContains(t, out, "Excavadora Norte")
	assert.Contains(t, requestedPaths(srv), "GET /api/vehiculos/search/volvo")
}

func TestVehiclesSearch_ByQuery(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "ana", 2)
	serverSearch = true
	filterStatus = "No Disponible"
	filterType = 3

	code, out := run(runVehiclesSearch)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "DEF-5555")
	assert.Contains(t, requestedPaths(srv), "GET /api/vehiculos/search?disponible=No+Disponible&tipoMaquinariaId=3")
}

func TestVehicleTypes(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "oscar", 3)
	jsonOutput = true

	code, out := run(runVehicleTypes)
	require.Equal(t, 0, code, out)

	var types []fleet.VehicleType
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	assert.Equal(t, fleettest.SampleTypes(), types)
}

func TestVehicleCreate(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "admin", 1)
	vehicleForm = validForm()

	code, out := run(runVehicleSave)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Vehículo creado correctamente (id 4)")

	vehicles := srv.Vehicles()
	require.Len(t, vehicles, 4)
	created := vehicles[3]
	assert.Equal(t, "GHI-4321", created.Plate)
	assert.Equal(t, string(fleet.Available), created.Availability)
	assert.Equal(t, 0.25, created.FuelPerKm)
}

func TestVehicleCreate_ValidationSkipsNetwork(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "admin", 1)
	vehicleForm = validForm()
	vehicleForm.Plate = "abc-1234"
	vehicleForm.FuelCapacity = "-3"

	code, out := run(runVehicleSave)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Error: datos inválidos")
	assert.Contains(t, out, "placa: La placa ABC-1234 ya está registrada.")
	assert.Contains(t, out, "capacidadCombustible: ")
	assert.NotContains(t, requestedPaths(srv), "POST /api/vehiculos")
	assert.Len(t, srv.Vehicles(), 3)
}

func TestVehicleCreate_SupervisorDenied(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "ana", 2)
	vehicleForm = validForm()

	code, out := run(runVehicleSave)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Acceso Denegado")
}

func TestVehicleUpdate_KeepsOmittedFields(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "admin", 1)
	vehicleID = 2
	vehicleForm = fleet.VehicleForm{Availability: "Disponible"}

	code, out := run(runVehicleSave)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Vehículo actualizado correctamente (id 2)")

	updated := srv.Vehicles()[1]
	assert.Equal(t, "Disponible", updated.Availability)
	assert.Equal(t, "XYZ-9876", updated.Plate)
	assert.Equal(t, 400.0, updated.FuelCapacity)
}

func TestVehicleUpdate_NotFound(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "admin", 1)
	vehicleID = 99

	code, out := run(runVehicleSave)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "vehículo 99 no encontrado")
}

func TestVehicleUpdate_ServerError(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "admin", 1)
	vehicleID = 1
	vehicleForm = fleet.VehicleForm{Name: "Volqueta Uno"}
	srv.FailNext(503, map[string]string{"message": "Mantenimiento programado"})

	code, out := run(runVehicleSave)
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "Error: Mantenimiento programado")
	assert.Equal(t, "Volqueta 1", srv.Vehicles()[0].Name)
}

func TestMergeForm(t *testing.T) {
	base := fleet.FormFromVehicle(fleettest.SampleVehicles()[0])
	merged := mergeForm(base, fleet.VehicleForm{Brand: "Scania", Model: "  "})

	assert.Equal(t, "Scania", merged.Brand)
	assert.Equal(t, "FMX", merged.Model, "blank flags keep the current value")
	assert.Equal(t, base.Plate, merged.Plate)
}

func TestFormatFieldErrors_Sorted(t *testing.T) {
	out := formatFieldErrors(fleet.FieldErrors{"placa": "b", "marca": "a"})
	assert.Equal(t, "Error: datos inválidos\n  marca: a\n  placa: b\n", out)
}
