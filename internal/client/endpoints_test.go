// ABOUTME: Endpoint tests against the in-process fake fleet backend
// ABOUTME: Covers login normalization, searches, writes and validation before network

package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/fleettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFake(t *testing.T) (*fleettest.Server, string) {
	t.Helper()
	srv := fleettest.New(t)
	token := fleettest.Token(t, time.Now().Add(time.Hour), map[string]any{"name": "Ana"})
	srv.AddAccount("ana", fleettest.Account{
		Password: "secreto",
		Token:    token,
		User:     map[string]any{"id": 4, "name": "Ana", "email": "ana@example.com", "idRol": "2"},
	})
	return srv, token
}

func TestLogin_NormalizesProfile(t *testing.T) {
	srv, token := newFake(t)
	c := New(srv.URL)

	resp, err := c.Login(context.Background(), fleet.LoginRequest{Username: "ana", Password: "secreto"})
	require.NoError(t, err)

	assert.Equal(t, token, resp.Token)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "Ana", resp.Profile.Name)
	assert.Equal(t, 4, resp.Profile.ID)
	assert.Equal(t, "Supervisor", resp.Profile.Role)
	assert.Equal(t, 2, resp.Profile.RoleID)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv, _ := newFake(t)

	_, err := New(srv.URL).Login(context.Background(), fleet.LoginRequest{Username: "ana", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Credenciales inválidas", Message(err))
}

func TestLogin_ValidatesBeforeNetwork(t *testing.T) {
	srv, _ := newFake(t)

	_, err := New(srv.URL).Login(context.Background(), fleet.LoginRequest{Username: "an", Password: "x"})
	_, isField := fleet.AsFieldErrors(err)
	assert.True(t, isField)
	assert.Empty(t, srv.Requests())
}

func TestLogin_RejectsShortToken(t *testing.T) {
	srv, _ := newFake(t)
	srv.AddAccount("bob", fleettest.Account{Password: "pw", Token: "short"})

	_, err := New(srv.URL).Login(context.Background(), fleet.LoginRequest{Username: "bob", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidLoginResponse)
}

func TestLogin_RejectsBadEmail(t *testing.T) {
	srv, _ := newFake(t)
	srv.AddAccount("bob", fleettest.Account{
		Password: "pw",
		Token:    "0123456789abcdef",
		User:     map[string]any{"email": "not-an-email"},
	})

	_, err := New(srv.URL).Login(context.Background(), fleet.LoginRequest{Username: "bob", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidLoginResponse)
}

func TestLogin_WithoutUser(t *testing.T) {
	srv, _ := newFake(t)
	srv.AddAccount("bob", fleettest.Account{Password: "pw", Token: "0123456789abcdef"})

	resp, err := New(srv.URL).Login(context.Background(), fleet.LoginRequest{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	assert.Nil(t, resp.Profile)
}

func TestForgotPassword(t *testing.T) {
	srv, _ := newFake(t)
	c := New(srv.URL)

	require.NoError(t, c.ForgotPassword(context.Background(), fleet.ForgotPasswordRequest{Identifier: " ana@example.com "}))
	assert.Equal(t, []string{"ana@example.com"}, srv.Forgotten())

	err := c.ForgotPassword(context.Background(), fleet.ForgotPasswordRequest{Identifier: "a"})
	_, isField := fleet.AsFieldErrors(err)
	assert.True(t, isField)
	assert.Len(t, srv.Forgotten(), 1)
}

func TestAuthenticatedListing(t *testing.T) {
	srv, token := newFake(t)
	c := New(srv.URL, WithCredential(func() string { return token }))
	ctx := context.Background()

	types, err := c.VehicleTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 3)

	vehicles, err := c.Vehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, vehicles, 3)

	found, err := c.SearchVehicles(ctx, fleet.Filter{TypeID: 2})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "XYZ-9876", found[0].Plate)

	found, err = c.SearchVehiclesByTerm(ctx, "toyota")
	require.NoError(t, err)
	require.Len(t, found, 1)

	reqs := srv.Requests()
	assert.Equal(t, "/api/vehiculos/search?tipoMaquinariaId=2", reqs[2].Path)
	for _, r := range reqs {
		assert.Equal(t, "Bearer "+token, r.Authorization)
		assert.NotEmpty(t, r.RequestID)
	}
}

func TestSearchQuerySkipsEmptyCriteria(t *testing.T) {
	q := SearchQuery(fleet.Filter{Term: "  ", Availability: "Disponible"})
	assert.Equal(t, "disponible=Disponible", q.Encode())
}

func TestCreateAndUpdateVehicle(t *testing.T) {
	srv, token := newFake(t)
	c := New(srv.URL, WithCredential(func() string { return token }))
	ctx := context.Background()

	in := fleet.VehicleInput{
		Name: "Grúa", Plate: "GRU-0001", Brand: "Liebherr", Model: "LTM",
		TypeID: 1, Availability: "Disponible", FuelPerKm: 0.9, FuelCapacity: 250,
	}
	created, err := c.CreateVehicle(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)

	in.Availability = "En Mantenimiento"
	updated, err := c.UpdateVehicle(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "En Mantenimiento", updated.Availability)

	_, err = c.UpdateVehicle(ctx, 99, in)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Vehículo no encontrado", apiErr.Message)
}

func TestCreateVehicle_DuplicateFromBackend(t *testing.T) {
	srv, token := newFake(t)
	c := New(srv.URL, WithCredential(func() string { return token }))

	_, err := c.CreateVehicle(context.Background(), fleet.VehicleInput{
		Name: "Otra", Plate: "ABC-1234", Brand: "Volvo", Model: "FH",
		TypeID: 1, Availability: "Disponible", FuelPerKm: 1, FuelCapacity: 1,
	})
	assert.Contains(t, Message(err), "placa")
}

func TestCreateVehicle_InvalidPlateNeverReachesBackend(t *testing.T) {
	srv, token := newFake(t)
	c := New(srv.URL, WithCredential(func() string { return token }))

	_, err := c.CreateVehicle(context.Background(), fleet.VehicleInput{
		Name: "Otra", Plate: "abc1234", Brand: "Volvo", Model: "FH",
		TypeID: 1, Availability: "Disponible", FuelPerKm: 1, FuelCapacity: 1,
	})
	fe, ok := fleet.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, fleet.MsgPlateFormat, fe["placa"])
	assert.Empty(t, srv.Requests())
}

func TestRevokedCredentialTriggersLogoutHook(t *testing.T) {
	srv, token := newFake(t)
	srv.Revoke(token)

	loggedOut := false
	c := New(srv.URL,
		WithCredential(func() string { return token }),
		WithUnauthorizedHandler(func(context.Context) { loggedOut = true }),
	)
	_, err := c.Vehicles(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, loggedOut)
}

func TestServerErrorMessage(t *testing.T) {
	srv, token := newFake(t)
	srv.FailNext(http.StatusInternalServerError, map[string]string{"error": "Base de datos caída"})

	_, err := New(srv.URL, WithCredential(func() string { return token })).VehicleTypes(context.Background())
	assert.Equal(t, "Base de datos caída", Message(err))
}
