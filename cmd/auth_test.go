// ABOUTME: Tests for the login, logout, whoami and forgot-password commands
// ABOUTME: Runs each command against the fake fleet API with a temp config directory

package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fuelwise/fuelwise-cli/internal/config"
	"github.com/fuelwise/fuelwise-cli/internal/fleettest"
	"github.com/fuelwise/fuelwise-cli/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	srv := setupCLI(t)
	addAccount(t, srv, "ana", 2)
	loginUsername, loginPassword = " ana ", "secreto"

	code, out := run(runLogin)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Sesión iniciada como Ana (Supervisor)")
	assert.Contains(t, out, "Correo:      ana@fuelwise.test")
	assert.Contains(t, out, "Registrar:   no")
	assert.Contains(t, out, "Exportar:    sí")

	_, err := os.Stat(filepath.Join(configDir, kvstore.FileName))
	assert.NoError(t, err, "session is persisted for later invocations")
}

func TestLogin_JSON(t *testing.T) {
	srv := setupCLI(t)
	addAccount(t, srv, "admin", 1)
	loginUsername, loginPassword = "admin", "secreto"
	jsonOutput = true

	code, out := run(runLogin)
	require.Equal(t, 0, code, out)

	var info whoami
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.True(t, info.Authenticated)
	assert.Equal(t, "Administrador", info.Role)
	assert.True(t, info.Permissions.CanCreateVehicles)
	require.NotNil(t, info.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *info.ExpiresAt, time.Minute)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := setupCLI(t)
	addAccount(t, srv, "ana", 2)
	loginUsername, loginPassword = "ana", "incorrecta"

	code, out := run(runLogin)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Error: Credenciales inválidas")

	code, _ = run(runWhoami)
	assert.Equal(t, 1, code, "no session after a rejected login")
}

func TestLogin_InvalidInputSkipsNetwork(t *testing.T) {
	srv := setupCLI(t)
	loginUsername, loginPassword = "an", ""

	code, out := run(runLogin)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Usuario requerido")
	assert.Contains(t, out, "Contraseña requerida")
	assert.Empty(t, srv.Requests())
}

func TestLogin_ExpiredCredential(t *testing.T) {
	srv := setupCLI(t)
	srv.AddAccount("ana", fleettest.Account{
		Password: "secreto",
		Token:    fleettest.Token(t, time.Now().Add(-time.Minute), map[string]any{"sub": "ana"}),
		User:     map[string]any{"name": "Ana", "rolId": 2},
	})
	loginUsername, loginPassword = "ana", "secreto"

	code, out := run(runLogin)
	assert.Equal(t, 1, code, out)

	code, _ = run(runWhoami)
	assert.Equal(t, 1, code)
}

func TestLogin_ServerError(t *testing.T) {
	srv := setupCLI(t)
	addAccount(t, srv, "ana", 2)
	srv.FailNext(500, map[string]string{"error": "Servicio no disponible"})
	loginUsername, loginPassword = "ana", "secreto"

	code, out := run(runLogin)
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "Error: Servicio no disponible")
}

func TestWhoami_NoSession(t *testing.T) {
	setupCLI(t)

	code, out := run(runWhoami)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "No hay sesión activa.")

	jsonOutput = true
	code, out = run(runWhoami)
	assert.Equal(t, 1, code)
	assert.JSONEq(t, `{"authenticated":false,"permissions":{"CanViewVehicles":false,"CanCreateVehicles":false,"CanExportVehicles":false}}`, out)
}

func TestWhoami_AfterLogin(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "oscar", 3)

	code, out := run(runWhoami)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Oscar (Operador)")
	assert.Contains(t, out, "Ver flota:   no")
}

func TestLogout(t *testing.T) {
	srv := setupCLI(t)
	signIn(t, srv, "ana", 2)

	code, out := run(runLogout)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Sesión cerrada.")

	code, _ = run(runWhoami)
	assert.Equal(t, 1, code)
}

func TestForgotPassword(t *testing.T) {
	srv := setupCLI(t)
	forgotIdentifier = " ana@fuelwise.test "

	code, out := run(runForgot)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "te enviamos un enlace")
	assert.Equal(t, []string{"ana@fuelwise.test"}, srv.Forgotten())
}

func TestForgotPassword_Invalid(t *testing.T) {
	srv := setupCLI(t)
	forgotIdentifier = "  "

	code, out := run(runForgot)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Ingresa tu usuario o correo")
	assert.Empty(t, srv.Requests())
}

func TestSessionInRedis(t *testing.T) {
	srv := setupCLI(t)
	mr := miniredis.RunT(t)
	t.Setenv("FUELWISE_REDIS_URL", "redis://"+mr.Addr())
	storeBackend = config.StoreRedis

	token := signIn(t, srv, "ana", 2)
	stored, err := mr.Get(kvstore.DefaultRedisPrefix + kvstore.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	code, out := run(runWhoami)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Ana (Supervisor)")

	code, _ = run(runLogout)
	require.Equal(t, 0, code)
	assert.False(t, mr.Exists(kvstore.DefaultRedisPrefix+kvstore.KeyToken))
}
