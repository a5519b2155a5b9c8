// ABOUTME: Tests for role resolution precedence and the HasRole predicate
// ABOUTME: Includes the field-variant normalization done at the network boundary

package roles

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		roleName string
		roleID   int
		expected string
	}{
		{"name wins over id", "Supervisor", 1, "Supervisor"},
		{"canonical id", "", 2, "Supervisor"},
		{"admin by name", "Administrador", 0, "Administrador"},
		{"operator by id", "", 3, "Operador"},
		{"unknown name passes through", "Auditor", 0, "Auditor"},
		{"unknown name beats unknown id", "Auditor", 42, "Auditor"},
		{"known id beats unknown name", "Auditor", 1, "Administrador"},
		{"name match is case sensitive", "supervisor", 0, "supervisor"},
		{"nothing present", "", 0, NoRole},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Resolve(tc.roleName, tc.roleID))
		})
	}
}

func TestResolve_UnknownIDLabel(t *testing.T) {
	got := Resolve("", 99)
	assert.True(t, strings.Contains(got, "99"), "expected label to embed the raw id, got %q", got)
}

func TestFromFields(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]any
		expected string
	}{
		{"role string", map[string]any{"role": "Operador"}, "Operador"},
		{"rolId float", map[string]any{"rolId": float64(1)}, "Administrador"},
		{"roleId string", map[string]any{"roleId": "2"}, "Supervisor"},
		{"RolId json number", map[string]any{"RolId": json.Number("3")}, "Operador"},
		{"idRol int", map[string]any{"idRol": 2}, "Supervisor"},
		{"first present field wins", map[string]any{"rolId": 3, "idRol": 1}, "Operador"},
		{"null field skipped", map[string]any{"rolId": nil, "roleId": 1}, "Administrador"},
		{"non numeric id ignored", map[string]any{"rolId": "abc"}, NoRole},
		{"empty", map[string]any{}, NoRole},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FromFields(tc.fields).String())
		})
	}
}

func TestHasRole_ExactMatchOnly(t *testing.T) {
	admin := Identity{Name: "Administrador"}

	assert.True(t, HasRole(admin, Admin))
	assert.False(t, HasRole(admin, Supervisor), "admin must not satisfy a supervisor check")
	assert.True(t, HasRole(Identity{ID: 2}, Supervisor))
	assert.False(t, HasRole(Identity{}, Operator))
	assert.False(t, HasRole(admin, Key("UNKNOWN")))
}

func TestPermissionsFor(t *testing.T) {
	tests := []struct {
		name     string
		ident    Identity
		expected Permissions
	}{
		{"admin", Identity{ID: 1}, Permissions{true, true, true}},
		{"supervisor", Identity{Name: "Supervisor"}, Permissions{true, false, true}},
		{"operator", Identity{ID: 3}, Permissions{}},
		{"no role", Identity{}, Permissions{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PermissionsFor(tc.ident))
		})
	}
}
