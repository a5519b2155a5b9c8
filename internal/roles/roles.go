// ABOUTME: Canonical role table and the resolver that maps heterogeneous role data to it
// ABOUTME: HasRole is the only authorization predicate used by views and commands

package roles

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Key identifies a canonical role
type Key string

const (
	Admin      Key = "ADMIN"
	Supervisor Key = "SUPERVISOR"
	Operator   Key = "OPERADOR"
)

// NoRole is returned when neither a role name nor a role id is present
const NoRole = "Sin rol"

// Role is a canonical role with its display name and numeric id
type Role struct {
	ID   int
	Name string
}

// Canonical is the fixed role table
var Canonical = map[Key]Role{
	Admin:      {ID: 1, Name: "Administrador"},
	Supervisor: {ID: 2, Name: "Supervisor"},
	Operator:   {ID: 3, Name: "Operador"},
}

// resolution order for lookups
var order = []Key{Admin, Supervisor, Operator}

// idFields are the backend field names that may carry a numeric role id
var idFields = []string{"rolId", "roleId", "RolId", "idRol"}

// Resolve maps a role name and/or numeric id to a display name.
// A zero id means no id. Name matches win over id matches.
func Resolve(name string, id int) string {
	for _, k := range order {
		if name == Canonical[k].Name {
			return Canonical[k].Name
		}
	}
	for _, k := range order {
		if id != 0 && id == Canonical[k].ID {
			return Canonical[k].Name
		}
	}
	if name != "" {
		return name
	}
	if id != 0 {
		return fmt.Sprintf("RolId: %d", id)
	}
	return NoRole
}

// Identity is the normalized role information of a user
type Identity struct {
	Name string
	ID   int
}

// String returns the resolved display name
func (i Identity) String() string {
	return Resolve(i.Name, i.ID)
}

// FromFields normalizes a raw backend user object into an Identity.
// The first present id field wins, mirroring the backend's field variants.
func FromFields(fields map[string]any) Identity {
	var ident Identity
	if name, ok := fields["role"].(string); ok {
		ident.Name = name
	}
	for _, f := range idFields {
		v, ok := fields[f]
		if !ok || v == nil {
			continue
		}
		ident.ID = coerceID(v)
		break
	}
	return ident
}

// coerceID converts numbers and numeric strings to an int id, 0 when not integral
func coerceID(v any) int {
	var f float64
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// HasRole reports whether the identity resolves exactly to the given role.
// There is no hierarchy: Admin does not satisfy a Supervisor check.
func HasRole(ident Identity, key Key) bool {
	role, ok := Canonical[key]
	if !ok {
		return false
	}
	return ident.String() == role.Name
}

// Permissions are the feature gates derived from an identity
type Permissions struct {
	CanViewVehicles   bool
	CanCreateVehicles bool
	CanExportVehicles bool
}

// PermissionsFor computes the feature gates for an identity
func PermissionsFor(ident Identity) Permissions {
	admin := HasRole(ident, Admin)
	supervisor := HasRole(ident, Supervisor)
	return Permissions{
		CanViewVehicles:   admin || supervisor,
		CanCreateVehicles: admin,
		CanExportVehicles: admin || supervisor,
	}
}
