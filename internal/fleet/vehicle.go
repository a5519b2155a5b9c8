// ABOUTME: Vehicle domain types as served by the fleet backend
// ABOUTME: Availability values are normalized here so every caller agrees on the three states

package fleet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxTankCapacity is the largest fuel tank the UI gauge scales against, in liters
const MaxTankCapacity = 500.0

// Vehicle is one fleet vehicle
type Vehicle struct {
	ID           int     `json:"id"`
	Name         string  `json:"nombre"`
	Plate        string  `json:"placa"`
	Brand        string  `json:"marca"`
	Model        string  `json:"modelo"`
	TypeID       int     `json:"tipoMaquinariaId"`
	Availability string  `json:"disponible"`
	FuelPerKm    float64 `json:"consumoCombustibleKm"`
	FuelCapacity float64 `json:"capacidadCombustible"`
}

// VehicleType is a machinery category
type VehicleType struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

// TypeIndex maps type ids to display names
type TypeIndex map[int]string

// IndexTypes builds a TypeIndex
func IndexTypes(types []VehicleType) TypeIndex {
	idx := make(TypeIndex, len(types))
	for _, t := range types {
		idx[t.ID] = t.Name
	}
	return idx
}

// Name returns the display name of a type, empty when unknown
func (idx TypeIndex) Name(id int) string {
	return idx[id]
}

// Availability is the operational state of a vehicle
type Availability string

const (
	Available   Availability = "Disponible"
	Maintenance Availability = "En Mantenimiento"
	Unavailable Availability = "No Disponible"
)

// Availabilities lists the states in display order
var Availabilities = []Availability{Available, Maintenance, Unavailable}

// NormalizeAvailability maps a backend value onto the enum, ignoring case,
// surrounding space and accents. Unknown values map to Unavailable with ok=false.
func NormalizeAvailability(raw string) (Availability, bool) {
	key := foldKey(raw)
	for _, a := range Availabilities {
		if foldKey(string(a)) == key {
			return a, true
		}
	}
	return Unavailable, false
}

// TankPercent returns the capacity as a share of MaxTankCapacity, clamped to 0..100
func TankPercent(capacity float64) float64 {
	p := capacity / MaxTankCapacity * 100
	return max(0, min(100, p))
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
