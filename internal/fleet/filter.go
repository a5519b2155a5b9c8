// ABOUTME: Client-side filtering, pagination and summary figures over a loaded vehicle list
// ABOUTME: Everything here is pure so exports and screens derive from the same filtered slice

package fleet

import "strings"

// DefaultPageSize is the number of rows per page
const DefaultPageSize = 10

// Filter narrows a vehicle list. Zero fields match everything.
type Filter struct {
	Term         string
	TypeID       int
	Availability string
}

// Match reports whether v passes every active criterion
func (f Filter) Match(v Vehicle) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Term)); term != "" {
		found := false
		for _, field := range []string{v.Name, v.Plate, v.Brand, v.Model} {
			if strings.Contains(strings.ToLower(field), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.TypeID != 0 && v.TypeID != f.TypeID {
		return false
	}
	if want := strings.ToLower(strings.TrimSpace(f.Availability)); want != "" {
		if strings.ToLower(strings.TrimSpace(v.Availability)) != want {
			return false
		}
	}
	return true
}

// Apply returns the vehicles matching f, preserving order
func (f Filter) Apply(vehicles []Vehicle) []Vehicle {
	out := make([]Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

// IsZero reports whether the filter matches everything
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Term) == "" && f.TypeID == 0 && strings.TrimSpace(f.Availability) == ""
}

// Pages returns the page count for n items
func Pages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (n + size - 1) / size
}

// ClampPage keeps page within 1..Pages(n, size)
func ClampPage(page, n, size int) int {
	last := max(Pages(n, size), 1)
	return max(1, min(page, last))
}

// Paginate returns the 1-based page of items
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = ClampPage(page, len(items), size)
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// Window returns the 1-based first and last row numbers shown on page
func Window(page, n, size int) (from, to int) {
	if n == 0 {
		return 0, 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	page = ClampPage(page, n, size)
	return (page-1)*size + 1, min(page*size, n)
}

// Summary holds the headline figures of a vehicle list
type Summary struct {
	Total         int
	Available     int
	Maintenance   int
	Unavailable   int
	AvgFuelPerKm  float64
	TotalCapacity float64
}

// Stats computes a Summary. Vehicles with unrecognized availability count
// toward the total only.
func Stats(vehicles []Vehicle) Summary {
	s := Summary{Total: len(vehicles)}
	var consumption float64
	for _, v := range vehicles {
		if a, ok := NormalizeAvailability(v.Availability); ok {
			switch a {
			case Available:
				s.Available++
			case Maintenance:
				s.Maintenance++
			case Unavailable:
				s.Unavailable++
			}
		}
		consumption += v.FuelPerKm
		s.TotalCapacity += v.FuelCapacity
	}
	if s.Total > 0 {
		s.AvgFuelPerKm = consumption / float64(s.Total)
	}
	return s
}
