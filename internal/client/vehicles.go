// ABOUTME: Vehicle and machinery type endpoints
// ABOUTME: List responses are unwrapped from their data envelope; a missing list reads as empty

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fuelwise/fuelwise-cli/internal/fleet"
)

// VehicleTypes calls GET /api/tipos-maquinaria
func (c *Client) VehicleTypes(ctx context.Context) ([]fleet.VehicleType, error) {
	var types []fleet.VehicleType
	if err := c.do(ctx, http.MethodGet, "/api/tipos-maquinaria", nil, &types); err != nil {
		return nil, err
	}
	return nonNil(types), nil
}

// Vehicles calls GET /api/vehiculos
func (c *Client) Vehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	var vehicles []fleet.Vehicle
	if err := c.do(ctx, http.MethodGet, "/api/vehiculos", nil, &vehicles); err != nil {
		return nil, err
	}
	return nonNil(vehicles), nil
}

// SearchQuery builds the query string for SearchVehicles, skipping empty criteria
func SearchQuery(f fleet.Filter) url.Values {
	q := url.Values{}
	if term := strings.TrimSpace(f.Term); term != "" {
		q.Set("term", term)
	}
	if f.TypeID != 0 {
		q.Set("tipoMaquinariaId", strconv.Itoa(f.TypeID))
	}
	if a := strings.TrimSpace(f.Availability); a != "" {
		q.Set("disponible", a)
	}
	return q
}

// SearchVehicles calls GET /api/vehiculos/search with the filter as query parameters
func (c *Client) SearchVehicles(ctx context.Context, f fleet.Filter) ([]fleet.Vehicle, error) {
	path := "/api/vehiculos/search"
	if q := SearchQuery(f).Encode(); q != "" {
		path += "?" + q
	}
	var vehicles []fleet.Vehicle
	if err := c.do(ctx, http.MethodGet, path, nil, &vehicles); err != nil {
		return nil, err
	}
	return nonNil(vehicles), nil
}

// SearchVehiclesByTerm calls GET /api/vehiculos/search/{term}
func (c *Client) SearchVehiclesByTerm(ctx context.Context, term string) ([]fleet.Vehicle, error) {
	var vehicles []fleet.Vehicle
	path := "/api/vehiculos/search/" + url.PathEscape(term)
	if err := c.do(ctx, http.MethodGet, path, nil, &vehicles); err != nil {
		return nil, err
	}
	return nonNil(vehicles), nil
}

// CreateVehicle calls POST /api/vehiculos. The input is validated before any network call.
func (c *Client) CreateVehicle(ctx context.Context, in fleet.VehicleInput) (*fleet.Vehicle, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return nil, errs
	}
	var v fleet.Vehicle
	if err := c.do(ctx, http.MethodPost, "/api/vehiculos", in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVehicle calls PUT /api/vehiculos/{id}. The input is validated before any network call.
func (c *Client) UpdateVehicle(ctx context.Context, id int, in fleet.VehicleInput) (*fleet.Vehicle, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid vehicle id %d", id)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return nil, errs
	}
	var v fleet.Vehicle
	if err := c.do(ctx, http.MethodPut, "/api/vehiculos/"+strconv.Itoa(id), in, &v); err != nil {
		return nil, err
	}
	if v.ID == 0 {
		v.ID = id
	}
	return &v, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
