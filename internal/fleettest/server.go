// ABOUTME: In-process fake of the fleet backend for client and command tests
// ABOUTME: Serves auth and vehicle routes with gorilla/mux over httptest and records every request

package fleettest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// signingKey is only used by the fake; clients never verify signatures
var signingKey = []byte("fleettest")

// Token signs a credential carrying claims and an exp at expires
func Token(t testing.TB, expires time.Time, claims map[string]any) string {
	t.Helper()
	mc := jwt.MapClaims{"exp": expires.Unix()}
	for k, v := range claims {
		mc[k] = v
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(signingKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

// Account is a user the fake accepts at /auth/login
type Account struct {
	Password string
	Token    string
	User     map[string]any
}

// Request is one recorded call
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

type failure struct {
	status int
	body   any
}

// Server is the fake backend
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]Account
	valid     map[string]bool
	vehicles  []fleet.Vehicle
	types     []fleet.VehicleType
	requests  []Request
	forgotten []string
	nextID    int
	failNext  *failure
}

// New starts a fake backend seeded with sample types and vehicles.
// It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: make(map[string]Account),
		valid:    make(map[string]bool),
		types:    SampleTypes(),
		vehicles: SampleVehicles(),
	}
	for _, v := range s.vehicles {
		s.nextID = max(s.nextID, v.ID)
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// SampleTypes returns the seeded machinery types
func SampleTypes() []fleet.VehicleType {
	return []fleet.VehicleType{
		{ID: 1, Name: "Volqueta"},
		{ID: 2, Name: "Excavadora"},
		{ID: 3, Name: "Camioneta"},
	}
}

// SampleVehicles returns the seeded vehicles
func SampleVehicles() []fleet.Vehicle {
	return []fleet.Vehicle{
		{ID: 1, Name: "Volqueta 1", Plate: "ABC-1234", Brand: "Volvo", Model: "FMX", TypeID: 1, Availability: "Disponible", FuelPerKm: 0.4, FuelCapacity: 300},
		{ID: 2, Name: "Excavadora Norte", Plate: "XYZ-9876", Brand: "CAT", Model: "320", TypeID: 2, Availability: "En Mantenimiento", FuelPerKm: 0.8, FuelCapacity: 400},
		{ID: 3, Name: "Camioneta, \"La Roja\"", Plate: "DEF-5555", Brand: "Toyota", Model: "Hilux", TypeID: 3, Availability: "No Disponible", FuelPerKm: 0.3, FuelCapacity: 80},
	}
}

// AddAccount registers a login and marks its token as valid
func (s *Server) AddAccount(username string, acct Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = acct
	s.valid[acct.Token] = true
}

// Revoke makes the API reject token with 401
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.valid, token)
}

// FailNext makes the next request return status with body encoded as JSON
func (s *Server) FailNext(status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = &failure{status: status, body: body}
}

// Requests returns the recorded calls
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Vehicles returns the current vehicle list
func (s *Server) Vehicles() []fleet.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fleet.Vehicle(nil), s.vehicles...)
}

// Forgotten returns identifiers that requested a password reset
func (s *Server) Forgotten() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.forgotten...)
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/auth/login", s.login).Methods("POST")
	r.HandleFunc("/auth/forgot-password", s.forgot).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireToken)
	api.HandleFunc("/tipos-maquinaria", s.listTypes).Methods("GET")
	api.HandleFunc("/vehiculos", s.listVehicles).Methods("GET")
	api.HandleFunc("/vehiculos", s.createVehicle).Methods("POST")
	api.HandleFunc("/vehiculos/search", s.search).Methods("GET")
	api.HandleFunc("/vehiculos/search/{term}", s.searchByTerm).Methods("GET")
	api.HandleFunc("/vehiculos/{id:[0-9]+}", s.updateVehicle).Methods("PUT")
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var raw json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
				body = raw
			}
			r.Body = http.NoBody
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.RequestURI(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		fail := s.failNext
		s.failNext = nil
		s.mu.Unlock()

		if fail != nil {
			writeJSON(w, fail.status, fail.body)
			return
		}
		next.ServeHTTP(w, r.WithContext(withBody(r.Context(), body)))
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		valid := ok && s.valid[token]
		s.mu.Unlock()
		if !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token inválido o expirado"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req fleet.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Solicitud inválida"})
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	s.mu.Unlock()
	if !ok || acct.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Credenciales inválidas"})
		return
	}
	resp := map[string]any{"token": acct.Token}
	if acct.User != nil {
		resp["user"] = acct.User
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) forgot(w http.ResponseWriter, r *http.Request) {
	var req fleet.ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Solicitud inválida"})
		return
	}
	s.mu.Lock()
	s.forgotten = append(s.forgotten, req.Identifier)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Si la cuenta existe, enviaremos instrucciones"})
}

func (s *Server) listTypes(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	types := append([]fleet.VehicleType(nil), s.types...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": types})
}

func (s *Server) listVehicles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.Vehicles()})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typeID, _ := strconv.Atoi(q.Get("tipoMaquinariaId"))
	f := fleet.Filter{Term: q.Get("term"), TypeID: typeID, Availability: q.Get("disponible")}
	writeJSON(w, http.StatusOK, map[string]any{"data": f.Apply(s.Vehicles())})
}

func (s *Server) searchByTerm(w http.ResponseWriter, r *http.Request) {
	f := fleet.Filter{Term: mux.Vars(r)["term"]}
	writeJSON(w, http.StatusOK, map[string]any{"data": f.Apply(s.Vehicles())})
}

func (s *Server) createVehicle(w http.ResponseWriter, r *http.Request) {
	var in fleet.VehicleInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Solicitud inválida"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := fleet.CheckDuplicatePlate(in.Plate, s.vehicles, 0); dup {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "La placa ya está registrada"})
		return
	}
	s.nextID++
	v := vehicleFromInput(s.nextID, in)
	s.vehicles = append(s.vehicles, v)
	writeJSON(w, http.StatusCreated, map[string]any{"data": v})
}

func (s *Server) updateVehicle(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var in fleet.VehicleInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Solicitud inválida"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vehicles {
		if s.vehicles[i].ID != id {
			continue
		}
		if _, dup := fleet.CheckDuplicatePlate(in.Plate, s.vehicles, id); dup {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "La placa ya está registrada"})
			return
		}
		s.vehicles[i] = vehicleFromInput(id, in)
		writeJSON(w, http.StatusOK, map[string]any{"data": s.vehicles[i]})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Vehículo no encontrado"})
}

func vehicleFromInput(id int, in fleet.VehicleInput) fleet.Vehicle {
	return fleet.Vehicle{
		ID:           id,
		Name:         in.Name,
		Plate:        in.Plate,
		Brand:        in.Brand,
		Model:        in.Model,
		TypeID:       in.TypeID,
		Availability: in.Availability,
		FuelPerKm:    in.FuelPerKm,
		FuelCapacity: in.FuelCapacity,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
