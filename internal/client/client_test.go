// ABOUTME: Tests for the fleet API client transport and error handling
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVehicles_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/vehiculos" {
			t.Errorf("expected path /api/vehiculos, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 7, "nombre": "Volqueta", "placa": "ABC-1234"}},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	vehicles, err := c.Vehicles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(vehicles))
	}
	if vehicles[0].Plate != "ABC-1234" {
		t.Errorf("expected plate ABC-1234, got %s", vehicles[0].Plate)
	}
}

func TestVehicles_MissingDataIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 0}`))
	}))
	defer server.Close()

	c := New(server.URL)
	vehicles, err := c.Vehicles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicles == nil || len(vehicles) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", vehicles)
	}
}

func TestVehicles_NullData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": null}`))
	}))
	defer server.Close()

	vehicles, err := New(server.URL).Vehicles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 0 {
		t.Errorf("expected no vehicles, got %d", len(vehicles))
	}
}

func TestVehicles_ConnectionError(t *testing.T) {
	c := New("http://localhost:99999")
	_, err := c.Vehicles(context.Background())
	if err == nil {
		t.Error("expected connection error, got nil")
	}
}

func TestVehicles_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	c := New(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := c.Vehicles(ctx)
	if err == nil || err.Error() != "request canceled" {
		t.Errorf("expected request canceled, got %v", err)
	}
}

func TestVehicles_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Vehicles(ctx)
	if err == nil || err.Error() != "request timed out" {
		t.Errorf("expected request timed out, got %v", err)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message wins", `{"message":"Placa duplicada","error":"Conflict"}`, "Placa duplicada"},
		{"error used when message empty", `{"message":"","error":"Conflict"}`, "Conflict"},
		{"error only", `{"error":"Bad Request"}`, "Bad Request"},
		{"no fields", `{"detail":"x"}`, "backend returned status 409"},
		{"not json", `<html>oops</html>`, "backend returned status 409"},
		{"array body", `["x"]`, "backend returned status 409"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(server.URL).Vehicles(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusConflict {
				t.Errorf("expected status 409, got %d", apiErr.StatusCode)
			}
			if Message(err) != tt.want {
				t.Errorf("expected message %q, got %q", tt.want, Message(err))
			}
		})
	}
}

func TestMessage(t *testing.T) {
	if Message(nil) != "" {
		t.Error("expected empty message for nil error")
	}
	if got := Message(errors.New("   ")); got != FallbackMessage {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := Message(errors.New("boom")); got != "boom" {
		t.Errorf("expected transport message, got %q", got)
	}
}

func TestBearerHeaderAndRequestID(t *testing.T) {
	var auth, reqID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		reqID = r.Header.Get(RequestIDHeader)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	token := "abc.def.ghi"
	c := New(server.URL, WithCredential(func() string { return token }))
	if _, err := c.Vehicles(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer abc.def.ghi" {
		t.Errorf("expected bearer header, got %q", auth)
	}
	if reqID == "" {
		t.Error("expected a request id")
	}

	token = ""
	if _, err := c.Vehicles(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "" {
		t.Errorf("expected no authorization header after logout, got %q", auth)
	}
}

func TestUnauthorized_RunsHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token expirado"}`))
	}))
	defer server.Close()

	calls := 0
	c := New(server.URL,
		WithCredential(func() string { return "abc.def.ghi" }),
		WithUnauthorizedHandler(func(context.Context) { calls++ }),
	)
	_, err := c.Vehicles(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if Message(err) != "Token expirado" {
		t.Errorf("expected backend message, got %q", Message(err))
	}
	if calls != 1 {
		t.Errorf("expected hook to run once, ran %d times", calls)
	}
}

func TestUnauthorized_AnonymousRequestSkipsHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	calls := 0
	c := New(server.URL, WithUnauthorizedHandler(func(context.Context) { calls++ }))
	_, err := c.Vehicles(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected hook not to run, ran %d times", calls)
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	c := New("http://example.test/api///")
	if c.BaseURL() != "http://example.test/api" {
		t.Errorf("unexpected base url %q", c.BaseURL())
	}
}
