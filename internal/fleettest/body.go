// ABOUTME: Carries the recorded request body through the context to handlers
// ABOUTME: The recorder drains the body once so handlers decode from the saved copy

package fleettest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type bodyKey struct{}

func withBody(ctx context.Context, body []byte) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func decodeBody(r *http.Request, out any) error {
	body, _ := r.Context().Value(bodyKey{}).([]byte)
	if len(body) == 0 {
		return errors.New("empty body")
	}
	return json.Unmarshal(body, out)
}
