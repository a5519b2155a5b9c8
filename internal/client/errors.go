// ABOUTME: Error types returned by the API client
// ABOUTME: Human messages are pulled from error bodies with a JMESPath expression

package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jmespath-community/go-jmespath"
)

// ErrUnauthorized matches any 401 response
var ErrUnauthorized = errors.New("unauthorized")

// FallbackMessage is shown when no better message exists
const FallbackMessage = "Error de red"

// messageExpr picks the first non-empty human message in an error body
const messageExpr = "message || error"

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

func extractMessage(raw []byte) string {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}
	if _, ok := data.(map[string]any); !ok {
		return ""
	}
	v, err := jmespath.Search(messageExpr, data)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// Message returns the text to show a user for err
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackMessage
}
