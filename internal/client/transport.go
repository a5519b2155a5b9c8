// ABOUTME: RoundTripper that stamps each request with a request id and the bearer credential
// ABOUTME: The credential is read per request so a logout takes effect immediately

package client

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request correlation id
const RequestIDHeader = "X-Request-ID"

type bearerTransport struct {
	base  http.RoundTripper
	token func() string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if tok := t.token(); tok != "" {
		(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(r)
	}
	return t.base.RoundTrip(r)
}
