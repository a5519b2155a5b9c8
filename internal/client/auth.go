// ABOUTME: Sign-in and password recovery endpoints
// ABOUTME: Login responses are validated and the user object is normalized into a session profile

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/session"
)

// MinTokenLength is the shortest credential a login response may carry
const MinTokenLength = 10

// ErrInvalidLoginResponse is returned when the login payload fails validation
var ErrInvalidLoginResponse = errors.New("invalid login response")

// LoginResponse is the validated result of a sign-in
type LoginResponse struct {
	Token   string
	User    map[string]any
	Profile *session.Profile
}

type loginPayload struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

// Login calls POST /auth/login. The request is validated before any network call.
func (c *Client) Login(ctx context.Context, req fleet.LoginRequest) (*LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var payload loginPayload
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &payload); err != nil {
		return nil, err
	}
	if err := validateLogin(payload); err != nil {
		return nil, err
	}

	resp := &LoginResponse{Token: payload.Token, User: payload.User}
	if payload.User != nil {
		resp.Profile = session.ProfileFromFields(payload.User)
	}
	return resp, nil
}

func validateLogin(p loginPayload) error {
	if len(p.Token) < MinTokenLength {
		return fmt.Errorf("%w: Token inválido", ErrInvalidLoginResponse)
	}
	if p.User == nil {
		return nil
	}
	if v, ok := p.User["email"]; ok && v != nil {
		email, isString := v.(string)
		if !isString || fleet.Validate.Var(email, "email") != nil {
			return fmt.Errorf("%w: email inválido", ErrInvalidLoginResponse)
		}
	}
	if v, ok := p.User["name"]; ok && v != nil {
		if _, isString := v.(string); !isString {
			return fmt.Errorf("%w: nombre inválido", ErrInvalidLoginResponse)
		}
	}
	return nil
}

// ForgotPassword calls POST /auth/forgot-password
func (c *Client) ForgotPassword(ctx context.Context, req fleet.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", req, nil)
}
