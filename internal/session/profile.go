// ABOUTME: Session value types: the cached user profile and the composite session
// ABOUTME: Role data is normalized into a canonical identity when a profile is built

package session

import (
	"encoding/json"

	"github.com/fuelwise/fuelwise-cli/internal/credential"
	"github.com/fuelwise/fuelwise-cli/internal/roles"
)

// Profile is the denormalized identity shown by the UI
type Profile struct {
	ID     int    `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	RoleID int    `json:"rolId,omitempty"`
}

// Identity returns the role identity of the profile, empty for a nil profile
func (p *Profile) Identity() roles.Identity {
	if p == nil {
		return roles.Identity{}
	}
	return roles.Identity{Name: p.Role, ID: p.RoleID}
}

// ProfileFromFields builds a profile from a raw backend user object,
// collapsing every role field variant into one canonical role.
func ProfileFromFields(fields map[string]any) *Profile {
	if fields == nil {
		return nil
	}
	ident := roles.FromFields(fields)
	p := &Profile{RoleID: ident.ID}
	if ident.Name != "" || ident.ID != 0 {
		p.Role = ident.String()
	}
	p.Name, _ = fields["name"].(string)
	p.Email, _ = fields["email"].(string)
	if id, ok := fields["id"].(float64); ok {
		p.ID = int(id)
	}
	return p
}

// ProfileFromClaims hydrates a profile from credential claims.
// Returns nil when the payload carries no name, email or role.
func ProfileFromClaims(c credential.Claims) *Profile {
	if c.String("name") == "" && c.String("email") == "" && c.String("role") == "" {
		return nil
	}
	return ProfileFromFields(map[string]any(c))
}

// parseProfile decodes a persisted profile; any failure reads as absent
func parseProfile(raw string) *Profile {
	if raw == "" {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return nil
	}
	return ProfileFromFields(fields)
}

// Session is the credential and profile pair
type Session struct {
	Credential      string
	Profile         *Profile
	IsAuthenticated bool
}

// Identity returns the role identity of the signed-in user
func (s Session) Identity() roles.Identity {
	return s.Profile.Identity()
}

// Permissions returns the feature gates for the signed-in user
func (s Session) Permissions() roles.Permissions {
	if !s.IsAuthenticated {
		return roles.Permissions{}
	}
	return roles.PermissionsFor(s.Identity())
}
