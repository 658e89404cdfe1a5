package api

import (
	"time"

	"github.com/platinummonkey/bookshelf/pkg/auth"
	"github.com/platinummonkey/bookshelf/pkg/session"
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /user/register
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginResponse carries a freshly issued session token
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public projection of an account
type UserResponse struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Group     auth.GroupName  `json:"group,omitempty"`
	Roles     []auth.RoleName `json:"roles"`
}

// SessionResponse describes one active session without exposing its token
type SessionResponse struct {
	TokenPrefix string    `json:"token_prefix"`
	ExpiresAt   time.Time `json:"expires_at"`
	Current     bool      `json:"current"`
}

// StatusResponse is a minimal acknowledgement body
type StatusResponse struct {
	Status string `json:"status"`
}

// RevokedResponse reports how many sessions a mass logout removed
type RevokedResponse struct {
	Revoked int `json:"revoked"`
}

func newUserResponse(u *auth.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.RoleNames(),
	}
	if u.Group != nil {
		resp.Group = u.Group.Name
	}
	if resp.Roles == nil {
		resp.Roles = []auth.RoleName{}
	}
	return resp
}

func newSessionResponses(records []session.Record, current string) []SessionResponse {
	out := make([]SessionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, SessionResponse{
			TokenPrefix: session.DisplayPrefix(rec.Token),
			ExpiresAt:   rec.ExpiresAt,
			Current:     rec.Token == current,
		})
	}
	return out
}
