package auth

import (
	"net/http"
	"time"
)

// Role is a persisted role row
type Role struct {
	ID   int64    `json:"id"`
	Name RoleName `json:"name"`
}

// Group is a persisted group row with its roles joined
type Group struct {
	ID    int64     `json:"id"`
	Name  GroupName `json:"name"`
	Roles []Role    `json:"roles"`
}

// User is the authentication projection of an account
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose hash
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	GroupID      int64     `json:"group_id"`
	Group        *Group    `json:"group,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleNames flattens the user's group roles
func (u *User) RoleNames() []RoleName {
	if u == nil || u.Group == nil {
		return nil
	}
	names := make([]RoleName, 0, len(u.Group.Roles))
	for _, role := range u.Group.Roles {
		names = append(names, role.Name)
	}
	return names
}

// FailureReason classifies an unauthenticated result
type FailureReason string

const (
	ReasonNone          FailureReason = ""
	ReasonNoCredentials FailureReason = "no_credentials"
)

// Result is the outcome of authenticating a single request
type Result struct {
	Authenticated bool
	User          *User
	Token         string
	Reason        FailureReason

	// Detail says which step failed; it is for logs and never sent to clients
	Detail string

	// Status is the HTTP status a transport adapter should answer with on failure
	Status     int
	CapturedAt time.Time
}

func authenticated(user *User, token string, at time.Time) Result {
	return Result{
		Authenticated: true,
		User:          user,
		Token:         token,
		Reason:        ReasonNone,
		Status:        http.StatusOK,
		CapturedAt:    at,
	}
}

func noCredentials(detail string, at time.Time) Result {
	return Result{
		Reason:     ReasonNoCredentials,
		Detail:     detail,
		Status:     http.StatusUnauthorized,
		CapturedAt: at,
	}
}

// AuthContext holds the authenticated user and presenting token for a request
type AuthContext struct {
	User  *User
	Token string
}

// Gate returns the permission gate for the context's user
func (ac *AuthContext) Gate() Gate {
	if ac == nil {
		return NewGate(nil)
	}
	return NewGate(ac.User)
}

// HasRole checks if the user's group grants a role
func (ac *AuthContext) HasRole(role RoleName) bool {
	return ac.Gate().Has(role)
}
