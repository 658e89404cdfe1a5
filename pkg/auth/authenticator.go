package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/platinummonkey/bookshelf/pkg/session"
)

// SessionStore is the part of the token store authentication needs
type SessionStore interface {
	LookupUser(ctx context.Context, token string) (userID int64, found bool, err error)
	SweepExpired(ctx context.Context, userID int64) ([]string, error)
	Refresh(ctx context.Context, userID int64, token string) (session.Record, error)
}

// UserFinder loads a user with group and roles joined.
// It returns nil, nil when the user does not exist.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*User, error)
}

// Authenticator resolves the caller of a single request.
//
// The first call to Authenticate does the work; every later call returns the
// same Result and error without touching the store or the user repository.
// Create one Authenticator per request.
type Authenticator struct {
	r     *http.Request
	store SessionStore
	users UserFinder
	now   func() time.Time

	once   sync.Once
	result Result
	err    error
}

// AuthenticatorOption configures an Authenticator
type AuthenticatorOption func(*Authenticator)

// WithNow overrides the clock used to stamp results
func WithNow(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthenticator creates an authenticator for the request
func NewAuthenticator(r *http.Request, store SessionStore, users UserFinder, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		r:     r,
		store: store,
		users: users,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IsAuthenticated reports whether the request carries a live session
func (a *Authenticator) IsAuthenticated(ctx context.Context) (bool, error) {
	res, err := a.Authenticate(ctx)
	return res.Authenticated, err
}

// Authenticate runs the authentication flow once and memoizes the outcome.
// A non-nil error means a dependency failed; the Result is then unauthenticated.
func (a *Authenticator) Authenticate(ctx context.Context) (Result, error) {
	a.once.Do(func() {
		a.result, a.err = a.authenticate(ctx)
	})
	return a.result, a.err
}

func (a *Authenticator) authenticate(ctx context.Context) (Result, error) {
	token, ok := BearerToken(a.r)
	if !ok {
		return noCredentials("missing bearer token", a.now()), nil
	}
	if err := ValidateTokenFormat(token); err != nil {
		return noCredentials("malformed token", a.now()), nil
	}

	userID, found, err := a.store.LookupUser(ctx, token)
	if err != nil {
		return noCredentials("session store unavailable", a.now()), fmt.Errorf("lookup session: %w", err)
	}
	if !found {
		return noCredentials("session not found", a.now()), nil
	}

	removed, err := a.store.SweepExpired(ctx, userID)
	if err != nil {
		return noCredentials("session store unavailable", a.now()), fmt.Errorf("sweep sessions: %w", err)
	}

	if _, err := a.store.Refresh(ctx, userID, token); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			detail := "session not found"
			if contains(removed, token) {
				detail = "session expired"
			}
			return noCredentials(detail, a.now()), nil
		}
		return noCredentials("session store unavailable", a.now()), fmt.Errorf("refresh session: %w", err)
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return noCredentials("user repository unavailable", a.now()), fmt.Errorf("find user %d: %w", userID, err)
	}
	if user == nil {
		return noCredentials("user not found", a.now()), nil
	}

	return authenticated(user, token, a.now()), nil
}

func contains(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}
