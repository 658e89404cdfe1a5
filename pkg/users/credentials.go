package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/bookshelf/pkg/auth"
)

var (
	// ErrAccountNotFound is returned at login when the email is not registered
	ErrAccountNotFound = errors.New("account does not exist")

	// ErrInvalidCredentials is returned at login when the password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DefaultPasswordCost is the bcrypt cost used for stored password hashes
const DefaultPasswordCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyCredentials checks an email and password pair and returns the account
func (r *Repository) VerifyCredentials(ctx context.Context, email, password string) (*auth.User, error) {
	user, err := r.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		// a malformed stored hash is an operator problem, not a bad password
		return nil, fmt.Errorf("failed to compare password for user %d: %w", user.ID, err)
	}

	return user, nil
}
