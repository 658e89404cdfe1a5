package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/bookshelf/pkg/auth"
)

var (
	// ErrUserNotFound is returned when no account matches a lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned at registration when the email is already registered
	ErrEmailTaken = errors.New("email already taken")
)

const selectUser = `
	SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.group_id,
	       u.created_at, u.updated_at, g.name
	FROM users u
	JOIN groups g ON g.id = u.group_id
`

const selectGroupRoles = `
	SELECT r.id, r.name
	FROM roles r
	JOIN group_role gr ON gr.role_id = r.id
	WHERE gr.group_id = $1
	ORDER BY r.id
`

const insertUser = `
	INSERT INTO users (email, password_hash, first_name, last_name, group_id)
	SELECT $1, $2, $3, $4, g.id FROM groups g WHERE g.name = $5
	ON CONFLICT (email) DO NOTHING
	RETURNING id
`

// Repository loads and creates accounts with their group and roles
type Repository struct {
	db   *sql.DB
	cost int
}

var _ auth.UserFinder = (*Repository)(nil)

// RepositoryOption configures a Repository
type RepositoryOption func(*Repository)

// WithPasswordCost sets the bcrypt cost for passwords hashed at registration
func WithPasswordCost(cost int) RepositoryOption {
	return func(r *Repository) {
		r.cost = cost
	}
}

// NewRepository creates a new user repository
func NewRepository(db *sql.DB, opts ...RepositoryOption) *Repository {
	r := &Repository{db: db, cost: DefaultPasswordCost}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewAccount holds the fields supplied at registration
type NewAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string

	// Group defaults to CONSUMER
	Group auth.GroupName
}

// Create inserts an account and returns it with group and roles joined.
// A duplicate email yields ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, account NewAccount) (*auth.User, error) {
	email := strings.TrimSpace(account.Email)
	group := account.Group
	if group == "" {
		group = auth.GroupConsumer
	}
	if !group.Valid() {
		return nil, fmt.Errorf("unknown group %q", group)
	}

	hash, err := HashPassword(account.Password, r.cost)
	if err != nil {
		return nil, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, insertUser,
		email, hash, account.FirstName, account.LastName, group,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		// either the email conflicted or the group row is missing
		var taken bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&taken); err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("group %s is not seeded", group)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := r.findOne(ctx, "WHERE u.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load created user %d: %w", id, err)
	}
	return user, nil
}

// FindByID returns the user with group and roles joined, or nil when absent
func (r *Repository) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	user, err := r.findOne(ctx, "WHERE u.id = $1", id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

// FindByEmail returns the user registered under email or ErrUserNotFound
func (r *Repository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, "WHERE u.email = $1", email)
}

func (r *Repository) findOne(ctx context.Context, where string, arg interface{}) (*auth.User, error) {
	var user auth.User
	group := &auth.Group{}

	err := r.db.QueryRowContext(ctx, selectUser+where, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.GroupID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&group.Name,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	group.ID = user.GroupID
	group.Roles, err = r.groupRoles(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	user.Group = group

	return &user, nil
}

func (r *Repository) groupRoles(ctx context.Context, groupID int64) ([]auth.Role, error) {
	rows, err := r.db.QueryContext(ctx, selectGroupRoles, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group roles: %w", err)
	}
	defer rows.Close()

	var roles []auth.Role
	for rows.Next() {
		var role auth.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}

	return roles, nil
}
