package users

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/bookshelf/pkg/auth"
)

// RootCredential is a root account to create at seed time
type RootCredential struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// SeedFile is the on-disk seed document.
//
//	root_users:
//	  - email: admin@example.com
//	    password: change-me
//	    first_name: Ada
//	    last_name: Admin
type SeedFile struct {
	RootUsers []RootCredential `yaml:"root_users"`
}

// LoadSeedFile reads and validates a seed document
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a seed document
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, cred := range seed.RootUsers {
		if strings.TrimSpace(cred.Email) == "" {
			return nil, fmt.Errorf("root_users[%d]: email is required", i)
		}
		if cred.Password == "" {
			return nil, fmt.Errorf("root_users[%d]: password is required", i)
		}
	}

	return &seed, nil
}

// Seeder creates the role, group, and root account rows the API depends on.
// Every statement is idempotent so seeding can run on each start.
type Seeder struct {
	db     *sql.DB
	logger *logrus.Logger
	cost   int
}

// NewSeeder creates a seeder. cost is the bcrypt cost for root passwords.
func NewSeeder(db *sql.DB, logger *logrus.Logger, cost int) *Seeder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cost <= 0 {
		cost = DefaultPasswordCost
	}
	return &Seeder{db: db, logger: logger, cost: cost}
}

// Seed writes roles, groups, group roles, and the given root users in one transaction
func (s *Seeder) Seed(ctx context.Context, seed *SeedFile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	s.logger.Debug("seeding roles")
	for _, role := range auth.AllRoles() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			role,
		); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role, err)
		}
	}

	s.logger.Debug("seeding groups")
	for _, group := range auth.AllGroups() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO groups (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			group,
		); err != nil {
			return fmt.Errorf("failed to seed group %s: %w", group, err)
		}
	}

	s.logger.Debug("associating roles with groups")
	for _, group := range auth.AllGroups() {
		for _, role := range auth.RolesForGroup(group) {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO group_role (group_id, role_id)
				SELECT g.id, r.id FROM groups g, roles r
				WHERE g.name = $1 AND r.name = $2
				ON CONFLICT DO NOTHING
			`, group, role); err != nil {
				return fmt.Errorf("failed to link role %s to group %s: %w", role, group, err)
			}
		}
	}

	created := 0
	if seed != nil {
		s.logger.Debug("creating root users")
		for _, cred := range seed.RootUsers {
			hash, err := HashPassword(cred.Password, s.cost)
			if err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx, `
				INSERT INTO users (email, password_hash, first_name, last_name, group_id)
				SELECT $1, $2, $3, $4, g.id FROM groups g WHERE g.name = $5
				ON CONFLICT (email) DO NOTHING
			`, strings.TrimSpace(cred.Email), hash, cred.FirstName, cred.LastName, auth.GroupRoot)
			if err != nil {
				return fmt.Errorf("failed to create root user %s: %w", cred.Email, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				created++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"roles":      len(auth.AllRoles()),
		"groups":     len(auth.AllGroups()),
		"root_users": created,
	}).Info("database seeded")

	return nil
}
