package users

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/bookshelf/pkg/auth"
)

func expectStaticSeed(mock sqlmock.Sqlmock) {
	for _, role := range auth.AllRoles() {
		mock.ExpectExec("INSERT INTO roles").WithArgs(string(role)).WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for _, group := range auth.AllGroups() {
		mock.ExpectExec("INSERT INTO groups").WithArgs(string(group)).WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for _, group := range auth.AllGroups() {
		for _, role := range auth.RolesForGroup(group) {
			mock.ExpectExec("INSERT INTO group_role").
				WithArgs(string(group), string(role)).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}
}

func TestSeeder_Seed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger, hook := test.NewNullLogger()

	mock.ExpectBegin()
	expectStaticSeed(mock)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("admin@example.com", sqlmock.AnyArg(), "Ada", "Admin", string(auth.GroupRoot)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs("existing@example.com", sqlmock.AnyArg(), "Eve", "Existing", string(auth.GroupRoot)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	seed := &SeedFile{RootUsers: []RootCredential{
		{Email: "admin@example.com", Password: "pw", FirstName: "Ada", LastName: "Admin"},
		{Email: "existing@example.com", Password: "pw", FirstName: "Eve", LastName: "Existing"},
	}}

	err = NewSeeder(db, logger, bcrypt.MinCost).Seed(context.Background(), seed)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Data["root_users"])
}

func TestSeeder_Seed_NoRootUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectStaticSeed(mock)
	mock.ExpectCommit()

	logger, _ := test.NewNullLogger()
	err = NewSeeder(db, logger, bcrypt.MinCost).Seed(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_Seed_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO roles").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	logger, _ := test.NewNullLogger()
	err = NewSeeder(db, logger, bcrypt.MinCost).Seed(context.Background(), nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    int
		wantErr bool
	}{
		{
			name: "two root users",
			yaml: `
root_users:
  - email: a@example.com
    password: one
    first_name: A
    last_name: One
  - email: b@example.com
    password: two
`,
			want: 2,
		},
		{
			name: "empty document",
			yaml: ``,
			want: 0,
		},
		{
			name: "missing password",
			yaml: `
root_users:
  - email: a@example.com
`,
			wantErr: true,
		},
		{
			name: "missing email",
			yaml: `
root_users:
  - password: x
`,
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			yaml:    "root_users: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, err := ParseSeed([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, seed.RootUsers, tt.want)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root_users:\n  - email: root@example.com\n    password: pw\n    first_name: Root\n"), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, seed.RootUsers, 1)
	assert.Equal(t, "Root", seed.RootUsers[0].FirstName)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
