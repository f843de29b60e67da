package repository

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(Migrations(), "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{
		"00001_users.sql",
		"00002_accounts.sql",
		"00003_sessions.sql",
		"00004_verifications.sql",
	}, files)

	for _, name := range files {
		body, err := fs.ReadFile(Migrations(), name)
		require.NoError(t, err)
		require.Contains(t, string(body), "-- +goose Up", name)
		require.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestMapErr(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, mapErr(pgx.ErrNoRows), ErrNotFound)

	dup := mapErr(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"})
	require.ErrorIs(t, dup, ErrDuplicate)

	other := errors.New("conn reset")
	require.Equal(t, other, mapErr(other))
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	name, blank := "Ada", "  "
	require.Equal(t, "Ada", (&User{Name: &name}).DisplayName("User"))
	require.Equal(t, "User", (&User{Name: &blank}).DisplayName("User"))
	require.Equal(t, "User", (&User{}).DisplayName("User"))
	require.Equal(t, "User", (*User)(nil).DisplayName("User"))
}
