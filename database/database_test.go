package database

import (
	"context"
	"testing"

	"feedadmin/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsRepeatable(t *testing.T) {
	db, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, "sqlite"))
	require.NoError(t, Migrate(db, "sqlite"))

	for _, table := range []string{"options", "users", "user_meta", "activity_logs", "sources", "feeds", "feed_caches"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestEnsureAdminCreatesOnce(t *testing.T) {
	db, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db, "sqlite"))

	ctx := context.Background()
	require.NoError(t, EnsureAdmin(ctx, db, "admin", "secret-pass", "admin@example.com"))
	require.NoError(t, EnsureAdmin(ctx, db, "other", "other-pass", "other@example.com"))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count)

	var hash string
	require.NoError(t, db.QueryRow("SELECT password FROM users WHERE login = 'admin'").Scan(&hash))
	assert.True(t, utils.CheckPassword(hash, "secret-pass"))
}
