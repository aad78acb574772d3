package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
)

func requireSQLite(t *testing.T) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Skipf("sqlite3 driver unavailable: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("sqlite3 driver unavailable (requires CGO): %v", err)
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	requireSQLite(t)
	ctx := context.Background()

	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    "file:" + filepath.Join(t.TempDir(), "test.db") + "?_fk=1",
	}}
	db, cleanup, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	require.NoError(t, db.Migrate(ctx))
	// migrating twice is a no-op
	require.NoError(t, db.Migrate(ctx))

	for _, table := range Tables {
		var name string
		err := db.SQL.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name).Scan(&name)
		require.NoError(t, err, table.Name)
		assert.Equal(t, table.Name, name)
	}

	_, err = db.SQL.ExecContext(ctx, "INSERT INTO user_progress (user_id, version, entries, history, mastered, needs_review, updated_at) VALUES ('ghost', 1, '{}', '[]', '[]', '[]', CURRENT_TIMESTAMP)")
	assert.Error(t, err, "progress rows need an existing user")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, _, err := Open(&config.Config{Database: config.DatabaseConfig{Driver: "mysql"}}, nil)
	assert.Error(t, err)
}
