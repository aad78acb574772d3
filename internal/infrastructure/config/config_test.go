package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseDriver(t *testing.T) {
	cases := map[string]string{
		"":           "sqlite3",
		"SQLite":     "sqlite3",
		"postgresql": "postgres",
		"pgx":        "pgx",
	}
	for in, want := range cases {
		cfg := &Config{Database: DatabaseConfig{Driver: in}}
		got, err := cfg.DatabaseDriver()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := (&Config{Database: DatabaseConfig{Driver: "oracle"}}).DatabaseDriver()
	assert.Error(t, err)
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver:   "postgres",
		Host:     "db",
		Port:     5433,
		Name:     "srs",
		User:     "app",
		Password: "p@ss",
		SSLMode:  "disable",
	}}
	dsn, err := cfg.DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss@db:5433/srs?sslmode=disable", dsn)

	cfg.Database.DSN = "postgres://override"
	dsn, err = cfg.DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://override", dsn)

	sqlite := &Config{}
	dsn, err = sqlite.DatabaseURL()
	require.NoError(t, err)
	assert.Contains(t, dsn, "_fk=1")
}

func TestStoreDriver(t *testing.T) {
	for _, in := range []string{"", "sql", "Redis", "file"} {
		_, err := (&Config{Store: StoreConfig{Driver: in}}).StoreDriver()
		assert.NoError(t, err, in)
	}
	_, err := (&Config{Store: StoreConfig{Driver: "s3"}}).StoreDriver()
	assert.Error(t, err)
}
