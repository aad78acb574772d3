package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
)

// DB bundles the ent driver used for query building with the raw handle
// shared by sqlx readers.
type DB struct {
	Driver  dialect.Driver
	SQL     *sql.DB
	Dialect string
	// DriverName is the database/sql driver name the handle was opened with.
	DriverName string

	release func()
}

// Open connects to the configured database and returns a cleanup func that
// closes it.
func Open(cfg *config.Config, logger logrus.FieldLogger) (*DB, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database driver: %w", err)
	}

	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database dsn: %w", err)
	}

	var db *DB
	switch driver {
	case "postgres":
		db, err = openPostgres(dsn)
	case "pgx":
		db, err = openPgx(cfg, dsn, logger)
	case "sqlite3":
		db, err = OpenSQLite(dsn)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.LogSQL && logger != nil {
		db.Driver = dialect.DebugWithContext(db.Driver, func(_ context.Context, args ...any) {
			logger.WithField("component", "sql").Debug(args...)
		})
	}

	return db, func() {
		_ = db.Driver.Close()
		if db.release != nil {
			db.release()
		}
	}, nil
}

func openPostgres(dsn string) (*DB, error) {
	rawDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}

	return &DB{
		Driver:     entsql.OpenDB(dialect.Postgres, rawDB),
		SQL:        rawDB,
		Dialect:    dialect.Postgres,
		DriverName: "postgres",
	}, nil
}

// OpenSQLite opens a single-connection SQLite handle with foreign keys on.
func OpenSQLite(dsn string) (*DB, error) {
	rawDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}

	return &DB{
		Driver:     entsql.OpenDB(dialect.SQLite, rawDB),
		SQL:        rawDB,
		Dialect:    dialect.SQLite,
		DriverName: "sqlite3",
	}, nil
}

// Migrate creates or updates the tables the stores need.
func (db *DB) Migrate(ctx context.Context) error {
	migrate, err := schema.NewMigrate(db.Driver, schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
