package database

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/sirupsen/logrus"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
)

// openPgx builds a pgx pool and exposes it through database/sql so ent and
// sqlx can share it.
func openPgx(cfg *config.Config, dsn string, logger logrus.FieldLogger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = 10

	if cfg.Database.LogSQL && logger != nil {
		poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				logger.WithFields(logrus.Fields(data)).WithField("pgx_level", lvl.String()).Debug(msg)
			}),
			LogLevel: tracelog.LogLevelTrace,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	rawDB := stdlib.OpenDBFromPool(pool)
	return &DB{
		Driver:     entsql.OpenDB(dialect.Postgres, rawDB),
		SQL:        rawDB,
		Dialect:    dialect.Postgres,
		DriverName: "pgx",
		release:    pool.Close,
	}, nil
}
