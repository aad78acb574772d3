package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	adapterrepo "github.com/sabucaps/brazilian/internal/adapter/repository"
	"github.com/sabucaps/brazilian/internal/infrastructure/config"
	"github.com/sabucaps/brazilian/internal/infrastructure/database"
	"github.com/sabucaps/brazilian/internal/infrastructure/tracing"
	"github.com/sabucaps/brazilian/internal/repository"
	"github.com/sabucaps/brazilian/internal/usecase"
	"github.com/sabucaps/brazilian/internal/usecase/backup"
)

const shutdownTimeout = 5 * time.Second

// Tracing marks that the global tracer provider has been set up.
type Tracing struct {
	Enabled bool
}

func ProvideTracing(cfg *config.Config, logger *logrus.Logger) (*Tracing, func(), error) {
	shutdown, err := tracing.Setup(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup tracing: %w", err)
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.WithError(err).Warn("flush traces")
		}
	}
	return &Tracing{Enabled: cfg.Tracing.Enabled}, cleanup, nil
}

// ProvideDatabase opens the configured database and brings its schema up to
// date. The catalog always lives here, whatever the progress store is.
func ProvideDatabase(cfg *config.Config, logger *logrus.Logger) (*database.DB, func(), error) {
	db, cleanup, err := database.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return db, cleanup, nil
}

func ProvideVocabularyRepository(db *database.DB) repository.VocabularyRepository {
	return adapterrepo.NewVocabularyRepository(adapterrepo.NewSQLX(db))
}

// ProvideProgressRepository picks the progress store named by store.driver.
func ProvideProgressRepository(cfg *config.Config, db *database.DB, logger *logrus.Logger) (repository.ProgressRepository, func(), error) {
	driver, err := cfg.StoreDriver()
	if err != nil {
		return nil, nil, err
	}
	log := logger.WithField("store", driver)

	switch driver {
	case config.StoreRedis:
		rdb, cleanup, err := adapterrepo.NewRedisClient(cfg.Store.RedisAddr, cfg.Store.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("addr", cfg.Store.RedisAddr).Info("progress store ready")
		return adapterrepo.NewProgressRedisRepository(rdb, cfg.Store.RedisPrefix), cleanup, nil
	case config.StoreFile:
		repo, err := adapterrepo.NewProgressFileRepository(cfg.Store.FileDir)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("dir", cfg.Store.FileDir).Info("progress store ready")
		return repo, func() {}, nil
	default:
		log.Info("progress store ready")
		return adapterrepo.NewProgressSQLRepository(db), func() {}, nil
	}
}

func ProvideRetryPolicy(cfg *config.Config) usecase.RetryPolicy {
	return usecase.RetryPolicy{
		MaxAttempts: cfg.Store.MaxRetries,
		Backoff:     cfg.Store.RetryDelay,
	}
}

func ProvideBackupService(vocab repository.VocabularyRepository, progress repository.ProgressRepository, logger *logrus.Logger) *backup.Service {
	return backup.NewService(vocab, progress, backup.WithLogger(logger))
}
