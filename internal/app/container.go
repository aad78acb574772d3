package app

import (
	"github.com/sirupsen/logrus"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
	"github.com/sabucaps/brazilian/internal/infrastructure/server"
	"github.com/sabucaps/brazilian/internal/repository"
	"github.com/sabucaps/brazilian/internal/usecase"
	"github.com/sabucaps/brazilian/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Tracing    *Tracing
	Vocabulary repository.VocabularyRepository
	Users      repository.ProgressRepository
	Progress   usecase.ProgressUsecase
	Backup     *backup.Service
	Server     *server.Server
}
