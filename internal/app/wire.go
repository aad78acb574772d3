//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	adapterconnect "github.com/sabucaps/brazilian/internal/adapter/connectrpc"
	"github.com/sabucaps/brazilian/internal/infrastructure/config"
	"github.com/sabucaps/brazilian/internal/infrastructure/server"
	"github.com/sabucaps/brazilian/internal/usecase"
	"github.com/sabucaps/brazilian/pkg/api/progress/v1/progressv1connect"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	ProvideDatabase,
)

var repositorySet = wire.NewSet(
	ProvideVocabularyRepository,
	ProvideProgressRepository,
)

var usecaseSet = wire.NewSet(
	ProvideRetryPolicy,
	usecase.NewProgressUsecase,
	ProvideBackupService,
)

var serviceSet = wire.NewSet(
	adapterconnect.NewProgressServiceServer,
	wire.Bind(new(progressv1connect.ProgressServiceHandler), new(*adapterconnect.ProgressServiceServer)),
)

var serverSet = wire.NewSet(
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
	ProvideTracing,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
