package wire

import (
	"io"
	"os"

	"github.com/google/wire"
	"github.com/jmoiron/sqlx"

	"github.com/sevigo/review-gate/internal/app"
	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/db"
	"github.com/sevigo/review-gate/internal/github"
	"github.com/sevigo/review-gate/internal/jobs"
	"github.com/sevigo/review-gate/internal/llm"
	"github.com/sevigo/review-gate/internal/logger"
	"github.com/sevigo/review-gate/internal/server"
	"github.com/sevigo/review-gate/internal/storage"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	logger.NewLogger,
	config.LoadConfig,
	db.NewDatabase,
	storage.NewStore,
	jobs.NewDispatcher,
	jobs.NewReviewJob,
	llm.NewGenerator,
	provideClientFactory,
	provideSQLDB,
	provideLoggerConfig,
	provideLogWriter,
	provideDBConfig,
)

func provideClientFactory() jobs.ClientFactory {
	return github.CreateInstallationClient
}

func provideSQLDB(conn *db.DB) *sqlx.DB {
	return conn.DB
}

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.LoggerConfig
}

func provideLogWriter() io.Writer {
	return os.Stdout
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return cfg.Database
}
