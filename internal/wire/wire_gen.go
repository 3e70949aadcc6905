// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/review-gate/internal/app"
	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/db"
	"github.com/sevigo/review-gate/internal/jobs"
	"github.com/sevigo/review-gate/internal/llm"
	"github.com/sevigo/review-gate/internal/logger"
	"github.com/sevigo/review-gate/internal/server"
	"github.com/sevigo/review-gate/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerConfig := provideLoggerConfig(cfg)
	logWriter := provideLogWriter()
	slogLogger := logger.NewLogger(loggerConfig, logWriter)

	dbConfig := provideDBConfig(cfg)
	dbConn, dbCleanup, err := db.NewDatabase(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := storage.NewStore(provideSQLDB(dbConn))

	generator, err := llm.NewGenerator(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create generator: %w", err)
	}

	clientFactory := provideClientFactory()
	reviewJob := jobs.NewReviewJob(cfg, generator, store, clientFactory, slogLogger)
	dispatcher := jobs.NewDispatcher(reviewJob, cfg.MaxWorkers, slogLogger)

	srv := server.NewServer(ctx, cfg, dispatcher, slogLogger)

	application := app.NewApp(ctx, cfg, dbConn, dispatcher, srv, slogLogger)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
