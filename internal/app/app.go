// Package app initializes and orchestrates the main components of the Review-Gate
// application. It wires together the configuration, server, and other services.
package app

import (
	"context"
	"log/slog"

	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/db"
	"github.com/sevigo/review-gate/internal/server"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher core.JobDispatcher
	dbConn     *db.DB
}

// NewApp assembles the application from its already-wired components.
func NewApp(ctx context.Context, cfg *config.Config, dbConn *db.DB, dispatcher core.JobDispatcher, srv *server.Server, logger *slog.Logger) *App {
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     srv,
		logger:     logger,
		dispatcher: dispatcher,
		dbConn:     dbConn,
	}
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting Review-Gate",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.MaxWorkers)

	err := a.server.Start()
	if err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down Review-Gate services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the job dispatcher, allowing in-flight jobs to finish.
	a.dispatcher.Stop()

	a.logger.Info("closing database connection")
	if err := a.dbConn.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}

	if serverErr != nil {
		a.logger.Error("Review-Gate stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("Review-Gate stopped successfully")
	return nil
}
