package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/s1natex/todos-api-GO/internal/config"
	"github.com/s1natex/todos-api-GO/internal/middleware"
	"github.com/s1natex/todos-api-GO/internal/server"
	"github.com/s1natex/todos-api-GO/internal/telemetry"
	"github.com/s1natex/todos-api-GO/internal/todos"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Create the schema if needed and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}
}

func (a *app) serve(cmd *cobra.Command) error {
	cfg := a.cfg
	logger := newLogger(cfg.Log.Level, cmd.OutOrStdout())
	slog.SetDefault(logger) // for third-party packages that use slog

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing.Exporter, "todos-api")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing_shutdown_error", slog.String("error", err.Error()))
		}
	}()

	srv, closeDB, err := a.prepare(ctx, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listen",
			slog.String("addr", cfg.Server.Addr),
			slog.String("db_driver", cfg.Database.Driver),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server_error", slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// prepare opens the database, runs the schema initializer and builds the
// HTTP server. A schema failure is logged and does not stop startup.
func (a *app) prepare(ctx context.Context, logger *slog.Logger) (*http.Server, func() error, error) {
	cfg := a.cfg
	repo, err := openRepo(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	// The handlers report per-request errors if the table is unusable.
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("schema_error", slog.String("error", err.Error()))
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.NewRouter(repo, server.Options{
			Logger:         logger,
			Limiter:        middleware.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, repo.Close, nil
}

func openRepo(d config.Database) (*todos.SQLRepo, error) {
	dsn := d.DSN
	if dsn == "" {
		switch d.Driver {
		case todos.SQLite.Driver:
			var err error
			if dsn, err = todos.SQLiteFileDSN(d.Path); err != nil {
				return nil, err
			}
		case todos.Postgres.Driver:
			dsn = d.PostgresURL()
		}
	}
	db, dialect, err := todos.Open(d.Driver, dsn)
	if err != nil {
		return nil, err
	}
	return todos.NewSQLRepo(db, dialect), nil
}
