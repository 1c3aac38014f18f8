// Command syncd loads posts, comments and users from the remote API into
// the store once at startup, then serves the CRUD API until SIGINT/SIGTERM.
package main

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

	"github.com/Skryldev/placeholder-sync/config"
	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/ingest"
	"github.com/Skryldev/placeholder-sync/repo"
	"github.com/Skryldev/placeholder-sync/service"
	"github.com/Skryldev/placeholder-sync/source"

	// database/sql drivers; DB_DRIVER picks one.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		fatalf("syncd: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	database, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	logger.Info("database connected", "driver", cfg.DBDriver, "dialect", database.Dialect().Name())

	if cfg.IngestOnStartup {
		client := source.NewClient(cfg.SourceBaseURL, cfg.SourceTimeout)
		if _, err := ingest.New(database, client, cfg.Ingest, logger).Run(ctx); err != nil {
			// The store is unchanged; serve whatever it already holds.
			logger.Error("startup ingestion failed", "err", err)
		}
	} else if err := repo.CreateSchema(ctx, database); err != nil {
		return err
	}

	svc := service.New(database, service.Options{CascadePostDelete: cfg.CascadePostDelete}, logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           service.NewHandler(svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http: listening", "addr", cfg.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("http: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http: shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// openDB uses DATABASE_URL verbatim when it is set and builds the DSN from
// the DB_* variables otherwise.
func openDB(cfg config.Config, logger *slog.Logger) (*db.DB, error) {
	hook := db.NewLogHook(db.LogHookConfig{
		Logger:             logger,
		SlowQueryThreshold: 200 * time.Millisecond,
		LogArgs:            cfg.LogSQLArgs,
	})
	dbCfg := cfg.DBConfig(hook)
	if cfg.DatabaseURL != "" {
		return db.Open(dbCfg)
	}
	return db.OpenWithDriver(cfg.DBDriver, cfg.DB, dbCfg)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
