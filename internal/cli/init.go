// Package cli holds the start-up steps shared by pgledger, ledger-worker and ledgerctl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pgledger/internal/amqp"
	"pgledger/internal/config"
	"pgledger/internal/core"
	applog "pgledger/internal/log"
	"pgledger/internal/sheets"
	gsheet "pgledger/internal/sheets/google"
	"pgledger/internal/sheets/memory"
	"pgledger/internal/storage"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and installs it as the slog default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig exits the process when the environment is unusable.
// worker adds the requirements of the mirror worker.
func LoadAndValidateConfig(logger *applog.Logger, worker bool) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", applog.FieldError, err)
		os.Exit(1)
	}

	validate := cfg.Validate
	if worker {
		validate = cfg.ValidateWorker
	}
	if err := validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the ledger database, running pending migrations first.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitPublisher connects to RabbitMQ when AMQP_URL is set. Without it, or when the
// broker is unreachable, the returned publisher is a nil interface and events are skipped.
func InitPublisher(logger *applog.Logger, cfg *config.Config) (core.EventPublisher, *amqp.Client) {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled, ledger events will not be published")
		return nil, nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, ledger events will not be published", applog.FieldError, err)
		return nil, nil
	}
	logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, client
}

// Mirror is the sheet the worker keeps in step with the ledger.
type Mirror interface {
	sheets.LedgerMirror
	sheets.MirrorReconciler
}

// InitMirror returns the Google Sheets mirror, or an in-memory one when no spreadsheet is configured.
func InitMirror(ctx context.Context, logger *applog.Logger, cfg *config.Config) Mirror {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, mirroring into memory")
		return memory.New()
	}

	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		logger.Warn("Could not write sheet header", applog.FieldError, err)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	return client
}

// GracefulShutdown returns a context cancelled by SIGINT or SIGTERM.
func GracefulShutdown(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)
	}()
	return ctx, stop
}
