package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"pgledger/internal/cli"
	apphttp "pgledger/internal/http"
	applog "pgledger/internal/log"
	"pgledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, false)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	publisher, amqpClient := cli.InitPublisher(logger, cfg)

	income := services.NewIncomeService(repo, publisher)
	expenses := services.NewExpenseService(repo, amqpClient, repo)
	defer expenses.Close()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Onboarding: services.NewOnboardingService(repo, income),
		Fees:       services.NewFeeWorkflow(repo, income),
		Income:     income,
		Expenses:   expenses,
		Ledger:     repo,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SummaryCacheTTL:    cfg.SummaryCacheTTL,
		Logger:             logger,
	})

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting pgledger server", applog.FieldOperation, applog.OpStartup, "port", cfg.Port, "db", cfg.SQLiteDBPath, "amqp", cfg.AMQPEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
			expenses.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
