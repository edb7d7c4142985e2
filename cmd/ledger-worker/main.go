package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"pgledger/internal/amqp"
	"pgledger/internal/cli"
	applog "pgledger/internal/log"
	"pgledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting ledger-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger, true)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	mirror := cli.InitMirror(ctx, logger, cfg)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	mw := worker.NewMirrorWorker(repo, mirror, mirror)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, mw.HandleEvent)
	})
	if cfg.MirrorReconcileInterval > 0 {
		// The first pass runs immediately and catches up on events missed while down.
		g.Go(func() error {
			return mw.RunReconciler(gctx, cfg.MirrorReconcileInterval)
		})
	} else if _, err := mw.Reconcile(ctx); err != nil {
		logger.Error("Startup reconcile failed", applog.FieldError, err)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		client.Close()
		repo.Close()
		os.Exit(1)
	}
	logger.Info("ledger-worker stopped")
}
