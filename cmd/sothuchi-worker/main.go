package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	appamqp "sothuchi/internal/amqp"
	"sothuchi/internal/config"
	applog "sothuchi/internal/log"
	ports "sothuchi/internal/sheets"
	gsheet "sothuchi/internal/sheets/google"
	sheetsmem "sothuchi/internal/sheets/memory"
	"sothuchi/internal/storage"
	"sothuchi/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.Setup("sothuchi-worker")
	logger.Info("Starting sothuchi-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	outbox, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize outbox", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer outbox.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var appender ports.TransactionAppender
	if cfg.DataBackend == "sheets" {
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = cli
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		appender = sheetsmem.NewSeeded()
		logger.Info("Using in-memory store, synced rows are not persisted")
	}

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(outbox, appender, cfg.SyncBatchSize)

	logger.Info("Performing startup sync check")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	go func() {
		err := amqpClient.ConsumeTransactionSync(ctx, func(msg *appamqp.TransactionSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			cancel()
		}
	}()

	// Periodic pass for entries whose messages were lost.
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := syncWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	logger.Info("Worker stopped")
}
