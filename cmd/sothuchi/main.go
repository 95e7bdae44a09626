package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"sothuchi/internal/amqp"
	"sothuchi/internal/blob"
	gdrive "sothuchi/internal/blob/google"
	blobmem "sothuchi/internal/blob/memory"
	"sothuchi/internal/cache"
	"sothuchi/internal/config"
	apphttp "sothuchi/internal/http"
	applog "sothuchi/internal/log"
	"sothuchi/internal/services"
	ports "sothuchi/internal/sheets"
	gsheet "sothuchi/internal/sheets/google"
	sheetsmem "sothuchi/internal/sheets/memory"
	"sothuchi/internal/storage"
	"sothuchi/internal/summary"
)

func main() {
	// .env is for local development; absent in containers.
	_ = godotenv.Load()

	logger := applog.Setup("sothuchi")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		lister   ports.TransactionLister
		taxonomy ports.TaxonomyReader
		receipts blob.Store
	)

	switch cfg.DataBackend {
	case "sheets":
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		lister, taxonomy = cli, cli

		if cfg.DriveFolderID != "" {
			drv, err := gdrive.NewFromEnv(ctx)
			if err != nil {
				logger.Error("Failed to initialize Google Drive client", "error", err)
				os.Exit(1)
			}
			receipts = drv
		} else {
			logger.Warn("Receipt uploads disabled - no GOOGLE_DRIVE_FOLDER_ID provided")
		}
		logger.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		store := sheetsmem.NewSeeded()
		lister, taxonomy = store, store
		receipts = blobmem.New()
		logger.Info("Initialized memory backend")
	}

	outbox, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize outbox", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer outbox.Close()

	// AMQP is optional: without it, the worker's periodic pass still drains
	// the outbox.
	var publisher services.SyncPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, sync messages disabled", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	summaryCache := summary.NewCache(cfg.SummaryTTL)
	itemsCache := apphttp.NewItemsCache(cfg.SummaryTTL)

	cacheManager := cache.NewManager()
	cacheManager.Register(summaryCache)
	cacheManager.Register(itemsCache)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	txService := services.NewTransactionService(outbox, publisher, summaryCache)

	srv := apphttp.NewServer(":"+cfg.Port, lister, taxonomy, receipts, txService, summaryCache, itemsCache)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting sothuchi server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
