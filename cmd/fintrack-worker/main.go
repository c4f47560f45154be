package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var totalsCache *cache.Cache[core.Totals]
	if cfg.CacheEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		totalsCache = cache.New[core.Totals](redisClient, "totals", cfg.CacheTTL, logger)
		logger.Info("totals cache enabled", "addr", cfg.RedisAddr)
	}

	var exporter *export.SheetsExporter
	if cfg.ExportEnabled() {
		exporter, err = export.NewSheetsExporter(context.Background(),
			cfg.SheetsSpreadsheetID, cfg.SheetsSheetName, cfg.SheetsCredentialsFile, logger)
		if err != nil {
			logger.Error("failed to initialize sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("sheets export enabled", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("sheets export disabled, no SHEETS_SPREADSHEET_ID provided")
	}

	recalculator := worker.NewRecalculator(
		storage.NewAccountRepository(store),
		storage.NewTransactionRepository(store),
		totalsCache,
		exporter,
		cfg.RecountInterval,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return recalculator.Run(ctx)
	})

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to connect to message broker", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeTransactionEvents(ctx, recalculator.HandleEvent)
		})
	} else {
		logger.Info("event consumption disabled, running periodic reconcile only")
	}

	logger.Info("starting fintrack-worker", "db", cfg.SQLiteDBPath, "interval", cfg.RecountInterval.String())
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}
