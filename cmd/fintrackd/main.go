package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env for local development; in containers the environment is real.
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

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to connect to message broker", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("messaging disabled, no AMQP_URL provided")
	}

	var totalsCache *cache.Cache[core.Totals]
	if cfg.CacheEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		totalsCache = cache.New[core.Totals](redisClient, "totals", cfg.CacheTTL, logger)
		logger.Info("totals cache enabled", "addr", cfg.RedisAddr)
	} else {
		logger.Info("totals cache disabled, no REDIS_ADDR provided")
	}

	exec := resilience.NewExecutor(resilience.DefaultConfig())

	accountRepo := storage.NewAccountRepository(store)
	transactionRepo := storage.NewTransactionRepository(store)
	parameterRepo := storage.NewParameterRepository(store)

	svc := apphttp.Services{
		Accounts:     services.NewAccountService(accountRepo, transactionRepo, exec, totalsCache, logger),
		Transactions: services.NewTransactionService(transactionRepo, accountRepo, exec, amqpClient, totalsCache, logger),
		Categories:   services.NewCategoryService(storage.NewCategoryRepository(store), exec, logger),
		Descriptions: services.NewDescriptionService(storage.NewDescriptionRepository(store), exec, logger),
		Payments:     services.NewPaymentService(storage.NewPaymentRepository(store), accountRepo, parameterRepo, exec, amqpClient, totalsCache, logger),
		Transfers:    services.NewTransferService(storage.NewTransferRepository(store), accountRepo, exec, amqpClient, totalsCache, logger),
		Parameters:   services.NewParameterService(parameterRepo, exec, logger),
		Members:      services.NewFamilyMemberService(storage.NewFamilyMemberRepository(store), exec, logger),
		Medical:      services.NewMedicalExpenseService(storage.NewMedicalExpenseRepository(store), exec, logger),
		Receipts:     services.NewReceiptImageService(storage.NewReceiptImageRepository(store), transactionRepo, exec, cfg.MaxReceiptImageBytes, logger),
		Validations:  services.NewValidationAmountService(storage.NewValidationAmountRepository(store), accountRepo, exec, logger),
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting fintrackd", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
