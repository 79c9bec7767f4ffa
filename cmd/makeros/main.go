package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"makeros/internal/amqp"
	"makeros/internal/config"
	"makeros/internal/gateway"
	apphttp "makeros/internal/http"
	applog "makeros/internal/log"
	"makeros/internal/services"
	"makeros/internal/spark"
	"makeros/internal/storage"
	"makeros/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	budget, err := cfg.Budget()
	if err != nil {
		logger.Error("Invalid budget configuration", "error", err)
		os.Exit(1)
	}

	kv, err := storage.NewSQLiteKV(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer kv.Close()

	gw := gateway.New(kv, cfg.LoadLatency, cfg.SaveLatency)

	// AMQP is optional: without it saves still persist, only the backup
	// pipeline goes quiet.
	var publisher gateway.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP backup pipeline enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	syncer := gateway.NewSyncer(gw, publisher, cfg.SyncRetries, cfg.SyncBackoff)

	// Cold start: load the last-saved state before serving.
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	snap, err := gw.Load(loadCtx)
	loadCancel()
	if err != nil {
		logger.Error("Failed to load persisted state", "error", err)
		os.Exit(1)
	}

	st := store.New()
	restored := store.Snapshot{
		Stats:        snap.Stats,
		Transactions: snap.Transactions,
		Classes:      snap.Classes,
		Events:       snap.Events,
		Tasks:        snap.Tasks,
		Shopping:     snap.Shopping,
	}
	if snap.Activator != nil {
		restored.Activator = *snap.Activator
	}
	st.Restore(restored)
	logger.Info("State loaded",
		"transactions", len(snap.Transactions),
		"classes", len(snap.Classes),
		"events", len(snap.Events),
		"tasks", len(snap.Tasks))

	svc := services.NewSet(st, syncer)

	var sparkSvc *spark.Service
	if cfg.GeminiAPIKey != "" {
		provider := spark.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
		sparkSvc = spark.NewService(provider, st, syncer)
		sparkSvc.Restore(snap.Spark)
		logger.Info("Suggestion provider enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("Suggestion provider disabled - no GEMINI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, svc, sparkSvc, syncer, budget,
		logger.WithComponent(applog.ComponentHTTP))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}

		// Flush queued saves before the storage handle closes.
		syncer.Drain()
		cancel()
	}()

	logger.Info("Starting makeros server", "port", cfg.Port, "budget_cents", budget.Cents)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
