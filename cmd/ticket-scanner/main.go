package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/config"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/db"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/hub"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/logging"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/session"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	if err := logging.Setup(cfg.Log); err != nil {
		log.WithError(err).Fatal("failed to set up logging")
	}

	log.Info("starting ticket scanner")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	log.WithField("addr", cfg.Redis.URL).Info("connected to Redis")

	// Bet records are optional; without a DSN the record routes answer 503
	var records db.RecordStore
	if cfg.Postgres.DSN != "" {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		store, err := db.NewRecordsPostgres(dbCtx, cfg.Postgres.DSN)
		dbCancel()
		if err != nil {
			log.WithError(err).Fatal("failed to connect to Postgres")
		}
		defer store.Close()
		records = store
	} else {
		log.Warn("POSTGRES_DSN not set, bet records disabled")
	}

	// Create hub
	h := hub.NewHub()
	go h.Run(ctx)

	// Accepted tickets go to the UI and to the accepted stream
	streamPublisher := publisher.NewStreamPublisher(redisClient, cfg.Stream.Accepted)
	go streamPublisher.Run(ctx)

	sessions := session.NewManager(
		session.WithDebounce(cfg.Session.Debounce()),
		session.WithSink(session.Sinks{h, streamPublisher}),
	)
	go sessions.RunSweeper(ctx, cfg.Session.IdleTTL, cfg.Session.SweepInterval)

	// Create stream consumer for camera frames
	streamConsumer := consumer.NewStreamConsumer(redisClient, sessions, cfg.Stream)
	go func() {
		if err := streamConsumer.Start(ctx); err != nil {
			log.WithError(err).Error("stream consumer stopped")
		}
	}()

	// Create HTTP handler (pass context for WebSocket lifecycle)
	handler := handlers.NewHandler(ctx, sessions, h, records)
	handler.AddHealthCheck("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	handler.AddMetrics("publisher", streamPublisher.GetMetrics)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handlers.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("ticket scanner listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")

	// Cancel context to stop all goroutines
	cancel()

	// Graceful shutdown of HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown error")
	}

	log.Info("shutdown complete")
}
