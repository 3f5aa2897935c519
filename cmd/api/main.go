package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lfarias/barberbook/internal/api/router"
	"github.com/lfarias/barberbook/internal/appointments"
	"github.com/lfarias/barberbook/internal/availability"
	"github.com/lfarias/barberbook/internal/catalog"
	appconfig "github.com/lfarias/barberbook/internal/config"
	"github.com/lfarias/barberbook/internal/conversation"
	"github.com/lfarias/barberbook/internal/http/handlers"
	"github.com/lfarias/barberbook/internal/messaging"
	"github.com/lfarias/barberbook/internal/observability/metrics"
	"github.com/lfarias/barberbook/internal/scheduler"
	"github.com/lfarias/barberbook/internal/transcript"
	"github.com/lfarias/barberbook/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting barberbook API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := catalog.FromJSON(cfg.RosterJSON, cfg.ServicesJSON)
	if err != nil {
		logger.Error("invalid catalog configuration", "error", err)
		os.Exit(1)
	}

	slots, err := availability.SlotCatalog(cfg.BusinessOpen, cfg.BusinessClose, cfg.SlotInterval)
	if err != nil {
		logger.Error("invalid business hours", "error", err)
		os.Exit(1)
	}

	// Storage: Postgres in production, in-memory for local development.
	var store appointments.Store
	var reminderStore scheduler.ReminderStore
	if cfg.UseMemoryStore || cfg.DatabaseURL == "" {
		logger.Warn("using in-memory stores, data will not survive restarts")
		store = appointments.NewMemoryStore()
		reminderStore = scheduler.NewMemoryReminderStore()
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = appointments.NewPostgresStore(pool)
		reminderStore = scheduler.NewPostgresReminderStore(pool)
	}

	// Transcripts are optional; without Redis they are simply not kept.
	var transcriptStore *transcript.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		defer client.Close()
		transcriptStore = transcript.NewStore(client)
	}

	var messenger messaging.Messenger
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		messenger = messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	} else {
		logger.Warn("twilio credentials missing, outbound messages are logged only")
		messenger = messaging.NewMemoryMessenger()
	}

	m := metrics.NewBookingMetrics(nil)

	engine := conversation.NewEngine(store, availability.NewEngine(store, slots), cat, logger).WithMetrics(m)
	resolver := scheduler.NewResolver(store, logger)
	gateway := messaging.NewGateway(engine, resolver, messenger, transcriptStore, m, logger)

	sweeper := scheduler.NewSweeper(store, reminderStore, messenger, cfg.ReminderLead, m, logger)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		logger.Error("failed to start confirmation sweep", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	dispatcher := scheduler.NewDispatcher(reminderStore, store, messenger, cfg.ReminderPollInterval, m, logger)
	go dispatcher.Run(ctx)

	r := router.New(&router.Config{
		Logger:         logger,
		Gateway:        gateway,
		Appointments:   handlers.NewAppointmentsHandler(store, logger),
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
