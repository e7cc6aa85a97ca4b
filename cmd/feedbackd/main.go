package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	_ "github.com/modelarena/feedbackd/internal/adapter/discord"
	fbhttp "github.com/modelarena/feedbackd/internal/adapter/http"
	fbnats "github.com/modelarena/feedbackd/internal/adapter/nats"
	feedbackotel "github.com/modelarena/feedbackd/internal/adapter/otel"
	"github.com/modelarena/feedbackd/internal/adapter/postgres"
	"github.com/modelarena/feedbackd/internal/adapter/ristretto"
	_ "github.com/modelarena/feedbackd/internal/adapter/slack"
	"github.com/modelarena/feedbackd/internal/adapter/ws"
	"github.com/modelarena/feedbackd/internal/config"
	"github.com/modelarena/feedbackd/internal/logger"
	"github.com/modelarena/feedbackd/internal/middleware"
	"github.com/modelarena/feedbackd/internal/port/notifier"
	"github.com/modelarena/feedbackd/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLogger := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer closeLogger.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"page_size", cfg.Server.PageSize,
		"auth_enabled", cfg.Auth.Enabled,
	)

	ctx := context.Background()

	shutdownTelemetry, err := feedbackotel.Init(ctx, cfg.Logging.Service, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := fbnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Drain() }()

	exportCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer exportCache.Close()

	metrics, err := feedbackotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Services ---

	store := postgres.NewStore(pool)
	feedbackSvc := service.NewFeedbackService(store, queue, exportCache, metrics,
		cfg.Server.PageSize, cfg.Export.MaxConcurrent, cfg.Cache.ExportTTL)
	analysisSvc := service.NewAnalysisService(feedbackSvc, metrics, cfg.Cache.SnapshotTTL)
	stopSessionCleanup := analysisSvc.StartCleanup(time.Minute)
	defer stopSessionCleanup()
	shareSvc := service.NewShareService(feedbackSvc, queue, metrics, cfg.Share.TTL)
	authSvc := service.NewAuthService(store)

	shareWS, err := ws.NewShareHandler(shareSvc, cfg.Share.Origin, cfg.Share.TTL)
	if err != nil {
		return fmt.Errorf("share handler: %w", err)
	}

	channels, err := buildNotifiers(cfg.Notify)
	if err != nil {
		return fmt.Errorf("notifiers: %w", err)
	}
	notifySvc := service.NewNotifyService(queue, channels)
	stopNotify, err := notifySvc.Start(ctx)
	if err != nil {
		return fmt.Errorf("notify subscriber: %w", err)
	}
	defer stopNotify()

	// --- HTTP ---

	handlers := fbhttp.NewHandlers(feedbackSvc, analysisSvc, shareSvc, shareWS, pool, queue)

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(time.Minute, 10*time.Minute)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(fbhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(fbhttp.SecurityHeaders)
	r.Use(fbhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(limiter.Handler)
	r.Use(feedbackotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.Auth(authSvc, cfg.Auth.Enabled))

	fbhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildNotifiers constructs a notifier for every configured webhook channel.
func buildNotifiers(cfg config.Notify) ([]notifier.Notifier, error) {
	urls := map[string]string{
		"slack":   cfg.SlackWebhookURL,
		"discord": cfg.DiscordWebhookURL,
	}

	var channels []notifier.Notifier
	for name, url := range urls {
		if url == "" {
			continue
		}
		n, err := notifier.New(name, map[string]string{"webhook_url": url})
		if err != nil {
			return nil, err
		}
		channels = append(channels, n)
		slog.Info("notification channel enabled", "channel", name)
	}
	return channels, nil
}
