package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Houeta/promo-relay/internal/affiliate"
	"github.com/Houeta/promo-relay/internal/config"
	"github.com/Houeta/promo-relay/internal/meli"
	"github.com/Houeta/promo-relay/internal/repository/jsonfile"
	"github.com/Houeta/promo-relay/internal/scheduler"
	"github.com/Houeta/promo-relay/internal/scraper"
	"github.com/Houeta/promo-relay/internal/server"
	"github.com/Houeta/promo-relay/internal/services/collector"
	"github.com/Houeta/promo-relay/internal/services/dispatcher"
	"github.com/Houeta/promo-relay/internal/telegram"
	"github.com/joho/godotenv"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 10 * time.Second

// main is the entry point of the application.
func main() {
	// A .env file is optional; deployments usually pass the environment
	// directly.
	_ = godotenv.Load()

	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	repo := jsonfile.NewRepository(logger, cfg.Store.QueuePath, cfg.Store.SentIDsPath)

	tgClient, err := telegram.NewClient(logger, cfg.Tg.Token, cfg.Tg.Channel, cfg.ClientTimeout)
	if err != nil {
		log.Fatalf("Failed to init Telegram client: %v", err)
	}

	norm := affiliate.New(affiliate.Config{
		AmazonTag:   cfg.Affiliate.AmazonTag,
		ShopeeParam: cfg.Affiliate.ShopeeParam,
		ShopeeValue: cfg.Affiliate.ShopeeValue,
		MeliTag:     cfg.Affiliate.MeliTag,
	})

	searchClient := meli.NewClient(logger, cfg.Search.SiteID, cfg.ClientTimeout)
	offers := collector.New(logger, searchClient, norm, cfg.Search.Keywords, cfg.Search.MinDiscount)
	titles := scraper.NewScraper(logger, cfg.ClientTimeout)

	disp := dispatcher.New(logger, tgClient, repo, repo, offers, titles,
		cfg.Dispatch.BatchSize, cfg.Dispatch.SendDelay)

	sched := scheduler.New(logger, cfg.Dispatch.Cron, disp)
	if err = sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	srv := server.New(logger, server.Config{
		Addr:          cfg.HTTP.Addr,
		Secret:        cfg.Tg.WebhookSecret,
		AllowedUserID: cfg.Tg.AllowedUserID,
	}, repo, norm, tgClient, disp)

	// Start the server in a goroutine to allow main to listen for signals.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to stop HTTP server gracefully", "error", err)
	}

	// Log graceful shutdown completion.
	logger.Info("Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
