package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Houeta/promo-relay/internal/affiliate"
	"github.com/Houeta/promo-relay/internal/repository"
	"github.com/Houeta/promo-relay/internal/services/dispatcher"
	"github.com/Houeta/promo-relay/internal/telegram"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds the HTTP surface settings.
type Config struct {
	Addr string
	// Secret is the shared path segment of the webhook endpoint.
	Secret string
	// AllowedUserID restricts webhook processing to one sender when
	// non-zero; other senders are acknowledged and ignored.
	AllowedUserID int64
}

// Server exposes the relay over HTTP: the health probe, the Telegram
// webhook and the dispatch triggers.
type Server struct {
	log        *slog.Logger
	echo       *echo.Echo
	cfg        Config
	queue      repository.QueueRepository
	norm       *affiliate.Normalizer
	sender     telegram.Sender
	dispatcher dispatcher.Interface
}

// New creates the Server and registers its routes and middleware.
func New(
	log *slog.Logger,
	cfg Config,
	queue repository.QueueRepository,
	norm *affiliate.Normalizer,
	sender telegram.Sender,
	disp dispatcher.Interface,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("2M"))

	s := &Server{
		log:        log,
		echo:       e,
		cfg:        cfg,
		queue:      queue,
		norm:       norm,
		sender:     sender,
		dispatcher: disp,
	}
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/telegram/webhook/:secret", s.handleWebhook)
	s.echo.POST("/run-offers", s.handleRunOffers)
	s.echo.POST("/run-search", s.handleRunSearch)
}

// Start runs the HTTP server until Shutdown is called. It returns
// http.ErrServerClosed on a graceful stop.
func (s *Server) Start() error {
	s.log.Info("HTTP server is starting...", "addr", s.cfg.Addr)

	if err := s.echo.Start(s.cfg.Addr); err != nil {
		return fmt.Errorf("http server stopped: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server is stopping...")

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	return nil
}

// Echo exposes the router for handler tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
