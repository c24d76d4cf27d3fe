// Package server wires configuration, storage, providers, services, and
// routes into a running HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/card"
	"github.com/kidscience/card-service/internal/config"
	"github.com/kidscience/card-service/internal/llm"
	"github.com/kidscience/card-service/internal/service"
	"github.com/kidscience/card-service/internal/storage"
)

// Server owns the HTTP listener and everything behind it.
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	db         *sqlx.DB
	logger     *zap.Logger
}

// New builds the full dependency graph from configuration. Provider
// construction failures are logged and skipped rather than fatal: a missing
// API key degrades the fallback chain (worst case everything lands on mock
// cards), it does not stop the service.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	callRepo := storage.NewProviderCallRepository(db)

	timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	clients, imageClient := buildClients(context.Background(), cfg, timeout, logger)

	normalizer := card.NewNormalizer(card.Policy{
		PointMin: cfg.Normalizer.PointMin,
		PointMax: cfg.Normalizer.PointMax,
	})

	cardService := service.NewCardService(clients, normalizer, cfg.Providers.RatePerMinute, callRepo, logger)
	imageService := service.NewImageService(imageClient, callRepo, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.HandleMethodNotAllowed = true

	s := &Server{
		cfg:    cfg,
		router: router,
		db:     db,
		logger: logger,
		httpServer: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			// Write timeout must cover the whole fallback chain: two provider
			// timeouts back to back before the mock kicks in.
			WriteTimeout: 2*timeout + 10*time.Second,
		},
	}

	s.setupRoutes(cardService, imageService, callRepo)
	return s, nil
}

// buildClients constructs the fallback chain in configured order, plus the
// image client. Gemini is the only image-capable provider; its client is
// shared between the chain and the image endpoint when both are configured.
func buildClients(ctx context.Context, cfg *config.Config, timeout time.Duration, logger *zap.Logger) ([]llm.Client, llm.ImageClient) {
	var clients []llm.Client
	var gemini *llm.GeminiClient

	for _, name := range cfg.Providers.Order {
		switch name {
		case "glm":
			c, err := llm.NewGLMClient(cfg.Providers.GLM, timeout)
			if err != nil {
				logger.Warn("GLM provider unavailable", zap.Error(err))
				continue
			}
			clients = append(clients, c)
		case "gemini":
			c, err := llm.NewGeminiClient(ctx, cfg.Providers.Gemini, timeout)
			if err != nil {
				logger.Warn("Gemini provider unavailable", zap.Error(err))
				continue
			}
			gemini = c
			clients = append(clients, c)
		case "anthropic":
			c, err := llm.NewAnthropicClient(cfg.Providers.Anthropic, timeout)
			if err != nil {
				logger.Warn("Anthropic provider unavailable", zap.Error(err))
				continue
			}
			clients = append(clients, c)
		default:
			logger.Warn("Unknown provider in providers.order", zap.String("provider", name))
		}
	}

	// Image generation needs Gemini even when it is not in the text chain.
	if gemini == nil {
		c, err := llm.NewGeminiClient(ctx, cfg.Providers.Gemini, timeout)
		if err != nil {
			logger.Warn("Image provider unavailable", zap.Error(err))
			return clients, nil
		}
		gemini = c
	}

	return clients, gemini
}

// Start begins listening. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
