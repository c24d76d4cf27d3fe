package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kidscience/card-service/internal/handler"
	"github.com/kidscience/card-service/internal/middleware"
	"github.com/kidscience/card-service/internal/ratelimit"
	"github.com/kidscience/card-service/internal/service"
	"github.com/kidscience/card-service/internal/storage"
)

// setupRoutes registers all endpoints and their middleware.
func (s *Server) setupRoutes(cardService *service.CardService, imageService *service.ImageService, callRepo storage.ProviderCallRepository) {
	cardHandler := handler.NewCardHandler(cardService, s.logger)
	imageHandler := handler.NewImageHandler(imageService, s.logger)
	healthHandler := handler.NewHealthHandler()
	adminHandler := handler.NewAdminHandler(callRepo, s.logger)

	s.router.Use(middleware.CORS(s.cfg.CORS.AllowedOrigins))
	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"success": false,
			"error":   "method not allowed",
		})
	})

	s.router.GET("/healthz", healthHandler.Health)

	// Each generation endpoint gets its own rate-limit store so a burst of
	// card requests cannot starve image exports.
	window := time.Duration(s.cfg.RateLimit.WindowSeconds) * time.Second
	limit := s.cfg.RateLimit.Limit

	api := s.router.Group("/api")
	{
		cardStore := ratelimit.NewMemoryStore(limit, window)
		api.POST("/generate-card",
			middleware.RateLimit(cardStore, s.logger),
			cardHandler.GenerateCard)

		imageStore := ratelimit.NewMemoryStore(limit, window)
		api.POST("/generate-image",
			middleware.RateLimit(imageStore, s.logger),
			imageHandler.GenerateImage)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminKeyAuth(s.cfg.Auth.AdminKeys, s.logger))
		{
			admin.GET("/stats", adminHandler.Stats)
		}
	}
}
