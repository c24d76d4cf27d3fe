package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/storage"
)

// AdminHandler serves operator-facing endpoints.
type AdminHandler struct {
	callRepo storage.ProviderCallRepository
	logger   *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(callRepo storage.ProviderCallRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		callRepo: callRepo,
		logger:   logger,
	}
}

// Stats handles GET /api/admin/stats. It reports per-provider call counts so
// an operator can watch quota burn without grepping logs.
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.callRepo.Count(ctx)
	if err != nil {
		h.logger.Error("counting provider calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to load stats",
		})
		return
	}

	byProvider, err := h.callRepo.StatsByProvider(ctx)
	if err != nil {
		h.logger.Error("loading provider stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to load stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"total_calls": total,
		"providers":   byProvider,
	})
}
