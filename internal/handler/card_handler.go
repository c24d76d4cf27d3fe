// Package handler contains the Gin HTTP handlers.
// Handlers translate between HTTP and the service layer: they bind request
// bodies, call a service, and shape the JSON response. No business logic
// lives here.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/service"
	"github.com/kidscience/card-service/internal/validate"
)

// CardHandler serves the knowledge-card generation endpoint.
type CardHandler struct {
	cardService *service.CardService
	logger      *zap.Logger
}

// NewCardHandler creates a new card handler.
func NewCardHandler(cardService *service.CardService, logger *zap.Logger) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		logger:      logger,
	}
}

type generateCardRequest struct {
	Question string `json:"question"`
}

// GenerateCard handles POST /api/generate-card.
// A malformed body is treated the same as an empty question: the validation
// layer owns the user-facing message, so binding errors are not surfaced
// separately.
func (h *CardHandler) GenerateCard(c *gin.Context) {
	var req generateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("request body bind failed", zap.Error(err))
	}

	result, clean, err := h.cardService.Generate(c.Request.Context(), req.Question)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		h.logger.Error("card generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "服务器内部错误，请稍后再试",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"card":    result,
		"metadata": gin.H{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"question":  clean,
			"source":    result.Source,
		},
	})
}

func isValidationError(err error) bool {
	return errors.Is(err, validate.ErrEmpty) ||
		errors.Is(err, validate.ErrTooLong) ||
		errors.Is(err, validate.ErrForbidden)
}
