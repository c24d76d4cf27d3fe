package handler

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/model"
	"github.com/kidscience/card-service/internal/service"
)

// ImageHandler serves the card-to-infographic endpoint.
type ImageHandler struct {
	imageService *service.ImageService
	logger       *zap.Logger
}

// NewImageHandler creates a new image handler.
func NewImageHandler(imageService *service.ImageService, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		logger:       logger,
	}
}

type generateImageRequest struct {
	// Pointer so a body without the field is distinguishable from an
	// all-zero card.
	Card *model.KnowledgeCard `json:"card"`
}

// GenerateImage handles POST /api/generate-image.
// The response carries the image inline as base64 rather than a URL: nothing
// is persisted server-side, so there is nowhere to link to.
func (h *ImageHandler) GenerateImage(c *gin.Context) {
	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Card == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "请求体缺少 card 字段",
		})
		return
	}

	result, err := h.imageService.Generate(c.Request.Context(), *req.Card)
	if err != nil {
		h.logger.Error("image generation failed", zap.Error(err))
		// error is the coarse user-safe category; details carries the raw
		// diagnostic for operators reading browser devtools.
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   service.SafeErrorMessage(err),
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"image": gin.H{
			"mimeType":   result.MIMEType,
			"base64Data": base64.StdEncoding.EncodeToString(result.Data),
		},
		"metadata": gin.H{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"source":    model.SourceGemini,
		},
	})
}
