package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/llm"
	"github.com/kidscience/card-service/internal/model"
	"github.com/kidscience/card-service/internal/storage"
)

// ErrImageNotConfigured is returned when no image provider was constructed
// (missing API key). The server still starts — only this endpoint degrades.
var ErrImageNotConfigured = errors.New("image provider is not configured")

// ImageService invokes the image provider for a finished card.
// Unlike card generation there is no fallback chain: on failure the caller
// receives a coarse, user-safe error category and the front-end falls back to
// its local screenshot export.
type ImageService struct {
	client   llm.ImageClient // nil if unconfigured
	callRepo storage.ProviderCallRepository
	logger   *zap.Logger
}

// NewImageService creates the image pipeline. client may be nil.
func NewImageService(client llm.ImageClient, callRepo storage.ProviderCallRepository, logger *zap.Logger) *ImageService {
	return &ImageService{
		client:   client,
		callRepo: callRepo,
		logger:   logger,
	}
}

// Generate builds the infographic prompt from the card and returns the
// provider's inline image.
func (s *ImageService) Generate(ctx context.Context, c model.KnowledgeCard) (*llm.ImageResult, error) {
	if s.client == nil {
		return nil, ErrImageNotConfigured
	}

	start := time.Now()
	result, err := s.client.GenerateImage(ctx, c)
	s.recordCall(ctx, start, err == nil)

	if err != nil {
		s.logger.Warn("image generation failed",
			zap.String("provider", s.client.ProviderName()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("image generated",
		zap.String("provider", s.client.ProviderName()),
		zap.String("mime_type", result.MIMEType),
		zap.Int("bytes", len(result.Data)),
	)
	return result, nil
}

func (s *ImageService) recordCall(ctx context.Context, start time.Time, success bool) {
	if s.callRepo == nil {
		return
	}

	durationMs := time.Since(start).Milliseconds()
	call := &model.ProviderCall{
		Provider:   s.client.ProviderName(),
		Model:      "image",
		Kind:       model.KindImage,
		Success:    success,
		DurationMs: &durationMs,
	}
	if err := s.callRepo.Create(ctx, call); err != nil {
		s.logger.Error("recording provider call", zap.Error(err))
	}
}

// SafeErrorMessage coarsens a provider error into one of a small set of
// user-safe categories. Raw upstream diagnostics never reach the caller
// through this path; handlers may attach err.Error() separately as an
// operator-facing detail field.
func SafeErrorMessage(err error) string {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, ErrImageNotConfigured):
		return "API配置错误"
	case errors.Is(err, llm.ErrTimeout):
		return "请求超时，请稍后再试"
	case errors.As(err, &upstream),
		errors.Is(err, llm.ErrMalformedResponse),
		errors.Is(err, llm.ErrNoImageData):
		return "AI服务暂时不可用"
	default:
		return "服务器内部错误，请稍后再试"
	}
}
