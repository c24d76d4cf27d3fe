// Package service contains the core request pipelines.
//
// CardService is the fallback orchestrator for card generation:
//
//	validate → try providers in configured order → normalize → mock
//
// Provider failures are contained here — they downgrade the answer, never
// surface to the caller. A validated, non-rate-limited request always gets a
// card; degraded quality (mock) is preferred over an error.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kidscience/card-service/internal/card"
	"github.com/kidscience/card-service/internal/llm"
	"github.com/kidscience/card-service/internal/model"
	"github.com/kidscience/card-service/internal/storage"
	"github.com/kidscience/card-service/internal/validate"
)

// CardService runs the card-generation pipeline.
type CardService struct {
	clients    []llm.Client // ordered: first is primary, rest are fallbacks
	normalizer *card.Normalizer
	limiter    *rate.Limiter // outbound call budget, shared across providers
	callRepo   storage.ProviderCallRepository // nil disables telemetry
	logger     *zap.Logger
}

// NewCardService creates the orchestrator. clients may be empty — the service
// then answers every request from mock templates, which keeps the product
// alive when no provider key is configured.
func NewCardService(
	clients []llm.Client,
	normalizer *card.Normalizer,
	ratePerMinute int,
	callRepo storage.ProviderCallRepository,
	logger *zap.Logger,
) *CardService {
	if ratePerMinute <= 0 {
		ratePerMinute = 10
	}
	rps := rate.Every(time.Minute / time.Duration(ratePerMinute))

	return &CardService{
		clients:    clients,
		normalizer: normalizer,
		limiter:    rate.NewLimiter(rps, 1),
		callRepo:   callRepo,
		logger:     logger,
	}
}

// Generate validates the question and produces a card. The returned string is
// the cleaned question for echoing in response metadata. The only error ever
// returned is a validation error; every other failure mode ends in a mock card.
func (s *CardService) Generate(ctx context.Context, question string) (model.KnowledgeCard, string, error) {
	clean, err := validate.Clean(question)
	if err != nil {
		return model.KnowledgeCard{}, "", err
	}

	// Strictly sequential fallback chain: the secondary is never attempted
	// concurrently with the primary. Worst case latency is one timeout per
	// provider plus mock generation, which is negligible.
	for _, client := range s.clients {
		// Outbound budget — blocks until a token is free or the request
		// context is cancelled. Cancellation skips straight to mock.
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Warn("outbound rate limit wait aborted", zap.Error(err))
			break
		}

		raw, err := s.tryProvider(ctx, client, clean)
		if err != nil {
			s.logger.Warn("provider failed, falling back",
				zap.String("provider", client.ProviderName()),
				zap.Error(err),
			)
			continue
		}

		result, ok := s.normalizer.TryNormalize(raw, client.Source())
		if !ok {
			// The provider answered but with nothing extractable. While a
			// fallback is still available, prefer trying it over filler.
			s.logger.Warn("provider output unusable, falling back",
				zap.String("provider", client.ProviderName()),
			)
			continue
		}

		s.logger.Info("card generated",
			zap.String("provider", client.ProviderName()),
			zap.String("source", string(result.Source)),
		)
		return result, clean, nil
	}

	s.logger.Info("all providers exhausted, using mock card")
	return card.GenerateMock(clean), clean, nil
}

func (s *CardService) tryProvider(ctx context.Context, client llm.Client, question string) (string, error) {
	start := time.Now()
	raw, err := client.GenerateCard(ctx, question)
	s.recordCall(ctx, client.ProviderName(), client.ModelName(), model.KindCard, err == nil, time.Since(start))
	return raw, err
}

// recordCall logs the outbound call for cost tracking. Telemetry failures are
// logged and swallowed — they must not affect the answer.
func (s *CardService) recordCall(ctx context.Context, provider, modelName string, kind model.CallKind, success bool, elapsed time.Duration) {
	if s.callRepo == nil {
		return
	}

	durationMs := elapsed.Milliseconds()
	call := &model.ProviderCall{
		Provider:   provider,
		Model:      modelName,
		Kind:       kind,
		Success:    success,
		DurationMs: &durationMs,
	}
	if err := s.callRepo.Create(ctx, call); err != nil {
		s.logger.Error("recording provider call", zap.Error(err))
	}
}
