package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kidscience/card-service/internal/config"
	"github.com/kidscience/card-service/internal/model"
)

// GeminiClient implements both Client (text cards) and ImageClient using
// Google's Gemini API. Text and image generation use separate models on the
// same client.
type GeminiClient struct {
	client     *genai.Client
	textModel  string
	imageModel string
	timeout    time.Duration
}

// NewGeminiClient creates the Gemini client, validating the key format once.
// Gemini keys start with "AIza" and are 39 characters; anything longer is
// almost certainly a doubled paste in the environment variable, and we fail
// fast with a descriptive (non-secret-leaking) error instead of attempting
// runtime string surgery on it.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig, timeout time.Duration) (*GeminiClient, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("Gemini API key is not set (CARD_PROVIDERS_GEMINI_API_KEY)")
	}
	if !strings.HasPrefix(key, "AIza") {
		return nil, errors.New("Gemini API key has unexpected format: should start with AIza")
	}
	if len(key) > 50 {
		return nil, fmt.Errorf("Gemini API key has unexpected length %d: check for a doubled value in the environment", len(key))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		timeout:    timeout,
	}, nil
}

func (g *GeminiClient) ProviderName() string { return "gemini" }
func (g *GeminiClient) ModelName() string    { return g.textModel }
func (g *GeminiClient) Source() model.Source { return model.SourceGemini }

// GenerateCard asks the text model for card JSON and returns the concatenated
// text parts of the first candidate.
func (g *GeminiClient) GenerateCard(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel,
		genai.Text(BuildCardPrompt(question)),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.7),
			TopP:            genai.Ptr[float32](0.9),
			MaxOutputTokens: 2048,
		})
	if err != nil {
		return "", g.wrapErr(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: no candidates: %w", ErrMalformedResponse)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty text parts: %w", ErrMalformedResponse)
	}

	return text, nil
}

// GenerateImage requests an inline image for the card's infographic prompt.
// The response envelope is candidates[0].content.parts[]; the image arrives as
// an inline blob alongside optional text parts.
func (g *GeminiClient) GenerateImage(ctx context.Context, card model.KnowledgeCard) (*ImageResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel,
		genai.Text(BuildImagePrompt(card)),
		&genai.GenerateContentConfig{
			Temperature:        genai.Ptr[float32](0.6),
			ResponseModalities: []string{"IMAGE", "TEXT"},
		})
	if err != nil {
		return nil, g.wrapErr(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini: no candidates: %w", ErrMalformedResponse)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return &ImageResult{MIMEType: mime, Data: part.InlineData.Data}, nil
		}
	}

	return nil, fmt.Errorf("gemini: %w", ErrNoImageData)
}

func (g *GeminiClient) wrapErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini: %w", &UpstreamError{Provider: "gemini", Status: apiErr.Code})
	}
	return wrapCallErr("gemini", err)
}
