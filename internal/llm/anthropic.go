package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kidscience/card-service/internal/config"
	"github.com/kidscience/card-service/internal/model"
)

// AnthropicClient implements Client using Claude. It is an optional third
// backend for the fallback chain — enabled by adding "anthropic" to
// providers.order. Card generation is a single-turn completion: the prompt
// already demands strict JSON, so no tool orchestration is needed.
type AnthropicClient struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropicClient creates a Claude-backed card generator.
func NewAnthropicClient(cfg config.AnthropicConfig, timeout time.Duration) (*AnthropicClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("Anthropic API key is not set (CARD_PROVIDERS_ANTHROPIC_API_KEY)")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)
	return &AnthropicClient{
		client:  &client,
		model:   cfg.Model,
		timeout: timeout,
	}, nil
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) ModelName() string    { return a.model }
func (a *AnthropicClient) Source() model.Source { return model.SourceAnthropic }

// GenerateCard sends the templated prompt and concatenates the text blocks of
// the reply.
func (a *AnthropicClient) GenerateCard(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildCardPrompt(question))),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("anthropic: %w", &UpstreamError{Provider: "anthropic", Status: apiErr.StatusCode})
		}
		return "", wrapCallErr("anthropic", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(textBlock.Text)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("anthropic: no text blocks: %w", ErrMalformedResponse)
	}

	return sb.String(), nil
}
