package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kidscience/card-service/internal/config"
	"github.com/kidscience/card-service/internal/model"
)

// GLMClient implements Client against Zhipu's GLM chat-completions API.
// GLM speaks the OpenAI wire protocol, so the go-openai SDK works unchanged
// once pointed at the Zhipu base URL.
type GLMClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewGLMClient creates the GLM client. The API key is validated once here —
// a missing key fails this provider's construction only, never the process.
func NewGLMClient(cfg config.GLMConfig, timeout time.Duration) (*GLMClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("GLM API key is not set (CARD_PROVIDERS_GLM_API_KEY)")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &GLMClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
	}, nil
}

func (g *GLMClient) ProviderName() string { return "glm" }
func (g *GLMClient) ModelName() string    { return g.model }
func (g *GLMClient) Source() model.Source { return model.SourceGLM }

// GenerateCard sends the templated prompt and returns the first choice's
// message content. The context carries the bounded per-call timeout, so a
// hung upstream cannot hold a request beyond it.
func (g *GLMClient) GenerateCard(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildCardPrompt(question),
			},
		},
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	if err != nil {
		// go-openai surfaces non-2xx responses as *openai.APIError.
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("glm: %w", &UpstreamError{Provider: "glm", Status: apiErr.HTTPStatusCode})
		}
		return "", wrapCallErr("glm", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("glm: no choices: %w", ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("glm: empty message content: %w", ErrMalformedResponse)
	}

	return content, nil
}
