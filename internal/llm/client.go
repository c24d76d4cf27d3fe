// Package llm provides provider-agnostic interfaces for the LLM backends that
// generate knowledge-card text and illustrative images. GLM, Gemini and Claude
// all implement the same small interface, which is what makes the fallback
// chain a config-ordered list instead of hard-wired branches.
package llm

import (
	"context"

	"github.com/kidscience/card-service/internal/model"
)

// Client is the interface for text-card providers. GenerateCard returns the
// raw unwrapped text from the provider's response envelope — parsing it into
// a card is the normalizer's job, not the client's.
//
// Go interface design tip: keep interfaces small. Go proverb: "The bigger the
// interface, the weaker the abstraction."
type Client interface {
	GenerateCard(ctx context.Context, question string) (string, error)
	ProviderName() string
	ModelName() string
	// Source is the provenance tag stamped on cards this provider produced.
	Source() model.Source
}

// ImageResult is the decoded inline image payload from an image provider.
type ImageResult struct {
	MIMEType string
	Data     []byte // raw image bytes, base64-encoded at the HTTP boundary
}

// ImageClient generates an infographic image from a finished card.
type ImageClient interface {
	GenerateImage(ctx context.Context, card model.KnowledgeCard) (*ImageResult, error)
	ProviderName() string
}
