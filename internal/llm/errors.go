package llm

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the provider failure taxonomy.
// Go uses predefined error values instead of exception types; callers check
// with errors.Is. The orchestrator contains all of these for card generation
// (falling back to the next provider), while the image endpoint coarsens them
// into user-safe categories.
var (
	ErrTimeout           = errors.New("provider request timed out")
	ErrMalformedResponse = errors.New("provider response missing expected content")
	ErrNoImageData       = errors.New("provider returned no image data")
)

// UpstreamError reports a non-2xx HTTP response from a provider.
// The status lets callers distinguish auth failures (401), throttling (429)
// and server errors (5xx). Response bodies are deliberately not carried here —
// they must never leak to end users.
type UpstreamError struct {
	Provider string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error: HTTP %d", e.Provider, e.Status)
}

// wrapCallErr maps a transport-level error onto the taxonomy.
// Context deadline expiry is the bounded per-call timeout firing.
func wrapCallErr(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", provider, ErrTimeout)
	}
	return fmt.Errorf("%s API call: %w", provider, err)
}
