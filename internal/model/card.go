// Package model defines the core data types for the card service.
// In Go, we use structs instead of classes. Struct tags (the `json:"..."` and
// `db:"..."` annotations) tell serialization libraries how to map fields.
package model

import "time"

// Source identifies which backend actually produced a card's content.
// Go doesn't have enums — we use typed constants with explicit values.
type Source string

const (
	SourceGLM       Source = "glm-api"
	SourceGemini    Source = "gemini-api"
	SourceAnthropic Source = "anthropic-api"
	SourceMock      Source = "mock-data"
)

// Point is one of the exactly three knowledge points on a card.
type Point struct {
	Title   string `json:"title"`   // ≤12 runes, contains an emoji
	Content string `json:"content"` // banded to the normalizer's length policy
}

// KnowledgeCard is the canonical output contract of the service.
// A card is constructed fresh per request and never mutated after it is
// returned — handlers and exporters treat it as immutable.
type KnowledgeCard struct {
	Title        string `json:"title"`        // ≤15 runes, contains an emoji
	Introduction string `json:"introduction"` // child-directed address, ~40 runes
	Points       []Point `json:"points"`      // always exactly 3
	Summary      string `json:"summary"`      // ~30 runes, contains an emoji
	Source       Source `json:"source"`       // provenance, set once at creation
}

// CallKind distinguishes text-card calls from image calls in telemetry.
type CallKind string

const (
	KindCard  CallKind = "card"
	KindImage CallKind = "image"
)

// ProviderCall records one outbound LLM call for cost monitoring.
// Only operational metadata is stored — never the question or card content.
type ProviderCall struct {
	ID         int64     `db:"id" json:"id"`
	Provider   string    `db:"provider" json:"provider"`
	Model      string    `db:"model" json:"model"`
	Kind       CallKind  `db:"kind" json:"kind"`
	Success    bool      `db:"success" json:"success"`
	DurationMs *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
