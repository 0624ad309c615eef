package ai

import "context"

// ProfileDraft is a generated celebrity profile fragment: a short factual
// biography plus the person's primary professions.
type ProfileDraft struct {
	// Biography is plain text, two to three paragraphs.
	Biography string `json:"biography"`
	// Professions is lowercase, most notable first.
	Professions []string `json:"professions"`
}

// Provider defines the interface for profile generation backends.
type Provider interface {
	Name() string
	GenerateProfile(ctx context.Context, name string) (*ProfileDraft, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens.
type RequestPricing struct {
	Input  float64
	Output float64
}
