// Package gateway invokes the external text-generation service and
// normalizes its reply. Provider clients implement a single LLMClient
// interface; the Gateway wraps one client with error wrapping and a
// simulated-streaming emitter so the rest of the pipeline sees a uniform
// contract regardless of the underlying provider's capabilities.
package gateway

import (
	"context"

	"edumentor/pkg/tutortypes"
)

// Request carries one fully composed generation call.
type Request struct {
	SystemPrompt string
	History      []tutortypes.ChatMessage
	UserPrompt   string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// Reply is the normalized generation result. TokensUsed is taken from the
// service's usage accounting when present, else estimated from the
// extracted text.
type Reply struct {
	Content    string
	TokensUsed int
	Model      string
}

// LLMClient is the provider-facing interface. Implementations initialize
// their SDK clients lazily and convert the request into the provider's
// ordered role-tagged message format.
type LLMClient interface {
	// GetProviderName returns the provider identifier, e.g. "anthropic".
	GetProviderName() string
	// IsConfigured returns true if the client has a usable API key.
	IsConfigured() bool
	// Complete issues one generation call and extracts the reply.
	Complete(ctx context.Context, req Request) (*Reply, error)
}
