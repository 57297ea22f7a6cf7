package llm

import "context"

// CompletionRequest contains the parameters for a completion call.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Provider defines the interface for LLM backends.
type Provider interface {
	// Complete sends a completion request and returns the raw model text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the name of this provider.
	Name() string
}
