// File: internal/llmclient/client.go
package llmclient

import (
	"context"

	"github.com/xkilldash9x/concierge-cli/internal/chain"
)

// Completion is one model reply plus the usage accounting needed for cost
// attribution.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	// Cost is the dollar cost of this call per the configured token rates.
	Cost float64
}

// Client generates a completion for an ordered list of chat messages. A nil
// completion with ctx.Err() is returned when the context is cancelled
// mid-flight, so an interrupted turn never surfaces as a model failure.
type Client interface {
	Complete(ctx context.Context, msgs []chain.ChatMessage) (*Completion, error)
}
