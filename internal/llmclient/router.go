// File: internal/llmclient/router.go
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/chain"
	"github.com/xkilldash9x/concierge-cli/internal/config"
)

// ModelTier selects which configured model serves a request.
type ModelTier string

const (
	// TierSmart drives the conversation loop.
	TierSmart ModelTier = "smart"
	// TierFast serves auxiliary extraction calls.
	TierFast ModelTier = "fast"
)

// Router holds one Client per tier.
type Router struct {
	logger  *zap.Logger
	clients map[ModelTier]Client
}

// NewRouter creates a router with the specified clients for each tier.
func NewRouter(logger *zap.Logger, smart, fast Client) (*Router, error) {
	if smart == nil || fast == nil {
		return nil, fmt.Errorf("both smart and fast tier clients must be provided")
	}

	return &Router{
		logger: logger.Named("llm_router"),
		clients: map[ModelTier]Client{
			TierSmart: smart,
			TierFast:  fast,
		},
	}, nil
}

// NewRouterFromConfig builds both tier clients from configuration.
func NewRouterFromConfig(cfg config.LLMConfig, logger *zap.Logger) (*Router, error) {
	smart, err := NewOpenAIClient(cfg.Smart, logger)
	if err != nil {
		return nil, fmt.Errorf("smart tier: %w", err)
	}
	fast, err := NewOpenAIClient(cfg.Fast, logger)
	if err != nil {
		return nil, fmt.Errorf("fast tier: %w", err)
	}
	return NewRouter(logger, smart, fast)
}

// Tier returns the client for the given tier, defaulting to the smart tier.
func (r *Router) Tier(tier ModelTier) Client {
	if client, ok := r.clients[tier]; ok {
		return client
	}
	return r.clients[TierSmart]
}

// Complete routes to the smart tier, satisfying the Client interface.
func (r *Router) Complete(ctx context.Context, msgs []chain.ChatMessage) (*Completion, error) {
	r.logger.Debug("Routing LLM request", zap.String("tier", string(TierSmart)))
	return r.Tier(TierSmart).Complete(ctx, msgs)
}
