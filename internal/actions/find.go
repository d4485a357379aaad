// File: internal/actions/find.go
package actions

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/axtree"
	"github.com/xkilldash9x/concierge-cli/internal/chain"
	"github.com/xkilldash9x/concierge-cli/internal/textpage"
)

const findSystemInstruction = "You extract information from web page text. " +
	"Return EVERY line relating to what the user is looking for, verbatim, " +
	"preserving special characters and URLs exactly. If nothing relates, say so."

type findInPageText struct{ env *Env }

func (a *findInPageText) Name() string    { return "find_in_page_text" }
func (a *findInPageText) Multiline() bool { return false }
func (a *findInPageText) NoSpinner() bool { return false }

// Execute runs the auxiliary extraction call over the full URL-included page
// text. This is the only action that makes a nested model call; its cost is
// surfaced so the driver can attribute it to the turn.
func (a *findInPageText) Execute(ctx context.Context, payload string) (*Result, error) {
	tree, err := a.env.Page.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var extra chain.Params
		extra.Set("Error", fmt.Sprintf("could not read page content: %v", err))
		return &Result{Params: a.env.statusParams(ctx, extra)}, nil
	}
	a.env.recordLinks(tree)

	fullText := axtree.Serialize(tree, true)
	if a.env.Paginator.Count(fullText) > a.env.Cfg.FindInputTokenLimit {
		fullText = a.env.Paginator.Truncate(fullText, 0, a.env.Cfg.FindInputTokenLimit) +
			"\n" + textpage.TruncatedBelowMarker
	}

	completion, err := a.env.Fast.Complete(ctx, []chain.ChatMessage{
		{Role: chain.RoleSystem, Content: findSystemInstruction},
		{Role: chain.RoleUser, Content: fmt.Sprintf("Looking for: %s\n\nPage Text:\n%s", payload, fullText)},
	})
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled sub-call: no usable result, abandon the turn.
			return nil, nil
		}
		a.env.Logger.Error("find_in_page_text extraction call failed", zap.Error(err))
		var extra chain.Params
		extra.Set("Error", fmt.Sprintf("find_in_page_text failed: %v", err))
		return &Result{Params: a.env.statusParams(ctx, extra)}, nil
	}

	result := completion.Content
	if a.env.Paginator.Count(result) > a.env.Cfg.FindResultTokenLimit {
		result = a.env.Paginator.Truncate(result, 0, a.env.Cfg.FindResultTokenLimit) +
			"\n" + textpage.TruncatedBelowMarker
	}

	var extra chain.Params
	extra.Set("All Find Results", result)
	return &Result{Params: a.env.statusParams(ctx, extra), Cost: completion.Cost}, nil
}
