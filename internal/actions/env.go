// File: internal/actions/env.go
package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/axtree"
	"github.com/xkilldash9x/concierge-cli/internal/chain"
	"github.com/xkilldash9x/concierge-cli/internal/config"
	"github.com/xkilldash9x/concierge-cli/internal/llmclient"
	"github.com/xkilldash9x/concierge-cli/internal/textpage"
)

// findSteeringNotice nudges the agent away from paging through the truncated
// view; the paged text deliberately omits URLs.
const findSteeringNotice = "Page Text does not include URLs and may be truncated. " +
	"Use find_in_page_text to retrieve links or any information from the full page text."

// findResultsNotice replaces the steering notice when the payload carries
// find results, which age out of the transcript faster than page text.
const findResultsNotice = "You MUST message anything from Find Results that you will " +
	"need to use in the future (for instance page text or links) since it will ONLY be " +
	"available to you after this message if you do."

// Page is the browser surface actions execute against, satisfied by
// browser.Page and mockable in tests.
type Page interface {
	Navigate(ctx context.Context, rawURL string) error
	Back(ctx context.Context) error
	Reload(ctx context.Context) error
	TypeIn(ctx context.Context, text string) error
	Tap(ctx context.Context, backendID cdp.BackendNodeID) error
	Snapshot(ctx context.Context) (*axtree.Tree, error)
	CurrentURL(ctx context.Context) (string, error)
	PageNum() int
	SetPageNum(n int)
}

// Env bundles the shared dependencies every action executes against.
type Env struct {
	Page      Page
	Paginator *textpage.Paginator
	Fast      llmclient.Client
	Cfg       config.AgentConfig
	Logger    *zap.Logger

	mu        sync.Mutex
	lastLinks []chain.PageLink
}

// PageLinks returns the full/truncated link pairs from the most recent
// snapshot, for repairing URLs the model quotes back.
func (e *Env) PageLinks() []chain.PageLink {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]chain.PageLink, len(e.lastLinks))
	copy(out, e.lastLinks)
	return out
}

func (e *Env) recordLinks(tree *axtree.Tree) {
	links := axtree.Links(tree)
	pairs := make([]chain.PageLink, 0, len(links))
	for _, full := range links {
		pairs = append(pairs, chain.PageLink{
			Full:      full,
			Truncated: axtree.TruncateURL(full, e.Cfg.URLTruncationLength),
		})
	}
	e.mu.Lock()
	e.lastLinks = pairs
	e.mu.Unlock()
}

// statusParams re-derives the common post-execute payload: action-specific
// fields first, then current URL, page position, steering notice, and the
// current text page. Every action attaches this regardless of its own
// success or failure.
func (e *Env) statusParams(ctx context.Context, extra chain.Params) chain.Params {
	params := extra.Clone()

	url, err := e.Page.CurrentURL(ctx)
	if err != nil {
		e.Logger.Warn("Failed to read current URL", zap.Error(err))
	} else if url != "" && url != "about:blank" {
		params.Set("Page URL", axtree.TruncateURL(url, e.Cfg.URLTruncationLength))
	}

	tree, err := e.Page.Snapshot(ctx)
	if err != nil {
		e.Logger.Warn("Failed to build accessibility snapshot", zap.Error(err))
		params.Set("Error", fmt.Sprintf("could not read page content: %v", err))
		return params
	}
	e.recordLinks(tree)

	serialized := axtree.Serialize(tree, false)
	pageText, page, total := e.Paginator.Page(serialized, e.Page.PageNum(), e.Cfg.PageTokenLength)
	e.Page.SetPageNum(page)

	params.Set("Page Number", fmt.Sprintf("%d/%d", page, total))
	if params.Has("All Find Results") {
		params.Set("Notice", findResultsNotice)
	} else {
		params.Set("Notice", findSteeringNotice)
	}
	params.Set("Page Text", pageText)
	return params
}
