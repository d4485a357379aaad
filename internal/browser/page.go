// File: internal/browser/page.go
package browser

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/axtree"
	"github.com/xkilldash9x/concierge-cli/internal/config"
	"github.com/xkilldash9x/concierge-cli/internal/humanoid"
	"github.com/xkilldash9x/concierge-cli/internal/store"
)

// HistoryEntry is one visited URL with its visit time.
type HistoryEntry struct {
	URL       string    `json:"url"`
	VisitedAt time.Time `json:"visited_at"`
}

// SessionState is the persisted per-page browser state.
type SessionState struct {
	Cookies []*network.Cookie `json:"cookies"`
	History []HistoryEntry    `json:"history"`
	SavedAt time.Time         `json:"saved_at"`
}

// Page is the single emulated mobile tab the agent drives. It owns the
// chromedp allocator and tab contexts, the accessibility snapshot builder,
// and the paging cursor over the serialized page text.
type Page struct {
	id     string
	cfg    config.BrowserConfig
	logger *zap.Logger

	humanoid *humanoid.Humanoid
	builder  *axtree.Builder
	sessions *store.Store
	rng      *rand.Rand

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	mu      sync.Mutex
	pageNum int
	history []HistoryEntry
}

// New creates a Page wrapper. The browser is not launched until Start.
func New(cfg config.BrowserConfig, hum *humanoid.Humanoid, sessions *store.Store, logger *zap.Logger) *Page {
	id := cfg.PageID
	if id == "" {
		id = uuid.New().String()
	}

	return &Page{
		id:       id,
		cfg:      cfg,
		logger:   logger.Named("browser").With(zap.String("page_id", id)),
		humanoid: hum,
		sessions: sessions,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		pageNum:  1,
	}
}

// Start launches the browser, opens the tab, applies mobile emulation, and
// restores any persisted session cookies.
func (p *Page) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(p.cfg.UserAgent),
	)
	if p.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(p.cfg.ExecPath))
	}

	p.allocCtx, p.allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	p.tabCtx, p.tabCancel = chromedp.NewContext(p.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			p.logger.Debug(fmt.Sprintf(format, args...))
		}))

	emulate := emulation.SetDeviceMetricsOverride(
		p.cfg.ViewportWidth, p.cfg.ViewportHeight, p.cfg.DeviceScale, true).
		WithScreenWidth(p.cfg.ViewportWidth).
		WithScreenHeight(p.cfg.ViewportHeight)

	if err := chromedp.Run(p.tabCtx, emulate); err != nil {
		p.Close()
		return fmt.Errorf("failed to start browser tab: %w", err)
	}

	if err := p.restoreSession(); err != nil {
		// A fresh session is fine; only log.
		p.logger.Debug("No session state restored", zap.Error(err))
	}

	p.logger.Info("Browser tab started",
		zap.Bool("headless", p.cfg.Headless),
		zap.Int64("viewport_width", p.cfg.ViewportWidth),
		zap.Int64("viewport_height", p.cfg.ViewportHeight))
	return nil
}

// Close saves session state and tears down the tab and browser process.
func (p *Page) Close() {
	if p.tabCtx != nil {
		if err := p.saveSession(); err != nil {
			p.logger.Warn("Failed to save session state", zap.Error(err))
		}
	}
	if p.tabCancel != nil {
		p.tabCancel()
	}
	if p.allocCancel != nil {
		p.allocCancel()
	}
}

// Context returns the tab context for CDP execution.
func (p *Page) Context() context.Context { return p.tabCtx }

// Snapshot builds a fresh accessibility tree for the current page state.
func (p *Page) Snapshot(ctx context.Context) (*axtree.Tree, error) {
	if p.builder == nil {
		p.builder = axtree.NewBuilder(axtree.CDPBackend{}, p.logger)
	}
	return p.builder.Build(p.withTab(ctx))
}

// CurrentURL reports the tab's current location.
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := chromedp.Run(p.withTab(ctx), chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return url, nil
}

// Tap performs a humanized tap on the element with the given backend node ID.
func (p *Page) Tap(ctx context.Context, backendID cdp.BackendNodeID) error {
	return p.humanoid.Tap(p.withTab(ctx), backendID)
}

// PageNum returns the current text page cursor.
func (p *Page) PageNum() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageNum
}

// SetPageNum moves the text page cursor.
func (p *Page) SetPageNum(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pageNum = n
}

// ResetPageNum rewinds the cursor to the first page. Called whenever the
// underlying document changes.
func (p *Page) ResetPageNum() {
	p.SetPageNum(1)
}

// History returns a copy of the visit history, oldest first.
func (p *Page) History() []HistoryEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]HistoryEntry, len(p.history))
	copy(out, p.history)
	return out
}

func (p *Page) recordVisit(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, HistoryEntry{URL: url, VisitedAt: time.Now()})
}

// withTab rebinds the caller's cancellation onto the tab's CDP context, so
// CDP calls stop when the caller's scope is cancelled but still reach the
// right target.
func (p *Page) withTab(ctx context.Context) context.Context {
	if p.tabCtx == nil {
		return ctx
	}
	merged, cancel := context.WithCancel(p.tabCtx)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-merged.Done():
		}
	}()
	return merged
}

// settle pauses for a uniform duration in [min, max] to let the page react.
func (p *Page) settle(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(p.rng.Int63n(int64(max - min)))
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Page) saveSession() error {
	if p.sessions == nil {
		return nil
	}

	var cookies []*network.Cookie
	err := chromedp.Run(p.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return fmt.Errorf("failed to collect cookies: %w", err)
	}

	return p.sessions.Save(p.id, &SessionState{
		Cookies: cookies,
		History: p.History(),
		SavedAt: time.Now(),
	})
}

func (p *Page) restoreSession() error {
	if p.sessions == nil {
		return nil
	}

	var state SessionState
	if err := p.sessions.Load(p.id, &state); err != nil {
		return err
	}

	params := make([]*network.CookieParam, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			param.Expires = &expires
		}
		params = append(params, param)
	}

	p.mu.Lock()
	p.history = state.History
	p.mu.Unlock()

	if len(params) == 0 {
		return nil
	}

	err := chromedp.Run(p.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to restore cookies: %w", err)
	}

	p.logger.Info("Session state restored",
		zap.Int("cookies", len(params)),
		zap.Int("history_entries", len(state.History)),
		zap.Time("saved_at", state.SavedAt))
	return nil
}
