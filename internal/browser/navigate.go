// File: internal/browser/navigate.go
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// NormalizeURL validates a navigation target, defaulting the scheme to https
// when the model omits it.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" || !strings.Contains(parsed.Host, ".") {
		return "", fmt.Errorf("invalid URL host %q", parsed.Host)
	}

	return parsed.String(), nil
}

// Navigate loads the URL with a bounded number of attempts, each under its
// own timeout. Heavy pages routinely blow a single load deadline; a retry
// against the now-warm cache usually completes.
func (p *Page) Navigate(ctx context.Context, rawURL string) error {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	attempts := p.cfg.NavigationRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		navCtx, cancel := context.WithTimeout(p.withTab(ctx), p.cfg.NavigationTimeout)
		err := chromedp.Run(navCtx, chromedp.Navigate(target))
		cancel()

		if err == nil {
			lastErr = nil
			break
		}

		lastErr = err
		p.logger.Warn("Navigation attempt failed",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	if lastErr != nil {
		return fmt.Errorf("failed to load %s after %d attempts: %w", target, attempts, lastErr)
	}

	p.recordVisit(target)
	p.ResetPageNum()

	// Late scripts keep mutating the page well past the load event.
	return p.settle(ctx, 4*time.Second, 5*time.Second)
}

// Back walks one entry back in the tab's history.
func (p *Page) Back(ctx context.Context) error {
	if err := chromedp.Run(p.withTab(ctx), chromedp.NavigateBack()); err != nil {
		return fmt.Errorf("failed to navigate back: %w", err)
	}
	p.ResetPageNum()
	return p.settle(ctx, 2*time.Second, 3*time.Second)
}

// Reload re-fetches the current document.
func (p *Page) Reload(ctx context.Context) error {
	if err := chromedp.Run(p.withTab(ctx), chromedp.Reload()); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	p.ResetPageNum()
	return p.settle(ctx, 2*time.Second, 3*time.Second)
}
