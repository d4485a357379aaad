// File: internal/humanoid/executor.go
package humanoid

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// Executor defines the contract for external browser interactions, allowing
// for mocking during tests.
type Executor interface {
	// Sleep pauses execution for a given duration (context-aware).
	Sleep(ctx context.Context, d time.Duration) error

	// ScrollIntoView scrolls the node's nearest scrollable ancestor until the
	// node is within the viewport.
	ScrollIntoView(ctx context.Context, backendID cdp.BackendNodeID) error

	// GetBoxModel retrieves the box model for the given backend node.
	GetBoxModel(ctx context.Context, backendID cdp.BackendNodeID) (*dom.BoxModel, error)

	// DispatchMouseEvent sends a raw low-level mouse event.
	DispatchMouseEvent(ctx context.Context, p *input.DispatchMouseEventParams) error

	// DispatchKeyEvent sends keyboard input through the high-level key action,
	// which synthesizes the full down/char/up sequence.
	DispatchKeyEvent(ctx context.Context, keys string) error
}

// CDPExecutor is the production implementation of the Executor interface. It
// wraps the real chromedp calls.
type CDPExecutor struct{}

// NewCDPExecutor creates a new production-ready executor.
func NewCDPExecutor() *CDPExecutor {
	return &CDPExecutor{}
}

func (e *CDPExecutor) Sleep(ctx context.Context, d time.Duration) error {
	return chromedp.Sleep(d).Do(ctx)
}

func (e *CDPExecutor) ScrollIntoView(ctx context.Context, backendID cdp.BackendNodeID) error {
	return dom.ScrollIntoViewIfNeeded().WithBackendNodeID(backendID).Do(ctx)
}

func (e *CDPExecutor) GetBoxModel(ctx context.Context, backendID cdp.BackendNodeID) (*dom.BoxModel, error) {
	return dom.GetBoxModel().WithBackendNodeID(backendID).Do(ctx)
}

func (e *CDPExecutor) DispatchMouseEvent(ctx context.Context, p *input.DispatchMouseEventParams) error {
	return p.Do(ctx)
}

func (e *CDPExecutor) DispatchKeyEvent(ctx context.Context, keys string) error {
	return chromedp.KeyEvent(keys).Do(ctx)
}
