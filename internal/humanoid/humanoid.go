// File: internal/humanoid/humanoid.go
// Synthetic input with human-like timing. Every interaction is jittered:
// deterministic, instant input is the easiest automation tell there is.
package humanoid

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/config"
)

// Humanoid performs taps and typing against the emulated tab through an
// Executor, pacing every step with randomized delays from the configured
// ranges.
type Humanoid struct {
	exec   Executor
	cfg    config.HumanoidConfig
	rng    *rand.Rand
	logger *zap.Logger
}

// New creates a Humanoid over the given executor.
func New(exec Executor, cfg config.HumanoidConfig, logger *zap.Logger) *Humanoid {
	return &Humanoid{
		exec:   exec,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.Named("humanoid"),
	}
}

// jitter returns a uniform duration in [min, max].
func (h *Humanoid) jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(h.rng.Int63n(int64(max-min)))
}

// Tap scrolls the element into view, waits for the page to settle, then taps
// a random point within the inner half of the element's content box. The
// inner-half restriction keeps the tap well away from the element's edges,
// where rounded corners and overlapping neighbors steal hits.
func (h *Humanoid) Tap(ctx context.Context, backendID cdp.BackendNodeID) error {
	if err := h.exec.ScrollIntoView(ctx, backendID); err != nil {
		return fmt.Errorf("scroll into view: %w", err)
	}
	if err := h.exec.Sleep(ctx, h.jitter(h.cfg.ScrollSettleMin, h.cfg.ScrollSettleMax)); err != nil {
		return err
	}

	box, err := h.exec.GetBoxModel(ctx, backendID)
	if err != nil {
		return fmt.Errorf("get box model: %w", err)
	}
	x, y, err := h.tapPoint(box.Content)
	if err != nil {
		return err
	}

	// Move the cursor onto the target first; a press with no prior movement
	// is another automation tell.
	move := input.DispatchMouseEvent(input.MouseMoved, x, y)
	if err := h.exec.DispatchMouseEvent(ctx, move); err != nil {
		return fmt.Errorf("dispatch move: %w", err)
	}

	if err := h.exec.Sleep(ctx, h.jitter(h.cfg.PreTapMin, h.cfg.PreTapMax)); err != nil {
		return err
	}

	h.logger.Debug("Dispatching tap",
		zap.Int64("backend_node_id", int64(backendID)),
		zap.Float64("x", x), zap.Float64("y", y))

	press := input.DispatchMouseEvent(input.MousePressed, x, y).
		WithButton(input.Left).
		WithClickCount(1)
	if err := h.exec.DispatchMouseEvent(ctx, press); err != nil {
		return fmt.Errorf("dispatch press: %w", err)
	}

	release := input.DispatchMouseEvent(input.MouseReleased, x, y).
		WithButton(input.Left).
		WithClickCount(1)
	if err := h.exec.DispatchMouseEvent(ctx, release); err != nil {
		return fmt.Errorf("dispatch release: %w", err)
	}
	return nil
}

// tapPoint picks a uniform random point inside the central 50%x50% region of
// the content quad.
func (h *Humanoid) tapPoint(quad []float64) (float64, float64, error) {
	if len(quad) < 8 {
		return 0, 0, fmt.Errorf("degenerate content quad (%d values)", len(quad))
	}

	minX, maxX := quad[0], quad[0]
	minY, maxY := quad[1], quad[1]
	for i := 2; i < 8; i += 2 {
		if quad[i] < minX {
			minX = quad[i]
		}
		if quad[i] > maxX {
			maxX = quad[i]
		}
		if quad[i+1] < minY {
			minY = quad[i+1]
		}
		if quad[i+1] > maxY {
			maxY = quad[i+1]
		}
	}

	width := maxX - minX
	height := maxY - minY
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("element has no visible area")
	}

	x := minX + width*(0.25+h.rng.Float64()*0.5)
	y := minY + height*(0.25+h.rng.Float64()*0.5)
	return x, y, nil
}

// TypeText types into whatever element currently holds focus, one character
// at a time with a short randomized inter-key delay.
func (h *Humanoid) TypeText(ctx context.Context, text string) error {
	for _, r := range text {
		if err := h.exec.DispatchKeyEvent(ctx, string(r)); err != nil {
			return fmt.Errorf("send key %q: %w", r, err)
		}
		if err := h.exec.Sleep(ctx, h.jitter(h.cfg.KeyDelayMin, h.cfg.KeyDelayMax)); err != nil {
			return err
		}
	}
	return nil
}

// PressEnter sends a keyboard enter and waits for the page to react. Enter
// frequently submits a form or triggers navigation, hence the longer settle.
func (h *Humanoid) PressEnter(ctx context.Context) error {
	if err := h.exec.DispatchKeyEvent(ctx, kb.Enter); err != nil {
		return fmt.Errorf("send enter: %w", err)
	}
	return h.exec.Sleep(ctx, h.jitter(h.cfg.KeyPressMin, h.cfg.KeyPressMax))
}
