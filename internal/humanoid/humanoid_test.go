// File: internal/humanoid/humanoid_test.go
package humanoid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/config"
)

type fakeExecutor struct {
	scrolled []cdp.BackendNodeID
	slept    []time.Duration
	mouse    []*input.DispatchMouseEventParams
	keys     []string
	box      *dom.BoxModel
	boxErr   error
}

func (f *fakeExecutor) Sleep(_ context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	return nil
}

func (f *fakeExecutor) ScrollIntoView(_ context.Context, backendID cdp.BackendNodeID) error {
	f.scrolled = append(f.scrolled, backendID)
	return nil
}

func (f *fakeExecutor) GetBoxModel(context.Context, cdp.BackendNodeID) (*dom.BoxModel, error) {
	return f.box, f.boxErr
}

func (f *fakeExecutor) DispatchMouseEvent(_ context.Context, p *input.DispatchMouseEventParams) error {
	f.mouse = append(f.mouse, p)
	return nil
}

func (f *fakeExecutor) DispatchKeyEvent(_ context.Context, keys string) error {
	f.keys = append(f.keys, keys)
	return nil
}

func testConfig() config.HumanoidConfig {
	return config.HumanoidConfig{
		ScrollSettleMin: 10 * time.Millisecond,
		ScrollSettleMax: 20 * time.Millisecond,
		PreTapMin:       1 * time.Millisecond,
		PreTapMax:       5 * time.Millisecond,
		KeyDelayMin:     1 * time.Millisecond,
		KeyDelayMax:     2 * time.Millisecond,
		KeyPressMin:     3 * time.Millisecond,
		KeyPressMax:     6 * time.Millisecond,
	}
}

func TestTapHitsInnerBox(t *testing.T) {
	exec := &fakeExecutor{
		box: &dom.BoxModel{Content: dom.Quad{100, 200, 300, 200, 300, 260, 100, 260}},
	}
	h := New(exec, testConfig(), zap.NewNop())

	require.NoError(t, h.Tap(context.Background(), 42))

	assert.Equal(t, []cdp.BackendNodeID{42}, exec.scrolled)
	require.Len(t, exec.mouse, 3)
	assert.Equal(t, input.MouseMoved, exec.mouse[0].Type)
	assert.Equal(t, input.MousePressed, exec.mouse[1].Type)
	assert.Equal(t, input.MouseReleased, exec.mouse[2].Type)

	// Both events target the same point, inside the central 50%x50% region.
	for _, p := range exec.mouse {
		assert.GreaterOrEqual(t, p.X, 150.0)
		assert.LessOrEqual(t, p.X, 250.0)
		assert.GreaterOrEqual(t, p.Y, 215.0)
		assert.LessOrEqual(t, p.Y, 245.0)
	}
	assert.Equal(t, exec.mouse[0].X, exec.mouse[1].X)
	assert.Equal(t, exec.mouse[0].Y, exec.mouse[1].Y)

	// Settle and pre-tap pauses stay within the configured ranges.
	require.Len(t, exec.slept, 2)
	assert.GreaterOrEqual(t, exec.slept[0], 10*time.Millisecond)
	assert.LessOrEqual(t, exec.slept[0], 20*time.Millisecond)
	assert.GreaterOrEqual(t, exec.slept[1], 1*time.Millisecond)
	assert.LessOrEqual(t, exec.slept[1], 5*time.Millisecond)
}

func TestTapZeroAreaElement(t *testing.T) {
	exec := &fakeExecutor{
		box: &dom.BoxModel{Content: dom.Quad{100, 200, 100, 200, 100, 200, 100, 200}},
	}
	h := New(exec, testConfig(), zap.NewNop())

	err := h.Tap(context.Background(), 42)
	assert.Error(t, err)
	assert.Empty(t, exec.mouse)
}

func TestTapBoxModelFailure(t *testing.T) {
	exec := &fakeExecutor{boxErr: errors.New("node gone")}
	h := New(exec, testConfig(), zap.NewNop())

	err := h.Tap(context.Background(), 42)
	assert.Error(t, err)
	assert.Empty(t, exec.mouse)
}

func TestTypeTextSendsEachRune(t *testing.T) {
	exec := &fakeExecutor{}
	h := New(exec, testConfig(), zap.NewNop())

	require.NoError(t, h.TypeText(context.Background(), "héllo"))
	assert.Equal(t, []string{"h", "é", "l", "l", "o"}, exec.keys)
	assert.Len(t, exec.slept, 5)
}

func TestPressEnter(t *testing.T) {
	exec := &fakeExecutor{}
	h := New(exec, testConfig(), zap.NewNop())

	require.NoError(t, h.PressEnter(context.Background()))
	assert.Equal(t, []string{kb.Enter}, exec.keys)
	require.Len(t, exec.slept, 1)
	assert.GreaterOrEqual(t, exec.slept[0], 3*time.Millisecond)
	assert.LessOrEqual(t, exec.slept[0], 6*time.Millisecond)
}
