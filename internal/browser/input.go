// File: internal/browser/input.go
package browser

import (
	"context"
	"regexp"
)

// newlinePattern splits typed text on real newlines and on the literal
// two-character "\n" escape, which models emit interchangeably.
var newlinePattern = regexp.MustCompile(`\\n|\n`)

// TypeIn types text into the currently focused element. Newlines become
// keyboard enter presses; they never move focus to another element.
func (p *Page) TypeIn(ctx context.Context, text string) error {
	tabCtx := p.withTab(ctx)

	segments := newlinePattern.Split(text, -1)
	for i, segment := range segments {
		if segment != "" {
			if err := p.humanoid.TypeText(tabCtx, segment); err != nil {
				return err
			}
		}
		if i < len(segments)-1 {
			if err := p.humanoid.PressEnter(tabCtx); err != nil {
				return err
			}
		}
	}
	return nil
}
