// File: internal/actions/interaction.go
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/xkilldash9x/concierge-cli/internal/axtree"
	"github.com/xkilldash9x/concierge-cli/internal/chain"
)

type clickOn struct{ env *Env }

func (a *clickOn) Name() string    { return "click_on" }
func (a *clickOn) Multiline() bool { return false }
func (a *clickOn) NoSpinner() bool { return false }

func (a *clickOn) Execute(ctx context.Context, payload string) (*Result, error) {
	var extra chain.Params

	tree, err := a.env.Page.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		extra.Set("Error", fmt.Sprintf("could not read page content: %v", err))
		return &Result{Params: a.env.statusParams(ctx, extra)}, nil
	}

	id, err := axtree.Resolve(tree, payload)
	if err != nil {
		if errors.Is(err, axtree.ErrElementNotFound) {
			extra.Set("Error", err.Error())
			return &Result{Params: a.env.statusParams(ctx, extra)}, nil
		}
		return nil, err
	}

	if err := a.env.Page.Tap(ctx, tree.Node(id).BackendID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		extra.Set("Error", fmt.Sprintf("click failed: %v", err))
	} else {
		extra.Set("Outcome", fmt.Sprintf("Clicked on %s", payload))
	}
	return &Result{Params: a.env.statusParams(ctx, extra)}, nil
}

type typeIn struct{ env *Env }

func (a *typeIn) Name() string    { return "type_in" }
func (a *typeIn) Multiline() bool { return true }
func (a *typeIn) NoSpinner() bool { return false }

func (a *typeIn) Execute(ctx context.Context, payload string) (*Result, error) {
	var extra chain.Params
	if err := a.env.Page.TypeIn(ctx, payload); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		extra.Set("Error", fmt.Sprintf("typing failed: %v", err))
	} else {
		extra.Set("Outcome", "Typed the provided text into the focused element")
	}
	return &Result{Params: a.env.statusParams(ctx, extra)}, nil
}
