// File: internal/actions/navigation.go
package actions

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/concierge-cli/internal/chain"
)

type gotoURL struct{ env *Env }

func (a *gotoURL) Name() string    { return "goto_url" }
func (a *gotoURL) Multiline() bool { return false }
func (a *gotoURL) NoSpinner() bool { return false }

func (a *gotoURL) Execute(ctx context.Context, payload string) (*Result, error) {
	var extra chain.Params
	if err := a.env.Page.Navigate(ctx, payload); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		extra.Set("Error", fmt.Sprintf("navigation failed: %v", err))
	} else {
		extra.Set("Outcome", fmt.Sprintf("Navigated to %s", payload))
	}
	return &Result{Params: a.env.statusParams(ctx, extra)}, nil
}

type goBack struct{ env *Env }

func (a *goBack) Name() string    { return "go_back" }
func (a *goBack) Multiline() bool { return false }
func (a *goBack) NoSpinner() bool { return false }

func (a *goBack) Execute(ctx context.Context, payload string) (*Result, error) {
	var extra chain.Params
	if err := a.env.Page.Back(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		extra.Set("Error", fmt.Sprintf("go back failed: %v", err))
	} else {
		extra.Set("Outcome", "Went back one page in browsing history")
	}
	return &Result{Params: a.env.statusParams(ctx, extra)}, nil
}

type reload struct{ env *Env }

func (a *reload) Name() string    { return "reload" }
func (a *reload) Multiline() bool { return false }
func (a *reload) NoSpinner() bool { return false }

func (a *reload) Execute(ctx context.Context, payload string) (*Result, error) {
	var extra chain.Params
	if err := a.env.Page.Reload(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		extra.Set("Error", fmt.Sprintf("reload failed: %v", err))
	} else {
		extra.Set("Outcome", "Reloaded the current page")
	}
	return &Result{Params: a.env.statusParams(ctx, extra)}, nil
}
