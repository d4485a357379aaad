// File: internal/actions/intervene.go
package actions

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/concierge-cli/internal/chain"
)

type requestUserIntervention struct{ env *Env }

func (a *requestUserIntervention) Name() string    { return "request_user_intervention" }
func (a *requestUserIntervention) Multiline() bool { return false }
func (a *requestUserIntervention) NoSpinner() bool { return false }

// Execute hands control of the browser to the human. The driver surfaces the
// overlay and suppresses continuation until a new human message arrives.
func (a *requestUserIntervention) Execute(ctx context.Context, payload string) (*Result, error) {
	var extra chain.Params
	extra.Set("Outcome", fmt.Sprintf(
		"Control handed to the user (%s). Waiting for the user to finish and send a message.", payload))
	return &Result{Params: a.env.statusParams(ctx, extra), Blocking: true}, nil
}
