// File: internal/actions/registry.go
package actions

import (
	"context"
	"strings"

	"github.com/xkilldash9x/concierge-cli/internal/chain"
)

// Result is the outcome of one executed action. A nil Result (with nil
// error) means the action produced nothing usable — an interrupted sleep or
// a cancelled sub-call — and the driver abandons the turn without advancing
// the transcript.
type Result struct {
	// Params become the body of the next AppMessage.
	Params chain.Params
	// Blocking suppresses automatic continuation until new human input.
	Blocking bool
	// Cost is dollar spend incurred by a nested model call.
	Cost float64
}

// Action is one named instruction the agent can issue.
type Action interface {
	Name() string
	// Multiline actions consume the remainder of the reply as payload.
	Multiline() bool
	// NoSpinner marks timed waits, where a busy indicator would mislead.
	NoSpinner() bool
	Execute(ctx context.Context, payload string) (*Result, error)
}

// Registry maps lowercase action names to their implementations. It doubles
// as the parser's action vocabulary.
type Registry struct {
	actions map[string]Action
}

var _ chain.ActionSpec = (*Registry)(nil)

// NewRegistry builds the full action set over the shared environment.
func NewRegistry(env *Env) *Registry {
	r := &Registry{actions: make(map[string]Action)}
	r.register(
		&gotoURL{env: env},
		&goBack{env: env},
		&reload{env: env},
		&clickOn{env: env},
		&typeIn{env: env},
		&sleep{env: env},
		&sleepUntil{env: env},
		&requestUserIntervention{env: env},
		&findInPageText{env: env},
	)
	return r
}

func (r *Registry) register(actions ...Action) {
	for _, a := range actions {
		r.actions[strings.ToLower(a.Name())] = a
	}
}

// Get returns the action for name, matched case-insensitively.
func (r *Registry) Get(name string) (Action, bool) {
	a, ok := r.actions[strings.ToLower(name)]
	return a, ok
}

// Recognized reports whether name is a registered action.
func (r *Registry) Recognized(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Multiline reports whether name is a registered multiline action.
func (r *Registry) Multiline(name string) bool {
	a, ok := r.Get(name)
	return ok && a.Multiline()
}
