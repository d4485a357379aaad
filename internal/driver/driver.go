// File: internal/driver/driver.go
package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/actions"
	"github.com/xkilldash9x/concierge-cli/internal/chain"
	"github.com/xkilldash9x/concierge-cli/internal/llmclient"
)

// continueNotice forces another function call out of an agent that replied
// with neither an action nor a question.
const continueNotice = "Message received. Continue with the user's request, " +
	"or sleep forever if there is nothing left to do."

// Driver runs the conversation state machine: it waits for a trigger, issues
// one LLM call, executes at most one action, appends the results, and decides
// whether to loop again on its own. Strictly sequential; only the driver
// appends to the chain.
type Driver struct {
	chain    *chain.Chain
	registry *actions.Registry
	env      *actions.Env
	smart    llmclient.Client
	minifier *chain.Minifier
	policy   chain.QuestionPolicy
	sink     EventSink
	logger   *zap.Logger

	inbox chan string

	// mu guards the per-turn cancellation scope. Each new human message
	// replaces the scope, aborting whatever the old one was doing.
	mu         sync.Mutex
	turnCancel context.CancelFunc
}

// New assembles a driver over an already-started browser environment.
func New(c *chain.Chain, registry *actions.Registry, env *actions.Env,
	smart llmclient.Client, minifier *chain.Minifier, sink EventSink, logger *zap.Logger) *Driver {
	if sink == nil {
		sink = NopSink{}
	}
	return &Driver{
		chain:    c,
		registry: registry,
		env:      env,
		smart:    smart,
		minifier: minifier,
		policy:   chain.DefaultQuestionPolicy(),
		sink:     sink,
		logger:   logger.Named("driver"),
		inbox:    make(chan string, 16),
	}
}

// Send queues a human message and interrupts any in-flight LLM request or
// cancellable wait. The interrupted turn is discarded, never appended.
func (d *Driver) Send(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	d.inbox <- text

	d.mu.Lock()
	if d.turnCancel != nil {
		d.turnCancel()
	}
	d.mu.Unlock()
}

// Run executes the conversation loop until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	goAgain := false

	for {
		if !goAgain {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case text := <-d.inbox:
				d.appendUser(text)
			}
		}
		d.drainInbox()

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		goAgain = d.turn(ctx)
	}
}

func (d *Driver) appendUser(text string) {
	d.sink.Overlay(false)
	d.chain.Append(chain.NewUserMessage(text, time.Now()))
}

func (d *Driver) drainInbox() {
	for {
		select {
		case text := <-d.inbox:
			d.appendUser(text)
		default:
			return
		}
	}
}

// turn runs one request/parse/execute cycle. The return value is the
// auto-continue decision: true loops immediately, false parks in Idle.
func (d *Driver) turn(ctx context.Context) bool {
	turnCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.turnCancel = cancel
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.turnCancel = nil
		d.mu.Unlock()
		cancel()
	}()

	d.sink.Spinner(true)
	completion, err := d.smart.Complete(turnCtx, d.minifier.Project(d.chain))
	d.sink.Spinner(false)

	if err != nil {
		if errors.Is(err, context.Canceled) || turnCtx.Err() != nil {
			// A new human message arrived; the stale response is discarded.
			d.logger.Debug("LLM request cancelled by new user message")
			return false
		}
		d.logger.Error("LLM request failed", zap.Error(err))
		d.sink.Info(fmt.Sprintf("The model request failed: %v", err))
		return false
	}

	msg := chain.NewAIMessage(completion.Content, d.registry, d.policy, d.env.PageLinks(), time.Now())
	msg.AddCost(completion.Cost)

	if msg.IsPlan() {
		if prompt := d.chain.Prompt(); prompt != nil {
			prompt.UpdatePlan(msg.PlanText())
		}
	}

	if text := msg.ChatText(); text != "" {
		d.sink.Chat(text)
	}

	result, executed := d.execute(turnCtx, msg)
	if executed && result == nil {
		// Interrupted sleep or cancelled sub-call: abandon the turn without
		// advancing so the agent retries the same step after the new input.
		d.logger.Warn("Action produced no usable result, turn abandoned")
		return false
	}

	d.chain.Append(msg)
	d.sink.CostDelta(msg.Cost(), d.chain.TotalCost())

	if result != nil {
		d.chain.Append(chain.NewAppMessage(result.Params, time.Now()))
		if result.Blocking {
			return false
		}
		return msg.Question() == ""
	}

	if msg.Question() != "" {
		return false
	}

	// No action, no question: force the agent to make a function call.
	var params chain.Params
	params.Set("Notice", continueNotice)
	d.chain.Append(chain.NewAppMessage(params, time.Now()))
	return true
}

// execute runs the turn's single authorized action, if any. The boolean
// reports whether an action was attempted at all.
func (d *Driver) execute(ctx context.Context, msg *chain.AIMessage) (*actions.Result, bool) {
	calls := msg.Actions()
	if len(calls) == 0 || msg.Question() != "" {
		return nil, false
	}

	call := calls[0]
	action, ok := d.registry.Get(call.Name)
	if !ok {
		return nil, false
	}

	d.sink.Action(call.String())
	if !action.NoSpinner() {
		d.sink.Spinner(true)
		defer d.sink.Spinner(false)
	}

	result, err := action.Execute(ctx, call.Payload)
	if err != nil {
		if ctx.Err() != nil {
			return nil, true
		}
		d.logger.Error("Action execution failed",
			zap.String("action", call.Name), zap.Error(err))
		result = &actions.Result{Params: chain.Params{
			{Key: "Error", Value: fmt.Sprintf("%s failed: %v", call.Name, err)},
		}}
	}
	if result == nil {
		return nil, true
	}

	if len(calls) > 1 {
		ignored := make([]string, 0, len(calls)-1)
		for _, extra := range calls[1:] {
			ignored = append(ignored, extra.Name)
		}
		result.Params.Set("WARNING", fmt.Sprintf(
			"Multiple function calls found; only %s was executed (%s ignored). "+
				"Each message may contain at most one function call.",
			call.Name, strings.Join(ignored, ", ")))
	}

	if result.Cost > 0 {
		msg.AddCost(result.Cost)
	}

	if result.Blocking && call.Name == "request_user_intervention" {
		d.sink.Overlay(true)
	}

	return result, true
}
