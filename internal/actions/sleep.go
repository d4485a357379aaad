// File: internal/actions/sleep.go
package actions

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/chain"
)

var firstIntegerPattern = regexp.MustCompile(`\d+`)

type sleep struct{ env *Env }

func (a *sleep) Name() string    { return "sleep" }
func (a *sleep) Multiline() bool { return false }
func (a *sleep) NoSpinner() bool { return true }

// Execute waits for the requested number of seconds. "forever" is a blocking
// marker: the agent has no further planned steps and only a new human message
// resumes it. A cancelled wait is reported as no result, so the driver
// abandons the turn and the agent retries the same sleep after the
// interrupting message.
func (a *sleep) Execute(ctx context.Context, payload string) (*Result, error) {
	if strings.Contains(strings.ToLower(payload), "forever") {
		var extra chain.Params
		extra.Set("Outcome", "Sleeping until the user sends a new message")
		return &Result{Params: a.env.statusParams(ctx, extra), Blocking: true}, nil
	}

	match := firstIntegerPattern.FindString(payload)
	if match == "" {
		var extra chain.Params
		extra.Set("Error", fmt.Sprintf("could not find a number of seconds in %q", payload))
		return &Result{Params: a.env.statusParams(ctx, extra)}, nil
	}
	seconds, err := strconv.Atoi(match)
	if err != nil {
		return nil, fmt.Errorf("parse sleep seconds %q: %w", match, err)
	}

	if interrupted := a.env.wait(ctx, time.Duration(seconds)*time.Second); interrupted {
		return nil, nil
	}

	var extra chain.Params
	extra.Set("Outcome", fmt.Sprintf("Slept %d seconds", seconds))
	return &Result{Params: a.env.statusParams(ctx, extra)}, nil
}

type sleepUntil struct{ env *Env }

func (a *sleepUntil) Name() string    { return "sleep_until" }
func (a *sleepUntil) Multiline() bool { return false }
func (a *sleepUntil) NoSpinner() bool { return true }

func (a *sleepUntil) Execute(ctx context.Context, payload string) (*Result, error) {
	target, err := parseWhen(payload, time.Now())
	if err != nil {
		var extra chain.Params
		extra.Set("Error", fmt.Sprintf("could not parse date/time %q: %v", payload, err))
		return &Result{Params: a.env.statusParams(ctx, extra)}, nil
	}

	d := time.Until(target)
	if d <= 0 {
		var extra chain.Params
		extra.Set("Outcome", fmt.Sprintf("%s has already passed, continuing immediately",
			target.Format(chain.DateLayout)))
		return &Result{Params: a.env.statusParams(ctx, extra)}, nil
	}

	if interrupted := a.env.wait(ctx, d); interrupted {
		return nil, nil
	}

	var extra chain.Params
	extra.Set("Outcome", fmt.Sprintf("Slept until %s", target.Format(chain.DateLayout)))
	return &Result{Params: a.env.statusParams(ctx, extra)}, nil
}

// parseWhen resolves a natural-language instant, trying the rule-based parser
// first and falling back to strict date parsing for absolute formats.
func parseWhen(text string, now time.Time) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	if result, err := w.Parse(text, now); err == nil && result != nil {
		return result.Time, nil
	}

	parsed, err := dateparse.ParseLocal(strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

// wait blocks for d, reporting true when the context interrupted it early.
func (e *Env) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return false
	case <-ctx.Done():
		e.Logger.Warn("Sleep interrupted", zap.Duration("remaining", d))
		return true
	}
}
