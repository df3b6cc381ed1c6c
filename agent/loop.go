package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentslush/core"
)

// ErrEscalated is returned by a child to end a loop early. The loop then
// succeeds with the last successful result.
var ErrEscalated = errors.New("child agent escalated")

// LoopAgent executes a single child repeatedly until a predicate accepts its
// result, the child escalates, or the iteration limit is reached.
type LoopAgent struct {
	*BaseAgent
	child       core.Agent
	maxIters    int
	interval    time.Duration
	stopOnError bool
	predicate   func(*core.Result) bool
}

// LoopOption customizes a LoopAgent.
type LoopOption func(*LoopAgent)

// WithMaxIters sets the maximum number of iterations. Default 10.
func WithMaxIters(n int) LoopOption {
	return func(l *LoopAgent) { l.maxIters = n }
}

// WithInterval sets the delay between iterations.
func WithInterval(d time.Duration) LoopOption {
	return func(l *LoopAgent) { l.interval = d }
}

// WithPredicate stops the loop once pred returns true for a result.
func WithPredicate(pred func(*core.Result) bool) LoopOption {
	return func(l *LoopAgent) { l.predicate = pred }
}

// WithContinueOnError keeps iterating after child failures.
func WithContinueOnError() LoopOption {
	return func(l *LoopAgent) { l.stopOnError = false }
}

// NewLoopAgent constructs a looping coordinator around child.
func NewLoopAgent(name string, child core.Agent, opts ...LoopOption) *LoopAgent {
	l := &LoopAgent{
		BaseAgent:   NewBaseAgent(name, func(o *Options) { o.Description = fmt.Sprintf("Repeats %s", child.Name()) }),
		child:       child,
		maxIters:    10,
		stopOnError: true,
	}
	for _, o := range opts {
		o(l)
	}
	if l.maxIters <= 0 {
		l.maxIters = 1
	}
	return l
}

// Execute runs the loop. Iteration i>0 receives the original kwargs plus the
// previous payload under "input", the iteration number under "iteration" and
// the previous slush as upstream slush.
func (l *LoopAgent) Execute(ctx context.Context, kwargs core.Kwargs) (*core.Result, error) {
	inv, err := l.Prepare(ctx, kwargs)
	if err != nil {
		return nil, err
	}

	var (
		last     *core.Result
		lastErr  error
		iters    int
		stopWhy  = "max_iterations"
		failures int
	)

	for i := 0; i < l.maxIters; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in := inv.Kwargs.Clone()
		in["iteration"] = i
		if last != nil {
			in["input"] = last.Payload
			if last.Slush != nil {
				in[core.UpstreamSlushKey] = last.Slush
			}
		}

		iters++
		res, err := l.child.Execute(ctx, in)
		switch {
		case errors.Is(err, ErrEscalated):
			inv.Logger.Debug("Loop escalated", "agent", l.Name(), "iteration", i+1)
			stopWhy = "escalated"
		case err != nil:
			failures++
			lastErr = err
			if l.stopOnError {
				return nil, fmt.Errorf("loop iteration %d failed for agent %s: %w", i+1, l.child.Name(), err)
			}
			inv.Logger.Warn("Loop iteration failed", "agent", l.Name(), "iteration", i+1, "error", err)
		default:
			if res == nil {
				res = &core.Result{}
			}
			last = res
			if l.predicate != nil && l.predicate(res) {
				stopWhy = "predicate"
			}
		}
		if stopWhy != "max_iterations" {
			break
		}

		if l.interval > 0 && i < l.maxIters-1 {
			timer := time.NewTimer(l.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if last == nil {
		if lastErr != nil {
			return nil, fmt.Errorf("loop %s produced no successful iteration: %w", l.Name(), lastErr)
		}
		last = &core.Result{}
	}

	signals := map[string]any{"iterations": iters, "stopped_by": stopWhy, "failures": failures}
	if last.Slush != nil {
		signals["last"] = last.Slush
	}
	return core.NewResult(last.Payload, inv.SlushOut(signals)), nil
}
