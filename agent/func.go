package agent

import (
	"context"

	"github.com/hupe1980/agentslush/core"
)

// Func is the logic of a FuncAgent.
type Func func(ctx context.Context, inv *Invocation) (*core.Result, error)

// FuncAgent exposes a plain Go function as a core.Agent.
//
// Example:
//
//	lookup := agent.NewFunc("lookup", func(ctx context.Context, inv *agent.Invocation) (*core.Result, error) {
//	    rows := find(inv.Query())
//	    return core.NewResult(rows, inv.SlushOut(map[string]any{"rows": len(rows)})), nil
//	})
type FuncAgent struct {
	*BaseAgent
	fn Func
}

// NewFunc creates a FuncAgent.
func NewFunc(name string, fn Func, optFns ...func(o *Options)) *FuncAgent {
	return &FuncAgent{BaseAgent: NewBaseAgent(name, optFns...), fn: fn}
}

// Execute implements core.Agent. Errors from fn are returned unchanged.
func (a *FuncAgent) Execute(ctx context.Context, kwargs core.Kwargs) (*core.Result, error) {
	inv, err := a.Prepare(ctx, kwargs)
	if err != nil {
		return nil, err
	}

	res, err := a.fn(ctx, inv)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &core.Result{}
	}
	return res, nil
}
