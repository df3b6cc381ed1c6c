package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentslush/chain"
	"github.com/hupe1980/agentslush/core"
)

// SequentialAgent runs a chain as a single agent, so pipelines can be nested
// inside graphs, broadcast groups or other chains.
type SequentialAgent struct {
	*BaseAgent
	chain *chain.Chain
}

// NewSequentialAgent chains children in order. Every step after the first
// receives the previous payload under "input".
func NewSequentialAgent(name string, children ...core.Agent) *SequentialAgent {
	c := chain.New(func(o *chain.Options) { o.Name = name })
	for i, child := range children {
		var t chain.Transform
		if i > 0 {
			t = chain.Passthrough("input")
		}
		c.Add(child.Name(), child, nil, t)
	}
	return NewChainAgent(name, c, func(o *Options) {
		o.Description = fmt.Sprintf("Runs %d agents in sequence", len(children))
	})
}

// NewChainAgent wraps an existing chain.
func NewChainAgent(name string, c *chain.Chain, optFns ...func(o *Options)) *SequentialAgent {
	return &SequentialAgent{BaseAgent: NewBaseAgent(name, optFns...), chain: c}
}

// Chain returns the wrapped chain.
func (s *SequentialAgent) Chain() *chain.Chain { return s.chain }

// Execute runs the chain with kwargs as its input. The payload is the final
// step's payload; the slush carries the per-step statuses and the last step's
// slush. A failing step fails the agent with the chain's *chain.StepError.
func (s *SequentialAgent) Execute(ctx context.Context, kwargs core.Kwargs) (*core.Result, error) {
	inv, err := s.Prepare(ctx, kwargs)
	if err != nil {
		return nil, err
	}

	res, err := s.chain.RunWithInput(ctx, inv.Kwargs)
	if err != nil {
		return nil, fmt.Errorf("sequential agent %s: %w", s.Name(), err)
	}

	steps := make([]map[string]any, 0, len(res.Steps))
	var last map[string]any
	for _, step := range res.Steps {
		steps = append(steps, map[string]any{
			"name":        step.Name,
			"status":      string(step.Status),
			"duration_ms": step.Duration.Milliseconds(),
		})
		last = step.DataSlush
	}

	signals := map[string]any{"topology": "chain", "steps": steps}
	if last != nil {
		signals["last"] = last
	}
	return core.NewResult(res.FinalResult, inv.SlushOut(signals)), nil
}
