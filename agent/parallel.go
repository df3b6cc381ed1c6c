package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/graph"
)

// ParallelAgent runs a graph as a single agent.
type ParallelAgent struct {
	*BaseAgent
	graph *graph.Graph
}

// NewParallelAgent runs children concurrently as independent graph nodes
// named after the children. All of them receive the same kwargs.
func NewParallelAgent(name string, children ...core.Agent) *ParallelAgent {
	g := graph.New(graph.WithName(name))
	for _, child := range children {
		g.AddNode(graph.Node{Name: child.Name(), Agent: child})
	}
	return NewGraphAgent(name, g, func(o *Options) {
		o.Description = fmt.Sprintf("Runs %d agents in parallel", len(children))
	})
}

// NewGraphAgent wraps an existing graph.
func NewGraphAgent(name string, g *graph.Graph, optFns ...func(o *Options)) *ParallelAgent {
	return &ParallelAgent{BaseAgent: NewBaseAgent(name, optFns...), graph: g}
}

// Graph returns the wrapped graph.
func (p *ParallelAgent) Graph() *graph.Graph { return p.graph }

// Execute runs the graph with kwargs as initial input. The payload maps each
// successful node to its payload; the slush maps nodes to their slush and
// records the run status. Partial runs succeed; a run in which no node
// succeeded fails with the first node error.
func (p *ParallelAgent) Execute(ctx context.Context, kwargs core.Kwargs) (*core.Result, error) {
	inv, err := p.Prepare(ctx, kwargs)
	if err != nil {
		return nil, err
	}

	res, err := p.graph.Run(ctx, inv.Kwargs)
	if err != nil {
		return nil, fmt.Errorf("parallel agent %s: %w", p.Name(), err)
	}
	if res.Status == graph.StatusError {
		return nil, fmt.Errorf("parallel agent %s: %w", p.Name(), firstNodeError(res))
	}

	payload := make(map[string]any, len(res.Nodes))
	nodes := make(map[string]any, len(res.Nodes))
	for name, nr := range res.Nodes {
		if nr.Status != graph.StatusSuccess {
			continue
		}
		payload[name] = nr.Result
		if nr.DataSlush != nil {
			nodes[name] = nr.DataSlush
		}
	}

	return core.NewResult(payload, inv.SlushOut(map[string]any{
		"topology": "graph",
		"status":   string(res.Status),
		"nodes":    nodes,
	})), nil
}

func firstNodeError(res *graph.RunResult) error {
	for _, name := range res.ExecutionOrder {
		if nr := res.Nodes[name]; nr != nil && nr.Err != nil {
			return nr.Err
		}
	}
	return fmt.Errorf("%w: %s", core.ErrNodeExecution, res.Error)
}
