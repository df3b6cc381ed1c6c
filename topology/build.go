package topology

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentslush/broadcast"
	"github.com/hupe1980/agentslush/chain"
	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/graph"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/observability"
	"github.com/hupe1980/agentslush/slush"
)

// Agents resolves agent names used by a document.
type Agents interface {
	Get(name string) (core.Agent, bool)
}

// BuildOptions configures the orchestrators built from a document.
type BuildOptions struct {
	Logger  logging.Logger
	Metrics *observability.Metrics
	// OnLateResponse is passed to broadcast managers.
	OnLateResponse func(groupID string, r broadcast.Response)
}

func buildOptions(optFns []func(o *BuildOptions)) BuildOptions {
	opts := BuildOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return opts
}

func resolve(agents Agents, name string) (core.Agent, error) {
	a, ok := agents.Get(name)
	if !ok {
		return nil, fmt.Errorf("agent not found: %s", name)
	}
	return a, nil
}

// BuildGraph builds a graph from a graph document.
func BuildGraph(doc *Document, agents Agents, optFns ...func(o *BuildOptions)) (*graph.Graph, error) {
	if doc.Kind != KindGraph {
		return nil, fmt.Errorf("document kind is %q, not graph", doc.Kind)
	}
	opts := buildOptions(optFns)

	g := graph.New(func(o *graph.Options) {
		o.Name = doc.DisplayName()
		o.StopOnError = doc.Options.StopOnError
		o.NodeTimeout = doc.Options.NodeTimeout
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	for _, n := range doc.Nodes {
		a, err := resolve(agents, n.Agent)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		g.AddNode(graph.Node{Name: n.Name, Agent: a, Kwargs: n.Kwargs, DependsOn: n.DependsOn})
	}

	return g, nil
}

// BuildChain builds a chain from a chain document.
func BuildChain(doc *Document, agents Agents, optFns ...func(o *BuildOptions)) (*chain.Chain, error) {
	if doc.Kind != KindChain {
		return nil, fmt.Errorf("document kind is %q, not chain", doc.Kind)
	}
	opts := buildOptions(optFns)

	c := chain.New(func(o *chain.Options) {
		o.Name = doc.DisplayName()
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	for _, s := range doc.Steps {
		a, err := resolve(agents, s.Agent)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", s.Name, err)
		}
		c.Add(s.Name, a, s.Kwargs, transformFor(s))
	}

	return c, nil
}

func transformFor(s StepSpec) chain.Transform {
	var ts []chain.Transform
	if s.Passthrough != "" {
		ts = append(ts, chain.Passthrough(s.Passthrough))
	}
	for _, p := range s.Pluck {
		ts = append(ts, chain.Pluck(p.Key, p.Path))
	}
	if len(ts) == 0 {
		return nil
	}
	return chain.Compose(ts...)
}

// BuildGroup converts the group section. Options.Mode applies when the group
// itself names no mode.
func BuildGroup(doc *Document) (broadcast.Group, error) {
	if doc.Kind != KindGroup || doc.Group == nil {
		return broadcast.Group{}, fmt.Errorf("document kind is %q, not group", doc.Kind)
	}

	modeName := doc.Group.Mode
	if modeName == "" {
		modeName = doc.Options.Mode
	}
	mode, err := broadcast.ParseMode(modeName)
	if err != nil {
		return broadcast.Group{}, err
	}

	return broadcast.Group{
		ID:       doc.Group.ID,
		Name:     doc.Group.Name,
		AgentIDs: doc.Group.Agents,
		Mode:     mode,
	}, nil
}

// Run builds and runs the topology. The result is a *graph.RunResult,
// *chain.Result or *broadcast.Result depending on the kind. Errors follow the
// underlying orchestrator: chain and broadcast failures return the partial
// result together with the error.
func Run(ctx context.Context, doc *Document, agents Agents, optFns ...func(o *BuildOptions)) (any, error) {
	input := core.Kwargs(doc.Input)
	defer logging.ForRun(buildOptions(optFns).Logger, "topology", "").StartTimer("topology.run." + string(doc.Kind))()

	switch doc.Kind {
	case KindGraph:
		g, err := BuildGraph(doc, agents, optFns...)
		if err != nil {
			return nil, err
		}
		return orNil(g.Run(ctx, input))
	case KindChain:
		c, err := BuildChain(doc, agents, optFns...)
		if err != nil {
			return nil, err
		}
		return orNil(c.RunWithInput(ctx, input))
	case KindGroup:
		return orNil(runGroup(ctx, doc, agents, buildOptions(optFns)))
	default:
		return nil, fmt.Errorf("unknown kind: %q", doc.Kind)
	}
}

// orNil keeps a nil result pointer from becoming a non-nil interface.
func orNil[T any](res *T, err error) (any, error) {
	if res == nil {
		return nil, err
	}
	return res, err
}

func runGroup(ctx context.Context, doc *Document, agents Agents, opts BuildOptions) (*broadcast.Result, error) {
	group, err := BuildGroup(doc)
	if err != nil {
		return nil, err
	}
	for _, id := range group.AgentIDs {
		if _, err := resolve(agents, id); err != nil {
			return nil, err
		}
	}

	m := broadcast.NewManager(func(o *broadcast.Options) {
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
		o.OnLateResponse = opts.OnLateResponse
	})
	if err := m.CreateGroup(group); err != nil {
		return nil, err
	}

	return m.Broadcast(ctx, group.ID, slush.QueryText(core.Kwargs(doc.Input)), broadcast.AgentExecutor(agents))
}

// Check reports every problem that would keep doc from running against
// agents: unknown agents and, for graphs, structural errors such as cycles.
// An empty result means the document is runnable.
func Check(doc *Document, agents Agents) []string {
	problems := []string{}
	lookup := func(name string) core.Agent {
		a, ok := agents.Get(name)
		if !ok {
			problems = append(problems, fmt.Sprintf("agent not found: %s", name))
			return unresolved(name)
		}
		return a
	}

	switch doc.Kind {
	case KindGraph:
		g := graph.New()
		for _, n := range doc.Nodes {
			g.AddNode(graph.Node{Name: n.Name, Agent: lookup(n.Agent), DependsOn: n.DependsOn})
		}
		problems = append(problems, g.Validate().Errors...)
	case KindChain:
		for _, s := range doc.Steps {
			lookup(s.Agent)
		}
	case KindGroup:
		if _, err := BuildGroup(doc); err != nil {
			problems = append(problems, err.Error())
		}
		if doc.Group != nil {
			for _, id := range doc.Group.Agents {
				lookup(id)
			}
		}
	}

	return problems
}

// unresolved stands in for a missing agent so graph validation reports only
// structural problems.
type unresolved string

func (u unresolved) Name() string               { return string(u) }
func (u unresolved) Description() string        { return "" }
func (u unresolved) Parameters() map[string]any { return nil }
func (u unresolved) Execute(context.Context, core.Kwargs) (*core.Result, error) {
	return nil, fmt.Errorf("agent not found: %s", string(u))
}
