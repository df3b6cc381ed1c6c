// Package agentslush provides a high-level façade over the orchestrators and
// supporting services (registry, memory, logging, metrics) so applications can
// assemble multi-agent systems quickly. Most applications:
//  1. Create an AgentSlush via New() (optionally overriding defaults)
//  2. Build agents with AgentOptions so they share the envelope builder
//  3. Register the agents
//  4. Compose them with Graph, Chain, Broadcast or SubAgents, or run a
//     topology document with RunTopology
//
// Defaults are in-memory and safe for local development and tests.
package agentslush

import (
	"context"

	"github.com/hupe1980/agentslush/agent"
	"github.com/hupe1980/agentslush/broadcast"
	"github.com/hupe1980/agentslush/chain"
	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/graph"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/memory"
	"github.com/hupe1980/agentslush/observability"
	"github.com/hupe1980/agentslush/registry"
	"github.com/hupe1980/agentslush/server"
	"github.com/hupe1980/agentslush/slush"
	"github.com/hupe1980/agentslush/subagent"
	"github.com/hupe1980/agentslush/topology"
)

// Options configures the AgentSlush instance.
type Options struct {
	// Memory is the store backing memory echoes. Defaults to an empty
	// in-memory store.
	Memory *memory.Store

	// RecordMemory wraps every registered agent so its successful payloads
	// are remembered and surface as echoes in later envelopes.
	RecordMemory bool

	// Behavior and Priors feed the remaining envelope extension points.
	Behavior slush.BehaviorSource
	Priors   slush.PriorSource

	// Metrics is optional; nil disables metric recording.
	Metrics *observability.Metrics

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// AgentSlush aggregates the registry, envelope builder and services.
type AgentSlush struct {
	opts     Options
	registry *registry.Registry
	builder  *slush.Builder
}

// New creates an AgentSlush with optional overrides.
func New(optFns ...func(o *Options)) *AgentSlush {
	opts := Options{
		Memory: memory.NewStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Memory == nil {
		opts.Memory = memory.NewStore()
	}

	builder := slush.NewBuilder(func(o *slush.Options) {
		o.Echoes = opts.Memory
		o.Behavior = opts.Behavior
		o.Priors = opts.Priors
	})

	reg, _ := registry.New()
	return &AgentSlush{opts: opts, registry: reg, builder: builder}
}

// AgentOptions wires the shared builder and logger into agents built on
// agent.BaseAgent:
//
//	a := agent.NewFunc("greeter", fn, s.AgentOptions)
func (s *AgentSlush) AgentOptions(o *agent.Options) {
	o.Builder = s.builder
	o.Logger = s.opts.Logger
}

// Register adds agents, replacing any agent with the same name.
func (s *AgentSlush) Register(agents ...core.Agent) error {
	for _, a := range agents {
		if s.opts.RecordMemory && a != nil {
			a = memory.Recording(a, s.opts.Memory, s.opts.Logger)
		}
		if err := s.registry.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// Agent returns a registered agent.
func (s *AgentSlush) Agent(name string) (core.Agent, bool) { return s.registry.Get(name) }

// Registry exposes the underlying registry.
func (s *AgentSlush) Registry() *registry.Registry { return s.registry }

// Memory exposes the memory store.
func (s *AgentSlush) Memory() *memory.Store { return s.opts.Memory }

// Builder exposes the shared envelope builder.
func (s *AgentSlush) Builder() *slush.Builder { return s.builder }

// Graph creates an empty graph wired to the logger and metrics.
func (s *AgentSlush) Graph(optFns ...func(o *graph.Options)) *graph.Graph {
	return graph.New(append([]func(o *graph.Options){func(o *graph.Options) {
		o.Logger = s.opts.Logger
		o.Metrics = s.opts.Metrics
	}}, optFns...)...)
}

// Chain creates an empty chain wired to the logger and metrics.
func (s *AgentSlush) Chain(optFns ...func(o *chain.Options)) *chain.Chain {
	return chain.New(append([]func(o *chain.Options){func(o *chain.Options) {
		o.Logger = s.opts.Logger
		o.Metrics = s.opts.Metrics
	}}, optFns...)...)
}

// Broadcast creates a broadcast manager wired to the logger and metrics.
// Use BroadcastExecutor to dispatch to registered agents.
func (s *AgentSlush) Broadcast(optFns ...func(o *broadcast.Options)) *broadcast.Manager {
	return broadcast.NewManager(append([]func(o *broadcast.Options){func(o *broadcast.Options) {
		o.Logger = s.opts.Logger
		o.Metrics = s.opts.Metrics
	}}, optFns...)...)
}

// BroadcastExecutor dispatches broadcast messages to registered agents.
func (s *AgentSlush) BroadcastExecutor() broadcast.Executor {
	return broadcast.AgentExecutor(s.registry)
}

// SubAgents creates a recursion guard whose executor runs registered agents.
func (s *AgentSlush) SubAgents(maxDepth int, optFns ...func(o *subagent.Options)) *subagent.Manager {
	return subagent.NewManager(maxDepth, append([]func(o *subagent.Options){func(o *subagent.Options) {
		o.Executor = subagent.RegistryExecutor(s.registry)
		o.Logger = s.opts.Logger
	}}, optFns...)...)
}

// RunTopology runs a parsed topology document against the registered agents.
func (s *AgentSlush) RunTopology(ctx context.Context, doc *topology.Document) (any, error) {
	return topology.Run(ctx, doc, s.registry, func(o *topology.BuildOptions) {
		o.Logger = s.opts.Logger
		o.Metrics = s.opts.Metrics
	})
}

// RunFile loads and runs the topology document at path.
func (s *AgentSlush) RunFile(ctx context.Context, path string) (any, error) {
	doc, err := topology.Load(path)
	if err != nil {
		return nil, err
	}
	return s.RunTopology(ctx, doc)
}

// Server creates the HTTP gateway over the registered agents.
func (s *AgentSlush) Server(optFns ...func(o *server.Options)) *server.Server {
	return server.New(s.registry, append([]func(o *server.Options){func(o *server.Options) {
		o.Logger = s.opts.Logger
		o.Metrics = s.opts.Metrics
	}}, optFns...)...)
}
