package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/observability"
)

// Options configures a Graph.
type Options struct {
	// Name labels logs, spans and metrics.
	Name string
	// StopOnError halts the run at the first node failure.
	StopOnError bool
	// NodeTimeout bounds each node's execution. Zero disables the timeout.
	NodeTimeout time.Duration
	Logger      logging.Logger
	Tracer      trace.Tracer
	Metrics     *observability.Metrics
}

// WithName sets the graph name.
func WithName(name string) func(o *Options) {
	return func(o *Options) { o.Name = name }
}

// WithStopOnError enables the stop-on-error failure policy.
func WithStopOnError() func(o *Options) {
	return func(o *Options) { o.StopOnError = true }
}

// WithNodeTimeout sets the per-node timeout.
func WithNodeTimeout(d time.Duration) func(o *Options) {
	return func(o *Options) { o.NodeTimeout = d }
}

// Graph is a set of nodes with dependency edges. Build it with AddNode and
// execute it with Run; a Graph may be run more than once.
type Graph struct {
	nodes []Node
	opts  Options
}

// New creates an empty Graph.
func New(optFns ...func(o *Options)) *Graph {
	opts := Options{
		Name:   "graph",
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer("github.com/hupe1980/agentslush/graph")
	}

	return &Graph{opts: opts}
}

// AddNode appends n. Duplicates are reported by Validate, not here.
func (g *Graph) AddNode(n Node) *Graph {
	n.DependsOn = append([]string(nil), n.DependsOn...)
	g.nodes = append(g.nodes, n)
	return g
}

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Name returns the configured graph name.
func (g *Graph) Name() string { return g.opts.Name }

// Run validates the graph and executes it. Invalid graphs return a
// *ValidationError before any node runs. Node failures never produce an
// error return; they are reported in the RunResult.
func (g *Graph) Run(ctx context.Context, initial core.Kwargs) (*RunResult, error) {
	start := time.Now()

	if vr := g.Validate(); !vr.Valid {
		g.opts.Logger.Error("Graph validation failed", "graph", g.opts.Name, "errors", vr.Errors)
		return nil, &ValidationError{Errors: vr.Errors}
	}

	runID := uuid.NewString()

	ctx, span := g.opts.Tracer.Start(ctx, "graph.run", trace.WithAttributes(
		attribute.String("graph.name", g.opts.Name),
		attribute.String("graph.run_id", runID),
		attribute.Int("graph.nodes", len(g.nodes)),
	))

	s := newScheduler(g, runID, initial)
	s.log.Info("Graph run started", "graph", g.opts.Name, "nodes", len(g.nodes))

	res := s.run(ctx)
	res.TotalDuration = core.Since(start)

	span.SetAttributes(attribute.String("graph.status", string(res.Status)))
	observability.EndSpan(span, s.cause)

	g.opts.Metrics.RecordRun(ctx, "graph", g.opts.Name, string(res.Status), res.TotalDuration.Std())
	s.log.LogTopology("graph", g.opts.Name, string(res.Status), len(g.nodes), res.TotalDuration.Std(), s.cause)

	return res, nil
}
