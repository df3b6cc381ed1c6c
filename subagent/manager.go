package subagent

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/observability"
)

// MaxRepeatedInvocations is how many times one agent may appear in a call
// chain's history before further calls to it are rejected as a loop.
const MaxRepeatedInvocations = 3

// Executor performs one guarded invocation. ic is the child context of the call.
type Executor func(ctx context.Context, agentID, message string, ic InvocationContext) (any, error)

// Options configures a Manager.
type Options struct {
	Executor Executor
	Logger   logging.Logger
	Tracer   trace.Tracer
	// Clock stamps history entries. Defaults to time.Now.
	Clock func() time.Time
	// NewID generates call ids. Defaults to uuid.NewString.
	NewID func() string
}

// Manager enforces depth and loop limits on nested agent invocations.
type Manager struct {
	maxDepth int
	logger   logging.Logger
	tracer   trace.Tracer
	clock    func() time.Time
	newID    func() string

	mu       sync.RWMutex
	executor Executor
}

// NewManager creates a Manager allowing calls at depths 0 through maxDepth-1.
func NewManager(maxDepth int, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
		NewID:  uuid.NewString,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer("github.com/hupe1980/agentslush/subagent")
	}

	return &Manager{
		maxDepth: maxDepth,
		executor: opts.Executor,
		logger:   logging.OrNoOp(opts.Logger),
		tracer:   opts.Tracer,
		clock:    opts.Clock,
		newID:    opts.NewID,
	}
}

// SetExecutor replaces the executor.
func (m *Manager) SetExecutor(e Executor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executor = e
}

// MaxDepth returns the configured depth limit.
func (m *Manager) MaxDepth() int { return m.maxDepth }

// CreateContext starts a new call chain.
func (m *Manager) CreateContext(parentAgentID string) InvocationContext {
	return InvocationContext{
		Depth:         0,
		CallID:        m.newID(),
		ParentAgentID: parentAgentID,
		History:       []HistoryEntry{},
	}
}

// CanInvoke reports whether a call at depth is within the depth limit.
func (m *Manager) CanInvoke(_ string, depth int) bool {
	return depth < m.maxDepth
}

// Invoke checks the depth and loop limits, derives the child context and runs
// the executor. The executor's result and error are returned unchanged.
func (m *Manager) Invoke(ctx context.Context, agentID, message string, ic InvocationContext) (any, error) {
	if !m.CanInvoke(agentID, ic.Depth) {
		err := &DepthLimitError{AgentID: agentID, Depth: ic.Depth, MaxDepth: m.maxDepth}
		m.logger.Warn("Sub-agent call rejected", "agent", agentID, "depth", ic.Depth, "error", err)
		return nil, err
	}

	if n := ic.Occurrences(agentID); n >= MaxRepeatedInvocations {
		err := &LoopError{AgentID: agentID, Count: n}
		m.logger.Warn("Sub-agent call rejected", "agent", agentID, "depth", ic.Depth, "error", err)
		return nil, err
	}

	m.mu.RLock()
	exec := m.executor
	m.mu.RUnlock()
	if exec == nil {
		return nil, ErrNoExecutor
	}

	child := ic.child(agentID, m.newID(), m.clock())

	ctx, span := m.tracer.Start(ctx, "subagent.invoke", trace.WithAttributes(
		attribute.String("agent.name", agentID),
		attribute.Int("subagent.depth", child.Depth),
		attribute.String("subagent.call_id", child.CallID),
	))

	m.logger.Debug("Sub-agent invoked", "agent", agentID, "depth", child.Depth, "call_id", child.CallID)

	out, err := exec(withFrame(ctx, m, child), agentID, message, child)
	observability.EndSpan(span, err)

	return out, err
}
