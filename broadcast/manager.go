package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/observability"
)

// Executor delivers message to one member agent.
type Executor func(ctx context.Context, agentID, message string) (any, error)

// Options configures a Manager.
type Options struct {
	Logger logging.Logger
	// OnLateResponse receives race-mode responses that arrive after the
	// broadcast resolved. It runs on a background goroutine.
	OnLateResponse func(groupID string, r Response)
	Tracer         trace.Tracer
	Metrics        *observability.Metrics
}

// Manager is a registry of groups and the coordinator that broadcasts to them.
type Manager struct {
	opts Options

	mu     sync.RWMutex
	groups map[string]Group
	order  []string
}

// NewManager creates a Manager with no groups.
func NewManager(optFns ...func(o *Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer("github.com/hupe1980/agentslush/broadcast")
	}

	return &Manager{opts: opts, groups: make(map[string]Group)}
}

// CreateGroup registers g. An empty mode selects race.
func (m *Manager) CreateGroup(g Group) error {
	if g.ID == "" {
		return errors.New("group id is required")
	}
	if len(g.AgentIDs) == 0 {
		return fmt.Errorf("group %s has no members", g.ID)
	}
	mode, err := ParseMode(string(g.Mode))
	if err != nil {
		return fmt.Errorf("group %s: %w", g.ID, err)
	}
	g.Mode = mode
	g.AgentIDs = append([]string(nil), g.AgentIDs...)
	if g.Name == "" {
		g.Name = g.ID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.groups[g.ID]; exists {
		return fmt.Errorf("group %s already exists", g.ID)
	}
	m.groups[g.ID] = g
	m.order = append(m.order, g.ID)

	return nil
}

// Group returns the group registered under id.
func (m *Manager) Group(id string) (Group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if ok {
		g.AgentIDs = append([]string(nil), g.AgentIDs...)
	}
	return g, ok
}

// Groups returns all groups in creation order.
func (m *Manager) Groups() []Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Group, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.groups[id])
	}
	return out
}

// RemoveGroup deletes a group and reports whether it existed.
func (m *Manager) RemoveGroup(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return false
	}
	delete(m.groups, id)
	for i, gid := range m.order {
		if gid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Broadcast sends message to every member of the group through exec.
func (m *Manager) Broadcast(ctx context.Context, groupID, message string, exec Executor) (*Result, error) {
	g, ok := m.Group(groupID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, groupID)
	}
	if exec == nil {
		return nil, errors.New("broadcast executor is required")
	}

	start := time.Now()
	ctx, span := m.opts.Tracer.Start(ctx, "broadcast", trace.WithAttributes(
		attribute.String("broadcast.group", g.ID),
		attribute.String("broadcast.mode", string(g.Mode)),
		attribute.Int("broadcast.members", len(g.AgentIDs)),
	))

	var (
		res *Result
		err error
	)
	switch g.Mode {
	case ModeAll:
		res, err = m.all(ctx, g, message, exec)
	default:
		res, err = m.race(ctx, g, message, exec)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	elapsed := time.Since(start)
	observability.EndSpan(span, err)
	m.opts.Metrics.RecordRun(ctx, "broadcast", g.ID, status, elapsed)

	log := logging.ForRun(m.opts.Logger, "broadcast", "")
	log.LogTopology("broadcast", g.ID, status, len(g.AgentIDs), elapsed, err)
	if err != nil {
		return res, err
	}

	log.Debug("Broadcast resolved",
		"group", g.ID,
		"mode", g.Mode,
		"first", res.FirstResponse.AgentID,
		"responses", len(res.Responses),
	)
	return res, nil
}

func (m *Manager) race(ctx context.Context, g Group, message string, exec Executor) (*Result, error) {
	n := len(g.AgentIDs)
	// Buffered so members finishing after resolution never block.
	ch := make(chan Response, n)
	for _, id := range g.AgentIDs {
		go func() { ch <- m.call(ctx, id, message, exec) }()
	}

	responses := make([]Response, 0, n)
	for received := 0; received < n; received++ {
		select {
		case r := <-ch:
			responses = append(responses, r)
			if r.OK() {
				if rest := n - received - 1; rest > 0 {
					go m.drainLate(g.ID, ch, rest)
				}
				first := r
				return &Result{FirstResponse: &first, Responses: responses}, nil
			}
		case <-ctx.Done():
			if rest := n - received; rest > 0 {
				go m.drainLate(g.ID, ch, rest)
			}
			return &Result{Responses: responses}, ctx.Err()
		}
	}

	return &Result{Responses: responses}, &AllFailedError{GroupID: g.ID, Responses: responses}
}

func (m *Manager) drainLate(groupID string, ch <-chan Response, n int) {
	for i := 0; i < n; i++ {
		r := <-ch
		m.opts.Logger.Debug("Late broadcast response", "group", groupID, "agent", r.AgentID, "ok", r.OK())
		if m.opts.OnLateResponse != nil {
			m.opts.OnLateResponse(groupID, r)
		}
	}
}

func (m *Manager) all(ctx context.Context, g Group, message string, exec Executor) (*Result, error) {
	var (
		eg        errgroup.Group
		mu        sync.Mutex
		responses = make([]Response, 0, len(g.AgentIDs))
		first     *Response
	)

	for _, id := range g.AgentIDs {
		eg.Go(func() error {
			r := m.call(ctx, id, message, exec)

			mu.Lock()
			defer mu.Unlock()
			responses = append(responses, r)
			if first == nil && r.OK() {
				rc := r
				first = &rc
			}
			return nil
		})
	}
	_ = eg.Wait()

	if first == nil {
		return &Result{Responses: responses}, &AllFailedError{GroupID: g.ID, Responses: responses}
	}
	return &Result{FirstResponse: first, Responses: responses}, nil
}

// call runs one member, converting panics into errors.
func (m *Manager) call(ctx context.Context, agentID, message string, exec Executor) (r Response) {
	start := time.Now()
	r.AgentID = agentID

	defer func() {
		if p := recover(); p != nil {
			r.Result = nil
			r.Err = fmt.Errorf("panic: %v", p)
		}
		elapsed := time.Since(start)
		r.Duration = core.Duration(elapsed)
		if r.Err != nil {
			r.Error = r.Err.Error()
		}
		m.opts.Metrics.RecordAgentCall(ctx, agentID, elapsed, r.Err)
	}()

	r.Result, r.Err = exec(ctx, agentID, message)
	return r
}
