package graph

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/observability"
)

// completion is sent by node goroutines to the coordinator.
type completion struct {
	name     string
	result   *core.Result
	err      error
	duration time.Duration
}

// scheduler holds the per-run state. Only the coordinator goroutine (the one
// calling run) reads or writes it.
type scheduler struct {
	g       *Graph
	runID   string
	initial core.Kwargs
	log     logging.RunLogger

	results map[string]*NodeResult
	order   []string
	started map[string]bool
	done    chan completion

	inFlight int
	firstErr string
	// cause is the error behind firstErr.
	cause error
}

func newScheduler(g *Graph, runID string, initial core.Kwargs) *scheduler {
	return &scheduler{
		g:       g,
		runID:   runID,
		initial: initial,
		log:     logging.ForRun(g.opts.Logger, "graph", runID),
		results: make(map[string]*NodeResult, len(g.nodes)),
		order:   []string{},
		started: make(map[string]bool, len(g.nodes)),
		// Buffered so abandoned nodes never block after the run returns.
		done: make(chan completion, len(g.nodes)),
	}
}

func (s *scheduler) run(ctx context.Context) *RunResult {
	for {
		if err := ctx.Err(); err != nil && len(s.g.nodes) > 0 {
			return s.abort(err)
		}

		s.launchReady(ctx)

		if s.inFlight == 0 {
			break
		}

		select {
		case c := <-s.done:
			s.inFlight--
			failed := s.finish(c)
			if failed && s.g.opts.StopOnError {
				return s.result(StatusError)
			}
		case <-ctx.Done():
			return s.abort(ctx.Err())
		}
	}

	return s.result(s.aggregate())
}

// launchReady starts, in declaration order, every unstarted node whose
// dependencies are all final. Nodes with a failed or skipped dependency are
// skipped, which may in turn make their dependents ready.
func (s *scheduler) launchReady(ctx context.Context) {
	for changed := true; changed; {
		changed = false
		for _, n := range s.g.nodes {
			if s.started[n.Name] || !s.depsFinal(n) {
				continue
			}
			s.started[n.Name] = true
			changed = true

			if dep, ok := s.failedDep(n); ok {
				s.results[n.Name] = &NodeResult{
					Status: StatusSkipped,
					Error:  fmt.Sprintf("skipped: dependency %s did not succeed", dep),
				}
				s.log.Debug("Node skipped", "graph", s.g.opts.Name, "node", n.Name, "dependency", dep)
				continue
			}

			s.start(ctx, n)
		}
	}
}

func (s *scheduler) depsFinal(n Node) bool {
	for _, dep := range n.DependsOn {
		r, ok := s.results[dep]
		if !ok || !r.Status.Final() {
			return false
		}
	}
	return true
}

func (s *scheduler) failedDep(n Node) (string, bool) {
	for _, dep := range n.DependsOn {
		if s.results[dep].Status != StatusSuccess {
			return dep, true
		}
	}
	return "", false
}

// inputFor builds the kwargs of n. Roots get the initial kwargs overlaid by
// their static kwargs; other nodes get their static kwargs plus upstream slush.
func (s *scheduler) inputFor(n Node) core.Kwargs {
	if len(n.DependsOn) == 0 {
		return s.initial.Merge(n.Kwargs)
	}

	kwargs := n.Kwargs.Clone()

	if len(n.DependsOn) == 1 {
		if slush := s.results[n.DependsOn[0]].DataSlush; slush != nil {
			kwargs[core.UpstreamSlushKey] = slush
		}
		return kwargs
	}

	upstream := make(map[string]any, len(n.DependsOn))
	for _, dep := range n.DependsOn {
		if slush := s.results[dep].DataSlush; slush != nil {
			upstream[dep] = slush
		}
	}
	if len(upstream) > 0 {
		kwargs[core.UpstreamSlushKey] = upstream
	}
	return kwargs
}

func (s *scheduler) start(ctx context.Context, n Node) {
	s.results[n.Name] = &NodeResult{Status: StatusPending}
	s.order = append(s.order, n.Name)
	s.inFlight++

	kwargs := s.inputFor(n)
	timeout := s.g.opts.NodeTimeout

	s.log.Debug("Node started", "graph", s.g.opts.Name, "node", n.Name)

	go func() {
		nodeCtx, span := s.g.opts.Tracer.Start(ctx, "graph.node", trace.WithAttributes(
			attribute.String("graph.node", n.Name),
			attribute.String("agent.name", n.Agent.Name()),
		))

		begin := time.Now()
		res, err := execute(nodeCtx, n, kwargs, timeout)
		elapsed := time.Since(begin)

		observability.EndSpan(span, err)
		s.g.opts.Metrics.RecordAgentCall(ctx, n.Agent.Name(), elapsed, err)

		s.done <- completion{name: n.Name, result: res, err: err, duration: elapsed}
	}()
}

type outcome struct {
	result *core.Result
	err    error
}

// execute runs the node's agent, racing it against the timeout when set. On
// expiry the agent goroutine is abandoned and its result discarded.
func execute(ctx context.Context, n Node, kwargs core.Kwargs, timeout time.Duration) (*core.Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: &NodeError{Node: n.Name, Err: fmt.Errorf("panic: %v", r)}}
			}
		}()
		res, err := n.Agent.Execute(ctx, kwargs)
		if err != nil {
			err = &NodeError{Node: n.Name, Err: err}
		}
		ch <- outcome{result: res, err: err}
	}()

	if timeout <= 0 {
		o := <-ch
		return o.result, o.err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		return o.result, o.err
	case <-timer.C:
		return nil, &NodeError{Node: n.Name, Timeout: timeout}
	}
}

// finish records a completion and reports whether the node failed.
func (s *scheduler) finish(c completion) bool {
	nr := s.results[c.name]
	nr.Duration = core.Duration(c.duration)

	if c.err != nil {
		nr.Status = StatusError
		nr.Error = c.err.Error()
		nr.Err = c.err
		if s.cause == nil {
			s.firstErr = nr.Error
			s.cause = c.err
		}
	} else {
		nr.Status = StatusSuccess
		if c.result != nil {
			nr.Result = c.result.Payload
			nr.DataSlush = c.result.Slush
		}
	}

	s.log.LogNodeExecution(c.name, string(nr.Status), c.duration, c.err)
	return c.err != nil
}

// abort ends a cancelled run: unstarted nodes are skipped, in-flight nodes
// stay pending.
func (s *scheduler) abort(cause error) *RunResult {
	s.skipUnstarted(cause)
	if s.cause == nil {
		s.firstErr = cause.Error()
		s.cause = cause
	}
	return s.result(StatusError)
}

func (s *scheduler) skipUnstarted(cause error) {
	for _, n := range s.g.nodes {
		if s.started[n.Name] {
			continue
		}
		s.started[n.Name] = true
		s.results[n.Name] = &NodeResult{Status: StatusSkipped, Error: fmt.Sprintf("skipped: %v", cause), Err: cause}
	}
}

func (s *scheduler) aggregate() Status {
	succeeded := 0
	for _, r := range s.results {
		if r.Status == StatusSuccess {
			succeeded++
		}
	}

	switch {
	case succeeded == len(s.g.nodes):
		return StatusSuccess
	case succeeded > 0:
		return StatusPartial
	default:
		return StatusError
	}
}

func (s *scheduler) result(status Status) *RunResult {
	res := &RunResult{
		Status:         status,
		ExecutionOrder: s.order,
		Nodes:          s.results,
	}
	if status != StatusSuccess {
		res.Error = s.firstErr
	}
	return res
}
