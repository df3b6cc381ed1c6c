package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/agentslush/core"
)

// StubAgent is a configurable core.Agent. ExecuteFn receives every call; when
// nil the agent returns Result.
type StubAgent struct {
	AgentName string
	Result    *core.Result
	Err       error
	Delay     time.Duration
	ExecuteFn func(ctx context.Context, kwargs core.Kwargs) (*core.Result, error)

	mu       sync.Mutex
	calls    []core.Kwargs
	started  []time.Time
	finished []time.Time
}

// Name implements core.Agent.
func (s *StubAgent) Name() string { return s.AgentName }

// Description implements core.Agent.
func (s *StubAgent) Description() string { return "test agent " + s.AgentName }

// Parameters implements core.Agent.
func (s *StubAgent) Parameters() map[string]any { return nil }

// Execute implements core.Agent. The delay ignores context cancellation so
// tests can observe abandoned executions.
func (s *StubAgent) Execute(ctx context.Context, kwargs core.Kwargs) (*core.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, kwargs.Clone())
	s.started = append(s.started, time.Now())
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.finished = append(s.finished, time.Now())
		s.mu.Unlock()
	}()

	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	if s.ExecuteFn != nil {
		return s.ExecuteFn(ctx, kwargs)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return core.NewResult(s.AgentName+" done", nil), nil
}

// Calls returns copies of the kwargs of every call so far.
func (s *StubAgent) Calls() []core.Kwargs {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Kwargs, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of Execute calls so far.
func (s *StubAgent) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// LastKwargs returns the kwargs of the most recent call, or nil.
func (s *StubAgent) LastKwargs() core.Kwargs {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

// FirstStart returns the time of the first call, or the zero time.
func (s *StubAgent) FirstStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.started) == 0 {
		return time.Time{}
	}
	return s.started[0]
}

// LastFinish returns the time the most recent call returned, or the zero time.
func (s *StubAgent) LastFinish() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.finished) == 0 {
		return time.Time{}
	}
	return s.finished[len(s.finished)-1]
}

// Succeeding returns an agent that returns payload and slush.
func Succeeding(name string, payload any, slush map[string]any) *StubAgent {
	return &StubAgent{AgentName: name, Result: core.NewResult(payload, slush)}
}

// Delayed returns an agent that sleeps d and then succeeds with payload.
func Delayed(name string, d time.Duration, payload any) *StubAgent {
	return &StubAgent{AgentName: name, Delay: d, Result: core.NewResult(payload, nil)}
}

// Failing returns an agent that always fails with msg.
func Failing(name, msg string) *StubAgent {
	return &StubAgent{AgentName: name, Err: errors.New(msg)}
}

// Echo returns an agent whose payload is the kwargs it received.
func Echo(name string) *StubAgent {
	return &StubAgent{
		AgentName: name,
		ExecuteFn: func(_ context.Context, kwargs core.Kwargs) (*core.Result, error) {
			return core.NewResult(map[string]any(kwargs.Clone()), map[string]any{"from": name}), nil
		},
	}
}
