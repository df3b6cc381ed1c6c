package subagent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentslush/core"
)

// Kwargs keys set by RegistryExecutor.
const (
	MessageKey           = "message"
	InvocationContextKey = "invocation_context"
)

// ErrNoInvocation is returned by InvokeFrom outside a guarded call.
var ErrNoInvocation = errors.New("subagent: context carries no invocation")

// AgentLookup resolves agents by name.
type AgentLookup interface {
	Get(name string) (core.Agent, bool)
}

type frameKey struct{}

type frame struct {
	manager *Manager
	ic      InvocationContext
}

func withFrame(ctx context.Context, m *Manager, ic InvocationContext) context.Context {
	return context.WithValue(ctx, frameKey{}, frame{manager: m, ic: ic})
}

// FromContext returns the invocation context of the guarded call running in ctx.
func FromContext(ctx context.Context) (InvocationContext, bool) {
	f, ok := ctx.Value(frameKey{}).(frame)
	return f.ic, ok
}

// InvokeFrom performs a nested guarded call from within a running one, using
// the manager and invocation context carried by ctx.
func InvokeFrom(ctx context.Context, agentID, message string) (any, error) {
	f, ok := ctx.Value(frameKey{}).(frame)
	if !ok {
		return nil, ErrNoInvocation
	}
	return f.manager.Invoke(ctx, agentID, message, f.ic)
}

// RegistryExecutor returns an Executor that runs agents from lookup with
// kwargs {message, invocation_context} and returns their *core.Result.
func RegistryExecutor(lookup AgentLookup) Executor {
	return func(ctx context.Context, agentID, message string, ic InvocationContext) (any, error) {
		a, ok := lookup.Get(agentID)
		if !ok {
			return nil, fmt.Errorf("agent not found: %s", agentID)
		}
		return a.Execute(ctx, core.Kwargs{
			MessageKey:           message,
			InvocationContextKey: ic,
		})
	}
}
