package broadcast

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentslush/core"
)

// AgentLookup resolves agents by name.
type AgentLookup interface {
	Get(name string) (core.Agent, bool)
}

// AgentExecutor returns an Executor running agents from lookup with kwargs
// {message: message}. Member results are the agents' *core.Result values.
func AgentExecutor(lookup AgentLookup) Executor {
	return func(ctx context.Context, agentID, message string) (any, error) {
		a, ok := lookup.Get(agentID)
		if !ok {
			return nil, fmt.Errorf("agent not found: %s", agentID)
		}
		return a.Execute(ctx, core.Kwargs{"message": message})
	}
}
