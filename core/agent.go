package core

import "context"

// Agent defines the contract every unit of work in agentslush implements.
//
// Agents are identified by Name and describe themselves through Description and
// Parameters (a JSON-Schema object map). Execute receives the merged keyword
// arguments for one invocation and returns a Result. Errors returned by Execute
// are surfaced to the orchestrator unchanged.
//
// Implementations must be safe for concurrent Execute calls: the same agent
// may back several graph nodes or broadcast members at once.
type Agent interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, kwargs Kwargs) (*Result, error)
}

// AgentInfo is the serializable metadata block of an agent.
type AgentInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// InfoOf extracts the metadata block of a.
func InfoOf(a Agent) AgentInfo {
	return AgentInfo{Name: a.Name(), Description: a.Description(), Parameters: a.Parameters()}
}
