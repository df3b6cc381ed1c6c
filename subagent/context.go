package subagent

import "time"

// HistoryEntry records one invocation in a call chain.
type HistoryEntry struct {
	AgentID   string    `json:"agentId"`
	Timestamp time.Time `json:"timestamp"`
}

// InvocationContext describes a position in a call chain. It is a value type;
// Manager never mutates a context it was given.
type InvocationContext struct {
	Depth         int            `json:"depth"`
	CallID        string         `json:"callId"`
	ParentAgentID string         `json:"parentAgentId"`
	History       []HistoryEntry `json:"history"`
}

// Occurrences counts how often agentID appears in the history.
func (ic InvocationContext) Occurrences(agentID string) int {
	n := 0
	for _, h := range ic.History {
		if h.AgentID == agentID {
			n++
		}
	}
	return n
}

// child derives the context for a nested call of agentID.
func (ic InvocationContext) child(agentID, callID string, now time.Time) InvocationContext {
	history := make([]HistoryEntry, len(ic.History), len(ic.History)+1)
	copy(history, ic.History)
	history = append(history, HistoryEntry{AgentID: agentID, Timestamp: now})

	return InvocationContext{
		Depth:         ic.Depth + 1,
		CallID:        callID,
		ParentAgentID: agentID,
		History:       history,
	}
}
