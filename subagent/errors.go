package subagent

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentslush/core"
)

// ErrNoExecutor is returned by Invoke when no Executor is configured.
var ErrNoExecutor = errors.New("subagent: no executor configured")

// DepthLimitError rejects a call at or beyond the maximum depth.
type DepthLimitError struct {
	AgentID  string
	Depth    int
	MaxDepth int
}

func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("max depth exceeded: cannot invoke agent %s at depth %d (max depth %d)", e.AgentID, e.Depth, e.MaxDepth)
}

// Unwrap returns core.ErrDepthLimitExceeded.
func (e *DepthLimitError) Unwrap() error { return core.ErrDepthLimitExceeded }

// LoopError rejects an agent repeated too often within one call chain.
type LoopError struct {
	AgentID string
	Count   int
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("loop detected: agent %s already invoked %d times in this call chain", e.AgentID, e.Count)
}

// Unwrap returns core.ErrLoopDetected.
func (e *LoopError) Unwrap() error { return core.ErrLoopDetected }
