package graph

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentslush/core"
)

// ValidationError is returned by Run for structurally invalid graphs.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid graph: %s", strings.Join(e.Errors, "; "))
}

// Unwrap returns core.ErrValidation.
func (e *ValidationError) Unwrap() error { return core.ErrValidation }

// NodeError describes a node failure: either an agent error or a timeout.
type NodeError struct {
	Node    string
	Timeout time.Duration
	Err     error
}

func (e *NodeError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("node %s timed out after %s", e.Node, e.Timeout)
	}
	return fmt.Sprintf("node %s failed: %v", e.Node, e.Err)
}

// Unwrap returns the agent error, if any.
func (e *NodeError) Unwrap() error { return e.Err }

// Is matches core.ErrNodeTimeout for timeouts and core.ErrNodeExecution otherwise.
func (e *NodeError) Is(target error) bool {
	if e.Timeout > 0 {
		return target == core.ErrNodeTimeout
	}
	return target == core.ErrNodeExecution
}

// IsTimeout reports whether err is a node timeout.
func IsTimeout(err error) bool { return errors.Is(err, core.ErrNodeTimeout) }
