package core

import "errors"

// Error taxonomy shared by the orchestrators. Package specific error types
// wrap these so callers can rely on errors.Is.
var (
	// ErrValidation marks a structurally invalid graph (cycle, missing or duplicate node).
	ErrValidation = errors.New("graph validation failed")
	// ErrNodeTimeout marks a graph node that exceeded its timeout.
	ErrNodeTimeout = errors.New("node timed out")
	// ErrNodeExecution marks a graph node whose agent returned an error or panicked.
	ErrNodeExecution = errors.New("node execution failed")
	// ErrDepthLimitExceeded marks a sub-agent call beyond the configured depth.
	ErrDepthLimitExceeded = errors.New("sub-agent depth limit exceeded")
	// ErrLoopDetected marks a sub-agent call chain that repeats the same agent too often.
	ErrLoopDetected = errors.New("sub-agent loop detected")
	// ErrChainStepFailure marks a chain halted by a failing step.
	ErrChainStepFailure = errors.New("chain step failed")
	// ErrBroadcastAllFailed marks a broadcast in which no member succeeded.
	ErrBroadcastAllFailed = errors.New("all broadcast members failed")
)
