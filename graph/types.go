package graph

import (
	"github.com/hupe1980/agentslush/core"
)

// Status of a node or of a whole run.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
	// StatusPartial is only used for runs.
	StatusPartial Status = "partial"
)

// Final reports whether s is a terminal node status.
func (s Status) Final() bool {
	return s == StatusSuccess || s == StatusError || s == StatusSkipped
}

// Node is a named agent with static kwargs and dependencies.
type Node struct {
	Name      string
	Agent     core.Agent
	Kwargs    core.Kwargs
	DependsOn []string
}

// NodeResult is the outcome of one node within a run.
type NodeResult struct {
	Status    Status         `json:"status"`
	Result    any            `json:"result,omitempty"`
	DataSlush map[string]any `json:"data_slush,omitempty"`
	Error     string         `json:"error,omitempty"`
	Duration  core.Duration  `json:"duration"`

	// Err is the underlying error for errors.Is/As.
	Err error `json:"-"`
}

// RunResult is the aggregate outcome of Graph.Run.
type RunResult struct {
	Status         Status                 `json:"status"`
	ExecutionOrder []string               `json:"executionOrder"`
	Nodes          map[string]*NodeResult `json:"nodes"`
	TotalDuration  core.Duration          `json:"totalDuration"`
	Error          string                 `json:"error,omitempty"`
}

// ValidationResult lists every structural problem of a graph.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
