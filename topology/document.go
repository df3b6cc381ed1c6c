package topology

import (
	"errors"
	"fmt"
	"time"
)

// Kind selects the topology a document describes.
type Kind string

const (
	KindGraph Kind = "graph"
	KindChain Kind = "chain"
	KindGroup Kind = "group"
)

// Document is a parsed topology definition.
type Document struct {
	Kind    Kind           `yaml:"kind" json:"kind" jsonschema:"required,enum=graph,enum=chain,enum=group,description=Topology kind"`
	Name    string         `yaml:"name" json:"name,omitempty" jsonschema:"description=Name used in logs and metrics"`
	Options Options        `yaml:"options" json:"options,omitempty"`
	Nodes   []NodeSpec     `yaml:"nodes" json:"nodes,omitempty" jsonschema:"description=Graph nodes (kind graph)"`
	Steps   []StepSpec     `yaml:"steps" json:"steps,omitempty" jsonschema:"description=Chain steps (kind chain)"`
	Group   *GroupSpec     `yaml:"group" json:"group,omitempty" jsonschema:"description=Broadcast group (kind group)"`
	Input   map[string]any `yaml:"input" json:"input,omitempty" jsonschema:"description=Initial kwargs"`
}

// Options holds orchestrator settings.
type Options struct {
	StopOnError bool          `yaml:"stop_on_error" json:"stop_on_error,omitempty"`
	NodeTimeout time.Duration `yaml:"node_timeout" json:"node_timeout,omitempty" jsonschema:"description=Per-node timeout such as 30s"`
	Mode        string        `yaml:"mode" json:"mode,omitempty" jsonschema:"enum=race,enum=all"`
}

// NodeSpec describes one graph node.
type NodeSpec struct {
	Name      string         `yaml:"name" json:"name" jsonschema:"required"`
	Agent     string         `yaml:"agent" json:"agent" jsonschema:"required"`
	Kwargs    map[string]any `yaml:"kwargs" json:"kwargs,omitempty"`
	DependsOn []string       `yaml:"depends_on" json:"depends_on,omitempty"`
}

// StepSpec describes one chain step. Pluck and Passthrough select the
// transform applied to the previous step's result.
type StepSpec struct {
	Name        string         `yaml:"name" json:"name" jsonschema:"required"`
	Agent       string         `yaml:"agent" json:"agent" jsonschema:"required"`
	Kwargs      map[string]any `yaml:"kwargs" json:"kwargs,omitempty"`
	Pluck       []PluckSpec    `yaml:"pluck" json:"pluck,omitempty"`
	Passthrough string         `yaml:"passthrough" json:"passthrough,omitempty" jsonschema:"description=Kwarg receiving the previous payload"`
}

// PluckSpec extracts Path (gjson syntax) from the previous payload into Key.
type PluckSpec struct {
	Key  string `yaml:"key" json:"key" jsonschema:"required"`
	Path string `yaml:"path" json:"path" jsonschema:"required"`
}

// GroupSpec describes a broadcast group.
type GroupSpec struct {
	ID     string   `yaml:"id" json:"id" jsonschema:"required"`
	Name   string   `yaml:"name" json:"name,omitempty"`
	Agents []string `yaml:"agents" json:"agents" jsonschema:"required"`
	Mode   string   `yaml:"mode" json:"mode,omitempty" jsonschema:"enum=race,enum=all"`
}

// Validate checks that the document is complete for its kind. Structural
// graph problems such as cycles are reported by the graph itself.
func (d *Document) Validate() error {
	var errs []error

	switch d.Kind {
	case KindGraph:
		if len(d.Nodes) == 0 {
			errs = append(errs, errors.New("graph requires at least one node"))
		}
		for i, n := range d.Nodes {
			if n.Name == "" || n.Agent == "" {
				errs = append(errs, fmt.Errorf("node %d: name and agent are required", i))
			}
		}
	case KindChain:
		if len(d.Steps) == 0 {
			errs = append(errs, errors.New("chain requires at least one step"))
		}
		for i, s := range d.Steps {
			if s.Name == "" || s.Agent == "" {
				errs = append(errs, fmt.Errorf("step %d: name and agent are required", i))
			}
		}
	case KindGroup:
		if d.Group == nil {
			errs = append(errs, errors.New("group kind requires a group section"))
		} else if d.Group.ID == "" || len(d.Group.Agents) == 0 {
			errs = append(errs, errors.New("group requires an id and at least one agent"))
		}
	case "":
		errs = append(errs, errors.New("kind is required"))
	default:
		errs = append(errs, fmt.Errorf("unknown kind: %q", d.Kind))
	}

	return errors.Join(errs...)
}

// DisplayName returns Name or, if empty, the kind.
func (d *Document) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return string(d.Kind)
}
