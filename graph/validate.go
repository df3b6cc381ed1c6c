package graph

import (
	"fmt"
	"strings"
)

// Validate checks the graph for duplicate node names, dependencies on unknown
// nodes and cycles. A node depending on itself is a cycle of length one.
func (g *Graph) Validate() ValidationResult {
	errs := []string{}

	index := make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		if n.Name == "" {
			errs = append(errs, fmt.Sprintf("node at position %d has no name", i))
			continue
		}
		if _, dup := index[n.Name]; dup {
			errs = append(errs, fmt.Sprintf("Duplicate node name: %s", n.Name))
			continue
		}
		index[n.Name] = i
		if n.Agent == nil {
			errs = append(errs, fmt.Sprintf("Node %s has no agent", n.Name))
		}
	}

	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if _, ok := index[dep]; !ok {
				errs = append(errs, fmt.Sprintf("Node %s depends on unknown node: %s", n.Name, dep))
			}
		}
	}

	errs = append(errs, g.findCycles(index)...)

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

const (
	unvisited = iota
	visiting
	visited
)

// findCycles runs a depth-first search over dependency edges and reports one
// error per back edge found.
func (g *Graph) findCycles(index map[string]int) []string {
	var errs []string

	state := make(map[string]int, len(index))
	var path []string

	var visit func(name string)
	visit = func(name string) {
		state[name] = visiting
		path = append(path, name)

		for _, dep := range g.nodes[index[name]].DependsOn {
			if _, ok := index[dep]; !ok {
				continue
			}
			switch state[dep] {
			case visiting:
				start := 0
				for i, p := range path {
					if p == dep {
						start = i
						break
					}
				}
				cycle := append(append([]string(nil), path[start:]...), dep)
				errs = append(errs, fmt.Sprintf("Cycle detected: %s", strings.Join(cycle, " -> ")))
			case unvisited:
				visit(dep)
			}
		}

		path = path[:len(path)-1]
		state[name] = visited
	}

	for _, n := range g.nodes {
		if _, ok := index[n.Name]; !ok || state[n.Name] != unvisited {
			continue
		}
		visit(n.Name)
	}

	return errs
}
