// Package registry provides a thread-safe name to agent registry. Topologies,
// the sub-agent executor, broadcast executors, the HTTP server and the CLI
// resolve agents through it.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentslush/core"
)

// ErrNotFound is returned by Resolve for unknown names.
var ErrNotFound = errors.New("agent not found")

// Registry maps agent names to agents.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]core.Agent
}

// New creates an empty Registry, optionally pre-populated with agents.
func New(agents ...core.Agent) (*Registry, error) {
	r := &Registry{agents: make(map[string]core.Agent)}
	for _, a := range agents {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a under its name. Registering an existing name replaces the
// previous agent.
func (r *Registry) Register(a core.Agent) error {
	if a == nil {
		return errors.New("agent is nil")
	}
	if a.Name() == "" {
		return errors.New("agent name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Name()] = a

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(agents ...core.Agent) {
	for _, a := range agents {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
}

// Remove deletes name and reports whether it was registered.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.agents[name]
	delete(r.agents, name)
	return ok
}

// Get returns the agent registered under name.
func (r *Registry) Get(name string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// Resolve is like Get but returns an error wrapping ErrNotFound.
func (r *Registry) Resolve(name string) (core.Agent, error) {
	a, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return a, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for n := range r.agents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List returns the metadata of every agent sorted by name.
func (r *Registry) List() []core.AgentInfo {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.AgentInfo, 0, len(names))
	for _, n := range names {
		if a, ok := r.agents[n]; ok {
			out = append(out, core.InfoOf(a))
		}
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
