package slush

import (
	"context"
	"time"

	"github.com/hupe1980/agentslush/core"
)

// QueryKeys lists, in priority order, the kwargs keys searched for query text.
var QueryKeys = []string{"query", "request", "message", "input", "prompt", "task"}

// EchoSource returns memory snippets relevant to the query of an invocation.
type EchoSource interface {
	Echoes(ctx context.Context, query string, kwargs core.Kwargs) ([]Echo, error)
}

// BehaviorSource returns behavioral hints for an invocation.
type BehaviorSource interface {
	Behavior(ctx context.Context, kwargs core.Kwargs) ([]string, error)
}

// PriorSource returns disambiguation priors for an invocation.
type PriorSource interface {
	Priors(ctx context.Context, query string, kwargs core.Kwargs) (map[string]any, error)
}

// Options configures a Builder.
type Options struct {
	// Clock returns the wall clock used for temporal signals. Defaults to time.Now.
	Clock func() time.Time
	// Echoes, Behavior and Priors are optional extension points.
	Echoes   EchoSource
	Behavior BehaviorSource
	Priors   PriorSource
}

// Builder computes Envelopes. A Builder has no mutable state after
// construction and is safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder. With no options all extension points are empty.
func NewBuilder(optFns ...func(o *Options)) *Builder {
	opts := Options{Clock: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Builder{opts: opts}
}

// DefaultBuilder is used by agents that were not given a Builder.
var DefaultBuilder = NewBuilder()

// Build computes a fresh Envelope for kwargs. Failing extension sources are
// treated as empty; the envelope itself never fails.
func (b *Builder) Build(ctx context.Context, kwargs core.Kwargs) *Envelope {
	now := b.opts.Clock()
	query := QueryText(kwargs)

	env := &Envelope{
		Timestamp:       now,
		Temporal:        TemporalSignals(now),
		Query:           QuerySignalsOf(query),
		MemoryEchoes:    []Echo{},
		BehavioralHints: []string{},
		Priors:          map[string]any{},
	}

	if b.opts.Echoes != nil {
		if echoes, err := b.opts.Echoes.Echoes(ctx, query, kwargs); err == nil && echoes != nil {
			env.MemoryEchoes = echoes
		}
	}
	if b.opts.Behavior != nil {
		if hints, err := b.opts.Behavior.Behavior(ctx, kwargs); err == nil && hints != nil {
			env.BehavioralHints = hints
		}
	}
	if b.opts.Priors != nil {
		if priors, err := b.opts.Priors.Priors(ctx, query, kwargs); err == nil && priors != nil {
			env.Priors = priors
		}
	}
	if upstream, ok := kwargs.Map(core.UpstreamSlushKey); ok {
		env.UpstreamSlush = upstream
	}

	env.Orientation = Orient(env.Temporal, env.Query, env.Priors)
	return env
}

// QueryText returns the first non-empty string found under QueryKeys.
func QueryText(kwargs core.Kwargs) string {
	for _, k := range QueryKeys {
		if s, ok := kwargs.String(k); ok && s != "" {
			return s
		}
	}
	return ""
}

// StaticPriors is a PriorSource returning a fixed map.
type StaticPriors map[string]any

// Priors implements PriorSource.
func (p StaticPriors) Priors(context.Context, string, core.Kwargs) (map[string]any, error) {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, nil
}

// StaticBehavior is a BehaviorSource returning fixed hints.
type StaticBehavior []string

// Behavior implements BehaviorSource.
func (s StaticBehavior) Behavior(context.Context, core.Kwargs) ([]string, error) {
	return append([]string(nil), s...), nil
}
