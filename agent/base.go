package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/internal/util"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/slush"
)

// Options configures the shared behaviour of agents built on BaseAgent.
type Options struct {
	// Description is surfaced through core.Agent.Description.
	Description string
	// Parameters is the JSON-Schema object describing accepted kwargs.
	Parameters map[string]any
	// StrictParameters validates kwargs against Parameters before execution.
	// By default missing or mistyped fields are tolerated.
	StrictParameters bool
	// Builder computes envelopes. Defaults to slush.DefaultBuilder.
	Builder *slush.Builder
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Invocation is what agent logic receives for one Execute call.
type Invocation struct {
	Agent    string
	Kwargs   core.Kwargs
	Envelope *slush.Envelope
	Logger   logging.Logger
}

// Query returns the query text the envelope was derived from.
func (inv *Invocation) Query() string { return slush.QueryText(inv.Kwargs) }

// SlushOut assembles the signal payload an agent emits downstream: its name,
// the envelope timestamp, orientation and temporal snapshot, plus signals.
func (inv *Invocation) SlushOut(signals map[string]any) map[string]any {
	env := inv.Envelope.Map()
	out := map[string]any{
		"source_agent": inv.Agent,
		"timestamp":    inv.Envelope.Timestamp.Format(time.RFC3339),
		"orientation":  env["orientation"],
		"temporal":     env["temporal"],
	}
	if len(signals) > 0 {
		out["signals"] = signals
	}
	return out
}

// BaseAgent holds identity, metadata and the envelope step shared by all
// concrete agents. Embed it and call Prepare at the start of Execute.
type BaseAgent struct {
	name        string
	description string
	parameters  map[string]any
	strict      bool
	builder     *slush.Builder
	logger      logging.Logger

	mu   sync.RWMutex
	last *slush.Envelope
}

// NewBaseAgent constructs a BaseAgent. The description defaults to "Agent <name>".
func NewBaseAgent(name string, optFns ...func(o *Options)) *BaseAgent {
	opts := Options{
		Description: fmt.Sprintf("Agent %s", name),
		Builder:     slush.DefaultBuilder,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Builder == nil {
		opts.Builder = slush.DefaultBuilder
	}

	return &BaseAgent{
		name:        name,
		description: opts.Description,
		parameters:  opts.Parameters,
		strict:      opts.StrictParameters,
		builder:     opts.Builder,
		logger:      logging.OrNoOp(opts.Logger),
	}
}

// Name returns the agent name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns the agent description.
func (b *BaseAgent) Description() string { return b.description }

// Parameters returns the agent's parameter schema (may be nil).
func (b *BaseAgent) Parameters() map[string]any { return b.parameters }

// Context returns the envelope computed by the most recent Prepare call, or
// nil before the first call. Under concurrent executions this is whichever
// call prepared last; agent logic should read Invocation.Envelope instead.
func (b *BaseAgent) Context() *slush.Envelope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Prepare runs the pre-execution step of the contract: optional parameter
// validation, then envelope synthesis.
func (b *BaseAgent) Prepare(ctx context.Context, kwargs core.Kwargs) (*Invocation, error) {
	if kwargs == nil {
		kwargs = core.Kwargs{}
	}

	if b.strict && b.parameters != nil {
		if err := util.ValidateParameters(kwargs, b.parameters); err != nil {
			return nil, fmt.Errorf("agent %s: %w", b.name, err)
		}
	}

	env := b.builder.Build(ctx, kwargs)

	b.mu.Lock()
	b.last = env
	b.mu.Unlock()

	b.logger.Debug("Envelope computed",
		"agent", b.name,
		"specificity", env.Query.Specificity,
		"approach", env.Orientation.Approach,
	)

	return &Invocation{Agent: b.name, Kwargs: kwargs, Envelope: env, Logger: b.logger}, nil
}
