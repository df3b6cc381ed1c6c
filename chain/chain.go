package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/observability"
)

// Status of a step or of the whole chain.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Transform computes a step's dynamic kwargs from the previous step's result.
type Transform func(prev *core.Result) core.Kwargs

// Step is a single pipeline stage.
type Step struct {
	Name      string
	Agent     core.Agent
	Kwargs    core.Kwargs
	Transform Transform
}

// StepResult records one executed step.
type StepResult struct {
	Name      string         `json:"name"`
	AgentName string         `json:"agentName"`
	Status    Status         `json:"status"`
	Duration  core.Duration  `json:"duration"`
	Result    any            `json:"result,omitempty"`
	DataSlush map[string]any `json:"dataSlush,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Result is the outcome of Chain.Run.
type Result struct {
	Status        Status        `json:"status"`
	Steps         []StepResult  `json:"steps"`
	FinalResult   any           `json:"finalResult,omitempty"`
	TotalDuration core.Duration `json:"totalDuration"`
}

// StepError is returned alongside the Result when a step fails.
type StepError struct {
	Step  string
	Index int
	Agent string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("chain step %d (%s, agent %s) failed: %v", e.Index, e.Step, e.Agent, e.Err)
}

// Unwrap returns the step's underlying error.
func (e *StepError) Unwrap() error { return e.Err }

// Is matches core.ErrChainStepFailure.
func (e *StepError) Is(target error) bool { return target == core.ErrChainStepFailure }

// Options configures a Chain.
type Options struct {
	Name    string
	Logger  logging.Logger
	Tracer  trace.Tracer
	Metrics *observability.Metrics
}

// Chain is an ordered list of steps.
type Chain struct {
	steps []Step
	opts  Options
}

// New creates an empty Chain.
func New(optFns ...func(o *Options)) *Chain {
	opts := Options{
		Name:   "chain",
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer("github.com/hupe1980/agentslush/chain")
	}
	return &Chain{opts: opts}
}

// Add appends a step. transform may be nil.
func (c *Chain) Add(name string, agent core.Agent, kwargs core.Kwargs, transform Transform) *Chain {
	c.steps = append(c.steps, Step{Name: name, Agent: agent, Kwargs: kwargs, Transform: transform})
	return c
}

// AddStep appends s.
func (c *Chain) AddStep(s Step) *Chain {
	c.steps = append(c.steps, s)
	return c
}

// Steps returns the steps in order.
func (c *Chain) Steps() []Step { return append([]Step(nil), c.steps...) }

// Name returns the configured chain name.
func (c *Chain) Name() string { return c.opts.Name }

// Run executes the chain with no initial input.
func (c *Chain) Run(ctx context.Context) (*Result, error) {
	return c.RunWithInput(ctx, nil)
}

// RunWithInput executes the chain. input is merged under the first step's
// static kwargs; static wins. On failure the partial Result is returned
// together with a *StepError.
func (c *Chain) RunWithInput(ctx context.Context, input core.Kwargs) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	ctx, span := c.opts.Tracer.Start(ctx, "chain.run", trace.WithAttributes(
		attribute.String("chain.name", c.opts.Name),
		attribute.String("chain.run_id", runID),
		attribute.Int("chain.steps", len(c.steps)),
	))

	log := logging.ForRun(c.opts.Logger, "chain", runID)
	res := &Result{Status: StatusSuccess, Steps: make([]StepResult, 0, len(c.steps))}

	var (
		prev   *core.Result
		runErr error
	)

	for i, step := range c.steps {
		if err := ctx.Err(); err != nil {
			runErr = &StepError{Step: step.Name, Index: i, Agent: agentName(step.Agent), Err: err}
			res.Steps = append(res.Steps, StepResult{
				Name:      step.Name,
				AgentName: agentName(step.Agent),
				Status:    StatusError,
				Error:     err.Error(),
			})
			break
		}

		var kwargs core.Kwargs
		if i == 0 {
			kwargs = input.Merge(step.Kwargs)
		} else {
			var err error
			if kwargs, err = c.inputFor(step, prev); err != nil {
				runErr = &StepError{Step: step.Name, Index: i, Agent: agentName(step.Agent), Err: err}
				res.Steps = append(res.Steps, StepResult{
					Name:      step.Name,
					AgentName: agentName(step.Agent),
					Status:    StatusError,
					Error:     err.Error(),
				})
				log.LogStep(step.Name, agentName(step.Agent), 0, err)
				break
			}
		}

		sr, out, err := c.runStep(ctx, log, i, step, kwargs)
		res.Steps = append(res.Steps, sr)
		if err != nil {
			runErr = err
			break
		}
		prev = out
	}

	res.TotalDuration = core.Since(start)

	if runErr != nil {
		res.Status = StatusError
	} else if prev != nil {
		res.FinalResult = Parse(prev.Payload)
	}

	span.SetAttributes(attribute.String("chain.status", string(res.Status)))
	observability.EndSpan(span, runErr)
	c.opts.Metrics.RecordRun(ctx, "chain", c.opts.Name, string(res.Status), res.TotalDuration.Std())

	log.LogTopology("chain", c.opts.Name, string(res.Status), len(res.Steps), res.TotalDuration.Std(), runErr)

	return res, runErr
}

// inputFor overlays the transformed previous result on the static kwargs and
// attaches the previous step's slush. A panicking transform is returned as an
// error.
func (c *Chain) inputFor(step Step, prev *core.Result) (core.Kwargs, error) {
	kwargs := step.Kwargs.Clone()
	if step.Transform != nil {
		out, err := safeTransform(step.Transform, prev)
		if err != nil {
			return nil, err
		}
		kwargs = kwargs.Merge(out)
	}
	if prev != nil && prev.Slush != nil {
		kwargs[core.UpstreamSlushKey] = prev.Slush
	}
	return kwargs, nil
}

func safeTransform(fn Transform, prev *core.Result) (out core.Kwargs, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panic: %v", r)
		}
	}()
	return fn(prev), nil
}

func (c *Chain) runStep(ctx context.Context, log logging.RunLogger, i int, step Step, kwargs core.Kwargs) (StepResult, *core.Result, error) {
	name := agentName(step.Agent)
	sr := StepResult{Name: step.Name, AgentName: name}

	if step.Agent == nil {
		err := &StepError{Step: step.Name, Index: i, Err: errors.New("step has no agent")}
		sr.Status = StatusError
		sr.Error = err.Err.Error()
		return sr, nil, err
	}

	stepCtx, span := c.opts.Tracer.Start(ctx, "chain.step", trace.WithAttributes(
		attribute.String("chain.step", step.Name),
		attribute.String("agent.name", name),
	))

	begin := time.Now()
	out, err := safeExecute(stepCtx, step.Agent, kwargs)
	elapsed := time.Since(begin)

	observability.EndSpan(span, err)
	c.opts.Metrics.RecordAgentCall(ctx, name, elapsed, err)

	sr.Duration = core.Duration(elapsed)

	log.LogStep(step.Name, name, elapsed, err)

	if err != nil {
		sr.Status = StatusError
		sr.Error = err.Error()
		return sr, nil, &StepError{Step: step.Name, Index: i, Agent: name, Err: err}
	}

	if out == nil {
		out = &core.Result{}
	}

	sr.Status = StatusSuccess
	sr.Result = out.Payload
	sr.DataSlush = out.Slush

	return sr, out, nil
}

func safeExecute(ctx context.Context, a core.Agent, kwargs core.Kwargs) (res *core.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.Execute(ctx, kwargs)
}

func agentName(a core.Agent) string {
	if a == nil {
		return ""
	}
	return a.Name()
}

// Parse decodes a string payload holding valid JSON; any other payload is
// returned as is.
func Parse(payload any) any {
	s, ok := payload.(string)
	if !ok || !gjson.Valid(s) {
		return payload
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return payload
	}
	return v
}
