package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentslush"
	"github.com/hupe1980/agentslush/agent"
	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/model"
	"github.com/hupe1980/agentslush/model/anthropic"
	"github.com/hupe1980/agentslush/model/openai"
)

type builtinConfig struct {
	Provider string
	Model    string
}

type textArgs struct {
	Query string `json:"query,omitempty" jsonschema:"description=Text to process"`
}

type sleepArgs struct {
	Duration string `json:"duration,omitempty" jsonschema:"description=How long to sleep such as 250ms (default 100ms)"`
	Query    string `json:"query,omitempty"`
}

type failArgs struct {
	Reason string `json:"reason,omitempty" jsonschema:"description=Error message"`
}

func builtinAgents(app *agentslush.AgentSlush, cfg builtinConfig) ([]core.Agent, error) {
	llm, err := newModel(cfg)
	if err != nil {
		return nil, err
	}

	with := func(desc string, params map[string]any) func(o *agent.Options) {
		return func(o *agent.Options) {
			app.AgentOptions(o)
			o.Description = desc
			o.Parameters = params
		}
	}

	return []core.Agent{
		agent.NewFunc("echo", echo, with("Returns its kwargs and envelope orientation", nil)),
		agent.NewFunc("upper", upper, with("Upper-cases the query text", agent.MustParametersFor[textArgs]())),
		agent.NewFunc("sleep", sleep, with("Sleeps, then returns the query", agent.MustParametersFor[sleepArgs]())),
		agent.NewFunc("fail", fail, with("Always fails", agent.MustParametersFor[failArgs]())),
		agent.NewPromptAgent("prompt", llm, func(o *agent.PromptOptions) {
			app.AgentOptions(&o.Options)
			o.Description = fmt.Sprintf("Answers the query with the %s model %s", llm.Info().Provider, llm.Info().Name)
			o.Parameters = agent.MustParametersFor[textArgs]()
		}),
	}, nil
}

func newModel(cfg builtinConfig) (model.Model, error) {
	switch cfg.Provider {
	case "", "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func echo(_ context.Context, inv *agent.Invocation) (*core.Result, error) {
	payload := inv.Kwargs.Clone()
	delete(payload, core.UpstreamSlushKey)
	return core.NewResult(map[string]any(payload), inv.SlushOut(nil)), nil
}

func upper(_ context.Context, inv *agent.Invocation) (*core.Result, error) {
	text := strings.ToUpper(inv.Query())
	return core.NewResult(text, inv.SlushOut(map[string]any{"length": len(text)})), nil
}

func sleep(ctx context.Context, inv *agent.Invocation) (*core.Result, error) {
	d := 100 * time.Millisecond
	if s, ok := inv.Kwargs.String("duration"); ok && s != "" {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		d = parsed
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return core.NewResult(inv.Query(), inv.SlushOut(map[string]any{"slept_ms": d.Milliseconds()})), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func fail(_ context.Context, inv *agent.Invocation) (*core.Result, error) {
	reason, _ := inv.Kwargs.String("reason")
	if reason == "" {
		reason = "failed on purpose"
	}
	return nil, errors.New(reason)
}
