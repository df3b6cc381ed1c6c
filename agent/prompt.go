package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/model"
)

// PromptOptions configures a PromptAgent.
type PromptOptions struct {
	Options

	// Instruction becomes the system prompt. Defaults to "You are <name>, a helpful AI assistant."
	Instruction Instruction
	// IncludeGuidance appends orientation hints and response style to the system prompt.
	IncludeGuidance bool
	// IncludeUpstream appends upstream slush as JSON to the system prompt.
	IncludeUpstream bool
}

// PromptAgent drives a language model with a rendered instruction, the
// orientation of the invocation's envelope and the query text.
type PromptAgent struct {
	*BaseAgent
	llm             model.Model
	instruction     Instruction
	includeGuidance bool
	includeUpstream bool
}

// NewPromptAgent creates a model-backed agent.
func NewPromptAgent(name string, llm model.Model, optFns ...func(o *PromptOptions)) *PromptAgent {
	opts := PromptOptions{
		Instruction:     NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		IncludeGuidance: true,
		IncludeUpstream: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	base := NewBaseAgent(name, func(o *Options) {
		if opts.Description != "" {
			o.Description = opts.Description
		}
		o.Parameters = opts.Parameters
		o.StrictParameters = opts.StrictParameters
		if opts.Builder != nil {
			o.Builder = opts.Builder
		}
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	})

	return &PromptAgent{
		BaseAgent:       base,
		llm:             llm,
		instruction:     opts.Instruction,
		includeGuidance: opts.IncludeGuidance,
		includeUpstream: opts.IncludeUpstream,
	}
}

// Model returns the underlying model.
func (a *PromptAgent) Model() model.Model { return a.llm }

// Execute implements core.Agent.
func (a *PromptAgent) Execute(ctx context.Context, kwargs core.Kwargs) (*core.Result, error) {
	inv, err := a.Prepare(ctx, kwargs)
	if err != nil {
		return nil, err
	}

	system, err := a.systemPrompt(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve instruction: %w", err)
	}

	req := model.Request{System: system}
	if q := inv.Query(); q != "" {
		req.Messages = append(req.Messages, model.Message{Role: model.RoleUser, Text: q})
	}

	resp, err := a.llm.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	info := a.llm.Info()
	signals := map[string]any{
		"model":         info.Name,
		"provider":      info.Provider,
		"finish_reason": resp.FinishReason,
	}
	if resp.Usage != nil {
		signals["total_tokens"] = resp.Usage.TotalTokens
	}

	inv.Logger.Debug("Model responded", "agent", a.Name(), "model", info.Name, "finish_reason", resp.FinishReason)

	return core.NewResult(resp.Text, inv.SlushOut(signals)), nil
}

func (a *PromptAgent) systemPrompt(inv *Invocation) (string, error) {
	text, err := a.instruction.Resolve(inv)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(text)

	o := inv.Envelope.Orientation
	if a.includeGuidance {
		b.WriteString("\n\nGuidance:")
		for _, h := range o.Hints {
			b.WriteString("\n- ")
			b.WriteString(h)
		}
		fmt.Fprintf(&b, "\n- Approach: %s (confidence %s)", o.Approach, o.Confidence)
		fmt.Fprintf(&b, "\n- Response style: %s", o.ResponseStyle)
	}

	if a.includeUpstream && len(inv.Envelope.UpstreamSlush) > 0 {
		data, err := json.Marshal(inv.Envelope.UpstreamSlush)
		if err != nil {
			return "", fmt.Errorf("failed to encode upstream slush: %w", err)
		}
		b.WriteString("\n\nUpstream context:\n")
		b.Write(data)
	}

	return b.String(), nil
}
