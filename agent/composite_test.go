package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/internal/testutil"
)

func signalsOf(t *testing.T, res *core.Result) map[string]any {
	t.Helper()
	require.NotNil(t, res)
	signals, ok := res.Slush["signals"].(map[string]any)
	require.True(t, ok, "slush has no signals: %v", res.Slush)
	return signals
}

func TestSequentialAgent(t *testing.T) {
	first := testutil.Succeeding("first", "draft", map[string]any{"stage": 1})
	second := testutil.Echo("second")

	seq := NewSequentialAgent("pipeline", first, second)
	assert.Equal(t, "Runs 2 agents in sequence", seq.Description())
	assert.Len(t, seq.Chain().Steps(), 2)

	res, err := seq.Execute(context.Background(), core.Kwargs{"query": "write it"})
	require.NoError(t, err)

	final := res.Payload.(map[string]any)
	assert.Equal(t, "draft", final["input"])
	assert.Equal(t, map[string]any{"stage": 1}, final[core.UpstreamSlushKey])

	assert.Equal(t, "write it", first.LastKwargs()["query"])
	assert.Equal(t, "pipeline", res.Slush["source_agent"])
	assert.Equal(t, "chain", signalsOf(t, res)["topology"])
	assert.Equal(t, map[string]any{"from": "second"}, signalsOf(t, res)["last"])
	assert.Len(t, signalsOf(t, res)["steps"], 2)
}

func TestSequentialAgent_Failure(t *testing.T) {
	seq := NewSequentialAgent("pipeline", testutil.Failing("broken", "boom"))

	_, err := seq.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrChainStepFailure)
	assert.Contains(t, err.Error(), "sequential agent pipeline")
}

func TestParallelAgent(t *testing.T) {
	a := testutil.Succeeding("a", "A", map[string]any{"n": 1})
	b := testutil.Succeeding("b", "B", nil)
	c := testutil.Failing("c", "nope")

	par := NewParallelAgent("fan", a, b, c)
	assert.Len(t, par.Graph().Nodes(), 3)

	res, err := par.Execute(context.Background(), core.Kwargs{"query": "go"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": "A", "b": "B"}, res.Payload)
	assert.Equal(t, "partial", signalsOf(t, res)["status"])
	assert.Equal(t, map[string]any{"a": map[string]any{"n": 1}}, signalsOf(t, res)["nodes"])
	assert.Equal(t, "go", a.LastKwargs()["query"])
	assert.Equal(t, "go", b.LastKwargs()["query"])
}

func TestParallelAgent_AllFailed(t *testing.T) {
	par := NewParallelAgent("fan", testutil.Failing("x", "down"), testutil.Failing("y", "down"))

	_, err := par.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNodeExecution)
}

func TestParallelAgent_Invalid(t *testing.T) {
	dup := testutil.Echo("same")
	par := NewParallelAgent("fan", dup, dup)

	_, err := par.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestLoopAgent_Predicate(t *testing.T) {
	counter := &testutil.StubAgent{AgentName: "counter"}
	counter.ExecuteFn = func(_ context.Context, kwargs core.Kwargs) (*core.Result, error) {
		n, _ := kwargs["iteration"].(int)
		return core.NewResult(n*10, map[string]any{"seen": n}), nil
	}

	loop := NewLoopAgent("until-20", counter, WithPredicate(func(r *core.Result) bool {
		return r.Payload.(int) >= 20
	}))

	res, err := loop.Execute(context.Background(), core.Kwargs{"query": "count"})
	require.NoError(t, err)

	assert.Equal(t, 20, res.Payload)
	assert.Equal(t, 3, signalsOf(t, res)["iterations"])
	assert.Equal(t, "predicate", signalsOf(t, res)["stopped_by"])
	assert.Equal(t, map[string]any{"seen": 2}, signalsOf(t, res)["last"])

	calls := counter.Calls()
	require.Len(t, calls, 3)
	assert.NotContains(t, calls[0], "input")
	assert.Equal(t, 10, calls[2]["input"])
	assert.Equal(t, map[string]any{"seen": 1}, calls[2][core.UpstreamSlushKey])
	assert.Equal(t, "count", calls[2]["query"])
}

func TestLoopAgent_MaxIters(t *testing.T) {
	stub := testutil.Succeeding("s", "x", nil)
	loop := NewLoopAgent("l", stub, WithMaxIters(4))

	res, err := loop.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, stub.CallCount())
	assert.Equal(t, "max_iterations", signalsOf(t, res)["stopped_by"])
}

func TestLoopAgent_Errors(t *testing.T) {
	loop := NewLoopAgent("l", testutil.Failing("f", "bad"))
	_, err := loop.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loop iteration 1 failed for agent f")

	flaky := &testutil.StubAgent{AgentName: "flaky"}
	flaky.ExecuteFn = func(_ context.Context, kwargs core.Kwargs) (*core.Result, error) {
		if kwargs["iteration"] == 0 {
			return nil, errors.New("warming up")
		}
		return core.NewResult("ok", nil), nil
	}
	res, err := NewLoopAgent("l", flaky, WithMaxIters(2), WithContinueOnError()).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Payload)
	assert.Equal(t, 1, signalsOf(t, res)["failures"])

	_, err = NewLoopAgent("l", testutil.Failing("f", "bad"), WithMaxIters(2), WithContinueOnError()).Execute(context.Background(), nil)
	assert.ErrorContains(t, err, "produced no successful iteration")
}

func TestLoopAgent_Escalation(t *testing.T) {
	child := &testutil.StubAgent{AgentName: "esc"}
	child.ExecuteFn = func(_ context.Context, kwargs core.Kwargs) (*core.Result, error) {
		if kwargs["iteration"] == 1 {
			return nil, ErrEscalated
		}
		return core.NewResult("first", nil), nil
	}

	res, err := NewLoopAgent("l", child).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "first", res.Payload)
	assert.Equal(t, "escalated", signalsOf(t, res)["stopped_by"])
	assert.Equal(t, 2, child.CallCount())
}

func TestLoopAgent_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoopAgent("l", testutil.Echo("e")).Execute(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
