package slush

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/agentslush/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoFunc func(ctx context.Context, query string, kwargs core.Kwargs) ([]Echo, error)

func (f echoFunc) Echoes(ctx context.Context, query string, kwargs core.Kwargs) ([]Echo, error) {
	return f(ctx, query, kwargs)
}

func fixedClock(t time.Time) func(o *Options) {
	return func(o *Options) { o.Clock = func() time.Time { return t } }
}

func TestBuilder_Build(t *testing.T) {
	now := time.Date(2025, time.March, 20, 18, 0, 0, 0, time.UTC)
	b := NewBuilder(fixedClock(now))

	env := b.Build(context.Background(), core.Kwargs{"query": "what are my latest deals?"})

	require.NotNil(t, env)
	assert.Equal(t, now, env.Timestamp)
	assert.Equal(t, Evening, env.Temporal.TimeOfDay)
	assert.Equal(t, QuarterEndPush, env.Temporal.Fiscal)
	assert.True(t, env.Temporal.IsUrgentPeriod)
	assert.Equal(t, SpecificityMedium, env.Query.Specificity)
	assert.True(t, env.Query.IsQuestion)
	assert.Equal(t, "medium", env.Orientation.Confidence)
	assert.Equal(t, "concise", env.Orientation.ResponseStyle)
	assert.Empty(t, env.MemoryEchoes)
	assert.Empty(t, env.BehavioralHints)
	assert.Empty(t, env.Priors)
	assert.Nil(t, env.UpstreamSlush)
}

func TestBuilder_QueryKeyPriority(t *testing.T) {
	assert.Equal(t, "from query", QueryText(core.Kwargs{"message": "from message", "query": "from query"}))
	assert.Equal(t, "from message", QueryText(core.Kwargs{"message": "from message", "query": ""}))
	assert.Equal(t, "", QueryText(core.Kwargs{"query": 42}))
}

func TestBuilder_Sources(t *testing.T) {
	echoes := echoFunc(func(_ context.Context, query string, _ core.Kwargs) ([]Echo, error) {
		return []Echo{{ID: "mem_0", Content: "likes " + query, Score: 1}}, nil
	})
	b := NewBuilder(func(o *Options) {
		o.Echoes = echoes
		o.Priors = StaticPriors{"region": "emea"}
		o.Behavior = StaticBehavior{"prefers tables"}
	})

	env := b.Build(context.Background(), core.Kwargs{"query": "accounts"})
	require.Len(t, env.MemoryEchoes, 1)
	assert.Equal(t, "likes accounts", env.MemoryEchoes[0].Content)
	assert.Equal(t, []string{"prefers tables"}, env.BehavioralHints)
	assert.Equal(t, "emea", env.Priors["region"])
	assert.Equal(t, "use_preference", env.Orientation.Approach)
}

func TestBuilder_FailingSourceIsEmpty(t *testing.T) {
	b := NewBuilder(func(o *Options) {
		o.Echoes = echoFunc(func(context.Context, string, core.Kwargs) ([]Echo, error) {
			return nil, errors.New("index offline")
		})
	})
	env := b.Build(context.Background(), core.Kwargs{})
	assert.NotNil(t, env.MemoryEchoes)
	assert.Empty(t, env.MemoryEchoes)
}

func TestBuilder_UpstreamSlush(t *testing.T) {
	upstream := map[string]any{"fetch": map[string]any{"rows": 3}}
	env := DefaultBuilder.Build(context.Background(), core.Kwargs{core.UpstreamSlushKey: upstream})
	assert.Equal(t, upstream, env.UpstreamSlush)
	assert.Equal(t, upstream, env.Map()["upstream_slush"])
}

func TestBuilder_FreshEnvelopePerCall(t *testing.T) {
	b := NewBuilder()
	kw := core.Kwargs{"query": "recent"}
	first := b.Build(context.Background(), kw)
	second := b.Build(context.Background(), kw)
	assert.NotSame(t, first, second)
	first.Query.Hints[0] = "mutated"
	assert.Equal(t, HintRecent, second.Query.Hints[0])
}
