package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// latencyExecutor answers after the configured delay, failing for agents in fail.
func latencyExecutor(delays map[string]time.Duration, fail map[string]bool) Executor {
	return func(_ context.Context, agentID, message string) (any, error) {
		time.Sleep(delays[agentID])
		if fail[agentID] {
			return nil, errors.New(agentID + " unavailable")
		}
		return agentID + " says " + message, nil
	}
}

func TestCreateGroup(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.CreateGroup(Group{ID: "g1", AgentIDs: []string{"a"}}))

	g, ok := m.Group("g1")
	require.True(t, ok)
	assert.Equal(t, ModeRace, g.Mode)
	assert.Equal(t, "g1", g.Name)

	tests := []struct {
		name  string
		group Group
	}{
		{"empty id", Group{AgentIDs: []string{"a"}}},
		{"duplicate id", Group{ID: "g1", AgentIDs: []string{"a"}}},
		{"no members", Group{ID: "g2"}},
		{"unknown mode", Group{ID: "g3", AgentIDs: []string{"a"}, Mode: "fanout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, m.CreateGroup(tt.group))
		})
	}

	require.NoError(t, m.CreateGroup(Group{ID: "g4", AgentIDs: []string{"a", "b"}, Mode: ModeAll}))
	groups := m.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "g1", groups[0].ID)
	assert.Equal(t, "g4", groups[1].ID)

	assert.True(t, m.RemoveGroup("g1"))
	assert.False(t, m.RemoveGroup("g1"))
	assert.Len(t, m.Groups(), 1)
}

func TestBroadcast_RaceFirstSuccessWins(t *testing.T) {
	var (
		mu   sync.Mutex
		late []string
		wg   sync.WaitGroup
	)
	wg.Add(2)

	m := NewManager(func(o *Options) {
		o.OnLateResponse = func(groupID string, r Response) {
			mu.Lock()
			late = append(late, r.AgentID)
			mu.Unlock()
			wg.Done()
		}
	})
	// Slowest agent listed first so start order does not decide the winner.
	require.NoError(t, m.CreateGroup(Group{ID: "race", AgentIDs: []string{"slow", "medium", "fast"}, Mode: ModeRace}))

	exec := latencyExecutor(map[string]time.Duration{
		"fast":   10 * time.Millisecond,
		"medium": 50 * time.Millisecond,
		"slow":   200 * time.Millisecond,
	}, nil)

	start := time.Now()
	res, err := m.Broadcast(context.Background(), "race", "hello", exec)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 150*time.Millisecond)
	require.NotNil(t, res.FirstResponse)
	assert.Equal(t, "fast", res.FirstResponse.AgentID)
	assert.Equal(t, "fast says hello", res.FirstResponse.Result)
	assert.Len(t, res.Responses, 1)

	wg.Wait()
	assert.ElementsMatch(t, []string{"medium", "slow"}, late)
}

func TestBroadcast_RaceSkipsFailures(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.CreateGroup(Group{ID: "g", AgentIDs: []string{"broken", "ok"}}))

	exec := latencyExecutor(
		map[string]time.Duration{"broken": 0, "ok": 30 * time.Millisecond},
		map[string]bool{"broken": true},
	)

	res, err := m.Broadcast(context.Background(), "g", "x", exec)
	require.NoError(t, err)

	assert.Equal(t, "ok", res.FirstResponse.AgentID)
	require.Len(t, res.Responses, 2)
	assert.Equal(t, "broken", res.Responses[0].AgentID)
	assert.Equal(t, "broken unavailable", res.Responses[0].Error)
}

func TestBroadcast_AllFailed(t *testing.T) {
	for _, mode := range []Mode{ModeRace, ModeAll} {
		t.Run(string(mode), func(t *testing.T) {
			m := NewManager()
			require.NoError(t, m.CreateGroup(Group{ID: "g", AgentIDs: []string{"a", "b"}, Mode: mode}))

			exec := latencyExecutor(nil, map[string]bool{"a": true, "b": true})
			res, err := m.Broadcast(context.Background(), "g", "x", exec)
			require.Error(t, err)

			assert.ErrorIs(t, err, core.ErrBroadcastAllFailed)
			var aerr *AllFailedError
			require.ErrorAs(t, err, &aerr)
			assert.Len(t, aerr.Responses, 2)
			assert.Contains(t, err.Error(), "a unavailable")
			assert.Contains(t, err.Error(), "b unavailable")
			assert.Nil(t, res.FirstResponse)
		})
	}
}

func TestBroadcast_AllMode(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.CreateGroup(Group{ID: "all", AgentIDs: []string{"slow", "broken", "fast"}, Mode: ModeAll}))

	exec := latencyExecutor(map[string]time.Duration{
		"fast":   5 * time.Millisecond,
		"broken": 20 * time.Millisecond,
		"slow":   60 * time.Millisecond,
	}, map[string]bool{"broken": true})

	start := time.Now()
	res, err := m.Broadcast(context.Background(), "all", "x", exec)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	assert.Equal(t, "fast", res.FirstResponse.AgentID)
	require.Len(t, res.Responses, 3)

	ids := []string{res.Responses[0].AgentID, res.Responses[1].AgentID, res.Responses[2].AgentID}
	assert.Equal(t, []string{"fast", "broken", "slow"}, ids)
	assert.False(t, res.Responses[1].OK())
}

func TestBroadcast_UnknownGroup(t *testing.T) {
	_, err := NewManager().Broadcast(context.Background(), "missing", "x", latencyExecutor(nil, nil))
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestBroadcast_PanicIsMemberError(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.CreateGroup(Group{ID: "g", AgentIDs: []string{"p", "ok"}, Mode: ModeAll}))

	res, err := m.Broadcast(context.Background(), "g", "x", func(_ context.Context, id, _ string) (any, error) {
		if id == "p" {
			panic("bad member")
		}
		return "fine", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.FirstResponse.AgentID)
}

func TestAgentExecutor(t *testing.T) {
	echo := testutil.Echo("echo")
	exec := AgentExecutor(lookupMap{"echo": echo})

	out, err := exec(context.Background(), "echo", "ping")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"message": "ping"}, out.(*core.Result).Payload)

	_, err = exec(context.Background(), "nobody", "ping")
	assert.Error(t, err)
}

type lookupMap map[string]core.Agent

func (l lookupMap) Get(name string) (core.Agent, bool) {
	a, ok := l[name]
	return a, ok
}
