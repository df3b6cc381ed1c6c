package topology

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/agentslush/broadcast"
	"github.com/hupe1980/agentslush/chain"
	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/graph"
	"github.com/hupe1980/agentslush/internal/testutil"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphYAML = `
kind: graph
name: research
options:
  stop_on_error: true
  node_timeout: 250ms
nodes:
  - name: fetch
    agent: echo
    kwargs:
      region: ${TOPOLOGY_TEST_REGION}
      tier: ${TOPOLOGY_TEST_MISSING:-gold}
  - name: summarize
    agent: echo
    depends_on: [fetch]
input:
  query: latest invoices
`

func TestParse_GraphYAML(t *testing.T) {
	t.Setenv("TOPOLOGY_TEST_REGION", "eu-west")

	doc, err := Parse([]byte(graphYAML))
	require.NoError(t, err)

	assert.Equal(t, KindGraph, doc.Kind)
	assert.Equal(t, "research", doc.Name)
	assert.True(t, doc.Options.StopOnError)
	assert.Equal(t, 250*time.Millisecond, doc.Options.NodeTimeout)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "eu-west", doc.Nodes[0].Kwargs["region"])
	assert.Equal(t, "gold", doc.Nodes[0].Kwargs["tier"])
	assert.Equal(t, []string{"fetch"}, doc.Nodes[1].DependsOn)
	assert.Equal(t, "latest invoices", doc.Input["query"])
}

func TestParse_ChainJSON(t *testing.T) {
	doc, err := Parse([]byte(`{
		"kind": "chain",
		"steps": [
			{"name": "a", "agent": "echo", "kwargs": {"query": "x"}},
			{"name": "b", "agent": "echo", "pluck": [{"key": "q", "path": "query"}], "passthrough": "prev"}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, KindChain, doc.Kind)
	assert.Equal(t, "chain", doc.DisplayName())
	require.Len(t, doc.Steps, 2)
	assert.Equal(t, []PluckSpec{{Key: "q", Path: "query"}}, doc.Steps[1].Pluck)
	assert.Equal(t, "prev", doc.Steps[1].Passthrough)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not a document", "[1, 2"},
		{"missing kind", "name: x"},
		{"unknown kind", "kind: swarm"},
		{"graph without nodes", "kind: graph"},
		{"node without agent", "kind: graph\nnodes:\n  - name: a"},
		{"chain without steps", "kind: chain"},
		{"group without section", "kind: group"},
		{"group without agents", "kind: group\ngroup:\n  id: g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(graphYAML), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "research", doc.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		testutil.Echo("echo"),
		testutil.Succeeding("json", `{"user": {"id": "u-7"}}`, map[string]any{"source_agent": "json"}),
		testutil.Failing("fail", "nope"),
		testutil.Delayed("slow", 80*time.Millisecond, "slow answer"),
		testutil.Succeeding("fast", "fast answer", nil),
	)
	require.NoError(t, err)
	return reg
}

func TestRun_Graph(t *testing.T) {
	t.Setenv("TOPOLOGY_TEST_REGION", "us")
	doc, err := Parse([]byte(graphYAML))
	require.NoError(t, err)

	out, err := Run(context.Background(), doc, newRegistry(t))
	require.NoError(t, err)

	res := out.(*graph.RunResult)
	assert.Equal(t, graph.StatusSuccess, res.Status)
	assert.Equal(t, []string{"fetch", "summarize"}, res.ExecutionOrder)

	fetched := res.Nodes["fetch"].Result.(map[string]any)
	assert.Equal(t, "latest invoices", fetched["query"])
	assert.Equal(t, "us", fetched["region"])
}

func TestRun_Chain(t *testing.T) {
	doc, err := Parse([]byte(`
kind: chain
steps:
  - name: lookup
    agent: json
  - name: use
    agent: echo
    pluck:
      - key: user_id
        path: user.id
`))
	require.NoError(t, err)

	out, err := Run(context.Background(), doc, newRegistry(t))
	require.NoError(t, err)

	res := out.(*chain.Result)
	assert.Equal(t, chain.StatusSuccess, res.Status)
	final := res.FinalResult.(map[string]any)
	assert.Equal(t, "u-7", final["user_id"])
	assert.Equal(t, map[string]any{"source_agent": "json"}, final[core.UpstreamSlushKey])
}

func TestRun_LogsTiming(t *testing.T) {
	doc, err := Parse([]byte("kind: chain\nsteps:\n  - name: a\n    agent: echo\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "json", Output: &buf})

	_, err = Run(context.Background(), doc, newRegistry(t), func(o *BuildOptions) { o.Logger = logger })
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"operation":"topology.run.chain"`)
	assert.Contains(t, out, `"component":"chain"`)
	assert.Contains(t, out, `"msg":"Topology run completed"`)
}

func TestRun_ChainFailure(t *testing.T) {
	doc, err := Parse([]byte("kind: chain\nsteps:\n  - name: a\n    agent: fail\n"))
	require.NoError(t, err)

	out, err := Run(context.Background(), doc, newRegistry(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrChainStepFailure)
	assert.Equal(t, chain.StatusError, out.(*chain.Result).Status)
}

func TestRun_Group(t *testing.T) {
	doc, err := Parse([]byte(`
kind: group
options:
  mode: race
group:
  id: answerers
  agents: [slow, fail, fast]
input:
  message: who is fastest?
`))
	require.NoError(t, err)

	out, err := Run(context.Background(), doc, newRegistry(t))
	require.NoError(t, err)

	res := out.(*broadcast.Result)
	require.NotNil(t, res.FirstResponse)
	assert.Equal(t, "fast", res.FirstResponse.AgentID)
}

func TestBuild_UnknownAgent(t *testing.T) {
	doc, err := Parse([]byte("kind: graph\nnodes:\n  - name: a\n    agent: ghost\n"))
	require.NoError(t, err)

	_, err = BuildGraph(doc, newRegistry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")

	_, err = BuildChain(doc, newRegistry(t))
	assert.Error(t, err)

	_, err = BuildGroup(doc)
	assert.Error(t, err)
}

func TestBuildGroup_Mode(t *testing.T) {
	doc := &Document{Kind: KindGroup, Options: Options{Mode: "all"}, Group: &GroupSpec{ID: "g", Agents: []string{"a"}}}

	g, err := BuildGroup(doc)
	require.NoError(t, err)
	assert.Equal(t, broadcast.ModeAll, g.Mode)

	doc.Group.Mode = "race"
	g, err = BuildGroup(doc)
	require.NoError(t, err)
	assert.Equal(t, broadcast.ModeRace, g.Mode)

	doc.Group.Mode = "fanout"
	_, err = BuildGroup(doc)
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	reg := newRegistry(t)

	cyclic, err := Parse([]byte(`
kind: graph
nodes:
  - {name: a, agent: echo, depends_on: [b]}
  - {name: b, agent: ghost, depends_on: [a]}
`))
	require.NoError(t, err)

	problems := Check(cyclic, reg)
	assert.Contains(t, problems, "agent not found: ghost")
	assert.Contains(t, problems, "Cycle detected: a -> b -> a")

	chainDoc, err := Parse([]byte("kind: chain\nsteps:\n  - {name: a, agent: echo}\n"))
	require.NoError(t, err)
	assert.Empty(t, Check(chainDoc, reg))

	groupDoc := &Document{Kind: KindGroup, Group: &GroupSpec{ID: "g", Agents: []string{"fast", "nobody"}, Mode: "fanout"}}
	assert.Len(t, Check(groupDoc, reg), 2)
}
