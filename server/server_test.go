package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentslush/internal/testutil"
	"github.com/hupe1980/agentslush/observability"
	"github.com/hupe1980/agentslush/registry"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg, err := registry.New(
		testutil.Echo("echo"),
		testutil.Failing("fail", "boom"),
		testutil.Delayed("slow", 50*time.Millisecond, "slow"),
	)
	require.NoError(t, err)

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	ts := httptest.NewServer(New(reg, func(o *Options) { o.Metrics = metrics }).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/yaml", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])
}

func TestAgents(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/agents")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	agents := decode(t, resp)["agents"].([]any)
	require.Len(t, agents, 3)
	assert.Equal(t, "echo", agents[0].(map[string]any)["name"])
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/topologies:validate", "kind: chain\nsteps:\n  - {name: a, agent: echo}\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "chain", body["kind"])

	resp = post(t, ts, "/v1/topologies:validate", "kind: graph\nnodes:\n  - {name: a, agent: ghost}\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, []any{"agent not found: ghost"}, body["errors"])

	resp = post(t, ts, "/v1/topologies:validate", "kind: swarm")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode(t, resp)["error"], "unknown kind")
}

func TestRun_Graph(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/topologies:run", `{
		"kind": "graph",
		"name": "pair",
		"nodes": [
			{"name": "a", "agent": "echo"},
			{"name": "b", "agent": "fail", "depends_on": ["a"]}
		],
		"input": {"query": "hello"}
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "graph", body["kind"])
	assert.Equal(t, "pair", body["name"])

	result := body["result"].(map[string]any)
	assert.Equal(t, "partial", result["status"])
	nodes := result["nodes"].(map[string]any)
	assert.Equal(t, "success", nodes["a"].(map[string]any)["status"])
	assert.Equal(t, "error", nodes["b"].(map[string]any)["status"])
}

func TestRun_ChainFailureReportsPartialResult(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/topologies:run", "kind: chain\nsteps:\n  - {name: a, agent: echo}\n  - {name: b, agent: fail}\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Contains(t, body["error"], "boom")
	result := body["result"].(map[string]any)
	assert.Equal(t, "error", result["status"])
	assert.Len(t, result["steps"], 2)
}

func TestRun_Rejected(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/topologies:run", `
kind: graph
nodes:
  - {name: a, agent: echo, depends_on: [a]}
`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []any{"Cycle detected: a -> a"}, decode(t, resp)["errors"])

	resp = post(t, ts, "/v1/topologies:run", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRun_Group(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/topologies:run", "kind: group\ngroup:\n  id: g\n  agents: [slow, echo]\ninput:\n  message: hi\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode(t, resp)["result"].(map[string]any)
	assert.Equal(t, "echo", result["firstResponse"].(map[string]any)["agentId"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	post(t, ts, "/v1/topologies:run", "kind: chain\nsteps:\n  - {name: a, agent: echo}\n").Body.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "agentslush_runs")
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	reg, err := registry.New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	New(reg).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
