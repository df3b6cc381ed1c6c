package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentslush/core"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := stdout
	stdout = buf
	t.Cleanup(func() { stdout = prev })
	return buf
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testCLI() *CLI {
	return &CLI{LogLevel: "error", LogFormat: "text", Provider: "anthropic"}
}

func TestBuiltinAgents(t *testing.T) {
	app, err := testCLI().app(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"echo", "fail", "prompt", "sleep", "upper"}, app.Registry().Names())

	upperAgent, _ := app.Agent("upper")
	res, err := upperAgent.Execute(context.Background(), core.Kwargs{"query": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", res.Payload)
	assert.Equal(t, "upper", res.Slush["source_agent"])
	signals, ok := res.Slush["signals"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 5, signals["length"])

	sleepAgent, _ := app.Agent("sleep")
	res, err = sleepAgent.Execute(context.Background(), core.Kwargs{"duration": "1ms", "query": "zz"})
	require.NoError(t, err)
	assert.Equal(t, "zz", res.Payload)

	_, err = sleepAgent.Execute(context.Background(), core.Kwargs{"duration": "soon"})
	assert.Error(t, err)

	failAgent, _ := app.Agent("fail")
	_, err = failAgent.Execute(context.Background(), core.Kwargs{"reason": "nope"})
	assert.EqualError(t, err, "nope")

	echoAgent, _ := app.Agent("echo")
	res, err = echoAgent.Execute(context.Background(), core.Kwargs{"a": 1, core.UpstreamSlushKey: map[string]any{"x": 1}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, res.Payload)
}

func TestNewModel(t *testing.T) {
	m, err := newModel(builtinConfig{Provider: "openai", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Info().Provider)
	assert.Equal(t, "gpt-4o-mini", m.Info().Name)

	_, err = newModel(builtinConfig{Provider: "llama"})
	assert.Error(t, err)
}

func TestRunCmd(t *testing.T) {
	out := captureStdout(t)
	path := writeFile(t, "chain.yaml", `
kind: chain
steps:
  - name: shout
    agent: upper
  - name: back
    agent: echo
    passthrough: shouted
input:
  query: quiet
`)

	cmd := &RunCmd{File: path, Input: map[string]string{"query": "hello"}}
	require.NoError(t, cmd.Run(testCLI()))

	var res map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "success", res["status"])
	assert.Equal(t, "HELLO", res["finalResult"].(map[string]any)["shouted"])
}

func TestRunCmd_FailingGraphStillPrints(t *testing.T) {
	out := captureStdout(t)
	path := writeFile(t, "graph.yaml", `
kind: graph
nodes:
  - {name: ok, agent: echo}
  - {name: bad, agent: fail}
`)

	require.NoError(t, (&RunCmd{File: path}).Run(testCLI()))
	assert.Contains(t, out.String(), `"status": "partial"`)
}

func TestValidateCmd(t *testing.T) {
	out := captureStdout(t)

	good := writeFile(t, "good.yaml", "kind: group\ngroup:\n  id: g\n  agents: [echo, upper]\n")
	require.NoError(t, (&ValidateCmd{File: good}).Run(testCLI()))
	assert.Contains(t, out.String(), "valid group")

	bad := writeFile(t, "bad.yaml", "kind: chain\nsteps:\n  - {name: a, agent: ghost}\n")
	err := (&ValidateCmd{File: bad}).Run(testCLI())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent not found: ghost")
}

func TestAgentsCmd(t *testing.T) {
	out := captureStdout(t)
	require.NoError(t, (&AgentsCmd{}).Run(testCLI()))
	assert.Contains(t, out.String(), "Upper-cases the query text")

	out.Reset()
	require.NoError(t, (&AgentsCmd{JSON: true}).Run(testCLI()))
	var infos []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &infos))
	assert.Len(t, infos, 5)
}

func TestSchemaCmd(t *testing.T) {
	out := captureStdout(t)
	require.NoError(t, (&SchemaCmd{Compact: true}).Run())

	var schema map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "kind")
	assert.Contains(t, props, "nodes")
	assert.Contains(t, schema["required"], "kind")
}

func TestVersionCmd(t *testing.T) {
	out := captureStdout(t)
	require.NoError(t, (&VersionCmd{}).Run())
	assert.Contains(t, out.String(), "agentslush version")
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, "test.env", "AGENTSLUSH_CLI_TEST=loaded\n")
	t.Cleanup(func() { os.Unsetenv("AGENTSLUSH_CLI_TEST") })

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "loaded", os.Getenv("AGENTSLUSH_CLI_TEST"))

	assert.Error(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")))
}
