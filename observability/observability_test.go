package observability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	ctx := context.Background()
	m.RecordRun(ctx, "graph", "diamond", "success", 120*time.Millisecond)
	m.RecordAgentCall(ctx, "fetch", 10*time.Millisecond, nil)
	m.RecordAgentCall(ctx, "fetch", 10*time.Millisecond, errors.New("boom"))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, text, "agentslush_runs")
	assert.Contains(t, text, "agentslush_agent_calls")
	assert.Contains(t, text, "agentslush_agent_errors")
	assert.Contains(t, text, `name="diamond"`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	m.RecordRun(context.Background(), "chain", "x", "error", time.Second)
	m.RecordAgentCall(context.Background(), "a", time.Second, nil)
	assert.NoError(t, m.Shutdown(context.Background()))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewTracerProvider(t *testing.T) {
	tp, shutdown, err := NewTracerProvider(TracerConfig{})
	require.NoError(t, err)
	assert.NotNil(t, tp)
	assert.NoError(t, shutdown(context.Background()))

	var buf bytes.Buffer
	tp, shutdown, err = NewTracerProvider(TracerConfig{Enabled: true, Writer: &buf})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "unit")
	EndSpan(span, errors.New("failed"))
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"unit"`)
}
