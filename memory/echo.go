package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/logging"
	"github.com/hupe1980/agentslush/slush"
)

var _ slush.EchoSource = (*Store)(nil)

// Echoes implements slush.EchoSource. The namespace is read from the kwarg
// named by Options.NamespaceKey. An empty query yields no echoes.
func (s *Store) Echoes(ctx context.Context, query string, kwargs core.Kwargs) ([]slush.Echo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tokenize(query)) == 0 {
		return []slush.Echo{}, nil
	}

	namespace, _ := kwargs.String(s.opts.NamespaceKey)
	hits := s.Search(namespace, query, s.opts.EchoLimit)

	echoes := make([]slush.Echo, 0, len(hits))
	for _, h := range hits {
		echoes = append(echoes, slush.Echo{ID: h.ID, Content: h.Content, Score: h.Score})
	}
	return echoes, nil
}

// RecordingAgent remembers the payload of every successful execution of the
// wrapped agent.
type RecordingAgent struct {
	core.Agent
	store        *Store
	namespaceKey string
	logger       logging.Logger
}

// Recording wraps a so that successful payloads are added to store. Entry
// metadata carries the agent name, the query and the emitted slush.
func Recording(a core.Agent, store *Store, logger logging.Logger) *RecordingAgent {
	return &RecordingAgent{Agent: a, store: store, namespaceKey: store.opts.NamespaceKey, logger: logging.OrNoOp(logger)}
}

// Execute implements core.Agent.
func (r *RecordingAgent) Execute(ctx context.Context, kwargs core.Kwargs) (*core.Result, error) {
	res, err := r.Agent.Execute(ctx, kwargs)
	if err != nil || res == nil {
		return res, err
	}

	content := Text(res.Payload)
	if content == "" {
		return res, nil
	}

	namespace, _ := kwargs.String(r.namespaceKey)
	meta := map[string]any{"agent": r.Name()}
	if q := slush.QueryText(kwargs); q != "" {
		meta["query"] = q
	}
	if res.Slush != nil {
		meta["data_slush"] = res.Slush
	}

	id, addErr := r.store.Add(namespace, content, meta)
	if addErr != nil {
		r.logger.Warn("Failed to record memory", "agent", r.Name(), "error", addErr)
		return res, nil
	}
	r.logger.Debug("Memory recorded", "agent", r.Name(), "memory_id", id, "namespace", ns(namespace))

	return res, nil
}

// Text renders a payload as memory content: strings as-is, everything else
// as JSON.
func Text(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprint(payload)
	}
	return string(data)
}
