package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/hupe1980/agentslush/core"
	"github.com/hupe1980/agentslush/topology"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type agentsResponse struct {
	Agents []core.AgentInfo `json:"agents"`
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, agentsResponse{Agents: s.catalog.List()})
}

type validateResponse struct {
	Valid  bool     `json:"valid"`
	Kind   string   `json:"kind"`
	Errors []string `json:"errors"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	problems := topology.Check(doc, s.catalog)
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:  len(problems) == 0,
		Kind:   string(doc.Kind),
		Errors: problems,
	})
}

type runResponse struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleRun runs the document. Problems found before execution yield 422.
// Once execution started the response is 200 and failures are reported in
// the body alongside the partial result.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	if problems := topology.Check(doc, s.catalog); len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{Kind: string(doc.Kind), Errors: problems})
		return
	}

	ctx := r.Context()
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	out, err := topology.Run(ctx, doc, s.catalog, func(o *topology.BuildOptions) {
		o.Logger = s.opts.Logger
		o.Metrics = s.opts.Metrics
	})

	resp := runResponse{Kind: string(doc.Kind), Name: doc.DisplayName(), Result: out}
	if err != nil {
		resp.Error = err.Error()
		if out == nil {
			status := http.StatusInternalServerError
			if errors.Is(err, core.ErrValidation) {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, status, resp)
			return
		}
		s.opts.Logger.Warn("Topology run failed", "kind", doc.Kind, "name", doc.DisplayName(), "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}
