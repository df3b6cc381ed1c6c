// Package server exposes a registry of agents and the topology runner over
// HTTP. Routes:
//
//	GET  /healthz                  liveness
//	GET  /metrics                  Prometheus metrics
//	GET  /v1/agents                registered agent metadata
//	POST /v1/topologies:validate   check a topology document
//	POST /v1/topologies:run        run a topology document
//
// Documents are accepted as YAML or JSON.
package server
