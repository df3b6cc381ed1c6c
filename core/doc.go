// Package core defines the contract shared by every topology in agentslush:
//
//   - Agent, the single-operation unit of work (Execute)
//   - Kwargs, the loosely typed keyword arguments agents receive
//   - Result, the typed payload + data slush an agent emits
//   - Duration, a millisecond-encoded duration used in result structures
//   - the error taxonomy sentinels orchestrators wrap
//
// Orchestrators (graph, chain, subagent, broadcast) depend only on this package
// and treat agents as opaque.
package core
