// Package logging provides the minimal Logger interface used across
// agentslush plus adapters for log/slog.
//
// Orchestrators accept any Logger and default to NoOpLogger. StructuredLogger
// adds component/run scoping and helpers for the records the orchestrators
// emit (node executions, chain steps, broadcast responses).
//
// Example:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "text", Output: os.Stderr})
//	g := graph.New(func(o *graph.Options) { o.Logger = logger.WithComponent("graph") })
package logging
