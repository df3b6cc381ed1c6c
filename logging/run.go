package logging

import "time"

// RunLogger is a Logger that also emits the orchestration outcome records.
// *StructuredLogger implements it.
type RunLogger interface {
	Logger
	LogNodeExecution(node, status string, dur time.Duration, err error)
	LogStep(step, agent string, dur time.Duration, err error)
	LogTopology(kind, name, status string, units int, dur time.Duration, err error)
	StartTimer(op string) func()
}

// ForRun scopes l to one run of component. A *StructuredLogger is scoped with
// WithComponent and WithRun; other loggers are wrapped and get the component
// and run id as leading key/value pairs. An empty runID is omitted.
func ForRun(l Logger, component, runID string) RunLogger {
	switch v := OrNoOp(l).(type) {
	case *StructuredLogger:
		sl := v.WithComponent(component)
		if runID != "" {
			sl = sl.WithRun(runID)
		}
		return sl
	case RunLogger:
		return v
	default:
		args := []any{"component", component}
		if runID != "" {
			args = append(args, "run_id", runID)
		}
		return &scopedLogger{base: v, args: args}
	}
}

type scopedLogger struct {
	base Logger
	args []any
}

func (l *scopedLogger) with(args []any) []any {
	out := make([]any, 0, len(l.args)+len(args))
	return append(append(out, l.args...), args...)
}

func (l *scopedLogger) Debug(msg string, args ...any) { l.base.Debug(msg, l.with(args)...) }
func (l *scopedLogger) Info(msg string, args ...any)  { l.base.Info(msg, l.with(args)...) }
func (l *scopedLogger) Warn(msg string, args ...any)  { l.base.Warn(msg, l.with(args)...) }
func (l *scopedLogger) Error(msg string, args ...any) { l.base.Error(msg, l.with(args)...) }

func (l *scopedLogger) LogNodeExecution(node, status string, dur time.Duration, err error) {
	logOutcome(l, "Node execution completed", "Node execution failed", err, "node", node, "status", status, "duration", dur)
}

func (l *scopedLogger) LogStep(step, agent string, dur time.Duration, err error) {
	logOutcome(l, "Chain step completed", "Chain step failed", err, "step", step, "agent", agent, "duration", dur)
}

func (l *scopedLogger) LogTopology(kind, name, status string, units int, dur time.Duration, err error) {
	logOutcome(l, "Topology run completed", "Topology run failed", err, "kind", kind, "name", name, "status", status, "units", units, "duration", dur)
}

func (l *scopedLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("Operation completed", "operation", op, "duration", time.Since(start)) }
}
