// Package subagent guards agent-invokes-agent call chains.
//
// A Manager bounds the hierarchy depth of nested invocations and rejects an
// agent that already appears MaxRepeatedInvocations times in the current call
// chain. Every nested call receives its own InvocationContext value with a
// freshly allocated history, so sibling branches never share state.
//
// Agents executed through a Manager can recurse with InvokeFrom, which reads
// the manager and the current context from ctx:
//
//	m := subagent.NewManager(3, func(o *subagent.Options) {
//	    o.Executor = subagent.RegistryExecutor(reg)
//	})
//	out, err := m.Invoke(ctx, "planner", "draft a plan", m.CreateContext("root"))
package subagent
