// Package agent contains the building blocks for concrete agents.
//
//  1. BaseAgent implements the invocation contract: it computes a fresh
//     slush.Envelope from the kwargs before any agent logic runs and keeps the
//     last one for introspection.
//  2. FuncAgent adapts a plain Go function into a core.Agent.
//  3. PromptAgent drives a model.Model with a templated instruction and the
//     envelope's orientation.
//
// Parameter schemas are JSON-Schema maps; ParametersFor reflects one from a
// struct type.
package agent
