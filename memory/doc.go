// Package memory provides a process-local memory store. Stored entries are
// searched by keyword overlap and surface in context envelopes as memory
// echoes through Store.Echoes, which implements slush.EchoSource.
//
// Recording wraps an agent so that every successful execution is remembered,
// letting later invocations see what earlier ones produced.
package memory
