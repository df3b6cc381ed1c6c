// Package slush computes the context envelope ("data slush") attached to every
// agent invocation.
//
// An Envelope is derived from three inputs only: the wall clock, the query
// text found in the invocation kwargs and whatever the optional sources on a
// Builder return (memory echoes, behavioral hints, priors). The synthesized
// Orientation is a pure function of the other fields, so two envelopes built
// from the same inputs are identical.
//
// Envelopes are never shared: agents build a fresh one per Execute call.
package slush
