// Package broadcast sends one message to every member of a named group
// concurrently.
//
// In race mode Broadcast returns with the first successful response; members
// still running are not cancelled and their late responses are reported to
// Options.OnLateResponse. In all mode Broadcast waits for every member and
// isolates member failures.
package broadcast
