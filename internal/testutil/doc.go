// Package testutil contains small core.Agent implementations used across
// package tests: fixed-result agents, delayed agents, failing agents and
// recorders that capture the kwargs they were called with. They are not
// intended for production usage.
package testutil
