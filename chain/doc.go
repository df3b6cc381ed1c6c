// Package chain runs agents as a strict sequential pipeline.
//
// Each step may declare a Transform that maps the previous step's result to
// kwargs merged over the step's static kwargs. The previous step's slush is
// always forwarded as upstream_slush. The first failing step halts the chain.
package chain
