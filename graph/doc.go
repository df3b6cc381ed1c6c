// Package graph runs agents as a directed acyclic graph.
//
// Nodes name their dependencies; a node starts as soon as every dependency
// has a final status, and independent nodes run concurrently. Each node
// receives the slush emitted by its predecessors under the upstream_slush
// kwarg.
//
//	g := graph.New(graph.WithNodeTimeout(5 * time.Second))
//	g.AddNode(graph.Node{Name: "fetch", Agent: fetch}).
//	    AddNode(graph.Node{Name: "rank", Agent: rank, DependsOn: []string{"fetch"}})
//	res, err := g.Run(ctx, core.Kwargs{"query": "latest invoices"})
//
// By default a failing node only skips its transitive dependents. With
// StopOnError the first failure ends the run.
package graph
