// Package topology loads graph, chain and group definitions from YAML or JSON
// documents and runs them against an agent registry.
//
// Example document:
//
//	kind: graph
//	name: research
//	options:
//	  node_timeout: 30s
//	nodes:
//	  - name: fetch
//	    agent: search
//	    kwargs:
//	      region: ${REGION:-eu}
//	  - name: summarize
//	    agent: writer
//	    depends_on: [fetch]
//	input:
//	  query: latest invoices
//
// String values support ${VAR} and ${VAR:-default} expansion.
package topology
