package dag

// Graph is a collection of nodes and their dependencies, representing a DAG.
// It is not safe for concurrent use.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order records insertion order, used to keep sorting stable.
	order []string
}

// node is a single vertex of the graph. It is un-exported to enforce
// interaction with the graph via the public API (using string IDs).
type node struct {
	id string
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}
