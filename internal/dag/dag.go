package dag

import (
	"fmt"
	"slices"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// dependencies returns the sorted IDs of the nodes id depends on, or nil
// for an unknown node.
func (g *Graph) dependencies(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return sortedIDs(n.deps)
}

// dependents returns the sorted IDs of the nodes that depend on id, or nil
// for an unknown node.
func (g *Graph) dependents(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return sortedIDs(n.dependents)
}

// CycleError reports a dependency cycle. Path starts and ends with the same
// node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}

// DetectCycles checks the graph for any cycles. It returns a *CycleError
// describing the first cycle found, visiting nodes in insertion order.
func (g *Graph) DetectCycles() error {
	// Classic depth-first search. visiting holds the nodes of the current
	// recursion stack, visited the nodes known not to be part of a cycle.
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var stack []string

	var visit func(n *node) error
	visit = func(n *node) error {
		visiting[n.id] = true
		stack = append(stack, n.id)
		for _, depID := range g.dependents(n.id) {
			if visiting[depID] {
				start := slices.Index(stack, depID)
				path := append(slices.Clone(stack[start:]), depID)
				return &CycleError{Path: path}
			}
			if !visited[depID] {
				if err := visit(n.dependents[depID]); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		delete(visiting, n.id)
		visited[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if !visited[id] {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopologicalSort returns every node after all of its dependencies. Among
// nodes that are ready at the same time, the one inserted first comes first,
// so a graph without edges sorts to insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	position := make(map[string]int, len(g.order))
	pending := make(map[string]int, len(g.order))
	for i, id := range g.order {
		position[id] = i
		pending[id] = len(g.nodes[id].deps)
	}

	var ready []string
	for _, id := range g.order {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)
		for _, depID := range g.dependents(id) {
			pending[depID]--
			if pending[depID] == 0 {
				ready = append(ready, depID)
			}
		}
		slices.SortFunc(ready, func(a, b string) int {
			return position[a] - position[b]
		})
	}
	return sorted, nil
}

func sortedIDs(nodes map[string]*node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
