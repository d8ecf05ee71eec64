// SPDX-License-Identifier: MPL-2.0

// Package taskgraph orders sibling projects so that every project's re-mapped output is
// built before the projects that nest it. Nodes are project paths; an edge from A to B
// means A must be built before B.
package taskgraph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is the sentinel error wrapped by CycleError.
var ErrCycle = errors.New("include cycle")

type (
	// CycleError reports project paths that include each other and cannot be ordered.
	CycleError struct {
		// Nodes lists the projects still blocked when ordering stopped, in insertion order.
		Nodes []string
	}

	// Graph is a directed graph with deterministic topological ordering.
	Graph struct {
		adjacency map[string][]string
		edges     map[[2]string]struct{}
		nodes     []string
		nodeSet   map[string]struct{}
	}

	// DepsFunc returns the nodes a node depends on, in declaration order.
	DepsFunc func(node string) []string
)

func (e *CycleError) Error() string {
	return "project include cycle detected: " + strings.Join(e.Nodes, " -> ")
}

// Unwrap returns ErrCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		edges:     make(map[[2]string]struct{}),
		nodeSet:   make(map[string]struct{}),
	}
}

// FromDeps builds the graph of every node reachable from roots through deps, with an
// edge from each dependency to its dependent. Roots are visited in order, depth first.
func FromDeps(roots []string, deps DepsFunc) *Graph {
	g := New()
	visited := make(map[string]bool)

	var visit func(node string)
	visit = func(node string) {
		if visited[node] {
			return
		}
		visited[node] = true
		g.AddNode(node)
		for _, dep := range deps(node) {
			g.AddEdge(dep, node)
			visit(dep)
		}
	}
	for _, root := range roots {
		visit(root)
	}
	return g
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.nodeSet[name]; ok {
		return
	}
	g.nodeSet[name] = struct{}{}
	g.nodes = append(g.nodes, name)
}

// AddEdge adds an edge meaning from must be built before to. Both nodes are added if
// missing and repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	key := [2]string{from, to}
	if _, ok := g.edges[key]; ok {
		return
	}
	g.edges[key] = struct{}{}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// TopologicalSort returns the nodes in build order using Kahn's algorithm.
// Nodes at the same level keep insertion order. Returns a CycleError when no order exists.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, neighbors := range g.adjacency {
		for _, n := range neighbors {
			inDegree[n]++
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, n := range g.adjacency[node] {
			inDegree[n]--
			if inDegree[n] == 0 {
				queue = append(queue, n)
			}
		}
	}

	if len(order) != len(g.nodes) {
		var blocked []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				blocked = append(blocked, node)
			}
		}
		return nil, &CycleError{Nodes: blocked}
	}
	return order, nil
}

// String renders the edges for debug output, one "from -> to" per line.
func (g *Graph) String() string {
	var b strings.Builder
	for _, node := range g.nodes {
		for _, n := range g.adjacency[node] {
			fmt.Fprintf(&b, "%s -> %s\n", node, n)
		}
	}
	return b.String()
}
