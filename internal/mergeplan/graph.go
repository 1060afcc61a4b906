// Package mergeplan computes the order in which node and relationship
// sets are merged into the graph store. Relationship merges match their
// endpoints by node lookups, so every node set a relationship set
// references must be merged before it.
package mergeplan

import (
	"container/list"
	"fmt"
	"strings"
)

// Graph is the dependency structure between merge steps. Vertices are
// node labels and relationship sets; an edge parent -> child means the
// child may only merge after the parent.
type Graph struct {
	order    []string            // vertex ids in insertion order, for stable sorting
	vertices map[string]bool     // vertex id -> present
	children map[string][]string // vertex id -> dependent vertex ids
	parents  map[string][]string // vertex id -> prerequisite vertex ids
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		vertices: make(map[string]bool),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddVertex adds a merge step to the graph. Adding an existing vertex is
// a no-op.
func (g *Graph) AddVertex(id string) {
	if g.vertices[id] {
		return
	}
	g.vertices[id] = true
	g.order = append(g.order, id)
}

// AddEdge adds a parent -> child dependency. Both vertices are created
// when absent.
func (g *Graph) AddEdge(parent, child string) {
	g.AddVertex(parent)
	g.AddVertex(child)
	g.children[parent] = append(g.children[parent], child)
	g.parents[child] = append(g.parents[child], parent)
}

// HasVertex returns true if the graph contains the given merge step.
func (g *Graph) HasVertex(id string) bool {
	return g.vertices[id]
}

// Parents returns the prerequisites of a merge step.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// CalculateInDegrees computes the number of incoming edges for each
// vertex, the first step of Kahn's algorithm.
func (g *Graph) CalculateInDegrees() map[string]int {
	inDegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		inDegree[id] = 0
	}
	for _, children := range g.children {
		for _, child := range children {
			inDegree[child]++
		}
	}
	return inDegree
}

// CycleError is returned when the dependency graph contains a cycle and
// no valid merge order exists.
type CycleError struct {
	Remaining []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle involving: %s", strings.Join(e.Remaining, ", "))
}

// TopologicalSort orders the merge steps with Kahn's algorithm. The FIFO
// processing queue is seeded in insertion order, so the result is stable
// for a fixed input order. Returns a CycleError when not all vertices can
// be processed.
func (g *Graph) TopologicalSort() ([]string, error) {
	inDegree := g.CalculateInDegrees()

	queue := list.New()
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue.PushBack(id)
		}
	}

	sorted := make([]string, 0, len(g.order))
	for queue.Len() > 0 {
		front := queue.Front()
		queue.Remove(front)
		id := front.Value.(string)

		sorted = append(sorted, id)

		for _, child := range g.children[id] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue.PushBack(child)
			}
		}
	}

	if len(sorted) != len(g.order) {
		var remaining []string
		for _, id := range g.order {
			if inDegree[id] > 0 {
				remaining = append(remaining, id)
			}
		}
		return nil, &CycleError{Remaining: remaining}
	}

	return sorted, nil
}
