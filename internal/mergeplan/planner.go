package mergeplan

import (
	"fmt"

	"github.com/biograph/biograph/internal/graphset"
)

// Plan is the computed merge order for one load run: node sets first,
// relationship sets only after every node set whose label they reference.
type Plan struct {
	NodeSets         []*graphset.NodeSet
	RelationshipSets []*graphset.RelationshipSet
}

// Steps returns the human-readable merge order, used by the plan command.
func (p *Plan) Steps() []string {
	steps := make([]string, 0, len(p.NodeSets)+len(p.RelationshipSets))
	for _, ns := range p.NodeSets {
		steps = append(steps, nodeVertex(ns.Label))
	}
	for _, rs := range p.RelationshipSets {
		steps = append(steps, relVertex(rs))
	}
	return steps
}

// MissingLabelError is returned when a relationship set references a node
// label no container in the run provides. Merging it would fail with
// dangling references; the orchestrator refuses to start instead.
type MissingLabelError struct {
	RelType string
	Label   string
}

func (e *MissingLabelError) Error() string {
	return fmt.Sprintf("relationship set %s references node label %s, which no parser in this run produces", e.RelType, e.Label)
}

// Builder constructs a merge plan from the containers of one run.
type Builder struct {
	containers []*graphset.Container
}

// NewBuilder creates a plan builder over the given containers.
func NewBuilder(containers ...*graphset.Container) *Builder {
	return &Builder{containers: containers}
}

// Build validates cross-container references and computes the merge
// order. Node sets keep container order; relationship sets are ordered by
// topological position behind the labels they depend on.
func (b *Builder) Build() (*Plan, error) {
	g := NewGraph()

	plan := &Plan{}
	relsByVertex := make(map[string]*graphset.RelationshipSet)

	for _, c := range b.containers {
		for _, ns := range c.NodeSets {
			g.AddVertex(nodeVertex(ns.Label))
			plan.NodeSets = append(plan.NodeSets, ns)
		}
	}

	relIndex := 0
	for _, c := range b.containers {
		for _, rs := range c.RelationshipSets {
			// The vertex id carries a counter so two parsers producing
			// the same relationship type stay distinct steps.
			vertex := fmt.Sprintf("%s#%d", relVertex(rs), relIndex)
			relIndex++
			relsByVertex[vertex] = rs

			for _, spec := range []graphset.NodeSpec{rs.Start, rs.End} {
				label := nodeVertex(spec.Label)
				if !g.HasVertex(label) {
					return nil, &MissingLabelError{RelType: rs.Type, Label: spec.Label}
				}
				g.AddEdge(label, vertex)
			}
		}
	}

	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("failed to order merge steps: %w", err)
	}

	for _, vertex := range sorted {
		if rs, ok := relsByVertex[vertex]; ok {
			plan.RelationshipSets = append(plan.RelationshipSets, rs)
		}
	}

	return plan, nil
}

func nodeVertex(label string) string {
	return "node:" + label
}

func relVertex(rs *graphset.RelationshipSet) string {
	return fmt.Sprintf("rel:(%s)-[%s]->(%s)", rs.Start.Label, rs.Type, rs.End.Label)
}
