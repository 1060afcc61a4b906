package mergeplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biograph/biograph/internal/graphset"
)

func mustNodeSet(t *testing.T, label string, keys ...string) *graphset.NodeSet {
	t.Helper()
	ns, err := graphset.NewNodeSet(label, keys)
	require.NoError(t, err)
	return ns
}

func mustRelSet(t *testing.T, relType string, start, end *graphset.NodeSet) *graphset.RelationshipSet {
	t.Helper()
	rs, err := graphset.NewRelationshipSet(relType, start.Spec(), end.Spec())
	require.NoError(t, err)
	return rs
}

func TestBuilder_RelationshipsAfterNodes(t *testing.T) {
	genes := mustNodeSet(t, "Gene", "gene_id")
	pathways := mustNodeSet(t, "Pathway", "pathway_id")

	c := graphset.NewContainer()
	c.AddRelationshipSet(mustRelSet(t, "PARTICIPATES_IN", genes, pathways))
	c.AddNodeSet(genes)
	c.AddNodeSet(pathways)

	plan, err := NewBuilder(c).Build()
	require.NoError(t, err)

	require.Len(t, plan.NodeSets, 2)
	require.Len(t, plan.RelationshipSets, 1)

	steps := plan.Steps()
	assert.Equal(t, "node:Gene", steps[0])
	assert.Equal(t, "node:Pathway", steps[1])
	assert.Contains(t, steps[2], "PARTICIPATES_IN")
}

func TestBuilder_CrossContainerReference(t *testing.T) {
	genes := mustNodeSet(t, "Gene", "gene_id")
	geneContainer := graphset.NewContainer()
	geneContainer.AddNodeSet(genes)

	pathways := mustNodeSet(t, "Pathway", "pathway_id")
	pathwayContainer := graphset.NewContainer()
	pathwayContainer.AddNodeSet(pathways)

	// The mapping parser references node sets produced by two other
	// parsers' containers.
	mappingContainer := graphset.NewContainer()
	mappingContainer.AddRelationshipSet(mustRelSet(t, "PARTICIPATES_IN", genes, pathways))

	plan, err := NewBuilder(geneContainer, pathwayContainer, mappingContainer).Build()
	require.NoError(t, err)

	assert.Len(t, plan.NodeSets, 2)
	assert.Len(t, plan.RelationshipSets, 1)
}

func TestBuilder_MissingLabel(t *testing.T) {
	genes := mustNodeSet(t, "Gene", "gene_id")
	pathways := mustNodeSet(t, "Pathway", "pathway_id")

	c := graphset.NewContainer()
	c.AddNodeSet(genes)
	// Pathway nodes are referenced but never produced.
	c.AddRelationshipSet(mustRelSet(t, "PARTICIPATES_IN", genes, pathways))

	_, err := NewBuilder(c).Build()

	var missingErr *MissingLabelError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "Pathway", missingErr.Label)
	assert.Equal(t, "PARTICIPATES_IN", missingErr.RelType)
}

func TestBuilder_DuplicateRelationshipTypes(t *testing.T) {
	genes := mustNodeSet(t, "Gene", "gene_id")
	pathways := mustNodeSet(t, "Pathway", "pathway_id")

	c := graphset.NewContainer()
	c.AddNodeSet(genes)
	c.AddNodeSet(pathways)
	c.AddRelationshipSet(mustRelSet(t, "PARTICIPATES_IN", genes, pathways))
	c.AddRelationshipSet(mustRelSet(t, "PARTICIPATES_IN", genes, pathways))

	plan, err := NewBuilder(c).Build()
	require.NoError(t, err)
	assert.Len(t, plan.RelationshipSets, 2)
}

func TestGraph_TopologicalSortStable(t *testing.T) {
	g := NewGraph()
	g.AddVertex("a")
	g.AddVertex("b")
	g.AddVertex("c")
	g.AddEdge("a", "c")
	g.AddEdge("b", "c")

	sorted, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, sorted)
}

func TestGraph_CycleDetection(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	_, err := g.TopologicalSort()

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Len(t, cycleErr.Remaining, 3)
}
