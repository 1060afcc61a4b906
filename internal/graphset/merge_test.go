package graphset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIndexStatement_CompoundKey(t *testing.T) {
	statement := NodeIndexStatement("Transcript", []string{"transcript_id", "version"})
	assert.Equal(t,
		"CREATE INDEX `idx_Transcript_transcript_id_version` IF NOT EXISTS FOR (n:`Transcript`) ON (n.`transcript_id`, n.`version`)",
		statement)
}

func TestChunk(t *testing.T) {
	rows := make([]map[string]interface{}, 10)
	for i := range rows {
		rows[i] = map[string]interface{}{"i": i}
	}

	tests := []struct {
		name     string
		size     int
		expected []int
	}{
		{name: "even split", size: 5, expected: []int{5, 5}},
		{name: "remainder", size: 4, expected: []int{4, 4, 2}},
		{name: "single chunk", size: 100, expected: []int{10}},
		{name: "size one", size: 1, expected: []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{name: "zero falls back to default", size: 0, expected: []int{10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunk(rows, tt.size)
			require.Len(t, chunks, len(tt.expected))
			for i, want := range tt.expected {
				assert.Len(t, chunks[i], want)
			}
		})
	}

	assert.Empty(t, chunk(nil, 5))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyOverwrite, p)

	p, err = ParsePolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	_, err = ParsePolicy("bogus")
	assert.Error(t, err)
}

func TestContainer_Deduplicate(t *testing.T) {
	c := NewContainer()

	genes, err := NewNodeSet("Gene", []string{"gene_id"})
	require.NoError(t, err)
	require.NoError(t, genes.Add(Properties{"gene_id": "G1"}))
	require.NoError(t, genes.Add(Properties{"gene_id": "G1"}))
	c.AddNodeSet(genes)

	rels, err := NewRelationshipSet("PARTICIPATES_IN", genes.Spec(), pathwaySpec)
	require.NoError(t, err)
	require.NoError(t, rels.Add(participates("G1", "P1", nil)))
	c.AddRelationshipSet(rels)

	require.NoError(t, c.Deduplicate())

	assert.Equal(t, 1, c.NodeCount())
	assert.Equal(t, 1, c.RelationshipCount())
	assert.Equal(t, StageDeduplicated, genes.Stage())
	assert.Equal(t, StageDeduplicated, rels.Stage())
}
