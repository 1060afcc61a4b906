package graphset

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records executed statements and returns canned results.
type fakeExecutor struct {
	calls []fakeCall
	count int64
	err   error
}

type fakeCall struct {
	cypher string
	params map[string]interface{}
}

func (f *fakeExecutor) Run(ctx context.Context, cypher string, params map[string]interface{}) (Result, error) {
	f.calls = append(f.calls, fakeCall{cypher: cypher, params: params})
	if f.err != nil {
		return Result{}, f.err
	}
	count := f.count
	if count == 0 {
		// Default to echoing the batch length so merges succeed.
		if batch, ok := params["batch"].([]map[string]interface{}); ok {
			count = int64(len(batch))
		} else {
			count = -1
		}
	}
	return Result{Count: count}, nil
}

func newTestNodeSet(t *testing.T) *NodeSet {
	t.Helper()
	ns, err := NewNodeSet("Gene", []string{"gene_id"})
	require.NoError(t, err)
	return ns
}

func TestNewNodeSet_Validation(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		keys      []string
		expectErr bool
	}{
		{name: "valid", label: "Gene", keys: []string{"gene_id"}, expectErr: false},
		{name: "compound key", label: "Transcript", keys: []string{"transcript_id", "version"}, expectErr: false},
		{name: "no merge keys", label: "Gene", keys: nil, expectErr: true},
		{name: "invalid label", label: "Gene) DETACH DELETE", keys: []string{"gene_id"}, expectErr: true},
		{name: "invalid key field", label: "Gene", keys: []string{"gene id"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, err := NewNodeSet(tt.label, tt.keys)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, ns)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, ns)
			}
		})
	}
}

func TestNodeSet_AddMissingKeyField(t *testing.T) {
	ns := newTestNodeSet(t)

	require.NoError(t, ns.Add(Properties{"gene_id": "G1", "symbol": "TP53"}))

	err := ns.Add(Properties{"symbol": "BRCA1"})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "gene_id", schemaErr.Field)

	// A nil key value is as bad as a missing one.
	err = ns.Add(Properties{"gene_id": nil, "symbol": "BRCA2"})
	require.ErrorAs(t, err, &schemaErr)

	// Prior contents are untouched by the failed adds.
	assert.Equal(t, 1, ns.Len())
}

func TestNodeSet_DeduplicateCombinesFields(t *testing.T) {
	ns, err := NewNodeSet("Gene", []string{"id"})
	require.NoError(t, err)

	require.NoError(t, ns.Add(Properties{"id": int64(1), "name": "a"}))
	require.NoError(t, ns.Add(Properties{"id": int64(1), "name": nil}))
	require.NoError(t, ns.Add(Properties{"id": int64(1), "city": "X"}))

	require.NoError(t, ns.Deduplicate())

	records := ns.Records()
	require.Len(t, records, 1)
	assert.Equal(t, Properties{"id": int64(1), "name": "a", "city": "X"}, records[0])
}

func TestNodeSet_DeduplicateLastSeenWins(t *testing.T) {
	ns := newTestNodeSet(t)

	require.NoError(t, ns.Add(Properties{"gene_id": "G1", "symbol": "OLD"}))
	require.NoError(t, ns.Add(Properties{"gene_id": "G1", "symbol": "NEW"}))

	require.NoError(t, ns.Deduplicate())

	records := ns.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "NEW", records[0]["symbol"])
}

func TestNodeSet_DeduplicateKeyUniqueness(t *testing.T) {
	ns := newTestNodeSet(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, ns.Add(Properties{"gene_id": fmt.Sprintf("G%d", i%3)}))
	}

	require.NoError(t, ns.Deduplicate())

	seen := make(map[string]bool)
	for _, rec := range ns.Records() {
		key := fmt.Sprintf("%v", rec["gene_id"])
		assert.False(t, seen[key], "duplicate merge key %s after deduplication", key)
		seen[key] = true
	}
	assert.Equal(t, 3, ns.Len())
}

func TestNodeSet_DeduplicatePreservesInsertionOrder(t *testing.T) {
	ns := newTestNodeSet(t)

	for _, id := range []string{"G3", "G1", "G2", "G1"} {
		require.NoError(t, ns.Add(Properties{"gene_id": id}))
	}
	require.NoError(t, ns.Deduplicate())

	var order []string
	for _, rec := range ns.Records() {
		order = append(order, rec["gene_id"].(string))
	}
	assert.Equal(t, []string{"G3", "G1", "G2"}, order)
}

func TestNodeSet_RejectPolicy(t *testing.T) {
	ns := newTestNodeSet(t)
	ns.SetDedupPolicy(PolicyReject)

	require.NoError(t, ns.Add(Properties{"gene_id": "G1"}))
	require.NoError(t, ns.Add(Properties{"gene_id": "G1"}))

	err := ns.Deduplicate()
	var dupErr *DuplicateKeyError
	assert.ErrorAs(t, err, &dupErr)
}

func TestNodeSet_StageEnforcement(t *testing.T) {
	ns := newTestNodeSet(t)
	exec := &fakeExecutor{}
	ctx := context.Background()

	var stageErr *StageError

	// Merge and CreateIndex are not allowed while building.
	assert.ErrorAs(t, ns.CreateIndex(ctx, exec), &stageErr)
	assert.ErrorAs(t, ns.Merge(ctx, exec, 10), &stageErr)

	require.NoError(t, ns.Add(Properties{"gene_id": "G1"}))
	require.NoError(t, ns.Deduplicate())

	// No backward transitions: the key space is frozen.
	assert.ErrorAs(t, ns.Add(Properties{"gene_id": "G2"}), &stageErr)
	assert.ErrorAs(t, ns.Deduplicate(), &stageErr)

	require.NoError(t, ns.CreateIndex(ctx, exec))
	require.NoError(t, ns.Merge(ctx, exec, 10))
	assert.Equal(t, StageMerged, ns.Stage())

	// Terminal stage.
	assert.ErrorAs(t, ns.Merge(ctx, exec, 10), &stageErr)
}

func TestNodeSet_CreateIndexStatement(t *testing.T) {
	ns := newTestNodeSet(t)
	require.NoError(t, ns.Deduplicate())

	exec := &fakeExecutor{}
	require.NoError(t, ns.CreateIndex(context.Background(), exec))

	require.Len(t, exec.calls, 1)
	assert.Equal(t,
		"CREATE INDEX `idx_Gene_gene_id` IF NOT EXISTS FOR (n:`Gene`) ON (n.`gene_id`)",
		exec.calls[0].cypher)
}

func TestNodeSet_MergeBatching(t *testing.T) {
	ns := newTestNodeSet(t)
	for i := 0; i < 7; i++ {
		require.NoError(t, ns.Add(Properties{"gene_id": fmt.Sprintf("G%d", i)}))
	}
	require.NoError(t, ns.Deduplicate())

	exec := &fakeExecutor{}
	ctx := context.Background()
	require.NoError(t, ns.CreateIndex(ctx, exec))
	require.NoError(t, ns.Merge(ctx, exec, 3))

	// One index round-trip plus ceil(7/3) merge round-trips.
	require.Len(t, exec.calls, 4)

	merge := exec.calls[1]
	assert.Contains(t, merge.cypher, "UNWIND $batch AS row")
	assert.Contains(t, merge.cypher, "MERGE (n:`Gene` {`gene_id`: row.key.`gene_id`})")
	assert.Contains(t, merge.cypher, "SET n += row.props")

	batch := merge.params["batch"].([]map[string]interface{})
	require.Len(t, batch, 3)
	assert.Equal(t, map[string]interface{}{"gene_id": "G0"}, batch[0]["key"])

	last := exec.calls[3].params["batch"].([]map[string]interface{})
	assert.Len(t, last, 1)
}

func TestNodeSet_MergeStoreErrorAborts(t *testing.T) {
	ns := newTestNodeSet(t)
	require.NoError(t, ns.Add(Properties{"gene_id": "G1"}))
	require.NoError(t, ns.Deduplicate())

	ctx := context.Background()
	okExec := &fakeExecutor{}
	require.NoError(t, ns.CreateIndex(ctx, okExec))

	storeErr := errors.New("connection reset")
	exec := &fakeExecutor{err: storeErr}
	err := ns.Merge(ctx, exec, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)

	// The failed merge is not terminal state: re-running is always safe.
	assert.Equal(t, StageIndexed, ns.Stage())
}

func TestNodeSet_MergeDropsNilProperties(t *testing.T) {
	ns := newTestNodeSet(t)
	require.NoError(t, ns.Add(Properties{"gene_id": "G1", "symbol": nil}))
	require.NoError(t, ns.Deduplicate())

	exec := &fakeExecutor{}
	ctx := context.Background()
	require.NoError(t, ns.CreateIndex(ctx, exec))
	require.NoError(t, ns.Merge(ctx, exec, 10))

	batch := exec.calls[1].params["batch"].([]map[string]interface{})
	props := batch[0]["props"].(map[string]interface{})
	_, hasSymbol := props["symbol"]
	assert.False(t, hasSymbol, "nil-valued fields must not reach the store")
}
