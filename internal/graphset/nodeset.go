package graphset

import (
	"context"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/biograph/biograph/internal/cypherutil"
)

// NodeSet is a named, deduplicated collection of node records sharing one
// label and one merge-key schema. Records are accumulated append-only
// during parsing, collapsed once by Deduplicate, then consumed exactly
// once by CreateIndex and Merge.
type NodeSet struct {
	Label     string
	MergeKeys []string

	policy  DedupPolicy
	stage   Stage
	records []Properties
	deduped *orderedmap.OrderedMap[string, Properties]
}

// NewNodeSet creates an empty NodeSet for the given label and non-empty
// merge-key field list.
func NewNodeSet(label string, mergeKeys []string) (*NodeSet, error) {
	if !cypherutil.IsValidIdentifier(label) {
		return nil, fmt.Errorf("invalid node label %q", label)
	}
	if len(mergeKeys) == 0 {
		return nil, fmt.Errorf("node set %s requires at least one merge key", label)
	}
	for _, k := range mergeKeys {
		if !cypherutil.IsValidIdentifier(k) {
			return nil, fmt.Errorf("invalid merge key field %q for label %s", k, label)
		}
	}

	return &NodeSet{
		Label:     label,
		MergeKeys: mergeKeys,
		policy:    PolicyOverwrite,
	}, nil
}

// SetDedupPolicy configures duplicate handling. Must be called before
// Deduplicate.
func (ns *NodeSet) SetDedupPolicy(policy DedupPolicy) {
	ns.policy = policy
}

// Spec returns the label and merge-key schema relationship sets match
// this set's nodes by.
func (ns *NodeSet) Spec() NodeSpec {
	return NodeSpec{Label: ns.Label, MergeKeys: ns.MergeKeys}
}

// Name returns a human-readable identifier for logging.
func (ns *NodeSet) Name() string {
	return "NodeSet(" + ns.Label + ")"
}

// Stage returns the set's current lifecycle stage.
func (ns *NodeSet) Stage() Stage {
	return ns.stage
}

// Add appends a record. It fails with a SchemaError when the record lacks
// any declared merge-key field, leaving the set untouched.
func (ns *NodeSet) Add(rec Properties) error {
	if ns.stage != StageBuilding {
		return &StageError{SetName: ns.Name(), Op: "Add", Stage: ns.stage}
	}
	if field := missingKey(rec, ns.MergeKeys); field != "" {
		return &SchemaError{SetName: ns.Name(), Field: field}
	}

	ns.records = append(ns.records, rec)
	return nil
}

// Len returns the record count: raw while building, deduplicated after
// Deduplicate.
func (ns *NodeSet) Len() int {
	if ns.stage >= StageDeduplicated {
		return ns.deduped.Len()
	}
	return len(ns.records)
}

// Deduplicate collapses records sharing identical merge-key values into
// one, scanned in insertion order. Under PolicyOverwrite a later record's
// non-nil values overwrite earlier ones and nil never overwrites a
// non-nil value; under PolicyReject the first duplicate key fails with a
// DuplicateKeyError. Freezes the key space.
func (ns *NodeSet) Deduplicate() error {
	if ns.stage != StageBuilding {
		return &StageError{SetName: ns.Name(), Op: "Deduplicate", Stage: ns.stage}
	}

	deduped := orderedmap.NewOrderedMap[string, Properties]()
	for _, rec := range ns.records {
		key := keyString(rec, ns.MergeKeys)

		existing, ok := deduped.Get(key)
		if !ok {
			merged := make(Properties, len(rec))
			combine(merged, rec)
			deduped.Set(key, merged)
			continue
		}
		if ns.policy == PolicyReject {
			return &DuplicateKeyError{SetName: ns.Name(), Key: key}
		}
		combine(existing, rec)
	}

	ns.deduped = deduped
	ns.records = nil
	ns.stage = StageDeduplicated
	return nil
}

// Records returns the deduplicated records in insertion order.
func (ns *NodeSet) Records() []Properties {
	if ns.stage < StageDeduplicated {
		out := make([]Properties, len(ns.records))
		copy(out, ns.records)
		return out
	}

	out := make([]Properties, 0, ns.deduped.Len())
	for el := ns.deduped.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// CreateIndex issues an idempotent index creation request on the store
// for (label, merge keys). An index that already exists is not an error.
func (ns *NodeSet) CreateIndex(ctx context.Context, exec Executor) error {
	if ns.stage != StageDeduplicated {
		return &StageError{SetName: ns.Name(), Op: "CreateIndex", Stage: ns.stage}
	}

	if _, err := exec.Run(ctx, NodeIndexStatement(ns.Label, ns.MergeKeys), nil); err != nil {
		return fmt.Errorf("failed to create index for %s: %w", ns.Name(), err)
	}

	ns.stage = StageIndexed
	return nil
}

// Merge upserts every deduplicated record into the store: match by
// (label, merge-key values), update all non-key fields when found,
// create with all fields otherwise. Records are streamed through one
// parameterized statement in fixed-size chunks; a chunk failure aborts
// the whole merge and surfaces the store error. Re-running a merge is
// always safe because the statement is idempotent.
func (ns *NodeSet) Merge(ctx context.Context, exec Executor, batchSize int) error {
	if ns.stage != StageIndexed {
		return &StageError{SetName: ns.Name(), Op: "Merge", Stage: ns.stage}
	}

	rows := make([]map[string]interface{}, 0, ns.deduped.Len())
	for el := ns.deduped.Front(); el != nil; el = el.Next() {
		rows = append(rows, map[string]interface{}{
			"key":   subMap(el.Value, ns.MergeKeys),
			"props": wireProps(el.Value),
		})
	}

	statement := nodeMergeStatement(ns.Label, ns.MergeKeys)
	for _, batch := range chunk(rows, batchSize) {
		params := map[string]interface{}{"batch": batch}
		if _, err := exec.Run(ctx, statement, params); err != nil {
			return fmt.Errorf("failed to merge %s: %w", ns.Name(), err)
		}
	}

	ns.stage = StageMerged
	return nil
}
