package graphset

import (
	"context"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/biograph/biograph/internal/cypherutil"
)

// Relationship is one directed edge record. StartMatch and EndMatch hold
// the merge-key values identifying the start and end nodes; Props holds
// the edge payload, including any fields declared as edge keys.
type Relationship struct {
	StartMatch Properties
	EndMatch   Properties
	Props      Properties
}

// RelationshipSet is a named, deduplicated collection of directed edges
// between two node specs. An edge is uniquely identified by its start
// match values, end match values, relationship type, and the values of
// the declared edge-key fields, if any.
type RelationshipSet struct {
	Type     string
	Start    NodeSpec
	End      NodeSpec
	EdgeKeys []string

	policy  DedupPolicy
	stage   Stage
	records []Relationship
	deduped *orderedmap.OrderedMap[string, Relationship]
}

// NewRelationshipSet creates an empty RelationshipSet of the given type
// between start and end node specs. Optional edge-key fields participate
// in dedup identity for multi-edge scenarios.
func NewRelationshipSet(relType string, start, end NodeSpec, edgeKeys ...string) (*RelationshipSet, error) {
	if !cypherutil.IsValidIdentifier(relType) {
		return nil, fmt.Errorf("invalid relationship type %q", relType)
	}
	if start.Label == "" || len(start.MergeKeys) == 0 {
		return nil, fmt.Errorf("relationship set %s requires a start node spec with merge keys", relType)
	}
	if end.Label == "" || len(end.MergeKeys) == 0 {
		return nil, fmt.Errorf("relationship set %s requires an end node spec with merge keys", relType)
	}
	for _, k := range edgeKeys {
		if !cypherutil.IsValidIdentifier(k) {
			return nil, fmt.Errorf("invalid edge key field %q for type %s", k, relType)
		}
	}

	return &RelationshipSet{
		Type:     relType,
		Start:    start,
		End:      end,
		EdgeKeys: edgeKeys,
		policy:   PolicyOverwrite,
	}, nil
}

// SetDedupPolicy configures duplicate handling. Must be called before
// Deduplicate.
func (rs *RelationshipSet) SetDedupPolicy(policy DedupPolicy) {
	rs.policy = policy
}

// Name returns a human-readable identifier for logging.
func (rs *RelationshipSet) Name() string {
	return fmt.Sprintf("RelationshipSet(%s)-[%s]->(%s)", rs.Start.Label, rs.Type, rs.End.Label)
}

// Stage returns the set's current lifecycle stage.
func (rs *RelationshipSet) Stage() Stage {
	return rs.stage
}

// Add appends an edge record. It fails with a SchemaError when the start
// match, end match, or a declared edge-key field is incomplete, leaving
// the set untouched.
func (rs *RelationshipSet) Add(rel Relationship) error {
	if rs.stage != StageBuilding {
		return &StageError{SetName: rs.Name(), Op: "Add", Stage: rs.stage}
	}
	if field := missingKey(rel.StartMatch, rs.Start.MergeKeys); field != "" {
		return &SchemaError{SetName: rs.Name(), Field: "start." + field}
	}
	if field := missingKey(rel.EndMatch, rs.End.MergeKeys); field != "" {
		return &SchemaError{SetName: rs.Name(), Field: "end." + field}
	}
	if field := missingKey(rel.Props, rs.EdgeKeys); field != "" {
		return &SchemaError{SetName: rs.Name(), Field: field}
	}

	rs.records = append(rs.records, rel)
	return nil
}

// Len returns the edge count: raw while building, deduplicated after
// Deduplicate.
func (rs *RelationshipSet) Len() int {
	if rs.stage >= StageDeduplicated {
		return rs.deduped.Len()
	}
	return len(rs.records)
}

// identity builds the dedup key: start match, end match, and edge-key
// values, in declared order.
func (rs *RelationshipSet) identity(rel Relationship) string {
	key := keyString(rel.StartMatch, rs.Start.MergeKeys) +
		"\x1e" + keyString(rel.EndMatch, rs.End.MergeKeys)
	if len(rs.EdgeKeys) > 0 {
		key += "\x1e" + keyString(rel.Props, rs.EdgeKeys)
	}
	return key
}

// Deduplicate collapses edges with identical identity into one, with the
// same last-seen-wins, nil-never-overwrites policy as node sets applied
// to the edge properties. Freezes the key space.
func (rs *RelationshipSet) Deduplicate() error {
	if rs.stage != StageBuilding {
		return &StageError{SetName: rs.Name(), Op: "Deduplicate", Stage: rs.stage}
	}

	deduped := orderedmap.NewOrderedMap[string, Relationship]()
	for _, rel := range rs.records {
		key := rs.identity(rel)

		existing, ok := deduped.Get(key)
		if !ok {
			merged := Relationship{
				StartMatch: subMap(rel.StartMatch, rs.Start.MergeKeys),
				EndMatch:   subMap(rel.EndMatch, rs.End.MergeKeys),
				Props:      make(Properties, len(rel.Props)),
			}
			combine(merged.Props, rel.Props)
			deduped.Set(key, merged)
			continue
		}
		if rs.policy == PolicyReject {
			return &DuplicateKeyError{SetName: rs.Name(), Key: key}
		}
		combine(existing.Props, rel.Props)
	}

	rs.deduped = deduped
	rs.records = nil
	rs.stage = StageDeduplicated
	return nil
}

// Relationships returns the deduplicated edges in insertion order.
func (rs *RelationshipSet) Relationships() []Relationship {
	if rs.stage < StageDeduplicated {
		out := make([]Relationship, len(rs.records))
		copy(out, rs.records)
		return out
	}

	out := make([]Relationship, 0, rs.deduped.Len())
	for el := rs.deduped.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// CreateIndex ensures indexes exist for the start and end node label and
// merge-key combinations. Edges are matched through node lookups during
// merge, so no edge index is created. Requests are idempotent and may
// overlap with the referenced node sets' own index creation.
func (rs *RelationshipSet) CreateIndex(ctx context.Context, exec Executor) error {
	if rs.stage != StageDeduplicated {
		return &StageError{SetName: rs.Name(), Op: "CreateIndex", Stage: rs.stage}
	}

	for _, spec := range []NodeSpec{rs.Start, rs.End} {
		if _, err := exec.Run(ctx, NodeIndexStatement(spec.Label, spec.MergeKeys), nil); err != nil {
			return fmt.Errorf("failed to create index for %s: %w", rs.Name(), err)
		}
	}

	rs.stage = StageIndexed
	return nil
}

// Merge upserts every deduplicated edge into the store: match start and
// end nodes independently by their merge keys, match-or-create the edge
// by type and edge-key fields, then overwrite the edge properties. The
// node sets this set references must be merged first; edges whose nodes
// are absent surface as a DanglingReferenceError for the failing chunk.
func (rs *RelationshipSet) Merge(ctx context.Context, exec Executor, batchSize int) error {
	if rs.stage != StageIndexed {
		return &StageError{SetName: rs.Name(), Op: "Merge", Stage: rs.stage}
	}

	rows := make([]map[string]interface{}, 0, rs.deduped.Len())
	for el := rs.deduped.Front(); el != nil; el = el.Next() {
		rel := el.Value
		row := map[string]interface{}{
			"start": map[string]interface{}(rel.StartMatch),
			"end":   map[string]interface{}(rel.EndMatch),
			"props": wireProps(rel.Props),
		}
		if len(rs.EdgeKeys) > 0 {
			row["key"] = subMap(rel.Props, rs.EdgeKeys)
		}
		rows = append(rows, row)
	}

	statement := relationshipMergeStatement(rs.Type, rs.Start, rs.End, rs.EdgeKeys)
	for _, batch := range chunk(rows, batchSize) {
		params := map[string]interface{}{"batch": batch}
		result, err := exec.Run(ctx, statement, params)
		if err != nil {
			return fmt.Errorf("failed to merge %s: %w", rs.Name(), err)
		}
		// The MATCH clauses bind zero rows for nodes absent from the
		// store, so a short count means dangling references.
		if result.Count >= 0 && result.Count < int64(len(batch)) {
			return &DanglingReferenceError{
				RelType: rs.Type,
				Missing: int64(len(batch)) - result.Count,
			}
		}
	}

	rs.stage = StageMerged
	return nil
}
