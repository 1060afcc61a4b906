// Package graphset contains the in-memory node and relationship containers
// that parsers produce and the merge logic that upserts them into the
// graph store keyed on declared merge-key fields.
package graphset

import (
	"fmt"
	"strings"
)

// Properties is one record's property map. Values are scalars: string,
// integer, float, bool, or nil (absent fields are equivalent to nil).
type Properties map[string]interface{}

// Stage tracks a set's position in its lifecycle. Sets never transition
// backward; a fresh Container is required for a new run.
type Stage int

const (
	StageBuilding Stage = iota
	StageDeduplicated
	StageIndexed
	StageMerged
)

func (s Stage) String() string {
	switch s {
	case StageBuilding:
		return "building"
	case StageDeduplicated:
		return "deduplicated"
	case StageIndexed:
		return "indexed"
	case StageMerged:
		return "merged"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// DedupPolicy controls how records with identical merge-key values are
// combined during deduplication.
type DedupPolicy int

const (
	// PolicyOverwrite combines duplicates field by field: a later record's
	// non-nil values overwrite earlier ones, nil never overwrites non-nil.
	PolicyOverwrite DedupPolicy = iota
	// PolicyReject fails deduplication with a DuplicateKeyError on the
	// first duplicate merge key.
	PolicyReject
)

// ParsePolicy converts a configuration string to a DedupPolicy.
func ParsePolicy(s string) (DedupPolicy, error) {
	switch s {
	case "", "overwrite":
		return PolicyOverwrite, nil
	case "reject":
		return PolicyReject, nil
	default:
		return PolicyOverwrite, fmt.Errorf("unknown dedup policy %q", s)
	}
}

// NodeSpec identifies a node set's label and merge-key schema. Relationship
// sets reference node sets through their specs rather than the sets
// themselves, so relationships can point at nodes merged by another parser.
type NodeSpec struct {
	Label     string
	MergeKeys []string
}

// keyString builds the deduplication identity for a record from its
// merge-key values, scanned in declared key order.
func keyString(rec Properties, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%v", rec[k])
	}
	return strings.Join(parts, "\x1f")
}

// missingKey returns the first declared key field that is absent or nil
// in the record, or "" when all key fields are present.
func missingKey(rec Properties, keys []string) string {
	for _, k := range keys {
		if v, ok := rec[k]; !ok || v == nil {
			return k
		}
	}
	return ""
}

// combine merges src into dst in place: non-nil values overwrite, nil
// values are kept only for fields dst does not know yet.
func combine(dst, src Properties) {
	for k, v := range src {
		if v == nil {
			if _, ok := dst[k]; !ok {
				dst[k] = nil
			}
			continue
		}
		dst[k] = v
	}
}

// wireProps returns the property map sent to the store for a record.
// Nil-valued fields are dropped: in Cypher a nil in `SET n += props`
// would delete the property, which breaks the nil-never-overwrites rule
// across repeated runs.
func wireProps(rec Properties) map[string]interface{} {
	props := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		if v == nil {
			continue
		}
		props[k] = v
	}
	return props
}

// subMap extracts the named fields from a record.
func subMap(rec Properties, keys []string) map[string]interface{} {
	sub := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		sub[k] = rec[k]
	}
	return sub
}
