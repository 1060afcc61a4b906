package graphset

import "fmt"

// SchemaError is returned when a record is missing a declared merge-key
// field. The failed Add leaves the set's prior contents untouched.
type SchemaError struct {
	SetName string
	Field   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("record for %s is missing merge key field %q", e.SetName, e.Field)
}

// DuplicateKeyError is returned during deduplication when the set's policy
// is PolicyReject and two records share identical merge-key values.
type DuplicateKeyError struct {
	SetName string
	Key     string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate merge key %q in %s", e.Key, e.SetName)
}

// StageError is returned when an operation is attempted out of order,
// e.g. Add after Deduplicate or Merge before CreateIndex.
type StageError struct {
	SetName string
	Op      string
	Stage   Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s not allowed for %s in stage %s", e.Op, e.SetName, e.Stage)
}

// DanglingReferenceError is returned when a relationship merge references
// start or end nodes that are absent from the store. The node sets the
// relationship depends on must be merged first.
type DanglingReferenceError struct {
	RelType string
	Missing int64
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%d relationships of type %s reference nodes absent from the store (merge the referenced node sets first)", e.Missing, e.RelType)
}
