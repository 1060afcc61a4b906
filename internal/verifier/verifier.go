// Package verifier checks merge results against the graph store.
package verifier

import (
	"context"
	"fmt"

	"github.com/biograph/biograph/internal/graphset"
	"github.com/biograph/biograph/internal/logger"
)

// Counter is the store surface verification needs.
type Counter interface {
	CountNodes(ctx context.Context, label string) (int64, error)
	CountRelationships(ctx context.Context, relType string) (int64, error)
}

// Mismatch is one set whose store count fell short of the records
// merged.
type Mismatch struct {
	SetName  string
	Expected int64
	Actual   int64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected at least %d, store has %d", m.SetName, m.Expected, m.Actual)
}

// Verifier compares deduplicated set sizes against store counts after a
// merge. The store may hold entities from earlier runs and other
// sources, so counts are lower bounds: every set's records must be
// present, anything beyond them is fine.
type Verifier struct {
	counter Counter
	log     *logger.Logger
}

// New creates a Verifier over the given store.
func New(counter Counter, log *logger.Logger) *Verifier {
	return &Verifier{counter: counter, log: log}
}

// VerifyContainers checks every merged set in the given containers and
// returns the mismatches found. A store error aborts verification; a
// mismatch does not.
func (v *Verifier) VerifyContainers(ctx context.Context, containers []*graphset.Container) ([]Mismatch, error) {
	var mismatches []Mismatch

	for _, c := range containers {
		for _, ns := range c.NodeSets {
			actual, err := v.counter.CountNodes(ctx, ns.Label)
			if err != nil {
				return nil, fmt.Errorf("failed to count %s nodes: %w", ns.Label, err)
			}
			mismatches = v.check(mismatches, ns.Name(), int64(ns.Len()), actual)
		}
		for _, rs := range c.RelationshipSets {
			actual, err := v.counter.CountRelationships(ctx, rs.Type)
			if err != nil {
				return nil, fmt.Errorf("failed to count %s relationships: %w", rs.Type, err)
			}
			mismatches = v.check(mismatches, rs.Name(), int64(rs.Len()), actual)
		}
	}

	return mismatches, nil
}

func (v *Verifier) check(mismatches []Mismatch, name string, expected, actual int64) []Mismatch {
	if actual >= expected {
		v.log.WithSet(name).Debugw("Count verified", "expected", expected, "actual", actual)
		return mismatches
	}
	v.log.WithSet(name).Warnw("Count verification failed", "expected", expected, "actual", actual)
	return append(mismatches, Mismatch{SetName: name, Expected: expected, Actual: actual})
}
