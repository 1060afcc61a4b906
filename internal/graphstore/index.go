package graphstore

import (
	"context"
	"fmt"

	"github.com/biograph/biograph/internal/graphset"
)

// IndexManager is a stateless helper that ensures merge-key indexes exist
// before merging, so match-or-create lookups are not full scans. Requests
// are create-if-absent: callers may overlap across field sets and races
// between concurrent creators are resolved by the store, not here.
type IndexManager struct {
	exec graphset.Executor
}

// NewIndexManager creates an IndexManager issuing requests through the
// given executor.
func NewIndexManager(exec graphset.Executor) *IndexManager {
	return &IndexManager{exec: exec}
}

// EnsureNodeIndex issues a create-if-absent index request for one
// (label, field set) descriptor.
func (im *IndexManager) EnsureNodeIndex(ctx context.Context, label string, keys []string) error {
	if _, err := im.exec.Run(ctx, graphset.NodeIndexStatement(label, keys), nil); err != nil {
		return fmt.Errorf("failed to ensure index on %s: %w", label, err)
	}
	return nil
}

// EnsureContainerIndexes creates indexes for every node and relationship
// set in the container. Relationship sets get indexes for the start and
// end node specs they match through.
func (im *IndexManager) EnsureContainerIndexes(ctx context.Context, c *graphset.Container) error {
	return im.EnsureSetIndexes(ctx, c.NodeSets, c.RelationshipSets)
}

// EnsureSetIndexes creates indexes for the given sets in order, node sets
// first.
func (im *IndexManager) EnsureSetIndexes(ctx context.Context, nodeSets []*graphset.NodeSet, relSets []*graphset.RelationshipSet) error {
	for _, ns := range nodeSets {
		if err := ns.CreateIndex(ctx, im.exec); err != nil {
			return err
		}
	}
	for _, rs := range relSets {
		if err := rs.CreateIndex(ctx, im.exec); err != nil {
			return err
		}
	}
	return nil
}
