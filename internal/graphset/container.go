package graphset

// Container aggregates the node and relationship sets produced by one
// parser run. It is owned exclusively by that run and consumed exactly
// once by index creation and merging; the graph store is the only
// persistent state.
type Container struct {
	NodeSets         []*NodeSet
	RelationshipSets []*RelationshipSet
}

// NewContainer creates an empty Container.
func NewContainer() *Container {
	return &Container{}
}

// AddNodeSet appends a node set to the container.
func (c *Container) AddNodeSet(ns *NodeSet) {
	c.NodeSets = append(c.NodeSets, ns)
}

// AddRelationshipSet appends a relationship set to the container.
func (c *Container) AddRelationshipSet(rs *RelationshipSet) {
	c.RelationshipSets = append(c.RelationshipSets, rs)
}

// Deduplicate collapses every set in the container.
func (c *Container) Deduplicate() error {
	for _, ns := range c.NodeSets {
		if err := ns.Deduplicate(); err != nil {
			return err
		}
	}
	for _, rs := range c.RelationshipSets {
		if err := rs.Deduplicate(); err != nil {
			return err
		}
	}
	return nil
}

// NodeCount returns the total record count across all node sets.
func (c *Container) NodeCount() int {
	var total int
	for _, ns := range c.NodeSets {
		total += ns.Len()
	}
	return total
}

// RelationshipCount returns the total edge count across all relationship sets.
func (c *Container) RelationshipCount() int {
	var total int
	for _, rs := range c.RelationshipSets {
		total += rs.Len()
	}
	return total
}
