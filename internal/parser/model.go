package parser

import "github.com/biograph/biograph/internal/graphset"

// Node specs shared across parsers. The mapping parser references
// genes and pathways produced by other parsers, so the label and key
// definitions live in one place.
var (
	GeneSpec           = graphset.NodeSpec{Label: "Gene", MergeKeys: []string{"gene_id"}}
	PathwaySpec        = graphset.NodeSpec{Label: "Pathway", MergeKeys: []string{"pathway_id"}}
	TissueSpec         = graphset.NodeSpec{Label: "Tissue", MergeKeys: []string{"name"}}
	DetailedTissueSpec = graphset.NodeSpec{Label: "DetailedTissue", MergeKeys: []string{"name"}}
)

// Relationship types produced by parsers.
const (
	ParticipatesInType = "PARTICIPATES_IN"
	ParentType         = "PARENT"
)
