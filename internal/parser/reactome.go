package parser

import (
	"context"
	"fmt"

	"github.com/biograph/biograph/internal/datasource"
	"github.com/biograph/biograph/internal/graphset"
	"github.com/biograph/biograph/internal/logger"
)

// DefaultSpecies filters the Reactome dumps, which carry every
// organism in one file.
const DefaultSpecies = "Homo sapiens"

// ReactomePathwayParser builds Pathway nodes from the Reactome pathway
// list (pathway id, name, species).
type ReactomePathwayParser struct {
	instance  *datasource.LocalInstance
	species   string
	log       *logger.Logger
	container *graphset.Container
}

// NewReactomePathwayParser creates a parser over the given local
// instance. Empty species defaults to human.
func NewReactomePathwayParser(instance *datasource.LocalInstance, species string, log *logger.Logger) *ReactomePathwayParser {
	if species == "" {
		species = DefaultSpecies
	}
	return &ReactomePathwayParser{
		instance: instance,
		species:  species,
		log:      log.WithSource(datasource.ReactomeName),
	}
}

// Name implements Parser.
func (p *ReactomePathwayParser) Name() string { return "reactome-pathways" }

// Container implements Parser.
func (p *ReactomePathwayParser) Container() *graphset.Container { return p.container }

// Run implements Parser.
func (p *ReactomePathwayParser) Run(ctx context.Context) error {
	pathways, err := graphset.NewNodeSet(PathwaySpec.Label, PathwaySpec.MergeKeys)
	if err != nil {
		return err
	}

	var kept int
	path := p.instance.File(datasource.ReactomePathwaysFile)
	err = eachLine(ctx, path, func(line string) error {
		cols := columns(line)
		if cell(cols, 2) != p.species {
			return nil
		}
		pathwayID := cell(cols, 0)
		if pathwayID == "" {
			return nil
		}

		rec := graphset.Properties{
			"pathway_id": pathwayID,
			"species":    p.species,
		}
		setIfPresent(rec, "name", cell(cols, 1))

		if err := pathways.Add(rec); err != nil {
			return fmt.Errorf("pathway row rejected: %w", err)
		}
		kept++
		return nil
	})
	if err != nil {
		return err
	}

	p.log.Infow("Parsed pathway records", "kept", kept, "species", p.species)

	p.container = graphset.NewContainer()
	p.container.AddNodeSet(pathways)
	return nil
}

// NCBI2Reactome column positions.
const (
	mappingColGeneID    = 0
	mappingColPathwayID = 1
	mappingColName      = 3
	mappingColEvidence  = 4
	mappingColSpecies   = 5
)

// ReactomeMappingParser builds PARTICIPATES_IN relationships between
// Gene and Pathway nodes from the NCBI2Reactome mapping. The nodes it
// references come from other parsers; merge ordering resolves the
// dependency.
type ReactomeMappingParser struct {
	instance  *datasource.LocalInstance
	species   string
	log       *logger.Logger
	container *graphset.Container
}

// NewReactomeMappingParser creates a parser over the given local
// instance. Empty species defaults to human.
func NewReactomeMappingParser(instance *datasource.LocalInstance, species string, log *logger.Logger) *ReactomeMappingParser {
	if species == "" {
		species = DefaultSpecies
	}
	return &ReactomeMappingParser{
		instance: instance,
		species:  species,
		log:      log.WithSource(datasource.ReactomeName),
	}
}

// Name implements Parser.
func (p *ReactomeMappingParser) Name() string { return "reactome-mapping" }

// Container implements Parser.
func (p *ReactomeMappingParser) Container() *graphset.Container { return p.container }

// Run implements Parser.
func (p *ReactomeMappingParser) Run(ctx context.Context) error {
	participates, err := graphset.NewRelationshipSet(ParticipatesInType, GeneSpec, PathwaySpec)
	if err != nil {
		return err
	}

	var kept int
	path := p.instance.File(datasource.ReactomeMappingFile)
	err = eachLine(ctx, path, func(line string) error {
		cols := columns(line)
		if cell(cols, mappingColSpecies) != p.species {
			return nil
		}
		geneID := cell(cols, mappingColGeneID)
		pathwayID := cell(cols, mappingColPathwayID)
		if geneID == "" || pathwayID == "" {
			return nil
		}

		props := graphset.Properties{}
		setIfPresent(props, "evidence_code", cell(cols, mappingColEvidence))

		rel := graphset.Relationship{
			StartMatch: graphset.Properties{"gene_id": geneID},
			EndMatch:   graphset.Properties{"pathway_id": pathwayID},
			Props:      props,
		}
		if err := participates.Add(rel); err != nil {
			return fmt.Errorf("mapping row rejected: %w", err)
		}
		kept++
		return nil
	})
	if err != nil {
		return err
	}

	p.log.Infow("Parsed gene-pathway mappings", "kept", kept, "species", p.species)

	p.container = graphset.NewContainer()
	p.container.AddRelationshipSet(participates)
	return nil
}
