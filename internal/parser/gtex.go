package parser

import (
	"context"
	"fmt"

	"github.com/biograph/biograph/internal/datasource"
	"github.com/biograph/biograph/internal/graphset"
	"github.com/biograph/biograph/internal/logger"
)

// GtexTissueParser builds the tissue hierarchy from GTEx sample
// annotations: Tissue nodes (SMTS), DetailedTissue nodes (SMTSD), and
// PARENT relationships between them. The file repeats tissue names per
// sample; deduplication collapses them.
type GtexTissueParser struct {
	instance  *datasource.LocalInstance
	log       *logger.Logger
	container *graphset.Container
}

// NewGtexTissueParser creates a parser over the given local instance.
func NewGtexTissueParser(instance *datasource.LocalInstance, log *logger.Logger) *GtexTissueParser {
	return &GtexTissueParser{
		instance: instance,
		log:      log.WithSource(datasource.GtexName),
	}
}

// Name implements Parser.
func (p *GtexTissueParser) Name() string { return "gtex-tissues" }

// Container implements Parser.
func (p *GtexTissueParser) Container() *graphset.Container { return p.container }

// Run implements Parser. The annotation file is header-addressed, so
// column positions are resolved from the first row rather than fixed.
func (p *GtexTissueParser) Run(ctx context.Context) error {
	tissues, err := graphset.NewNodeSet(TissueSpec.Label, TissueSpec.MergeKeys)
	if err != nil {
		return err
	}
	detailed, err := graphset.NewNodeSet(DetailedTissueSpec.Label, DetailedTissueSpec.MergeKeys)
	if err != nil {
		return err
	}
	parents, err := graphset.NewRelationshipSet(ParentType, TissueSpec, DetailedTissueSpec)
	if err != nil {
		return err
	}

	tissueCol, detailedCol := -1, -1
	var rows int
	path := p.instance.File(datasource.GtexSampleFile)
	err = eachLine(ctx, path, func(line string) error {
		cols := columns(line)
		if tissueCol < 0 {
			for i, name := range cols {
				switch name {
				case "SMTS":
					tissueCol = i
				case "SMTSD":
					detailedCol = i
				}
			}
			if tissueCol < 0 || detailedCol < 0 {
				return fmt.Errorf("sample annotation header lacks SMTS/SMTSD columns")
			}
			return nil
		}

		tissue := cell(cols, tissueCol)
		detail := cell(cols, detailedCol)
		if tissue == "" || detail == "" {
			return nil
		}

		if err := tissues.Add(graphset.Properties{"name": tissue}); err != nil {
			return err
		}
		if err := detailed.Add(graphset.Properties{"name": detail}); err != nil {
			return err
		}
		rel := graphset.Relationship{
			StartMatch: graphset.Properties{"name": tissue},
			EndMatch:   graphset.Properties{"name": detail},
		}
		if err := parents.Add(rel); err != nil {
			return err
		}
		rows++
		return nil
	})
	if err != nil {
		return err
	}

	p.log.Infow("Parsed tissue annotations", "rows", rows)

	p.container = graphset.NewContainer()
	p.container.AddNodeSet(tissues)
	p.container.AddNodeSet(detailed)
	p.container.AddRelationshipSet(parents)
	return nil
}
