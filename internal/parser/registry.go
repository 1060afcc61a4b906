package parser

import (
	"fmt"

	"github.com/biograph/biograph/internal/config"
	"github.com/biograph/biograph/internal/datasource"
	"github.com/biograph/biograph/internal/logger"
)

// ForInstance returns the parsers that consume the given datasource
// instance. One instance can feed several parsers; Reactome yields the
// pathway list parser and the gene mapping parser.
func ForInstance(instance *datasource.LocalInstance, src config.SourceConfig, log *logger.Logger) ([]Parser, error) {
	switch instance.Source {
	case datasource.NcbiGeneName:
		return []Parser{NewNcbiGeneParser(instance, src.TaxIDs, log)}, nil
	case datasource.ReactomeName:
		return []Parser{
			NewReactomePathwayParser(instance, "", log),
			NewReactomeMappingParser(instance, "", log),
		}, nil
	case datasource.GtexName:
		return []Parser{NewGtexTissueParser(instance, log)}, nil
	default:
		return nil, fmt.Errorf("no parser registered for datasource %q", instance.Source)
	}
}
