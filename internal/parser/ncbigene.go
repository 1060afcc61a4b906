package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/biograph/biograph/internal/datasource"
	"github.com/biograph/biograph/internal/graphset"
	"github.com/biograph/biograph/internal/logger"
)

// gene_info column positions.
const (
	geneColTaxID       = 0
	geneColGeneID      = 1
	geneColSymbol      = 2
	geneColSynonyms    = 4
	geneColChromosome  = 6
	geneColDescription = 8
	geneColTypeOfGene  = 9
)

// NcbiGeneParser builds Gene nodes from the NCBI gene_info dump.
type NcbiGeneParser struct {
	instance  *datasource.LocalInstance
	taxIDs    map[string]bool
	log       *logger.Logger
	container *graphset.Container
}

// NewNcbiGeneParser creates a parser over the given local instance.
// taxIDs restricts output to the listed organisms; empty keeps all.
func NewNcbiGeneParser(instance *datasource.LocalInstance, taxIDs []string, log *logger.Logger) *NcbiGeneParser {
	filter := make(map[string]bool, len(taxIDs))
	for _, id := range taxIDs {
		filter[id] = true
	}
	return &NcbiGeneParser{
		instance: instance,
		taxIDs:   filter,
		log:      log.WithSource(datasource.NcbiGeneName),
	}
}

// Name implements Parser.
func (p *NcbiGeneParser) Name() string { return "ncbigene" }

// Container implements Parser.
func (p *NcbiGeneParser) Container() *graphset.Container { return p.container }

// Run implements Parser. Rows failing the taxid filter are skipped;
// rows without a gene id are counted and skipped rather than aborting
// the whole dump.
func (p *NcbiGeneParser) Run(ctx context.Context) error {
	genes, err := graphset.NewNodeSet(GeneSpec.Label, GeneSpec.MergeKeys)
	if err != nil {
		return err
	}

	var kept, skipped int
	path := p.instance.File(datasource.NcbiGeneFile)
	err = eachLine(ctx, path, func(line string) error {
		if strings.HasPrefix(line, "#") {
			return nil
		}
		cols := columns(line)

		taxID := cell(cols, geneColTaxID)
		if len(p.taxIDs) > 0 && !p.taxIDs[taxID] {
			return nil
		}
		geneID := cell(cols, geneColGeneID)
		if geneID == "" {
			skipped++
			return nil
		}

		rec := graphset.Properties{
			"gene_id": geneID,
			"tax_id":  taxID,
		}
		setIfPresent(rec, "symbol", cell(cols, geneColSymbol))
		setIfPresent(rec, "chromosome", cell(cols, geneColChromosome))
		setIfPresent(rec, "description", cell(cols, geneColDescription))
		setIfPresent(rec, "type_of_gene", cell(cols, geneColTypeOfGene))
		if synonyms := splitList(cell(cols, geneColSynonyms)); len(synonyms) > 0 {
			rec["synonyms"] = synonyms
		}

		if err := genes.Add(rec); err != nil {
			return fmt.Errorf("gene row rejected: %w", err)
		}
		kept++
		return nil
	})
	if err != nil {
		return err
	}

	p.log.Infow("Parsed gene records", "kept", kept, "skipped", skipped)

	p.container = graphset.NewContainer()
	p.container.AddNodeSet(genes)
	return nil
}

// setIfPresent stores non-empty values only; "-" is the dump's null.
func setIfPresent(rec graphset.Properties, field, value string) {
	if value != "" && value != "-" {
		rec[field] = value
	}
}

// splitList splits a pipe-delimited dump column into its values.
func splitList(value string) []interface{} {
	if value == "" || value == "-" {
		return nil
	}
	parts := strings.Split(value, "|")
	out := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
