package datasource

import (
	"fmt"

	"github.com/biograph/biograph/internal/config"
)

// DefaultSources constructs every known datasource from configuration,
// in a stable order. Disabled sources are skipped.
func DefaultSources(cfg *config.Config) []Datasource {
	var sources []Datasource

	if cfg.SourceEnabled(NcbiGeneName) {
		src := cfg.GetSource(NcbiGeneName)
		sources = append(sources, NewNcbiGene(cfg.RootDir, src.BaseURL))
	}
	if cfg.SourceEnabled(ReactomeName) {
		src := cfg.GetSource(ReactomeName)
		sources = append(sources, NewReactome(cfg.RootDir, src.BaseURL))
	}
	if cfg.SourceEnabled(GtexName) {
		src := cfg.GetSource(GtexName)
		sources = append(sources, NewGtex(cfg.RootDir, src.BaseURL))
	}

	return sources
}

// Find returns the datasource with the given name from a list.
func Find(sources []Datasource, name string) (Datasource, error) {
	for _, src := range sources {
		if src.Name() == name {
			return src, nil
		}
	}
	return nil, fmt.Errorf("unknown datasource %q", name)
}
