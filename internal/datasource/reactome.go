package datasource

import (
	"context"
	"fmt"
	"path/filepath"
)

// ReactomeName is the registry identifier for the Reactome datasource.
const ReactomeName = "reactome"

// Files parsers read from a Reactome instance.
const (
	ReactomePathwaysFile = "ReactomePathways.txt"
	ReactomeMappingFile  = "NCBI2Reactome.txt"
)

const defaultReactomeBaseURL = "https://reactome.org/download/current"

// Reactome downloads the Reactome pathway list and the NCBI gene to
// pathway mapping. The "current" release is rolling, so versions are
// date stamps.
type Reactome struct {
	base
	baseURL string
}

// NewReactome creates the Reactome datasource rooted at rootDir.
func NewReactome(rootDir, baseURL string) *Reactome {
	if baseURL == "" {
		baseURL = defaultReactomeBaseURL
	}
	return &Reactome{
		base:    base{name: ReactomeName, rootDir: rootDir},
		baseURL: baseURL,
	}
}

// Name implements Datasource.
func (d *Reactome) Name() string { return d.name }

// LatestLocalInstance implements Datasource.
func (d *Reactome) LatestLocalInstance() (*LocalInstance, error) {
	return d.latestLocalInstance()
}

// LatestRemoteVersion implements Datasource.
func (d *Reactome) LatestRemoteVersion(ctx context.Context) (string, error) {
	return dateVersion(), nil
}

// Download implements Datasource.
func (d *Reactome) Download(ctx context.Context, version string, opts Options) (*LocalInstance, error) {
	if version == "" {
		version = dateVersion()
	}

	staging, final, err := d.prepareInstance(version)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{ReactomePathwaysFile, ReactomeMappingFile} {
		url := joinURL(d.baseURL, name)
		if err := fetchFile(ctx, url, filepath.Join(staging, name), false); err != nil {
			return nil, fmt.Errorf("reactome download failed: %w", err)
		}
	}

	return d.commitInstance(staging, final)
}
