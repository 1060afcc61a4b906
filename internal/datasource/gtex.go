package datasource

import (
	"context"
	"fmt"
	"path/filepath"
)

// GtexName is the registry identifier for the GTEx datasource.
const GtexName = "gtex"

// GtexSampleFile is the sample annotation file parsers read from a GTEx
// instance.
const GtexSampleFile = "GTEx_Analysis_v8_Annotations_SampleAttributesDS.txt"

const (
	defaultGtexBaseURL = "https://storage.googleapis.com/gtex_analysis_v8/annotations"
	gtexVersion        = "v8"
)

// Gtex downloads GTEx sample annotations. GTEx publishes numbered
// analysis releases, so the version is fixed per release.
type Gtex struct {
	base
	baseURL string
}

// NewGtex creates the GTEx datasource rooted at rootDir.
func NewGtex(rootDir, baseURL string) *Gtex {
	if baseURL == "" {
		baseURL = defaultGtexBaseURL
	}
	return &Gtex{
		base:    base{name: GtexName, rootDir: rootDir},
		baseURL: baseURL,
	}
}

// Name implements Datasource.
func (d *Gtex) Name() string { return d.name }

// LatestLocalInstance implements Datasource.
func (d *Gtex) LatestLocalInstance() (*LocalInstance, error) {
	return d.latestLocalInstance()
}

// LatestRemoteVersion implements Datasource.
func (d *Gtex) LatestRemoteVersion(ctx context.Context) (string, error) {
	return gtexVersion, nil
}

// Download implements Datasource.
func (d *Gtex) Download(ctx context.Context, version string, opts Options) (*LocalInstance, error) {
	if version == "" {
		version = gtexVersion
	}

	staging, final, err := d.prepareInstance(version)
	if err != nil {
		return nil, err
	}

	url := joinURL(d.baseURL, GtexSampleFile)
	if err := fetchFile(ctx, url, filepath.Join(staging, GtexSampleFile), false); err != nil {
		return nil, fmt.Errorf("gtex download failed: %w", err)
	}

	return d.commitInstance(staging, final)
}
