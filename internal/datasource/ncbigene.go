package datasource

import (
	"context"
	"fmt"
	"path/filepath"
)

// NcbiGeneName is the registry identifier for the NCBI Gene datasource.
const NcbiGeneName = "ncbigene"

// NcbiGeneFile is the file parsers read from an NCBI Gene instance.
const NcbiGeneFile = "gene_info.tsv"

const defaultNcbiGeneBaseURL = "https://ftp.ncbi.nlm.nih.gov/gene/DATA"

// NcbiGene downloads the NCBI Gene reference dump (gene_info). The dump
// is republished daily, so versions are date stamps.
type NcbiGene struct {
	base
	baseURL string
}

// NewNcbiGene creates the NCBI Gene datasource rooted at rootDir.
// baseURL overrides the download location for mirrors; empty uses the
// NCBI FTP site.
func NewNcbiGene(rootDir, baseURL string) *NcbiGene {
	if baseURL == "" {
		baseURL = defaultNcbiGeneBaseURL
	}
	return &NcbiGene{
		base:    base{name: NcbiGeneName, rootDir: rootDir},
		baseURL: baseURL,
	}
}

// Name implements Datasource.
func (d *NcbiGene) Name() string { return d.name }

// LatestLocalInstance implements Datasource.
func (d *NcbiGene) LatestLocalInstance() (*LocalInstance, error) {
	return d.latestLocalInstance()
}

// LatestRemoteVersion implements Datasource. The dump carries no version
// identifier of its own, so downloads are stamped with the current date.
func (d *NcbiGene) LatestRemoteVersion(ctx context.Context) (string, error) {
	return dateVersion(), nil
}

// Download implements Datasource. The gene_info dump is gzipped on the
// server and stored decompressed so parsers can stream it directly.
func (d *NcbiGene) Download(ctx context.Context, version string, opts Options) (*LocalInstance, error) {
	if version == "" {
		version = dateVersion()
	}

	staging, final, err := d.prepareInstance(version)
	if err != nil {
		return nil, err
	}

	url := joinURL(d.baseURL, "gene_info.gz")
	if err := fetchFile(ctx, url, filepath.Join(staging, NcbiGeneFile), true); err != nil {
		return nil, fmt.Errorf("ncbigene download failed: %w", err)
	}

	return d.commitInstance(staging, final)
}
