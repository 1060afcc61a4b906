// Package datasource manages download and versioning of biomedical
// reference datasets. Each datasource keeps versioned instances under
// <root>/<name>/<version>/; parsers consume file paths from the latest
// local instance.
package datasource

import (
	"context"
)

// Options carries per-download settings.
type Options struct {
	// TaxIDs restricts organism-specific downloads, e.g. "9606" for human.
	// Sources that ship one global file ignore it.
	TaxIDs []string
}

// Datasource is the adapter contract every dataset implements.
type Datasource interface {
	// Name returns the datasource identifier used in configuration and
	// directory layout.
	Name() string

	// LatestLocalInstance returns the newest downloaded instance, or nil
	// when nothing has been downloaded yet.
	LatestLocalInstance() (*LocalInstance, error)

	// LatestRemoteVersion determines the version identifier a download
	// started now would be stored under.
	LatestRemoteVersion(ctx context.Context) (string, error)

	// Download fetches the given version into the local layout and
	// returns its instance.
	Download(ctx context.Context, version string, opts Options) (*LocalInstance, error)
}
