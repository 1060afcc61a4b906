package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// stagingSuffix marks in-progress download directories.
const stagingSuffix = ".partial"

// LocalInstance is one downloaded version of a datasource on disk.
type LocalInstance struct {
	Source  string
	Version string
	Dir     string
}

// File returns the path of a file inside the instance directory.
func (i *LocalInstance) File(name string) string {
	return filepath.Join(i.Dir, name)
}

// Exists reports whether the instance directory is present.
func (i *LocalInstance) Exists() bool {
	info, err := os.Stat(i.Dir)
	return err == nil && info.IsDir()
}

// base carries the directory layout shared by all datasources.
type base struct {
	name    string
	rootDir string
}

// sourceDir returns <root>/<name>.
func (b *base) sourceDir() string {
	return filepath.Join(b.rootDir, b.name)
}

// instanceDir returns <root>/<name>/<version>.
func (b *base) instanceDir(version string) string {
	return filepath.Join(b.sourceDir(), version)
}

// latestLocalInstance scans the source directory for version directories
// and returns the lexicographically newest one. Version identifiers are
// date-stamped or zero-padded, so lexicographic order is version order.
func (b *base) latestLocalInstance() (*LocalInstance, error) {
	entries, err := os.ReadDir(b.sourceDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan %s: %w", b.sourceDir(), err)
	}

	var versions []string
	for _, entry := range entries {
		// Staging directories from interrupted downloads are not instances.
		if entry.IsDir() && !strings.HasSuffix(entry.Name(), stagingSuffix) {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return nil, nil
	}

	sort.Strings(versions)
	newest := versions[len(versions)-1]

	return &LocalInstance{
		Source:  b.name,
		Version: newest,
		Dir:     b.instanceDir(newest),
	}, nil
}

// prepareInstance creates the directory for a new download. Downloads go
// into a staging directory first and are renamed into place once complete,
// so latestLocalInstance never observes a half-written instance.
func (b *base) prepareInstance(version string) (staging string, final string, err error) {
	final = b.instanceDir(version)
	staging = final + stagingSuffix

	if err := os.RemoveAll(staging); err != nil {
		return "", "", fmt.Errorf("failed to clear staging directory: %w", err)
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return staging, final, nil
}

// commitInstance moves a completed staging directory into place.
func (b *base) commitInstance(staging, final string) (*LocalInstance, error) {
	if err := os.RemoveAll(final); err != nil {
		return nil, fmt.Errorf("failed to clear instance directory: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		return nil, fmt.Errorf("failed to commit instance: %w", err)
	}
	return &LocalInstance{
		Source:  b.name,
		Version: filepath.Base(final),
		Dir:     final,
	}, nil
}
