package datasource

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biograph/biograph/internal/config"
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestLatestLocalInstance(t *testing.T) {
	root := t.TempDir()
	b := &base{name: "ncbigene", rootDir: root}

	// No source directory yet.
	instance, err := b.latestLocalInstance()
	require.NoError(t, err)
	assert.Nil(t, instance)

	for _, version := range []string{"2026-01-03", "2026-02-14", "2026-01-20"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "ncbigene", version), 0755))
	}
	// Stray files and staging directories are not instances.
	require.NoError(t, os.WriteFile(filepath.Join(root, "ncbigene", "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ncbigene", "2026-03-01.partial"), 0755))

	instance, err = b.latestLocalInstance()
	require.NoError(t, err)
	require.NotNil(t, instance)
	assert.Equal(t, "2026-02-14", instance.Version)
	assert.Equal(t, "ncbigene", instance.Source)
	assert.True(t, instance.Exists())
}

func TestNcbiGeneDownloadDecompresses(t *testing.T) {
	content := "9606\t7157\tTP53\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gene_info.gz" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(gzipBytes(t, content))
	}))
	defer server.Close()

	root := t.TempDir()
	src := NewNcbiGene(root, server.URL)

	instance, err := src.Download(context.Background(), "2026-02-14", Options{})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-14", instance.Version)

	data, err := os.ReadFile(instance.File(NcbiGeneFile))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	// No staging leftovers.
	_, err = os.Stat(instance.Dir + ".partial")
	assert.True(t, os.IsNotExist(err))

	latest, err := src.LatestLocalInstance()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, instance.Dir, latest.Dir)
}

func TestReactomeDownloadFetchesBothFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/" + ReactomePathwaysFile:
			_, _ = w.Write([]byte("R-HSA-1\tPathway One\tHomo sapiens\n"))
		case "/" + ReactomeMappingFile:
			_, _ = w.Write([]byte("7157\tR-HSA-1\turl\tPathway One\tTAS\tHomo sapiens\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewReactome(t.TempDir(), server.URL)
	instance, err := src.Download(context.Background(), "2026-02-14", Options{})
	require.NoError(t, err)

	for _, name := range []string{ReactomePathwaysFile, ReactomeMappingFile} {
		info, err := os.Stat(instance.File(name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestDownloadFailureLeavesNoInstance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	src := NewNcbiGene(t.TempDir(), server.URL)
	_, err := src.Download(context.Background(), "2026-02-14", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")

	latest, err := src.LatestLocalInstance()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDownloadOverwritesExistingVersion(t *testing.T) {
	content := "second\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(gzipBytes(t, content))
	}))
	defer server.Close()

	src := NewNcbiGene(t.TempDir(), server.URL)

	_, err := src.Download(context.Background(), "2026-02-14", Options{})
	require.NoError(t, err)
	instance, err := src.Download(context.Background(), "2026-02-14", Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(instance.File(NcbiGeneFile))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestGtexVersionIsFixed(t *testing.T) {
	src := NewGtex(t.TempDir(), "")
	version, err := src.LatestRemoteVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v8", version)
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base     string
		path     string
		expected string
	}{
		{"https://example.org/data", "file.gz", "https://example.org/data/file.gz"},
		{"https://example.org/data/", "file.gz", "https://example.org/data/file.gz"},
		{"https://example.org/data/", "/file.gz", "https://example.org/data/file.gz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, joinURL(tt.base, tt.path))
	}
}

func TestDefaultSources(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RootDir = t.TempDir()

	sources := DefaultSources(cfg)
	require.Len(t, sources, 3)
	assert.Equal(t, NcbiGeneName, sources[0].Name())
	assert.Equal(t, ReactomeName, sources[1].Name())
	assert.Equal(t, GtexName, sources[2].Name())

	found, err := Find(sources, ReactomeName)
	require.NoError(t, err)
	assert.Equal(t, ReactomeName, found.Name())

	_, err = Find(sources, "nope")
	assert.Error(t, err)
}

func TestDefaultSourcesSkipsDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.Sources = map[string]config.SourceConfig{
		GtexName: {Enabled: false},
	}

	sources := DefaultSources(cfg)
	require.Len(t, sources, 2)
	for _, src := range sources {
		assert.NotEqual(t, GtexName, src.Name())
	}
}
