package datasource

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// httpClient is shared by all datasources. Large dumps take a while, so
// the timeout is generous; cancellation runs through the request context.
var httpClient = &http.Client{
	Timeout: 30 * time.Minute,
}

// fetchFile downloads url into destPath. Files ending in .gz are
// decompressed on the fly when decompress is set. The file is written to
// a temporary name and renamed once complete.
func fetchFile(ctx context.Context, url, destPath string, decompress bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download of %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed: unexpected status %s", url, resp.Status)
	}

	var reader io.Reader = resp.Body
	if decompress && strings.HasSuffix(url, ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to open gzip stream from %s: %w", url, err)
		}
		defer gz.Close()
		reader = gz
	}

	tmpPath := destPath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmpPath, err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", destPath, err)
	}
	return nil
}

// joinURL concatenates a base URL and a path without doubling slashes.
func joinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// dateVersion is the version identifier for sources published as rolling
// daily dumps: the UTC date a download started.
func dateVersion() string {
	return time.Now().UTC().Format("2006-01-02")
}
