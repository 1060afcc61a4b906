// Package parser turns downloaded datasource files into node and
// relationship sets. Each parser consumes the files of one local
// datasource instance and fills a single container; parsers never talk
// to the graph store.
package parser

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/biograph/biograph/internal/graphset"
)

// Parser is the contract every datasource parser implements. Run must
// be called exactly once; Container is valid after Run returned nil.
type Parser interface {
	// Name returns the parser identifier for logging and stats.
	Name() string

	// Run reads the source files and builds the container.
	Run(ctx context.Context) error

	// Container returns the node and relationship sets built by Run.
	Container() *graphset.Container
}

// scanLimit caps line length for TSV scanning. Reference dumps carry
// long synonym and xref columns that exceed bufio's default.
const scanLimit = 4 * 1024 * 1024

// eachLine streams a file line by line, skipping blank lines, and
// checks ctx between lines so huge dumps stay cancellable.
func eachLine(ctx context.Context, path string, fn func(line string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), scanLimit)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// columns splits a TSV line. Empty cells stay empty strings.
func columns(line string) []string {
	return strings.Split(line, "\t")
}

// cell returns the trimmed column at index i, or "" when the row is
// short.
func cell(cols []string, i int) string {
	if i < 0 || i >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[i])
}
