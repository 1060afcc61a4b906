package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biograph/biograph/internal/datasource"
	"github.com/biograph/biograph/internal/graphstore"
	"github.com/biograph/biograph/internal/render"
)

var validateCheckStore bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate checks the configuration file for errors.

Checks performed:
  - Configuration syntax and required fields
  - Neo4j URI scheme, run mode, batch size, dedup policy
  - Every configured source maps to a known datasource
  - Graph store connectivity (with --check-store)

Example:
  biograph validate --config biograph.yaml --check-store`,
	RunE: runValidateCmd,
}

func init() {
	validateCmd.Flags().BoolVar(&validateCheckStore, "check-store", false,
		"Also connect to the graph store and ping it")

	rootCmd.AddCommand(validateCmd)
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	fmt.Fprintf(outputWriter, "Config file: %s\n", GetConfigFile())

	// Every configured source name must have a registered datasource.
	sources := datasource.DefaultSources(cfg)
	for _, name := range cfg.ListSources() {
		if !cfg.SourceEnabled(name) {
			continue
		}
		if _, err := datasource.Find(sources, name); err != nil {
			return fmt.Errorf("configuration references %q: %w", name, err)
		}
	}
	fmt.Fprintf(outputWriter, "Sources: %d enabled\n", len(sources))

	if validateCheckStore {
		ctx := context.Background()
		store := graphstore.NewStore(cfg.Neo4j)
		if err := store.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to graph store: %w", err)
		}
		defer store.Close(ctx)

		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("graph store ping failed: %w", err)
		}
		log.Infow("Graph store reachable", "uri", cfg.Neo4j.URI)
		fmt.Fprintf(outputWriter, "Graph store: reachable (%s)\n", cfg.Neo4j.URI)
	}

	fmt.Fprintf(outputWriter, "Result: %s\n", render.OK("valid"))
	return nil
}
