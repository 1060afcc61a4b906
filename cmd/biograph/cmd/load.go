package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/biograph/biograph/internal/config"
	"github.com/biograph/biograph/internal/datasource"
	"github.com/biograph/biograph/internal/graphstore"
	"github.com/biograph/biograph/internal/lock"
	"github.com/biograph/biograph/internal/logger"
	"github.com/biograph/biograph/internal/pipeline"
	"github.com/biograph/biograph/internal/render"
)

var loadForce bool

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Download, parse, and merge all enabled datasources",
	Long: `Load runs the full pipeline: ensure every enabled datasource has a
local download, parse the files into node and relationship sets,
deduplicate in memory, and merge into the graph database.

The load process follows these steps:
  1. Download datasources without a local instance
  2. Parse files into node and relationship sets
  3. Deduplicate by merge key
  4. Create indexes for every (label, key) combination
  5. Merge node sets, then relationship sets in dependency order
  6. Verify entity counts against the store

All merges are idempotent; re-running a failed load is always safe.

Example:
  biograph load --config biograph.yaml`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadForce, "force", false,
		"Force execution even if the run lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	log.Infow("Starting load", "config", GetConfigFile())

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Acquire the run lock so two loads never write concurrently
	if !loadForce {
		runLock := lock.NewRunLock(cfg.RootDir, "load")
		if err := runLock.AcquireOrFail(); err != nil {
			if errors.Is(err, lock.ErrLockHeld) {
				return fmt.Errorf("another load is already running (use --force to override)")
			}
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer runLock.ReleaseLock()
		log.Infow("Acquired run lock", "path", runLock.Path())
	} else {
		log.Warn("Skipping run lock acquisition (--force flag used)")
	}

	// Connect to the graph store
	store := graphstore.NewStore(cfg.Neo4j)
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to graph store: %w", err)
	}
	defer store.Close(context.Background())

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("graph store connection failed: %w", err)
	}

	sources := datasource.DefaultSources(cfg)
	runner, err := pipeline.NewRunner(cfg, store, sources, log)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - stopping...")
		cancel()
	}()

	result, err := runner.Execute(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Load cancelled by user")
			return nil
		}
		printResult(result)
		return fmt.Errorf("load failed: %w", err)
	}

	printResult(result)
	return nil
}

// loadConfigAndLogger loads configuration, applies CLI overrides, and
// builds the logger. Shared by every command that reads the config.
func loadConfigAndLogger() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.BatchSize, overrides.SkipVerify)

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, log, nil
}

func printResult(result *pipeline.Result) {
	if result == nil {
		return
	}

	status := render.OK("OK")
	if !result.Success {
		status = render.Fail("FAILED")
	}

	fmt.Fprintf(outputWriter, "\n%s\n", render.Emph("=== Load Complete ==="))
	fmt.Fprintf(outputWriter, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(outputWriter, "Duration: %s\n", result.Duration)
	fmt.Fprintf(outputWriter, "Sources: %d (downloads: %d)\n", result.SourcesUsed, result.Downloads)
	fmt.Fprintf(outputWriter, "Parsers Run: %d\n", result.ParsersRun)
	fmt.Fprintf(outputWriter, "Nodes Merged: %d\n", result.NodesMerged)
	fmt.Fprintf(outputWriter, "Relationships Merged: %d\n", result.RelationshipsMerged)
	fmt.Fprintf(outputWriter, "Status: %s\n", status)

	if len(result.Mismatches) > 0 {
		fmt.Fprintf(outputWriter, "\nVerification mismatches:\n")
		for _, m := range result.Mismatches {
			fmt.Fprintf(outputWriter, "  - %s\n", render.Warn(m.String()))
		}
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(outputWriter, "\nErrors:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(outputWriter, "  - %v\n", e)
		}
	}
}
