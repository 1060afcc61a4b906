package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/biograph/biograph/internal/datasource"
)

var (
	downloadSource string
	downloadForce  bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download datasources without touching the database",
	Long: `Download fetches the latest version of every enabled datasource into
the versioned local layout. Existing local instances are kept unless
--force is given.

Example:
  biograph download --config biograph.yaml
  biograph download --source ncbigene --force`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadSource, "source", "s", "",
		"Download a single datasource by name")
	downloadCmd.Flags().BoolVar(&downloadForce, "force", false,
		"Re-download even when a local instance exists")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	sources := datasource.DefaultSources(cfg)
	if downloadSource != "" {
		src, err := datasource.Find(sources, downloadSource)
		if err != nil {
			return err
		}
		sources = []datasource.Datasource{src}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - stopping...")
		cancel()
	}()

	for _, src := range sources {
		srcCfg := cfg.GetSource(src.Name())
		srcLog := log.WithSource(src.Name())

		if !downloadForce {
			local, err := src.LatestLocalInstance()
			if err != nil {
				return fmt.Errorf("failed to inspect local data for %s: %w", src.Name(), err)
			}
			if local != nil && (srcCfg.Version == "" || local.Version == srcCfg.Version) {
				srcLog.Infow("Local instance present, skipping", "version", local.Version)
				fmt.Fprintf(outputWriter, "%s: up to date (%s)\n", src.Name(), local.Version)
				continue
			}
		}

		version := srcCfg.Version
		if version == "" {
			version, err = src.LatestRemoteVersion(ctx)
			if err != nil {
				return fmt.Errorf("failed to determine remote version for %s: %w", src.Name(), err)
			}
		}

		srcLog.Infow("Downloading", "version", version)
		instance, err := src.Download(ctx, version, datasource.Options{TaxIDs: srcCfg.TaxIDs})
		if err != nil {
			return fmt.Errorf("download of %s failed: %w", src.Name(), err)
		}
		fmt.Fprintf(outputWriter, "%s: downloaded %s -> %s\n", src.Name(), instance.Version, instance.Dir)
	}

	return nil
}
