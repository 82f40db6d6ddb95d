package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cancergen/refload/internal/refdata"
)

func newFetchCmd() *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download Ensembl reference data into the cache directory",
		Long: `Download the gene, transcript/exon, and protein datasets from Ensembl
BioMart and store the raw responses in the cache directory, without loading
a database. A later "refload load" with the same cache directory then runs
entirely from disk.

Datasets already present in the cache directory are skipped.`,
		Example: `  refload fetch --cache-dir ./biomart-cache
  refload load --cache-dir ./biomart-cache refdata.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, &flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runFetch(cmd *cobra.Command, flags *sourceFlags) error {
	logger := newLogger()
	defer logger.Sync()

	src, err := flags.source(logger)
	if err != nil {
		return err
	}
	if flags.cacheDir == "" {
		return errors.New("fetch requires --cache-dir (flag or cache.dir config)")
	}

	for _, d := range refdata.AllDatasets {
		if _, err := src.Get(cmd.Context(), d); err != nil {
			return err
		}
	}

	logger.Info("fetch complete", zap.String("cache_dir", flags.cacheDir))
	return nil
}
