package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cancergen/refload/internal/biomart"
	"github.com/cancergen/refload/internal/refdata"
	"github.com/cancergen/refload/internal/store"
)

// sourceFlags are the flags shared by the load and fetch commands that
// shape where reference data comes from and how it is cached.
type sourceFlags struct {
	cacheDir string
	queryDir string
	url      string
	release  string
	species  string
	assembly string
	timeout  time.Duration
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.cacheDir, "cache-dir", "o", "", "Directory for caching/reloading downloaded data (default: caching disabled)")
	cmd.Flags().StringVar(&f.queryDir, "query-dir", "", "Directory with XML query templates (default: built-in templates)")
	cmd.Flags().StringVar(&f.url, "url", biomart.DefaultURL, "BioMart martservice URL")
	cmd.Flags().StringVar(&f.release, "release", refdata.DefaultRelease.Version, "Ensembl release number")
	cmd.Flags().StringVar(&f.species, "species", refdata.DefaultRelease.Species, "Species name")
	cmd.Flags().StringVar(&f.assembly, "assembly", refdata.DefaultRelease.Assembly, "Genome assembly")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Minute, "HTTP timeout per dataset download")

	// Bind at execution time: load and fetch share these keys, and only the
	// running command's flags should back them.
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("biomart.url", cmd.Flags().Lookup("url"))
		viper.BindPFlag("cache.dir", cmd.Flags().Lookup("cache-dir"))
	}
}

// source builds the cached BioMart source, creating the cache directory if
// one was requested and it does not exist yet.
func (f *sourceFlags) source(logger *zap.Logger) (*refdata.Source, error) {
	// Bound flags resolve through viper: explicit flag, then config file,
	// then the flag default.
	f.url = viper.GetString("biomart.url")
	f.cacheDir = viper.GetString("cache.dir")

	if f.cacheDir != "" {
		if _, err := os.Stat(f.cacheDir); os.IsNotExist(err) {
			logger.Info("creating cache directory", zap.String("dir", f.cacheDir))
			if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
				return nil, fmt.Errorf("create cache directory: %w", err)
			}
		} else {
			logger.Info("cache directory already exists, will attempt to load data from cache",
				zap.String("dir", f.cacheDir))
		}
	}

	client := biomart.NewClient(f.url, f.timeout)
	src := refdata.NewSource(client, refdata.Release{
		Version:  f.release,
		Species:  f.species,
		Assembly: f.assembly,
	})
	src.SetLogger(logger)
	if f.cacheDir != "" {
		src.SetCacheDir(f.cacheDir)
	}
	if f.queryDir != "" {
		src.SetQueryDir(f.queryDir)
	}
	return src, nil
}

func newLoadCmd() *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "load <database>",
		Short: "Download Ensembl reference data and load it into a database",
		Long: `Download gene, transcript/exon, and protein reference data from
Ensembl BioMart and load it into the DuckDB database at <database>.

The three datasets are fetched and loaded sequentially; each dataset is
committed before the next starts, so parent rows are always durable before
child rows reference them. Loading is idempotent: rows are keyed by their
Ensembl IDs and existing rows are reused, never duplicated.`,
		Example: `  # Load straight from BioMart
  refload load refdata.duckdb

  # Cache raw downloads so a re-run skips the network
  refload load --cache-dir ./biomart-cache refdata.duckdb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args[0], &flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runLoad(cmd *cobra.Command, dbPath string, flags *sourceFlags) error {
	logger := newLogger()
	defer logger.Sync()

	logger.Info("initializing",
		zap.String("database", dbPath),
		zap.String("release", flags.release),
		zap.String("assembly", flags.assembly))

	src, err := flags.source(logger)
	if err != nil {
		return err
	}

	logger.Info("connecting to database")
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	loader := refdata.NewLoader(st, src)
	loader.SetLogger(logger)

	if err := loader.Run(cmd.Context()); err != nil {
		return err
	}

	counts, err := st.Counts()
	if err != nil {
		return err
	}
	logger.Info("finished loading Ensembl reference data",
		zap.Int("genes", counts.Genes),
		zap.Int("transcripts", counts.Transcripts),
		zap.Int("exons", counts.Exons),
		zap.Int("proteins", counts.Proteins))
	return nil
}
