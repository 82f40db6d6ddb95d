package refdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cancergen/refload/internal/biomart"
)

// Fetcher fetches raw dataset text from the remote service given a
// single-line query payload.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (string, error)
}

// Source produces raw dataset text, reading a previously cached response
// from disk when one exists and fetching from BioMart otherwise. With no
// cache directory configured it always fetches and never touches disk.
type Source struct {
	client   Fetcher
	release  Release
	cacheDir string
	queryDir string
	logger   *zap.Logger
}

// NewSource creates a source that fetches with the given client.
func NewSource(client Fetcher, release Release) *Source {
	return &Source{
		client:  client,
		release: release,
		logger:  zap.NewNop(),
	}
}

// SetCacheDir enables flat-file caching of raw responses in dir.
// The directory itself must already exist; the CLI creates it at startup.
func (s *Source) SetCacheDir(dir string) {
	s.cacheDir = dir
}

// SetQueryDir overrides the built-in XML query templates with files read
// from dir.
func (s *Source) SetQueryDir(dir string) {
	s.queryDir = dir
}

// SetLogger sets the logger for cache and download progress messages.
func (s *Source) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Get returns the raw tab-separated text for a dataset. Cache hits skip the
// network entirely; misses fetch remotely and, when a cache directory is
// configured, persist the response before returning it.
func (s *Source) Get(ctx context.Context, d Dataset) (string, error) {
	cachePath := filepath.Join(s.cacheDir, d.CacheFile(s.release))

	if s.cacheDir != "" {
		if _, err := os.Stat(cachePath); err == nil {
			s.logger.Info("loading dataset from cache",
				zap.Stringer("dataset", d),
				zap.String("file", cachePath))
			data, err := os.ReadFile(cachePath)
			if err != nil {
				return "", fmt.Errorf("read cached %s: %w", d, err)
			}
			return string(data), nil
		}
	}

	s.logger.Info("downloading dataset from Ensembl", zap.Stringer("dataset", d))
	query, err := s.query(d)
	if err != nil {
		return "", err
	}
	data, err := s.client.Fetch(ctx, query)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", d, err)
	}

	if s.cacheDir != "" {
		s.logger.Info("caching dataset", zap.String("file", cachePath))
		if err := os.WriteFile(cachePath, []byte(data), 0644); err != nil {
			return "", fmt.Errorf("cache %s: %w", d, err)
		}
	}
	return data, nil
}

func (s *Source) query(d Dataset) (string, error) {
	if s.queryDir != "" {
		return biomart.QueryFromDir(s.queryDir, d.QueryFile())
	}
	return biomart.Query(d.QueryFile())
}
