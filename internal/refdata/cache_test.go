package refdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher returns canned data and counts how often it is called.
type fakeFetcher struct {
	data  string
	calls int
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, query string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.data, nil
}

func TestSource_NoCacheDir(t *testing.T) {
	f := &fakeFetcher{data: "ENSG1\tTP53\n"}
	src := NewSource(f, DefaultRelease)

	data, err := src.Get(context.Background(), Genes)
	require.NoError(t, err)
	assert.Equal(t, "ENSG1\tTP53\n", data)

	// Without a cache directory every call fetches remotely.
	_, err = src.Get(context.Background(), Genes)
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestSource_CacheWriteAndHit(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{data: "ENSG1\tTP53\n"}
	src := NewSource(f, DefaultRelease)
	src.SetCacheDir(dir)

	data, err := src.Get(context.Background(), Genes)
	require.NoError(t, err)
	assert.Equal(t, "ENSG1\tTP53\n", data)
	assert.Equal(t, 1, f.calls)

	// The raw response is persisted under the fixed per-dataset name.
	cached, err := os.ReadFile(filepath.Join(dir, "ensembl_genes_78.homo_sapiens.GRCh37.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "ENSG1\tTP53\n", string(cached))

	// Second call is served from disk, byte for byte.
	data, err = src.Get(context.Background(), Genes)
	require.NoError(t, err)
	assert.Equal(t, "ENSG1\tTP53\n", data)
	assert.Equal(t, 1, f.calls, "cache hit must skip the fetcher")
}

func TestSource_PreseededCache(t *testing.T) {
	dir := t.TempDir()
	name := Proteins.CacheFile(DefaultRelease)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("ENSP1\tENST1\t300\n"), 0644))

	f := &fakeFetcher{data: "should not be fetched"}
	src := NewSource(f, DefaultRelease)
	src.SetCacheDir(dir)

	data, err := src.Get(context.Background(), Proteins)
	require.NoError(t, err)
	assert.Equal(t, "ENSP1\tENST1\t300\n", data)
	assert.Zero(t, f.calls)
}

func TestSource_FetchError(t *testing.T) {
	f := &fakeFetcher{err: assert.AnError}
	src := NewSource(f, DefaultRelease)

	_, err := src.Get(context.Background(), Genes)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDatasetCacheFile(t *testing.T) {
	r := Release{Version: "78", Species: "homo_sapiens", Assembly: "GRCh37"}
	assert.Equal(t, "ensembl_genes_78.homo_sapiens.GRCh37.tsv", Genes.CacheFile(r))
	assert.Equal(t, "ensembl_transcripts_and_exons_78.homo_sapiens.GRCh37.tsv", Exons.CacheFile(r))
	assert.Equal(t, "ensembl_proteins_78.homo_sapiens.GRCh37.tsv", Proteins.CacheFile(r))
}

func TestDatasetFields(t *testing.T) {
	assert.Len(t, Genes.Fields(), 7)
	assert.Len(t, Exons.Fields(), 17)
	assert.Len(t, Proteins.Fields(), 3)
	assert.Equal(t, "ensembl_exon_id", Exons.Fields()[0])
	assert.Equal(t, "exon_chrom_end", Exons.Fields()[16])
}
