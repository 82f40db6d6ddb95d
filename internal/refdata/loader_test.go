package refdata

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancergen/refload/internal/store"
)

// Fixture data. Field order matches the Dataset field lists.
const (
	geneTSV = "ENSG1\tTP53\tprotein_coding\tTP53\t17\t7565097\t7590856\n" +
		"ENSG2\tKRAS\tprotein_coding\tKRAS\t12\t25357723\t25403870\n"

	// ENSE1: 5'UTR + coding. ENSE2: coding + 3'UTR. ENSE3: 5'UTR only,
	// dropped, leaving ENST2 with no exons at all.
	exonTSV = "ENSE1\tENST1\tENSG1\t1\t0\t1\t50\t51\t200\t\t\t1\t150\t1050\t1200\t1000\t1200\n" +
		"ENSE2\tENST1\tENSG1\t1\t0\t\t\t201\t350\t351\t400\t151\t300\t2000\t2149\t2000\t2199\n" +
		"ENSE3\tENST2\tENSG2\t1\t-1\t1\t120\t\t\t\t\t\t\t\t\t5000\t5119\n"

	// Second row lacks a peptide ID, third lacks a CDS length; both skipped.
	proteinTSV = "ENSP1\tENST1\t300\n" +
		"\tENST1\t300\n" +
		"ENSP2\tENST1\t\n"
)

// datasetFetcher serves per-dataset fixture data, routed by the attribute
// names in the query payload.
type datasetFetcher struct {
	genes    string
	exons    string
	proteins string
}

func (f *datasetFetcher) Fetch(ctx context.Context, query string) (string, error) {
	switch {
	case strings.Contains(query, "ensembl_peptide_id"):
		return f.proteins, nil
	case strings.Contains(query, "ensembl_exon_id"):
		return f.exons, nil
	default:
		return f.genes, nil
	}
}

func newTestLoader(t *testing.T) (*Loader, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "refdata.duckdb"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	fetcher := &datasetFetcher{genes: geneTSV, exons: exonTSV, proteins: proteinTSV}
	return NewLoader(st, NewSource(fetcher, DefaultRelease)), st
}

func TestLoader_Run(t *testing.T) {
	loader, st := newTestLoader(t)
	require.NoError(t, loader.Run(context.Background()))

	counts, err := st.Counts()
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Genes)
	assert.Equal(t, 1, counts.Transcripts, "the all-UTR transcript must not be persisted")
	assert.Equal(t, 2, counts.Exons)
	assert.Equal(t, 1, counts.Proteins, "rows without peptide ID or CDS length are skipped")
}

func TestLoader_TranscriptDerivedFields(t *testing.T) {
	loader, st := newTestLoader(t)
	require.NoError(t, loader.Run(context.Background()))

	var cdsStart, cdsEnd, length int64
	err := st.DB().QueryRow(`
		SELECT cds_start_pos, cds_end_pos, length
		FROM transcript WHERE transcript_ensembl_id = 'ENST1'
	`).Scan(&cdsStart, &cdsEnd, &length)
	require.NoError(t, err)

	assert.Equal(t, int64(51), cdsStart, "min coding start over exons")
	assert.Equal(t, int64(350), cdsEnd, "max coding end over exons")
	assert.Equal(t, int64(401), length, "sum of exon lengths")
}

func TestLoader_ExonDerivedFields(t *testing.T) {
	loader, st := newTestLoader(t)
	require.NoError(t, loader.Run(context.Background()))

	var endPhase int
	var trStart, trEnd int64
	err := st.DB().QueryRow(`
		SELECT end_phase, transcript_start_pos, transcript_end_pos
		FROM exon WHERE exon_ensembl_id = 'ENSE1'
	`).Scan(&endPhase, &trStart, &trEnd)
	require.NoError(t, err)
	assert.Equal(t, 0, endPhase)
	assert.Equal(t, int64(1), trStart)
	assert.Equal(t, int64(200), trEnd)

	err = st.DB().QueryRow(`
		SELECT end_phase, transcript_start_pos, transcript_end_pos
		FROM exon WHERE exon_ensembl_id = 'ENSE2'
	`).Scan(&endPhase, &trStart, &trEnd)
	require.NoError(t, err)
	assert.Equal(t, -1, endPhase)
	assert.Equal(t, int64(201), trStart)
	assert.Equal(t, int64(400), trEnd)
}

func TestLoader_Idempotent(t *testing.T) {
	loader, st := newTestLoader(t)

	require.NoError(t, loader.Run(context.Background()))
	first, err := st.Counts()
	require.NoError(t, err)

	// A second full run against the same data changes nothing.
	require.NoError(t, loader.Run(context.Background()))
	second, err := st.Counts()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoader_CachedRunMatchesFreshRun(t *testing.T) {
	cacheDir := t.TempDir()

	loader, st := newTestLoader(t)
	loader.source.SetCacheDir(cacheDir)
	require.NoError(t, loader.Run(context.Background()))
	fresh, err := st.Counts()
	require.NoError(t, err)

	// Second loader reads only from the cache files the first one wrote.
	st2, err := store.Open(filepath.Join(t.TempDir(), "refdata2.duckdb"))
	require.NoError(t, err)
	defer st2.Close()

	src2 := NewSource(&datasetFetcher{}, DefaultRelease) // empty fetcher: any fetch would load nothing
	src2.SetCacheDir(cacheDir)
	loader2 := NewLoader(st2, src2)
	require.NoError(t, loader2.Run(context.Background()))

	cached, err := st2.Counts()
	require.NoError(t, err)
	assert.Equal(t, fresh, cached)
}

func TestLoader_ProteinForUnknownTranscript(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "refdata.duckdb"))
	require.NoError(t, err)
	defer st.Close()

	fetcher := &datasetFetcher{
		genes:    geneTSV,
		exons:    exonTSV,
		proteins: "ENSP9\tENST_UNKNOWN\t300\n",
	}
	loader := NewLoader(st, NewSource(fetcher, DefaultRelease))

	err = loader.Run(context.Background())
	require.Error(t, err)

	var integrityErr *store.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, "transcript", integrityErr.Entity)
	assert.Equal(t, "ENST_UNKNOWN", integrityErr.EnsemblID)
}

func TestLoader_ExonForUnknownGene(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "refdata.duckdb"))
	require.NoError(t, err)
	defer st.Close()

	fetcher := &datasetFetcher{
		genes:    geneTSV,
		exons:    "ENSE9\tENST9\tENSG_UNKNOWN\t1\t0\t\t\t1\t100\t\t\t1\t100\t100\t199\t100\t199\n",
		proteins: "",
	}
	loader := NewLoader(st, NewSource(fetcher, DefaultRelease))

	err = loader.Run(context.Background())
	require.Error(t, err)

	var integrityErr *store.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, "gene", integrityErr.Entity)
	assert.Equal(t, "ENSG_UNKNOWN", integrityErr.EnsemblID)
}

func TestLoader_GeneLengthDerived(t *testing.T) {
	loader, st := newTestLoader(t)
	require.NoError(t, loader.Run(context.Background()))

	var length int64
	err := st.DB().QueryRow("SELECT length FROM gene WHERE gene_ensembl_id = 'ENSG1'").Scan(&length)
	require.NoError(t, err)
	assert.Equal(t, int64(7590856-7565097+1), length)
}
