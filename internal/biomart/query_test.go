package biomart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Builtin(t *testing.T) {
	for _, name := range []string{"gene_query.xml", "exon_query.xml", "protein_query.xml"} {
		q, err := Query(name)
		require.NoError(t, err, name)
		assert.NotContains(t, q, "\n", "payload must be a single line")
		assert.Contains(t, q, "hsapiens_gene_ensembl")
	}
}

func TestQuery_AttributeOrder(t *testing.T) {
	q, err := Query("protein_query.xml")
	require.NoError(t, err)

	// Responses are positional, so the attribute order in the template is
	// the field order of the rows it produces.
	peptide := strings.Index(q, "ensembl_peptide_id")
	transcript := strings.Index(q, "ensembl_transcript_id")
	cds := strings.Index(q, "cds_length")
	assert.True(t, peptide < transcript && transcript < cds)
}

func TestQuery_Unknown(t *testing.T) {
	_, err := Query("nonexistent.xml")
	assert.Error(t, err)
}

func TestQueryFromDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom_query.xml")
	require.NoError(t, os.WriteFile(path, []byte("<Query>\r\n  <Dataset/>\n</Query>\n"), 0644))

	q, err := QueryFromDir(dir, "custom_query.xml")
	require.NoError(t, err)
	assert.Equal(t, "<Query>  <Dataset/></Query>", q)
}

func TestQueryFromDir_Missing(t *testing.T) {
	_, err := QueryFromDir(t.TempDir(), "gene_query.xml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
