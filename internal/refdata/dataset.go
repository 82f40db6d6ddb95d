// Package refdata implements the Ensembl reference-data pipeline: fetch
// gene, transcript/exon, and protein tables from BioMart and load them into
// the reference store.
package refdata

import "fmt"

// Dataset identifies one of the three BioMart downloads.
type Dataset int

const (
	Genes Dataset = iota
	Exons
	Proteins
)

// Release pins the Ensembl data release the queries and cache files refer to.
type Release struct {
	Version  string // Ensembl release number, e.g. "78"
	Species  string // e.g. "homo_sapiens"
	Assembly string // e.g. "GRCh37"
}

// DefaultRelease matches the GRCh37 BioMart endpoint.
var DefaultRelease = Release{Version: "78", Species: "homo_sapiens", Assembly: "GRCh37"}

func (d Dataset) String() string {
	switch d {
	case Genes:
		return "genes"
	case Exons:
		return "transcripts_and_exons"
	case Proteins:
		return "proteins"
	}
	return "unknown"
}

// QueryFile returns the XML query template name for the dataset.
func (d Dataset) QueryFile() string {
	switch d {
	case Genes:
		return "gene_query.xml"
	case Exons:
		return "exon_query.xml"
	case Proteins:
		return "protein_query.xml"
	}
	return ""
}

// CacheFile returns the fixed cache file name for the dataset under a given
// release, e.g. "ensembl_genes_78.homo_sapiens.GRCh37.tsv".
func (d Dataset) CacheFile(r Release) string {
	return fmt.Sprintf("ensembl_%s_%s.%s.%s.tsv", d, r.Version, r.Species, r.Assembly)
}

// Fields returns the ordered BioMart attribute names for the dataset.
// Responses are positional TSV with no header, so this order must match the
// Attribute order in the corresponding query template.
func (d Dataset) Fields() []string {
	switch d {
	case Genes:
		return []string{
			"ensembl_gene_id", "hgnc_symbol", "gene_biotype", "external_gene_name",
			"chromosome_name", "start_position", "end_position",
		}
	case Exons:
		return []string{
			"ensembl_exon_id", "ensembl_transcript_id", "ensembl_gene_id", "strand", "phase",
			"5_utr_start", "5_utr_end", "cdna_coding_start", "cdna_coding_end", "3_utr_start",
			"3_utr_end", "cds_start", "cds_end", "genomic_coding_start", "genomic_coding_end",
			"exon_chrom_start", "exon_chrom_end",
		}
	case Proteins:
		return []string{"ensembl_peptide_id", "ensembl_transcript_id", "cds_length"}
	}
	return nil
}

// AllDatasets lists the datasets in load order: genes must be committed
// before transcripts resolve their gene keys, and transcripts before
// proteins resolve theirs.
var AllDatasets = []Dataset{Genes, Exons, Proteins}
