package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// IntegrityError reports a foreign-key resolution miss: a child row named a
// parent Ensembl ID that was never committed.
type IntegrityError struct {
	Entity    string // parent entity kind, e.g. "gene"
	EnsemblID string // the missing external ID
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("referential-integrity violation: no %s row with Ensembl ID %s", e.Entity, e.EnsemblID)
}

// Gene is one row of the gene table, keyed by its Ensembl gene ID.
type Gene struct {
	EnsemblID string
	Symbol    string
	Biotype   string
	Chrom     string
	Start     int64
	End       int64
	Length    int64
}

// Transcript is one row of the transcript table.
type Transcript struct {
	EnsemblID string
	GeneID    int64
	CDSStart  int64
	CDSEnd    int64
	Length    int64
}

// Exon is one row of the exon table.
type Exon struct {
	EnsemblID       string
	GeneID          int64
	TranscriptID    int64
	Strand          int
	Phase           int
	EndPhase        int
	Length          int64
	TranscriptStart int64
	TranscriptEnd   int64
	GenomeStart     int64
	GenomeEnd       int64
}

// Protein is one row of the protein table.
type Protein struct {
	EnsemblID    string
	TranscriptID int64
	GeneID       int64
	CDSLength    int64
}

// Tx wraps a database transaction with get-or-create operations keyed by
// each entity's Ensembl ID. An existing row is reused (its surrogate key
// returned), never overwritten.
type Tx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// GetOrCreateGene returns the surrogate key for the gene, inserting it if
// no row with its Ensembl ID exists yet.
func (t *Tx) GetOrCreateGene(g Gene) (int64, error) {
	var id int64
	err := t.tx.QueryRow("SELECT id FROM gene WHERE gene_ensembl_id = ?", g.EnsemblID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup gene %s: %w", g.EnsemblID, err)
	}

	err = t.tx.QueryRow(`
		INSERT INTO gene (gene_ensembl_id, gene_symbol, biotype, chrom, start_pos, end_pos, length)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, g.EnsemblID, g.Symbol, g.Biotype, g.Chrom, g.Start, g.End, g.Length).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert gene %s: %w", g.EnsemblID, err)
	}
	return id, nil
}

// GetOrCreateTranscript returns the surrogate key for the transcript,
// inserting it if absent.
func (t *Tx) GetOrCreateTranscript(tr Transcript) (int64, error) {
	var id int64
	err := t.tx.QueryRow("SELECT id FROM transcript WHERE transcript_ensembl_id = ?", tr.EnsemblID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup transcript %s: %w", tr.EnsemblID, err)
	}

	err = t.tx.QueryRow(`
		INSERT INTO transcript (transcript_ensembl_id, gene_id, cds_start_pos, cds_end_pos, length)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, tr.EnsemblID, tr.GeneID, tr.CDSStart, tr.CDSEnd, tr.Length).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transcript %s: %w", tr.EnsemblID, err)
	}
	return id, nil
}

// GetOrCreateExon returns the surrogate key for the exon, inserting it if
// absent.
func (t *Tx) GetOrCreateExon(e Exon) (int64, error) {
	var id int64
	err := t.tx.QueryRow("SELECT id FROM exon WHERE exon_ensembl_id = ?", e.EnsemblID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup exon %s: %w", e.EnsemblID, err)
	}

	err = t.tx.QueryRow(`
		INSERT INTO exon (exon_ensembl_id, gene_id, transcript_id, strand, phase, end_phase,
		                  length, transcript_start_pos, transcript_end_pos, genome_start_pos, genome_end_pos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, e.EnsemblID, e.GeneID, e.TranscriptID, e.Strand, e.Phase, e.EndPhase,
		e.Length, e.TranscriptStart, e.TranscriptEnd, e.GenomeStart, e.GenomeEnd).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert exon %s: %w", e.EnsemblID, err)
	}
	return id, nil
}

// GetOrCreateProtein returns the surrogate key for the protein, inserting
// it if absent.
func (t *Tx) GetOrCreateProtein(p Protein) (int64, error) {
	var id int64
	err := t.tx.QueryRow("SELECT id FROM protein WHERE protein_ensembl_id = ?", p.EnsemblID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup protein %s: %w", p.EnsemblID, err)
	}

	err = t.tx.QueryRow(`
		INSERT INTO protein (protein_ensembl_id, transcript_id, gene_id, cds_length)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, p.EnsemblID, p.TranscriptID, p.GeneID, p.CDSLength).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert protein %s: %w", p.EnsemblID, err)
	}
	return id, nil
}

// LookupGene resolves a gene's surrogate key by its Ensembl ID.
// A miss is an *IntegrityError.
func (t *Tx) LookupGene(ensemblID string) (int64, error) {
	var id int64
	err := t.tx.QueryRow("SELECT id FROM gene WHERE gene_ensembl_id = ?", ensemblID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &IntegrityError{Entity: "gene", EnsemblID: ensemblID}
	}
	if err != nil {
		return 0, fmt.Errorf("lookup gene %s: %w", ensemblID, err)
	}
	return id, nil
}

// LookupTranscript resolves a transcript's surrogate key and its gene's
// surrogate key by the transcript's Ensembl ID. A miss is an
// *IntegrityError.
func (t *Tx) LookupTranscript(ensemblID string) (transcriptID, geneID int64, err error) {
	err = t.tx.QueryRow(
		"SELECT id, gene_id FROM transcript WHERE transcript_ensembl_id = ?", ensemblID,
	).Scan(&transcriptID, &geneID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, &IntegrityError{Entity: "transcript", EnsemblID: ensemblID}
	}
	if err != nil {
		return 0, 0, fmt.Errorf("lookup transcript %s: %w", ensemblID, err)
	}
	return transcriptID, geneID, nil
}
