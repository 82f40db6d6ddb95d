// Package store persists normalized Ensembl reference data in DuckDB.
// Rows are addressed by their stable Ensembl IDs; inserts use get-or-create
// semantics so re-running a load never duplicates committed rows.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for the reference schema.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path and ensures the
// reference schema exists. Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the reference tables and surrogate-key sequences.
// Natural keys (the Ensembl IDs) are unique; surrogate keys come from
// sequences so inserts can return them with RETURNING.
func (s *Store) ensureSchema() error {
	schema := `
		CREATE SEQUENCE IF NOT EXISTS gene_id_seq;
		CREATE SEQUENCE IF NOT EXISTS transcript_id_seq;
		CREATE SEQUENCE IF NOT EXISTS exon_id_seq;
		CREATE SEQUENCE IF NOT EXISTS protein_id_seq;

		CREATE TABLE IF NOT EXISTS gene (
			id BIGINT PRIMARY KEY DEFAULT nextval('gene_id_seq'),
			gene_ensembl_id VARCHAR NOT NULL UNIQUE,
			gene_symbol VARCHAR,
			biotype VARCHAR,
			chrom VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			length BIGINT
		);

		CREATE TABLE IF NOT EXISTS transcript (
			id BIGINT PRIMARY KEY DEFAULT nextval('transcript_id_seq'),
			transcript_ensembl_id VARCHAR NOT NULL UNIQUE,
			gene_id BIGINT NOT NULL,
			cds_start_pos BIGINT,
			cds_end_pos BIGINT,
			length BIGINT
		);

		CREATE TABLE IF NOT EXISTS exon (
			id BIGINT PRIMARY KEY DEFAULT nextval('exon_id_seq'),
			exon_ensembl_id VARCHAR NOT NULL UNIQUE,
			gene_id BIGINT NOT NULL,
			transcript_id BIGINT NOT NULL,
			strand TINYINT,
			phase TINYINT,
			end_phase TINYINT,
			length BIGINT,
			transcript_start_pos BIGINT,
			transcript_end_pos BIGINT,
			genome_start_pos BIGINT,
			genome_end_pos BIGINT
		);

		CREATE TABLE IF NOT EXISTS protein (
			id BIGINT PRIMARY KEY DEFAULT nextval('protein_id_seq'),
			protein_ensembl_id VARCHAR NOT NULL UNIQUE,
			transcript_id BIGINT NOT NULL,
			gene_id BIGINT NOT NULL,
			cds_length BIGINT
		);

		CREATE INDEX IF NOT EXISTS idx_transcript_gene ON transcript(gene_id);
		CREATE INDEX IF NOT EXISTS idx_exon_transcript ON exon(transcript_id);
		CREATE INDEX IF NOT EXISTS idx_protein_transcript ON protein(transcript_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Begin starts a transaction. The pipeline commits once per dataset stage,
// with per-transcript intermediate commits during the exon stage.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Counts holds per-table row counts.
type Counts struct {
	Genes       int
	Transcripts int
	Exons       int
	Proteins    int
}

// Counts returns the current row count of each reference table.
func (s *Store) Counts() (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"gene", &c.Genes},
		{"transcript", &c.Transcripts},
		{"exon", &c.Exons},
		{"protein", &c.Proteins},
	} {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}
