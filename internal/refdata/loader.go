package refdata

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/cancergen/refload/internal/biomart"
	"github.com/cancergen/refload/internal/store"
)

// Loader runs the three dataset stages sequentially against the store:
// genes, then transcripts with their exons, then proteins. Parents commit
// before children resolve foreign keys against them.
type Loader struct {
	store  *store.Store
	source *Source
	logger *zap.Logger
}

// NewLoader creates a loader over a store and a dataset source.
func NewLoader(st *store.Store, src *Source) *Loader {
	return &Loader{
		store:  st,
		source: src,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for stage progress messages.
func (l *Loader) SetLogger(lg *zap.Logger) {
	l.logger = lg
	l.source.SetLogger(lg)
}

// Run executes the full pipeline. The first error aborts the run; rows
// committed by earlier stages persist, and get-or-create keeps a re-run
// idempotent for them.
func (l *Loader) Run(ctx context.Context) error {
	if err := l.loadGenes(ctx); err != nil {
		return fmt.Errorf("load genes: %w", err)
	}
	if err := l.loadTranscriptsAndExons(ctx); err != nil {
		return fmt.Errorf("load transcripts and exons: %w", err)
	}
	if err := l.loadProteins(ctx); err != nil {
		return fmt.Errorf("load proteins: %w", err)
	}
	// TODO: load protein_region data once a BioMart query for protein
	// domains is settled.
	l.logger.Warn("protein_region data not loaded, not implemented yet")
	return nil
}

func (l *Loader) loadGenes(ctx context.Context) error {
	data, err := l.source.Get(ctx, Genes)
	if err != nil {
		return err
	}

	l.logger.Info("loading gene data into database")
	tx, err := l.store.Begin()
	if err != nil {
		return err
	}

	count := 0
	for _, row := range biomart.Rows(data, Genes.Fields()) {
		start, err := strconv.ParseInt(row.Get("start_position"), 10, 64)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("gene %s: parse start_position: %w", row.Get("ensembl_gene_id"), err)
		}
		end, err := strconv.ParseInt(row.Get("end_position"), 10, 64)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("gene %s: parse end_position: %w", row.Get("ensembl_gene_id"), err)
		}

		if _, err := tx.GetOrCreateGene(store.Gene{
			EnsemblID: row.Get("ensembl_gene_id"),
			Symbol:    row.Get("hgnc_symbol"),
			Biotype:   row.Get("gene_biotype"),
			Chrom:     row.Get("chromosome_name"),
			Start:     start,
			End:       end,
			Length:    end - start + 1,
		}); err != nil {
			tx.Rollback()
			return err
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	l.logger.Info("finished loading genes", zap.Int("genes", count))
	return nil
}

func (l *Loader) loadTranscriptsAndExons(ctx context.Context) error {
	data, err := l.source.Get(ctx, Exons)
	if err != nil {
		return err
	}

	l.logger.Info("loading transcript and exon data into database")

	// First pass: transform rows and group retained exons by transcript.
	groups := NewTranscriptGroups()
	for _, row := range biomart.Rows(data, Exons.Fields()) {
		rec, keep, err := TransformExon(row)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		groups.Add(rec)
	}

	// Second pass: persist each transcript, commit so its surrogate key is
	// durable, then persist its exons.
	tx, err := l.store.Begin()
	if err != nil {
		return err
	}

	transcriptCount := 0
	exonCount := 0
	for _, tr := range groups.Transcripts() {
		geneID, err := tx.LookupGene(tr.GeneEnsemblID)
		if err != nil {
			tx.Rollback()
			return err
		}

		transcriptID, err := tx.GetOrCreateTranscript(store.Transcript{
			EnsemblID: tr.EnsemblID,
			GeneID:    geneID,
			CDSStart:  tr.CDSStart,
			CDSEnd:    tr.CDSEnd,
			Length:    tr.Length,
		})
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		transcriptCount++

		tx, err = l.store.Begin()
		if err != nil {
			return err
		}
		for _, e := range tr.Exons {
			if _, err := tx.GetOrCreateExon(store.Exon{
				EnsemblID:       e.EnsemblID,
				GeneID:          geneID,
				TranscriptID:    transcriptID,
				Strand:          e.Strand,
				Phase:           e.Phase,
				EndPhase:        e.EndPhase,
				Length:          e.Length,
				TranscriptStart: e.TranscriptStart,
				TranscriptEnd:   e.TranscriptEnd,
				GenomeStart:     e.GenomeStart,
				GenomeEnd:       e.GenomeEnd,
			}); err != nil {
				tx.Rollback()
				return err
			}
			exonCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	l.logger.Info("finished loading transcripts", zap.Int("transcripts", transcriptCount))
	l.logger.Info("finished loading exons", zap.Int("exons", exonCount))
	return nil
}

func (l *Loader) loadProteins(ctx context.Context) error {
	data, err := l.source.Get(ctx, Proteins)
	if err != nil {
		return err
	}

	l.logger.Info("loading protein data into database")
	tx, err := l.store.Begin()
	if err != nil {
		return err
	}

	count := 0
	for _, row := range biomart.Rows(data, Proteins.Fields()) {
		// Most protein rows are transcripts without a peptide; only rows
		// carrying both a peptide ID and a CDS length are loaded.
		if !row.Has("ensembl_peptide_id") || !row.Has("cds_length") {
			continue
		}

		cdsLength, err := strconv.ParseInt(row.Get("cds_length"), 10, 64)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("protein %s: parse cds_length: %w", row.Get("ensembl_peptide_id"), err)
		}

		transcriptID, geneID, err := tx.LookupTranscript(row.Get("ensembl_transcript_id"))
		if err != nil {
			tx.Rollback()
			return err
		}

		if _, err := tx.GetOrCreateProtein(store.Protein{
			EnsemblID:    row.Get("ensembl_peptide_id"),
			TranscriptID: transcriptID,
			GeneID:       geneID,
			CDSLength:    cdsLength,
		}); err != nil {
			tx.Rollback()
			return err
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	l.logger.Info("finished loading proteins", zap.Int("proteins", count))
	return nil
}
