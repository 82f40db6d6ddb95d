package refdata

import (
	"fmt"
	"strconv"

	"github.com/cancergen/refload/internal/biomart"
)

// ExonRecord is a retained exon with its derived transcript-relative span.
// CodingStart/CodingEnd are kept for per-transcript aggregation and are not
// persisted on the exon itself.
type ExonRecord struct {
	EnsemblID           string
	TranscriptEnsemblID string
	GeneEnsemblID       string
	Strand              int
	Phase               int
	EndPhase            int
	Length              int64
	TranscriptStart     int64
	TranscriptEnd       int64
	GenomeStart         int64
	GenomeEnd           int64
	CodingStart         int64
	CodingEnd           int64
}

// optInt is an optional integer field; empty BioMart fields mean
// "not applicable" rather than zero.
type optInt struct {
	val int64
	ok  bool
}

func parseOpt(row biomart.Row, field string) (optInt, error) {
	s := row.Get(field)
	if s == "" {
		return optInt{}, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return optInt{}, fmt.Errorf("exon field %s: parse %q: %w", field, s, err)
	}
	return optInt{val: v, ok: true}, nil
}

func parseReq(row biomart.Row, field string) (int64, error) {
	o, err := parseOpt(row, field)
	if err != nil {
		return 0, err
	}
	if !o.ok {
		return 0, fmt.Errorf("exon field %s: missing value", field)
	}
	return o.val, nil
}

// TransformExon derives the transcript-relative span and end phase for one
// raw exon row, or reports keep=false for rows without a coding region.
//
// The exon's UTR annotations select one of eight cases:
//
//	5'UTR  3'UTR  coding  action
//	 yes    no     yes    start = coding_start - utr5_len; end = coding_end; end_phase = (phase+len) mod 3
//	 yes    no     no     drop
//	 no     yes    yes    start = coding_start; end = coding_end + utr3_len; end_phase = -1
//	 no     yes    no     drop
//	 yes    yes    yes    start = coding_start - utr5_len; end = coding_end + utr3_len; end_phase = -1
//	 yes    yes    no     drop
//	 no     no     yes    start = coding_start; end = coding_end; end_phase = (phase+len) mod 3
//	 no     no     no     drop
//
// End phase -1 marks a boundary where coding-phase tracking is not
// applicable (the exon ends in UTR). Exons carrying only UTR sequence are
// dropped entirely; their transcript keeps whatever coding exons remain.
func TransformExon(row biomart.Row) (ExonRecord, bool, error) {
	chromStart, err := parseReq(row, "exon_chrom_start")
	if err != nil {
		return ExonRecord{}, false, err
	}
	chromEnd, err := parseReq(row, "exon_chrom_end")
	if err != nil {
		return ExonRecord{}, false, err
	}
	exonLength := chromEnd - chromStart + 1

	codingStart, err := parseOpt(row, "cdna_coding_start")
	if err != nil {
		return ExonRecord{}, false, err
	}
	if !codingStart.ok {
		return ExonRecord{}, false, nil
	}

	codingEnd, err := parseReq(row, "cdna_coding_end")
	if err != nil {
		return ExonRecord{}, false, err
	}
	utr5Start, err := parseOpt(row, "5_utr_start")
	if err != nil {
		return ExonRecord{}, false, err
	}
	utr3Start, err := parseOpt(row, "3_utr_start")
	if err != nil {
		return ExonRecord{}, false, err
	}

	strand, err := strconv.Atoi(row.Get("strand"))
	if err != nil {
		return ExonRecord{}, false, fmt.Errorf("exon field strand: parse %q: %w", row.Get("strand"), err)
	}
	phase, err := strconv.Atoi(row.Get("phase"))
	if err != nil {
		return ExonRecord{}, false, fmt.Errorf("exon field phase: parse %q: %w", row.Get("phase"), err)
	}

	start := codingStart.val
	end := codingEnd
	endPhase := mod3(int64(phase) + exonLength)

	if utr5Start.ok {
		utr5End, err := parseReq(row, "5_utr_end")
		if err != nil {
			return ExonRecord{}, false, err
		}
		start -= utr5End - utr5Start.val + 1
	}
	if utr3Start.ok {
		utr3End, err := parseReq(row, "3_utr_end")
		if err != nil {
			return ExonRecord{}, false, err
		}
		end += utr3End - utr3Start.val + 1
		// Phase continuation is meaningless across a 3'UTR boundary.
		endPhase = -1
	}

	return ExonRecord{
		EnsemblID:           row.Get("ensembl_exon_id"),
		TranscriptEnsemblID: row.Get("ensembl_transcript_id"),
		GeneEnsemblID:       row.Get("ensembl_gene_id"),
		Strand:              strand,
		Phase:               phase,
		EndPhase:            endPhase,
		Length:              exonLength,
		TranscriptStart:     start,
		TranscriptEnd:       end,
		GenomeStart:         chromStart,
		GenomeEnd:           chromEnd,
		CodingStart:         codingStart.val,
		CodingEnd:           codingEnd,
	}, true, nil
}

// mod3 returns n mod 3 in [0,2] even for negative n (phase can be -1 in
// BioMart output for exons that start mid-UTR).
func mod3(n int64) int {
	return int(((n % 3) + 3) % 3)
}
