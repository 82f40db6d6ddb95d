package refdata

// TranscriptRecord is a transcript reassembled from its retained exons.
type TranscriptRecord struct {
	EnsemblID     string
	GeneEnsemblID string
	CDSStart      int64 // min of member coding starts
	CDSEnd        int64 // max of member coding ends
	Length        int64 // sum of member exon lengths
	Exons         []ExonRecord
}

// TranscriptGroups accumulates exon records per transcript, preserving
// first-seen transcript order so loads are deterministic.
type TranscriptGroups struct {
	order  []string
	groups map[string]*TranscriptRecord
}

// NewTranscriptGroups creates an empty aggregator.
func NewTranscriptGroups() *TranscriptGroups {
	return &TranscriptGroups{groups: make(map[string]*TranscriptRecord)}
}

// Add appends an exon to its transcript's group. The first exon seen for a
// transcript fixes that transcript's gene ID.
func (g *TranscriptGroups) Add(e ExonRecord) {
	t, ok := g.groups[e.TranscriptEnsemblID]
	if !ok {
		t = &TranscriptRecord{
			EnsemblID:     e.TranscriptEnsemblID,
			GeneEnsemblID: e.GeneEnsemblID,
		}
		g.groups[e.TranscriptEnsemblID] = t
		g.order = append(g.order, e.TranscriptEnsemblID)
	}
	t.Exons = append(t.Exons, e)
}

// Transcripts finalizes and returns the groups in first-seen order.
// Transcripts whose exons were all dropped by the transform never appear
// here; with no retained exons there is no group at all, so wholly
// non-coding transcripts are never persisted.
func (g *TranscriptGroups) Transcripts() []*TranscriptRecord {
	out := make([]*TranscriptRecord, 0, len(g.order))
	for _, id := range g.order {
		t := g.groups[id]
		if len(t.Exons) == 0 {
			continue
		}
		t.CDSStart = t.Exons[0].CodingStart
		t.CDSEnd = t.Exons[0].CodingEnd
		t.Length = 0
		for _, e := range t.Exons {
			if e.CodingStart < t.CDSStart {
				t.CDSStart = e.CodingStart
			}
			if e.CodingEnd > t.CDSEnd {
				t.CDSEnd = e.CodingEnd
			}
			t.Length += e.Length
		}
		out = append(out, t)
	}
	return out
}
