// Package cache provides transcript models and loaders for track layout.
package cache

// Gene represents a genomic region with associated transcripts.
type Gene struct {
	ID                  string        // Gene identifier (e.g., ENSG00000133703)
	Name                string        // Gene symbol (e.g., KRAS)
	Chrom               string        // Chromosome
	Start               int64         // Gene start position (1-based)
	Stop                int64         // Gene stop position (1-based, inclusive)
	Strand              Strand        // + or -
	CanonicalTranscript string        // Canonical transcript ID, empty if unknown
	Transcripts         []*Transcript // Associated transcripts
}

// Canonical returns the canonical transcript. Without a usable canonical
// ID it falls back to the first protein-coding transcript, then to the
// first transcript.
func (g *Gene) Canonical() *Transcript {
	for _, t := range g.Transcripts {
		if t.ID == g.CanonicalTranscript {
			return t
		}
	}
	for _, t := range g.Transcripts {
		if t.IsProteinCoding() {
			return t
		}
	}
	if len(g.Transcripts) > 0 {
		return g.Transcripts[0]
	}
	return nil
}

// extendToTranscripts widens the gene extent to cover every transcript.
// A zero start or stop counts as unset.
func (g *Gene) extendToTranscripts() {
	for _, t := range g.Transcripts {
		if t.Start > 0 && (g.Start == 0 || t.Start < g.Start) {
			g.Start = t.Start
		}
		if t.Stop > g.Stop {
			g.Stop = t.Stop
		}
	}
}
