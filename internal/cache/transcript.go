// Package cache provides transcript models and loaders for track layout.
package cache

import (
	"fmt"
	"sort"
)

// Strand is the transcript orientation as written in gnomAD records.
type Strand string

// Strand values.
const (
	StrandPlus  Strand = "+"
	StrandMinus Strand = "-"
)

// Feature types carried by gnomAD exon records.
const (
	FeatureCDS  = "CDS"
	FeatureUTR  = "UTR"
	FeatureExon = "exon"
)

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID       string // Transcript ID (e.g., ENST00000311936)
	GeneID   string // Parent gene ID
	GeneName string // Parent gene symbol
	Chrom    string // Chromosome
	Start    int64  // Transcript start (1-based)
	Stop     int64  // Transcript stop (1-based, inclusive)
	Strand   Strand // + or -
	Exons    []Exon // Exon features, in load order
}

// Exon represents a single exon feature within a transcript.
type Exon struct {
	Start       int64  // Genomic start (1-based)
	Stop        int64  // Genomic stop (1-based, inclusive)
	FeatureType string // CDS, UTR or exon
}

// ValidationError reports a record rejected at construction time.
type ValidationError struct {
	Record string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Record, e.Field, e.Reason)
}

// NewExon creates an exon, rejecting inverted coordinates.
func NewExon(start, stop int64, featureType string) (Exon, error) {
	if featureType == "" {
		return Exon{}, &ValidationError{Record: "exon", Field: "feature_type", Reason: "is required"}
	}
	if stop < start {
		return Exon{}, &ValidationError{
			Record: "exon",
			Field:  "stop",
			Reason: fmt.Sprintf("%d is before start %d", stop, start),
		}
	}
	return Exon{Start: start, Stop: stop, FeatureType: featureType}, nil
}

// ParseStrand converts a strand string to a Strand.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+", "1", "+1":
		return StrandPlus, nil
	case "-", "-1":
		return StrandMinus, nil
	}
	return "", &ValidationError{Record: "transcript", Field: "strand", Reason: fmt.Sprintf("%q is not + or -", s)}
}

// NewTranscript creates a transcript from validated parts. Start and Stop
// default to the exon extent when zero.
func NewTranscript(id string, strand Strand, exons []Exon) (*Transcript, error) {
	if id == "" {
		return nil, &ValidationError{Record: "transcript", Field: "transcript_id", Reason: "is required"}
	}
	if strand != StrandPlus && strand != StrandMinus {
		return nil, &ValidationError{Record: "transcript", Field: "strand", Reason: fmt.Sprintf("%q is not + or -", strand)}
	}
	for _, e := range exons {
		if e.Stop < e.Start {
			return nil, &ValidationError{Record: "transcript " + id, Field: "exons", Reason: "contain an inverted exon"}
		}
	}
	t := &Transcript{ID: id, Strand: strand, Exons: exons}
	t.Start, t.Stop = t.exonExtent()
	return t, nil
}

func (t *Transcript) exonExtent() (int64, int64) {
	var start, stop int64
	for i, e := range t.Exons {
		if i == 0 || e.Start < start {
			start = e.Start
		}
		if e.Stop > stop {
			stop = e.Stop
		}
	}
	return start, stop
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == StrandMinus
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.Stop
}

// Overlaps returns true if [start, stop] intersects the transcript.
func (t *Transcript) Overlaps(start, stop int64) bool {
	return start <= t.Stop && stop >= t.Start
}

// SortedExons returns a copy of the exons ordered by ascending start.
// The transcript's own slice is never reordered.
func (t *Transcript) SortedExons() []Exon {
	exons := make([]Exon, len(t.Exons))
	copy(exons, t.Exons)
	sort.SliceStable(exons, func(i, j int) bool {
		return exons[i].Start < exons[j].Start
	})
	return exons
}

// TranscriptionOrder returns the exons in the direction of transcription:
// ascending genomic order on the forward strand, descending on the reverse.
func (t *Transcript) TranscriptionOrder() []Exon {
	exons := t.SortedExons()
	if t.IsReverseStrand() {
		for i, j := 0, len(exons)-1; i < j; i, j = i+1, j-1 {
			exons[i], exons[j] = exons[j], exons[i]
		}
	}
	return exons
}

// CodingExons returns the CDS features in ascending genomic order.
func (t *Transcript) CodingExons() []Exon {
	var cds []Exon
	for _, e := range t.SortedExons() {
		if e.IsCoding() {
			cds = append(cds, e)
		}
	}
	return cds
}

// CodingLength returns the total number of CDS bases.
func (t *Transcript) CodingLength() int64 {
	var n int64
	for _, e := range t.Exons {
		if e.IsCoding() {
			n += e.Len()
		}
	}
	return n
}

// IsProteinCoding returns true if the transcript has any CDS feature.
func (t *Transcript) IsProteinCoding() bool {
	for _, e := range t.Exons {
		if e.IsCoding() {
			return true
		}
	}
	return false
}

// IsCoding returns true if the exon is a coding-sequence feature.
func (e *Exon) IsCoding() bool {
	return e.FeatureType == FeatureCDS
}

// Len returns the number of bases in the exon (inclusive coordinates).
func (e *Exon) Len() int64 {
	return e.Stop - e.Start + 1
}
