// Package layout computes the geometry of variant tracks: frameshift
// termination sites, packed rows and marker styling.
package layout

import (
	"regexp"
	"strconv"

	"github.com/inodb/vibe-track/internal/cache"
	"github.com/inodb/vibe-track/internal/clinvar"
)

// frameshiftPattern matches HGVS protein frameshift notation, e.g.
// p.Leu2GlufsTer5 or p.Arg97ProfsTer?. See
// https://varnomen.hgvs.org/recommendations/protein/variant/frameshift/
var frameshiftPattern = regexp.MustCompile(`(?i)^p\.[a-z]{3}(\d+)[a-z]{3,}?fsTer(\d+|\?)$`)

// Frameshift holds the parsed parts of a frameshift HGVSp string.
type Frameshift struct {
	Codon       int64 // codon of the first changed amino acid (1-based)
	Termination int64 // codon of the new stop within the new frame, 0 if unknown
}

// UnknownTermination reports whether the new frame has no stop codon ("?").
func (f Frameshift) UnknownTermination() bool {
	return f.Termination == 0
}

// ParseFrameshift parses a frameshift HGVSp string. It returns false for
// anything that is not a frameshift with a termination site.
func ParseFrameshift(hgvsp string) (Frameshift, bool) {
	m := frameshiftPattern.FindStringSubmatch(hgvsp)
	if m == nil {
		return Frameshift{}, false
	}
	codon, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || codon < 1 {
		return Frameshift{}, false
	}
	if m[2] == "?" {
		return Frameshift{Codon: codon}, true
	}
	ter, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || ter < 1 {
		return Frameshift{}, false
	}
	return Frameshift{Codon: codon, Termination: ter}, true
}

// Terminus returns the genomic position of the termination site introduced
// by a frameshift variant. Whenever the site cannot be derived (no
// transcript, no HGVSp, notation that is not a frameshift, a transcript
// without CDS features) the variant's own position is returned.
func Terminus(v *clinvar.Variant, t *cache.Transcript) int64 {
	if t == nil || v.HGVSp == "" {
		return v.Pos
	}
	fs, ok := ParseFrameshift(v.HGVSp)
	if !ok {
		return v.Pos
	}

	// Codon numbers count from the 5' end, so walk exons in transcription
	// order starting at the first CDS feature. Codons past the CDS run on
	// into the downstream UTR.
	exons := t.TranscriptionOrder()
	first := -1
	for i := range exons {
		if exons[i].IsCoding() {
			first = i
			break
		}
	}
	if first < 0 {
		return v.Pos
	}
	exons = exons[first:]

	if fs.UnknownTermination() {
		return transcriptionEnd(t, exons)
	}

	// Bound both codon numbers by the region before multiplying so huge
	// values clamp instead of overflowing.
	var length int64
	for _, e := range exons {
		length += e.Len()
	}
	if maxCodons := length/3 + 1; fs.Codon > maxCodons || fs.Termination > maxCodons {
		return transcriptionEnd(t, exons)
	}

	remaining := (fs.Codon - 1 + fs.Termination - 1) * 3
	for i := range exons {
		size := exons[i].Len()
		if remaining < size {
			if t.IsReverseStrand() {
				return exons[i].Stop - remaining
			}
			return exons[i].Start + remaining
		}
		remaining -= size
	}

	// Offset runs past the last exon: clamp to the end of the transcript.
	return transcriptionEnd(t, exons)
}

// transcriptionEnd returns the far boundary of the last exon in
// transcription order.
func transcriptionEnd(t *cache.Transcript, exons []cache.Exon) int64 {
	last := exons[len(exons)-1]
	if t.IsReverseStrand() {
		return last.Start
	}
	return last.Stop
}

// Segment is a genomic interval drawn as a solid line.
type Segment struct {
	Start int64 `json:"start"`
	Stop  int64 `json:"stop"`
}

// FrameshiftSegments returns the exonic parts of [min(pos, terminus),
// max(pos, terminus)] in ascending genomic order, each clipped to that
// range. Gaps between consecutive segments are introns.
func FrameshiftSegments(t *cache.Transcript, pos, terminus int64) []Segment {
	if t == nil {
		return nil
	}
	lo, hi := min(pos, terminus), max(pos, terminus)
	var segs []Segment
	for _, e := range t.SortedExons() {
		if e.Start <= hi && e.Stop >= lo {
			segs = append(segs, Segment{Start: max(e.Start, lo), Stop: min(e.Stop, hi)})
		}
	}
	return segs
}
