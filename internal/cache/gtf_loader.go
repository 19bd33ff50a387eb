// Package cache provides transcript models and loaders for track layout.
package cache

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"
)

// GTFLoader loads transcript data from GENCODE GTF files.
type GTFLoader struct {
	path string
}

// NewGTFLoader creates a new GTF loader.
func NewGTFLoader(path string) *GTFLoader {
	return &GTFLoader{path: path}
}

// Load loads all genes and transcripts from the GTF file into the cache.
func (l *GTFLoader) Load(c *Cache) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	genes, err := ParseGTF(reader)
	if err != nil {
		return err
	}
	for _, g := range genes {
		c.AddGene(g)
	}
	return nil
}

// ParseGTF reads GTF records and assembles genes with their transcripts.
// CDS and UTR rows become typed exon features; plain exon rows are kept
// only for transcripts that have no CDS or UTR rows, so that coding
// transcripts never carry overlapping duplicate features. Comment and
// pragma lines are skipped.
func ParseGTF(r io.Reader) ([]*Gene, error) {
	in := gff.NewReader(&commentFilter{r: bufio.NewReader(r)})

	var order []string
	genes := make(map[string]*Gene)
	transcripts := make(map[string]*Transcript)
	typed := make(map[string][]Exon)
	plain := make(map[string][]Exon)

	for {
		f, err := in.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read GTF: %w", err)
		}
		feat := f.(*gff.Feature)

		chrom := normalizeChrom(feat.SeqName)

		geneID := stripVersion(attr(feat, "gene_id"))
		if geneID == "" {
			continue
		}
		g, ok := genes[geneID]
		if !ok {
			g = &Gene{ID: geneID, Chrom: chrom, Strand: strandOf(feat.FeatStrand)}
			genes[geneID] = g
			order = append(order, geneID)
		}
		if name := attr(feat, "gene_name"); name != "" {
			g.Name = name
		}

		// biogo reports 0-based half-open starts.
		start, stop := int64(feat.FeatStart)+1, int64(feat.FeatEnd)

		if feat.Feature == "gene" {
			g.Start, g.Stop = start, stop
			continue
		}

		transcriptID := stripVersion(attr(feat, "transcript_id"))
		if transcriptID == "" {
			continue
		}

		t, ok := transcripts[transcriptID]
		if !ok {
			t = &Transcript{
				ID:       transcriptID,
				GeneID:   geneID,
				GeneName: g.Name,
				Chrom:    chrom,
				Strand:   strandOf(feat.FeatStrand),
			}
			transcripts[transcriptID] = t
			g.Transcripts = append(g.Transcripts, t)
		}

		switch feat.Feature {
		case "transcript":
			t.Start, t.Stop = start, stop
			if hasTag(feat, "Ensembl_canonical") {
				g.CanonicalTranscript = transcriptID
			}
		case "CDS":
			typed[transcriptID] = append(typed[transcriptID], Exon{Start: start, Stop: stop, FeatureType: FeatureCDS})
		case "UTR", "five_prime_utr", "three_prime_utr":
			typed[transcriptID] = append(typed[transcriptID], Exon{Start: start, Stop: stop, FeatureType: FeatureUTR})
		case "exon":
			plain[transcriptID] = append(plain[transcriptID], Exon{Start: start, Stop: stop, FeatureType: FeatureExon})
		}
	}

	out := make([]*Gene, 0, len(order))
	for _, id := range order {
		g := genes[id]
		for _, t := range g.Transcripts {
			if exons := typed[t.ID]; len(exons) > 0 {
				t.Exons = exons
			} else {
				t.Exons = plain[t.ID]
			}
			t.Exons = t.SortedExons()
			if t.Start == 0 && t.Stop == 0 {
				t.Start, t.Stop = t.exonExtent()
			}
			if t.GeneName == "" {
				t.GeneName = g.Name
			}
		}
		g.extendToTranscripts()
		out = append(out, g)
	}
	return out, nil
}

// commentFilter drops blank lines and lines starting with '#'. The gff
// reader rejects the ## headers GENCODE files open with.
type commentFilter struct {
	r    *bufio.Reader
	line []byte
}

func (f *commentFilter) Read(p []byte) (int, error) {
	for len(f.line) == 0 {
		line, err := f.r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 && line[0] != '#' {
			f.line = line
		}
		if err != nil {
			if len(f.line) == 0 {
				return 0, err
			}
			break
		}
	}
	n := copy(p, f.line)
	f.line = f.line[n:]
	return n, nil
}

// attr returns an unquoted GTF attribute value.
func attr(f *gff.Feature, tag string) string {
	return strings.Trim(strings.TrimSpace(f.FeatAttributes.Get(tag)), `"`)
}

// hasTag reports whether any "tag" attribute carries the given value.
func hasTag(f *gff.Feature, value string) bool {
	for _, a := range f.FeatAttributes {
		if a.Tag == "tag" && strings.Trim(strings.TrimSpace(a.Value), `"`) == value {
			return true
		}
	}
	return false
}

func strandOf(s seq.Strand) Strand {
	if s == seq.Minus {
		return StrandMinus
	}
	return StrandPlus
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}

// normalizeChrom normalizes chromosome names by removing "chr" prefix.
// This ensures consistency between different data sources (GENCODE uses "chr1", gnomAD uses "1").
func normalizeChrom(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom[3:]
	}
	return chrom
}
