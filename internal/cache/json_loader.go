package cache

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// jsonExon mirrors the exon object in gnomAD API responses.
type jsonExon struct {
	Start       *int64 `json:"start"`
	Stop        *int64 `json:"stop"`
	FeatureType string `json:"feature_type"`
}

type jsonTranscript struct {
	TranscriptID string     `json:"transcript_id"`
	GeneID       string     `json:"gene_id"`
	Chrom        string     `json:"chrom"`
	Start        int64      `json:"start"`
	Stop         int64      `json:"stop"`
	Strand       string     `json:"strand"`
	Exons        []jsonExon `json:"exons"`
}

type jsonGene struct {
	GeneID                string           `json:"gene_id"`
	Symbol                string           `json:"symbol"`
	GeneName              string           `json:"gene_name"`
	Chrom                 string           `json:"chrom"`
	Start                 int64            `json:"start"`
	Stop                  int64            `json:"stop"`
	Strand                string           `json:"strand"`
	CanonicalTranscriptID string           `json:"canonical_transcript_id"`
	Transcripts           []jsonTranscript `json:"transcripts"`
}

// graphQLEnvelope accepts the {"data": {"gene": {...}}} response shape.
type graphQLEnvelope struct {
	Data struct {
		Gene *jsonGene `json:"gene"`
	} `json:"data"`
}

// JSONLoader loads genes and transcripts from gnomAD-shaped JSON documents.
type JSONLoader struct {
	path string
}

// NewJSONLoader creates a loader for a JSON file (optionally gzipped).
func NewJSONLoader(path string) *JSONLoader {
	return &JSONLoader{path: path}
}

// Load reads the file and adds every gene to the cache.
func (l *JSONLoader) Load(c *Cache) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open JSON file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	genes, err := ParseGenesJSON(reader)
	if err != nil {
		return err
	}
	for _, g := range genes {
		c.AddGene(g)
	}
	return nil
}

// ParseGenesJSON decodes a GraphQL envelope, a single gene object, or an
// array of gene objects. Every record is validated on the way in.
func ParseGenesJSON(r io.Reader) ([]*Gene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read JSON: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raw []jsonGene
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode genes: %w", err)
		}
	} else {
		var env graphQLEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode gene: %w", err)
		}
		if env.Data.Gene != nil {
			raw = append(raw, *env.Data.Gene)
		} else {
			var g jsonGene
			if err := json.Unmarshal(data, &g); err != nil {
				return nil, fmt.Errorf("decode gene: %w", err)
			}
			raw = append(raw, g)
		}
	}

	genes := make([]*Gene, 0, len(raw))
	for _, jg := range raw {
		g, err := jg.toGene()
		if err != nil {
			return nil, err
		}
		genes = append(genes, g)
	}
	return genes, nil
}

func (jg jsonGene) toGene() (*Gene, error) {
	if jg.GeneID == "" && len(jg.Transcripts) == 0 {
		return nil, &ValidationError{Record: "gene", Field: "gene_id", Reason: "is required"}
	}
	name := jg.Symbol
	if name == "" {
		name = jg.GeneName
	}
	g := &Gene{
		ID:                  jg.GeneID,
		Name:                name,
		Chrom:               normalizeChrom(jg.Chrom),
		Start:               jg.Start,
		Stop:                jg.Stop,
		CanonicalTranscript: jg.CanonicalTranscriptID,
	}
	if jg.Strand != "" {
		strand, err := ParseStrand(jg.Strand)
		if err != nil {
			return nil, fmt.Errorf("gene %s: %w", jg.GeneID, err)
		}
		g.Strand = strand
	}
	for _, jt := range jg.Transcripts {
		if jt.Strand == "" {
			jt.Strand = string(g.Strand)
		}
		t, err := jt.toTranscript()
		if err != nil {
			return nil, err
		}
		t.GeneID = g.ID
		t.GeneName = g.Name
		if t.Chrom == "" {
			t.Chrom = g.Chrom
		}
		if g.Strand == "" {
			g.Strand = t.Strand
		}
		g.Transcripts = append(g.Transcripts, t)
	}
	if g.Start == 0 || g.Stop == 0 {
		g.extendToTranscripts()
	}
	return g, nil
}

func (jt jsonTranscript) toTranscript() (*Transcript, error) {
	strand, err := ParseStrand(jt.Strand)
	if err != nil {
		return nil, fmt.Errorf("transcript %s: %w", jt.TranscriptID, err)
	}
	exons := make([]Exon, 0, len(jt.Exons))
	for i, je := range jt.Exons {
		if je.Start == nil || je.Stop == nil {
			return nil, &ValidationError{
				Record: "transcript " + jt.TranscriptID,
				Field:  fmt.Sprintf("exons[%d]", i),
				Reason: "is missing start or stop",
			}
		}
		e, err := NewExon(*je.Start, *je.Stop, je.FeatureType)
		if err != nil {
			return nil, fmt.Errorf("transcript %s: %w", jt.TranscriptID, err)
		}
		exons = append(exons, e)
	}
	t, err := NewTranscript(jt.TranscriptID, strand, exons)
	if err != nil {
		return nil, err
	}
	t.Chrom = normalizeChrom(jt.Chrom)
	if jt.Start > 0 {
		t.Start = jt.Start
	}
	if jt.Stop > 0 {
		t.Stop = jt.Stop
	}
	return t, nil
}
