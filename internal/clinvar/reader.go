package clinvar

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// TSV column names. They match the JSON field names of the browser API.
const (
	ColVariantID            = "variant_id"
	ColClinvarVariationID   = "clinvar_variation_id"
	ColChrom                = "chrom"
	ColPos                  = "pos"
	ColHGVSc                = "hgvsc"
	ColHGVSp                = "hgvsp"
	ColMajorConsequence     = "major_consequence"
	ColClinicalSignificance = "clinical_significance"
	ColTranscriptID         = "transcript_id"
	ColGoldStars            = "gold_stars"
	ColReviewStatus         = "review_status"
)

// ParseError represents an error encountered while reading variants.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Message, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadFile reads variants from a JSON or TSV file, plain or gzipped.
// The format is chosen from the first non-space byte: '[' or '{' is JSON.
func ReadFile(path string) ([]*Variant, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open variants file: %w", err)
		}
		defer f.Close()
		r = f
	}

	br := bufio.NewReader(r)
	magic, _ := br.Peek(2)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		br = bufio.NewReader(gz)
	}

	if isJSON(br) {
		return ReadJSON(br)
	}
	return ReadTSV(br)
}

func isJSON(br *bufio.Reader) bool {
	for i := 1; ; i++ {
		b, err := br.Peek(i)
		if err != nil || len(b) < i {
			return false
		}
		c := b[i-1]
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '[', '{':
			return true
		}
		return false
	}
}

type variantsEnvelope struct {
	Data struct {
		Gene *struct {
			ClinvarVariants []*Variant `json:"clinvar_variants"`
		} `json:"gene"`
		Transcript *struct {
			ClinvarVariants []*Variant `json:"clinvar_variants"`
		} `json:"transcript"`
	} `json:"data"`
}

// ReadJSON decodes a JSON array of variants or a GraphQL response whose
// gene or transcript carries clinvar_variants.
func ReadJSON(r io.Reader) ([]*Variant, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read JSON: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var variants []*Variant
	if data[0] == '[' {
		if err := json.Unmarshal(data, &variants); err != nil {
			return nil, fmt.Errorf("decode variants: %w", err)
		}
	} else {
		var env variantsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode variants: %w", err)
		}
		switch {
		case env.Data.Gene != nil:
			variants = env.Data.Gene.ClinvarVariants
		case env.Data.Transcript != nil:
			variants = env.Data.Transcript.ClinvarVariants
		}
	}

	for i, v := range variants {
		if v == nil {
			return nil, &ValidationError{Field: fmt.Sprintf("[%d]", i), Reason: "is null"}
		}
		v.FillChromFromID()
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return variants, nil
}

// columnIndices maps header column names to field positions.
type columnIndices map[string]int

func (c columnIndices) get(fields []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

// ReadTSV reads tab-separated variants. Lines starting with '#' before the
// header are comments; the header must name at least variant_id, pos and
// clinical_significance.
func ReadTSV(r io.Reader) ([]*Variant, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cols       columnIndices
		lineNumber int
		variants   []*Variant
	)
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if cols == nil {
			if strings.HasPrefix(line, "#") {
				continue
			}
			cols = make(columnIndices)
			for i, name := range strings.Split(line, "\t") {
				cols[strings.TrimSpace(name)] = i
			}
			for _, required := range []string{ColVariantID, ColPos, ColClinicalSignificance} {
				if _, ok := cols[required]; !ok {
					return nil, &ParseError{Line: lineNumber, Message: fmt.Sprintf("missing required column %q", required)}
				}
			}
			continue
		}

		fields := strings.Split(line, "\t")
		v, err := cols.variant(fields)
		if err != nil {
			return nil, &ParseError{Line: lineNumber, Message: "invalid variant", Err: err}
		}
		variants = append(variants, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan variants: %w", err)
	}
	if cols == nil {
		return nil, &ParseError{Line: lineNumber, Message: "no header line found"}
	}
	return variants, nil
}

func (c columnIndices) variant(fields []string) (*Variant, error) {
	v := &Variant{
		ID:                   c.get(fields, ColVariantID),
		ClinvarVariationID:   c.get(fields, ColClinvarVariationID),
		Chrom:                c.get(fields, ColChrom),
		HGVSc:                c.get(fields, ColHGVSc),
		HGVSp:                c.get(fields, ColHGVSp),
		MajorConsequence:     c.get(fields, ColMajorConsequence),
		ClinicalSignificance: c.get(fields, ColClinicalSignificance),
		TranscriptID:         c.get(fields, ColTranscriptID),
		ReviewStatus:         c.get(fields, ColReviewStatus),
	}

	pos, err := strconv.ParseInt(c.get(fields, ColPos), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse pos: %w", err)
	}
	v.Pos = pos

	if s := c.get(fields, ColGoldStars); s != "" {
		stars, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("parse gold_stars: %w", err)
		}
		v.GoldStars = stars
	}

	// Empty cells are conventionally written as "." or "-".
	for _, s := range []*string{&v.HGVSc, &v.HGVSp, &v.MajorConsequence, &v.TranscriptID, &v.ReviewStatus} {
		if *s == "." || *s == "-" {
			*s = ""
		}
	}

	v.FillChromFromID()
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}
