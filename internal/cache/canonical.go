package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CanonicalOverrides maps gene symbol -> canonical transcript ID.
type CanonicalOverrides map[string]string

// Genome Nexus canonical transcript file URLs.
const (
	canonicalFileGRCh38 = "https://raw.githubusercontent.com/genome-nexus/genome-nexus-importer/master/data/grch38_ensembl95/export/ensembl_biomart_canonical_transcripts_per_hgnc.txt"
	canonicalFileGRCh37 = "https://raw.githubusercontent.com/genome-nexus/genome-nexus-importer/master/data/grch37_ensembl92/export/ensembl_biomart_canonical_transcripts_per_hgnc.txt"

	// CanonicalFileName is the local name of the downloaded overrides file.
	CanonicalFileName = "ensembl_biomart_canonical_transcripts_per_hgnc.txt"
)

// CanonicalFileURL returns the URL for the canonical transcript file for the given assembly.
func CanonicalFileURL(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return canonicalFileGRCh37
	}
	return canonicalFileGRCh38
}

// LoadCanonicalOverrides loads canonical transcript overrides from a
// Genome Nexus TSV file.
func LoadCanonicalOverrides(path string) (CanonicalOverrides, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open canonical overrides file: %w", err)
	}
	defer f.Close()

	return ParseCanonicalOverrides(f)
}

// ParseCanonicalOverrides reads the biomart export: a header line, then
// hgnc_symbol in column 0 and the Genome Nexus canonical transcript in
// column 4. Versions are stripped; "nan" and short rows are skipped.
func ParseCanonicalOverrides(r io.Reader) (CanonicalOverrides, error) {
	overrides := make(CanonicalOverrides)
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return overrides, scanner.Err()
	}

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 5 {
			continue
		}
		symbol, transcript := fields[0], fields[4]
		if symbol == "" || transcript == "" || transcript == "nan" {
			continue
		}
		overrides[symbol] = stripVersion(transcript)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan canonical overrides: %w", err)
	}
	return overrides, nil
}

// ApplyCanonical sets the canonical transcript of each gene named in the
// overrides, provided the gene carries that transcript. It returns the
// number of genes changed.
func (c *Cache) ApplyCanonical(overrides CanonicalOverrides) int {
	changed := 0
	for _, g := range c.Genes() {
		id, ok := overrides[g.Name]
		if !ok || id == g.CanonicalTranscript {
			continue
		}
		for _, t := range g.Transcripts {
			if t.ID == id {
				g.CanonicalTranscript = id
				changed++
				break
			}
		}
	}
	return changed
}
