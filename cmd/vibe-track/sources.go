package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-track/internal/cache"
	"github.com/inodb/vibe-track/internal/clinvar"
	"github.com/inodb/vibe-track/internal/duckdb"
)

// transcriptSource selects where genes and transcripts come from.
type transcriptSource struct {
	gtf       string
	json      string
	assembly  string
	cacheDir  string
	noCache   bool
	canonical string
}

func addTranscriptFlags(cmd *cobra.Command, s *transcriptSource) {
	cmd.Flags().StringVar(&s.gtf, "gtf", "", "GENCODE GTF file (plain or gzipped)")
	cmd.Flags().StringVar(&s.json, "transcripts", "", "gnomAD-shaped gene/transcript JSON file")
	cmd.Flags().StringVar(&s.assembly, "assembly", "GRCh38", "Genome assembly used to find downloaded GTF files")
	cmd.Flags().StringVar(&s.cacheDir, "cache-dir", "", "Transcript cache directory (default: ~/.vibe-track/<assembly>)")
	cmd.Flags().BoolVar(&s.noCache, "no-cache", false, "Parse the GTF file even if a cached copy is valid")
	cmd.Flags().StringVar(&s.canonical, "canonical", "", "Genome Nexus canonical transcript overrides (default: downloaded file, if any)")
}

// loadTranscripts reads genes and transcripts, then applies canonical
// transcript overrides from --canonical or the download directory.
func loadTranscripts(s transcriptSource, logger *zap.Logger) (*cache.Cache, error) {
	c, err := readTranscripts(s, logger)
	if err != nil {
		return nil, err
	}

	path := s.canonical
	if path == "" {
		if dir := defaultDataDir(s.assembly); dir != "" {
			candidate := filepath.Join(dir, cache.CanonicalFileName)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path == "" {
		return c, nil
	}

	overrides, err := cache.LoadCanonicalOverrides(path)
	if err != nil {
		if s.canonical != "" {
			return nil, err
		}
		logger.Warn("could not load canonical overrides", zap.String("path", path), zap.Error(err))
		return c, nil
	}
	n := c.ApplyCanonical(overrides)
	logger.Info("applied canonical overrides",
		zap.String("path", path),
		zap.Int("overrides", len(overrides)),
		zap.Int("genes_changed", n))
	return c, nil
}

// readTranscripts fills a cache from the JSON file, the GTF file, or the
// downloaded GENCODE GTF, in that order of preference. Parsed GTF files
// are snapshotted to the transcript cache directory.
func readTranscripts(s transcriptSource, logger *zap.Logger) (*cache.Cache, error) {
	c := cache.New()

	if s.json != "" {
		if err := cache.NewJSONLoader(s.json).Load(c); err != nil {
			return nil, fmt.Errorf("loading transcripts: %w", err)
		}
		logger.Info("loaded transcripts",
			zap.String("source", s.json),
			zap.Int("transcripts", c.TranscriptCount()))
		return c, nil
	}

	gtf := s.gtf
	if gtf == "" {
		found, ok := findGTF(defaultDataDir(s.assembly), s.assembly)
		if !ok {
			return nil, withHint(fmt.Errorf("no transcript source for %s", s.assembly),
				"pass --gtf or --transcripts, or download GENCODE annotations with: vibe-track download --assembly %s", s.assembly)
		}
		gtf = found
	}
	if abs, err := filepath.Abs(gtf); err == nil {
		gtf = abs
	}

	fp, err := duckdb.StatFile(gtf)
	if err != nil {
		return nil, withHint(fmt.Errorf("loading transcripts: %w", err), "check that the GTF path is correct")
	}

	dir := s.cacheDir
	if dir == "" {
		dir = defaultDataDir(s.assembly)
	}
	var tc *duckdb.TranscriptCache
	if dir != "" && !s.noCache {
		tc = duckdb.NewTranscriptCache(dir)
	}

	if tc != nil && tc.Valid(fp) {
		err := tc.Load(c)
		if err == nil {
			logger.Info("loaded transcripts from cache",
				zap.Stringer("source", fp),
				zap.String("dir", dir),
				zap.Int("transcripts", c.TranscriptCount()))
			return c, nil
		}
		logger.Warn("transcript cache unreadable, parsing GTF", zap.Error(err))
		if err := tc.Clear(); err != nil {
			logger.Warn("could not clear transcript cache", zap.String("dir", dir), zap.Error(err))
		}
		c = cache.New()
	}

	if err := cache.NewGTFLoader(gtf).Load(c); err != nil {
		return nil, fmt.Errorf("loading GTF: %w", err)
	}
	logger.Info("loaded transcripts",
		zap.String("source", gtf),
		zap.Int("transcripts", c.TranscriptCount()))

	if tc != nil {
		if err := tc.Write(c, fp); err != nil {
			logger.Warn("could not write transcript cache", zap.String("dir", dir), zap.Error(err))
		}
	}
	return c, nil
}

// variantSource reads variants either from a file or a DuckDB store.
type variantSource interface {
	InRegion(chrom string, start, stop int64) ([]*clinvar.Variant, error)
	Close() error
}

// fileVariants serves region queries from a variants file held in memory.
type fileVariants struct {
	idx *clinvar.Index
}

func openFileVariants(path string) (*fileVariants, error) {
	variants, err := clinvar.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx, err := clinvar.NewIndex(variants)
	if err != nil {
		return nil, fmt.Errorf("index variants: %w", err)
	}
	return &fileVariants{idx: idx}, nil
}

func (f *fileVariants) InRegion(chrom string, start, stop int64) ([]*clinvar.Variant, error) {
	return f.idx.InRegion(chrom, start, stop), nil
}

func (f *fileVariants) Close() error { return nil }

// storeVariants serves region queries from imported variants.
type storeVariants struct {
	store *duckdb.Store
}

func (s *storeVariants) InRegion(chrom string, start, stop int64) ([]*clinvar.Variant, error) {
	return s.store.VariantsInRegion(chrom, start, stop)
}

func (s *storeVariants) Close() error { return s.store.Close() }

// openVariants opens the variants file if one is given, else the store.
func openVariants(path, dbPath string) (variantSource, error) {
	switch {
	case path != "":
		v, err := openFileVariants(path)
		if err != nil {
			var perr *clinvar.ParseError
			if errors.As(err, &perr) {
				return nil, withHint(err, "variants files are JSON arrays or TSV with a %s header", clinvar.ColVariantID)
			}
			return nil, err
		}
		return v, nil
	case dbPath != "":
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return nil, err
		}
		return &storeVariants{store: store}, nil
	}
	return nil, withHint(errors.New("no variants given"),
		"pass a variants file, or import one with: vibe-track import --db <path> <file>")
}

// defaultDBPath returns ~/.vibe-track/variants.duckdb.
func defaultDBPath() string {
	dir := defaultDataDir("")
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "variants.duckdb")
}

// splitList splits a comma-separated flag or config value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
