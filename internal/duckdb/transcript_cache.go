package duckdb

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-track/internal/cache"
)

// snapshotVersion changes whenever the gob layout of cache.Gene changes.
const snapshotVersion = 2

const (
	snapshotFile = "transcripts.gob"
	metaFile     = "transcripts.yaml"
)

// TranscriptCache keeps a parsed GTF on disk so later runs skip parsing:
//
//	{dir}/transcripts.gob   genes with their transcripts
//	{dir}/transcripts.yaml  source fingerprint and snapshot version
type TranscriptCache struct {
	dir string
}

type snapshot struct {
	Version int
	Genes   []*cache.Gene
}

type snapshotMeta struct {
	Version   int             `yaml:"version"`
	Source    FileFingerprint `yaml:"source"`
	Genes     int             `yaml:"genes"`
	CreatedAt time.Time       `yaml:"created_at"`
}

// NewTranscriptCache returns a transcript cache rooted at dir
// (e.g. ~/.vibe-track/grch38).
func NewTranscriptCache(dir string) *TranscriptCache {
	return &TranscriptCache{dir: dir}
}

func (tc *TranscriptCache) path(name string) string {
	return filepath.Join(tc.dir, name)
}

// Valid reports whether the snapshot on disk was built from src as it is
// now, by the current snapshot version.
func (tc *TranscriptCache) Valid(src FileFingerprint) bool {
	meta, err := tc.readMeta()
	if err != nil || meta.Version != snapshotVersion || !meta.Source.Matches(src) {
		return false
	}
	_, err = os.Stat(tc.path(snapshotFile))
	return err == nil
}

// Load adds the snapshotted genes to c.
func (tc *TranscriptCache) Load(c *cache.Cache) error {
	f, err := os.Open(tc.path(snapshotFile))
	if err != nil {
		return fmt.Errorf("open transcript cache: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("decode transcript cache: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("transcript cache version %d, want %d", snap.Version, snapshotVersion)
	}
	for _, g := range snap.Genes {
		c.AddGene(g)
	}
	return nil
}

// Write snapshots every gene in c and records src as its source. The
// snapshot is renamed into place from a temporary file. Metadata is
// removed first and written last.
func (tc *TranscriptCache) Write(c *cache.Cache, src FileFingerprint) error {
	if err := os.MkdirAll(tc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	os.Remove(tc.path(metaFile))

	genes := c.Genes()
	tmp := tc.path(snapshotFile + ".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create transcript cache: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(snapshot{Version: snapshotVersion, Genes: genes}); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode transcript cache: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close transcript cache: %w", err)
	}
	if err := os.Rename(tmp, tc.path(snapshotFile)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename transcript cache: %w", err)
	}

	data, err := yaml.Marshal(snapshotMeta{
		Version:   snapshotVersion,
		Source:    src,
		Genes:     len(genes),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode transcript cache metadata: %w", err)
	}
	return os.WriteFile(tc.path(metaFile), data, 0644)
}

// Clear removes the snapshot and its metadata.
func (tc *TranscriptCache) Clear() error {
	var errs []error
	for _, name := range []string{metaFile, snapshotFile} {
		if err := os.Remove(tc.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (tc *TranscriptCache) readMeta() (snapshotMeta, error) {
	var meta snapshotMeta
	data, err := os.ReadFile(tc.path(metaFile))
	if err != nil {
		return meta, err
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse transcript cache metadata: %w", err)
	}
	return meta, nil
}
