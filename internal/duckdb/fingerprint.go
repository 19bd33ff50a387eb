package duckdb

import (
	"fmt"
	"os"
	"time"
)

// FileFingerprint identifies a source file by path, size and modification
// time. Files whose fingerprint is unchanged are not re-read.
type FileFingerprint struct {
	Path    string    `yaml:"path"`
	Size    int64     `yaml:"size"`
	ModTime time.Time `yaml:"modtime"`
}

// StatFile fingerprints the file at path.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	if info.IsDir() {
		return FileFingerprint{}, fmt.Errorf("%s is a directory", path)
	}
	return FileFingerprint{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Matches reports whether two fingerprints describe the same file
// contents. Modification times compare at microsecond precision, the
// resolution DuckDB timestamps keep.
func (f FileFingerprint) Matches(other FileFingerprint) bool {
	return f.Path == other.Path &&
		f.Size == other.Size &&
		f.ModTime.Truncate(time.Microsecond).Equal(other.ModTime.Truncate(time.Microsecond))
}

func (f FileFingerprint) String() string {
	return fmt.Sprintf("%s (%d bytes, %s)", f.Path, f.Size, f.ModTime.UTC().Format(time.RFC3339))
}
