// Package duckdb stores ClinVar variants and transcript snapshots on disk.
// Transcripts are cached as gob files (fast, pure Go).
// Variants are stored in DuckDB (queryable by region and transcript).
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding imported variants.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

const variantColumns = `
		variant_id VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		clinvar_variation_id VARCHAR,
		hgvsc VARCHAR,
		hgvsp VARCHAR,
		major_consequence VARCHAR,
		clinical_significance VARCHAR,
		transcript_id VARCHAR,
		gold_stars INTEGER,
		review_status VARCHAR,
		seq BIGINT`

// ensureSchema creates tables if they don't exist. Writes go through an
// unconstrained staging table so that re-imported variants replace the
// stored ones. seq records write order; stores created before it existed
// gain the column here.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clinvar_variants (` + variantColumns + `,
		PRIMARY KEY (variant_id)
	)`,
		`CREATE TABLE IF NOT EXISTS clinvar_variants_staging (` + variantColumns + `
	)`,
		`ALTER TABLE clinvar_variants ADD COLUMN IF NOT EXISTS seq BIGINT`,
		`ALTER TABLE clinvar_variants_staging ADD COLUMN IF NOT EXISTS seq BIGINT`,
		`CREATE TABLE IF NOT EXISTS imports (
		path VARCHAR PRIMARY KEY,
		size BIGINT,
		mod_time TIMESTAMP,
		variants BIGINT,
		imported_at TIMESTAMP
	)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
