package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-track/internal/clinvar"
)

// WriteVariants batch-inserts variants into DuckDB using the Appender API.
// Duplicate IDs within the batch keep their first occurrence; variants
// already stored under the same ID are replaced. Queries return variants
// in the order they were written, as the file index does.
func (s *Store) WriteVariants(variants []*clinvar.Variant) error {
	if len(variants) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(variants))
	deduped := make([]*clinvar.Variant, 0, len(variants))
	for _, v := range variants {
		if !seen[v.ID] {
			seen[v.ID] = true
			deduped = append(deduped, v)
		}
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "DELETE FROM clinvar_variants_staging"); err != nil {
		return fmt.Errorf("reset staging: %w", err)
	}

	var last int64
	if err := conn.QueryRowContext(ctx, "SELECT COALESCE(max(seq), 0) FROM clinvar_variants").Scan(&last); err != nil {
		return fmt.Errorf("read write sequence: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "clinvar_variants_staging")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	for i, v := range deduped {
		if err := appender.AppendRow(
			v.ID, v.NormalizeChrom(), v.Pos, v.ClinvarVariationID,
			v.HGVSc, v.HGVSp, v.MajorConsequence, v.ClinicalSignificance,
			v.TranscriptID, int32(v.GoldStars), v.ReviewStatus,
			last+int64(i)+1,
		); err != nil {
			appender.Close()
			return fmt.Errorf("append variant %s: %w", v.ID, err)
		}
	}
	// Close flushes the appended rows.
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush variants: %w", err)
	}

	if _, err := conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO clinvar_variants SELECT * FROM clinvar_variants_staging"); err != nil {
		return fmt.Errorf("merge variants: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM clinvar_variants_staging"); err != nil {
		return fmt.Errorf("reset staging: %w", err)
	}
	return nil
}

// ClearVariants removes all stored variants and import records.
func (s *Store) ClearVariants() error {
	if _, err := s.db.Exec("DELETE FROM clinvar_variants"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM imports")
	return err
}

// CountVariants returns the number of stored variants.
func (s *Store) CountVariants() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT count(*) FROM clinvar_variants").Scan(&n); err != nil {
		return 0, fmt.Errorf("count variants: %w", err)
	}
	return n, nil
}

const selectVariants = `SELECT
		variant_id, chrom, pos, clinvar_variation_id,
		hgvsc, hgvsp, major_consequence, clinical_significance,
		transcript_id, gold_stars, review_status
		FROM clinvar_variants`

// VariantsInRegion returns the stored variants with start <= pos <= stop
// in write order.
func (s *Store) VariantsInRegion(chrom string, start, stop int64) ([]*clinvar.Variant, error) {
	rows, err := s.db.Query(selectVariants+`
		WHERE chrom=? AND pos BETWEEN ? AND ?
		ORDER BY seq`, clinvar.NormalizeChrom(chrom), start, stop)
	if err != nil {
		return nil, fmt.Errorf("query region: %w", err)
	}
	defer rows.Close()

	return scanVariants(rows)
}

// VariantsForTranscript returns the stored variants annotated against a
// transcript in write order.
func (s *Store) VariantsForTranscript(transcriptID string) ([]*clinvar.Variant, error) {
	rows, err := s.db.Query(selectVariants+`
		WHERE transcript_id=?
		ORDER BY seq`, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("query by transcript: %w", err)
	}
	defer rows.Close()

	return scanVariants(rows)
}

// scanVariants scans rows into variants.
func scanVariants(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*clinvar.Variant, error) {
	var variants []*clinvar.Variant
	for rows.Next() {
		var v clinvar.Variant
		var stars int32
		if err := rows.Scan(
			&v.ID, &v.Chrom, &v.Pos, &v.ClinvarVariationID,
			&v.HGVSc, &v.HGVSp, &v.MajorConsequence, &v.ClinicalSignificance,
			&v.TranscriptID, &stars, &v.ReviewStatus,
		); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		v.GoldStars = int(stars)
		variants = append(variants, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return variants, nil
}

// RecordImport remembers that a source file was imported.
func (s *Store) RecordImport(src FileFingerprint, variants int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO imports VALUES (?, ?, ?, ?, ?)`,
		src.Path, src.Size, src.ModTime.UTC(), int64(variants), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}

// Imported reports whether src was already imported unchanged.
func (s *Store) Imported(src FileFingerprint) (bool, error) {
	var stored FileFingerprint
	err := s.db.QueryRow(`SELECT path, size, mod_time FROM imports WHERE path=?`, src.Path).
		Scan(&stored.Path, &stored.Size, &stored.ModTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query imports: %w", err)
	}
	return stored.Matches(src), nil
}
