package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-track/internal/clinvar"
	"github.com/inodb/vibe-track/internal/duckdb"
)

func newImportCmd(g *globals) *cobra.Command {
	var (
		dbPath   string
		force    bool
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "import [flags] <variants-file>...",
		Short: "Import ClinVar variants into a DuckDB database",
		Long: `Import ClinVar variants from JSON or TSV files (plain or gzipped) into a
DuckDB database that 'vibe-track layout' reads when no variants file is
given. Files already imported unchanged are skipped; re-imported variants
replace the stored ones.`,
		Example: `  vibe-track import clinvar_brca1.json clinvar_brca2.tsv.gz
  vibe-track import --db /data/variants.duckdb --clear clinvar.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = defaultDBPath()
				if dbPath == "" {
					return fmt.Errorf("cannot determine home directory")
				}
			}
			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if clearAll {
				if err := store.ClearVariants(); err != nil {
					return fmt.Errorf("clearing variants: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			for _, path := range args {
				n, skipped, err := importFile(store, path, force, g.logger)
				if err != nil {
					return fmt.Errorf("importing %s: %w", path, err)
				}
				if skipped {
					fmt.Fprintf(out, "  %s unchanged, skipping\n", filepath.Base(path))
					continue
				}
				fmt.Fprintf(out, "  %s: %d variants\n", filepath.Base(path), n)
			}

			total, err := store.CountVariants()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d variants in %s\n", total, dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path (default: ~/.vibe-track/variants.duckdb)")
	cmd.Flags().BoolVar(&force, "force", false, "Import files even if they were imported unchanged before")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove all stored variants before importing")

	return cmd
}

// importFile loads one variants file into the store. Files recorded as
// imported with the same size and modification time are skipped unless
// force is set.
func importFile(store *duckdb.Store, path string, force bool, logger *zap.Logger) (int, bool, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	fp, err := duckdb.StatFile(path)
	if err != nil {
		return 0, false, withHint(err, "check that the file path is correct")
	}

	if !force {
		done, err := store.Imported(fp)
		if err != nil {
			return 0, false, err
		}
		if done {
			logger.Debug("skipping imported file", zap.String("path", path))
			return 0, true, nil
		}
	}

	variants, err := clinvar.ReadFile(path)
	if err != nil {
		return 0, false, err
	}
	if err := store.WriteVariants(variants); err != nil {
		return 0, false, err
	}
	if err := store.RecordImport(fp, len(variants)); err != nil {
		return 0, false, err
	}
	logger.Info("imported variants",
		zap.String("path", path),
		zap.Int("variants", len(variants)))
	return len(variants), false, nil
}
