package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-track/internal/cache"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// gencodeGTFURL returns the basic annotation GTF URL for the given assembly.
func gencodeGTFURL(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
	}
	return fmt.Sprintf("%s/gencode.%s.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
}

func newDownloadCmd(g *globals) *cobra.Command {
	var (
		assembly  string
		outputDir string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download GENCODE transcript annotations",
		Long: `Download the GENCODE basic annotation GTF used as the transcript source
for layout, and the Genome Nexus canonical transcript overrides. Files
land in ~/.vibe-track/<assembly>/ and are picked up automatically when
layout runs without --gtf or --transcripts.`,
		Example: `  vibe-track download                      # GRCh38 (default)
  vibe-track download --assembly GRCh37
  vibe-track download --output /data/gencode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkAssembly(cmd, assembly); err != nil {
				return err
			}
			destDir := outputDir
			if destDir == "" {
				destDir = defaultDataDir(assembly)
				if destDir == "" {
					return fmt.Errorf("cannot determine home directory")
				}
			} else {
				destDir = filepath.Join(destDir, strings.ToLower(assembly))
			}
			if err := os.MkdirAll(destDir, 0755); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", destDir, err)
			}

			out := cmd.OutOrStdout()
			url := gencodeGTFURL(assembly)
			fmt.Fprintf(out, "Downloading GENCODE %s annotations for %s...\n", gencodeVersion, assembly)
			fmt.Fprintf(out, "Destination: %s\n\n", destDir)

			client := &http.Client{Timeout: timeout}
			dest := filepath.Join(destDir, filepath.Base(url))
			g.logger.Debug("downloading", zap.String("url", url), zap.String("dest", dest))
			if err := downloadFile(cmd.Context(), client, url, dest, out); err != nil {
				return fmt.Errorf("downloading GTF: %w", err)
			}

			// The layout still works without overrides.
			canonicalURL := cache.CanonicalFileURL(assembly)
			canonicalFile := filepath.Join(destDir, cache.CanonicalFileName)
			if err := downloadFile(cmd.Context(), client, canonicalURL, canonicalFile, out); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not download canonical transcript overrides: %v\n", err)
			}

			fmt.Fprintf(out, "\nDownload complete!\n")
			fmt.Fprintf(out, "To lay out a gene, run:\n")
			fmt.Fprintf(out, "  vibe-track layout --gene BRCA1 variants.json\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: ~/.vibe-track/)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "HTTP timeout")

	return cmd
}

func checkAssembly(cmd *cobra.Command, assembly string) error {
	switch strings.ToUpper(assembly) {
	case "GRCH37", "GRCH38":
		return nil
	}
	return usagef(cmd, "unknown assembly %q (want GRCh37 or GRCh38)", assembly)
}

// downloadFile downloads url to destPath through a temporary file,
// skipping files that already exist.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, out io.Writer) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(destPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		out:       out,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s\n", formatSize(pw.downloaded))
	return nil
}

// progressWriter prints download progress at most once a second.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// defaultDataDir returns ~/.vibe-track/<assembly>, or "" when the home
// directory is unknown.
func defaultDataDir(assembly string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vibe-track", strings.ToLower(assembly))
}

// findGTF looks for a downloaded GENCODE GTF in dir.
func findGTF(dir, assembly string) (string, bool) {
	if dir == "" {
		return "", false
	}
	pattern := "gencode.v*.annotation.gtf.gz"
	if strings.EqualFold(assembly, "GRCh37") {
		pattern = "gencode.v*lift37*.annotation.gtf.gz"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}
