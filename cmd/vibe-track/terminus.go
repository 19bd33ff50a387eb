package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-track/internal/clinvar"
	"github.com/inodb/vibe-track/internal/layout"
)

type terminusResult struct {
	Transcript string           `json:"transcript_id"`
	Pos        int64            `json:"pos"`
	HGVSp      string           `json:"hgvsp"`
	Frameshift bool             `json:"frameshift"`
	Terminus   int64            `json:"terminus"`
	Segments   []layout.Segment `json:"segments"`
}

func newTerminusCmd(g *globals) *cobra.Command {
	var (
		src        transcriptSource
		transcript string
		pos        int64
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "terminus [flags] <hgvsp>",
		Short: "Resolve the genomic termination site of a frameshift",
		Long: `Resolve where the new stop codon of a frameshift lands in genomic
coordinates, and which coding exon pieces lie between the variant and
that stop. Non-frameshift notations resolve to the variant position.`,
		Example: `  vibe-track terminus --transcripts brca1.json --transcript ENST00000357654 --pos 43045705 p.Gln1756ProfsTer74
  vibe-track terminus --transcript ENST00000357654 --pos 43045705 --json p.Gln1756ProfsTer?`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if transcript == "" {
				return usagef(cmd, "--transcript is required")
			}
			if pos <= 0 {
				return usagef(cmd, "--pos must be a positive genomic position")
			}

			c, err := loadTranscripts(src, g.logger)
			if err != nil {
				return err
			}
			t := c.GetTranscript(transcript)
			if t == nil {
				return withHint(fmt.Errorf("transcript %q not found", transcript),
					"transcript IDs are matched without their version suffix")
			}

			if !t.Contains(pos) {
				g.logger.Warn("position lies outside the transcript",
					zap.String("transcript", t.ID),
					zap.Int64("pos", pos),
					zap.Int64("start", t.Start),
					zap.Int64("stop", t.Stop))
			}

			hgvsp := args[0]
			v := &clinvar.Variant{Chrom: t.Chrom, Pos: pos, HGVSp: hgvsp, TranscriptID: t.ID}
			res := terminusResult{
				Transcript: t.ID,
				Pos:        pos,
				HGVSp:      hgvsp,
				Terminus:   layout.Terminus(v, t),
			}
			_, res.Frameshift = layout.ParseFrameshift(hgvsp)
			if res.Frameshift {
				res.Segments = layout.FrameshiftSegments(t, pos, res.Terminus)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(out, "Transcript:\t%s (%s)\n", t.ID, t.Strand)
			fmt.Fprintf(out, "Position:\t%d\n", pos)
			fmt.Fprintf(out, "HGVSp:\t%s\n", hgvsp)
			if !res.Frameshift {
				fmt.Fprintf(out, "Terminus:\t%d (not a frameshift)\n", res.Terminus)
				return nil
			}
			fmt.Fprintf(out, "Terminus:\t%d\n", res.Terminus)
			fmt.Fprintf(out, "Segments:\t%s\n", formatSegments(res.Segments))
			return nil
		},
	}

	addTranscriptFlags(cmd, &src)
	cmd.Flags().StringVar(&transcript, "transcript", "", "Transcript ID the HGVSp notation refers to")
	cmd.Flags().Int64Var(&pos, "pos", 0, "Genomic position of the variant (1-based)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func formatSegments(segs []layout.Segment) string {
	if len(segs) == 0 {
		return "-"
	}
	s := ""
	for i, seg := range segs {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d-%d", seg.Start, seg.Stop)
	}
	return s
}
