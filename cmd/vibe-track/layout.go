package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-track/internal/cache"
	"github.com/inodb/vibe-track/internal/clinvar"
	"github.com/inodb/vibe-track/internal/layout"
	"github.com/inodb/vibe-track/internal/output"
)

type layoutOptions struct {
	src        transcriptSource
	db         string
	genes      []string
	region     string
	transcript string
	format     string
	output     string
	highlight  string
	filter     string
	minStars   int
	haplotypes string
	width      float64
	padding    int64
	workers    int
	legend     bool
}

func newLayoutCmd(g *globals) *cobra.Command {
	var opts layoutOptions

	cmd := &cobra.Command{
		Use:   "layout [flags] [variants-file]",
		Short: "Lay out a ClinVar variant track",
		Long: `Lay out ClinVar variants over one or more genes, a transcript, or a
genomic region. Variants come from a JSON or TSV file (use '-' for stdin),
or from a DuckDB database filled with 'vibe-track import' when no file is
given.`,
		Example: `  vibe-track layout --gene BRCA1 clinvar.json
  vibe-track layout --gene BRCA1,BRCA2 --format svg -o tracks.svg clinvar.tsv.gz
  vibe-track layout --transcript ENST00000357654 --highlight frameshift clinvar.json
  vibe-track layout --region 17:43044295-43125483 --db variants.duckdb
  vibe-track layout --gene PCSK9 --haplotypes groups.json --format json clinvar.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variantsPath := ""
			if len(args) == 1 {
				variantsPath = args[0]
			}
			return runLayout(cmd, g, opts, variantsPath)
		},
	}

	f := cmd.Flags()
	addTranscriptFlags(cmd, &opts.src)
	f.StringVar(&opts.db, "db", "", "DuckDB variant database, used when no variants file is given (default: ~/.vibe-track/variants.duckdb)")
	f.StringSliceVar(&opts.genes, "gene", nil, "Gene symbols or IDs to lay out (repeatable or comma-separated)")
	f.StringVar(&opts.region, "region", "", "Genomic region chrom:start-stop")
	f.StringVar(&opts.transcript, "transcript", "", "Transcript to lay out against (default: the gene's canonical transcript)")
	f.StringVarP(&opts.format, "format", "f", "tab", "Output format: tab, json, svg")
	f.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&opts.highlight, "highlight", "", "Consequence category drawn at full opacity, others dimmed")
	f.StringVar(&opts.filter, "filter", "auto", "Variant filter: auto, all, missenseOrLoF, lof")
	f.IntVar(&opts.minStars, "min-stars", 0, "Minimum ClinVar review gold stars")
	f.StringVar(&opts.haplotypes, "haplotypes", "", "Haplotype groups JSON file to lay out below the first track")
	f.Float64Var(&opts.width, "width", 800, "Track width in pixels")
	f.Int64Var(&opts.padding, "padding", 75, "Bases shown on each side of a coding exon")
	f.IntVar(&opts.workers, "workers", 0, "Layout workers (default: number of CPUs)")
	f.BoolVar(&opts.legend, "legend", true, "Draw the marker legend (svg only)")

	f.StringSlice("tiers", stringsOf(layout.DefaultConfig().Tiers), "Significance tiers in packing order")
	f.Float64("spacing", layout.DefaultPointSpacing, "Minimum horizontal gap between markers in a row")
	f.Float64("row-height", layout.DefaultRowHeight, "Row height in pixels")
	_ = viper.BindPFlag("layout.tiers", f.Lookup("tiers"))
	_ = viper.BindPFlag("layout.point_spacing", f.Lookup("spacing"))
	_ = viper.BindPFlag("layout.row_height", f.Lookup("row-height"))

	return cmd
}

// layoutConfig reads the layout configuration from flags, environment and
// config file, in that order of precedence.
func layoutConfig() (layout.Config, error) {
	cfg := layout.DefaultConfig()
	cfg.PointSpacing = viper.GetFloat64("layout.point_spacing")
	cfg.RowHeight = viper.GetFloat64("layout.row_height")

	var tiers []clinvar.Significance
	for _, s := range viper.GetStringSlice("layout.tiers") {
		for _, name := range splitList(s) {
			tiers = append(tiers, clinvar.Significance(name))
		}
	}
	if len(tiers) > 0 {
		cfg.Tiers = tiers
	}

	if err := cfg.Validate(); err != nil {
		return cfg, withHint(fmt.Errorf("layout config: %w", err),
			"tiers are pathogenic, uncertain, benign and other")
	}
	return cfg, nil
}

// trackJob is one track to lay out before its variants are fetched.
type trackJob struct {
	name        string
	chrom       string
	start, stop int64
	transcript  *cache.Transcript // nil for a plain region
	transcripts []*cache.Transcript
	scale       layout.Scaler
}

func runLayout(cmd *cobra.Command, g *globals, opts layoutOptions, variantsPath string) error {
	logger := g.logger

	cfg, err := layoutConfig()
	if err != nil {
		return err
	}
	highlight, err := clinvar.ParseCategory(opts.highlight)
	if err != nil {
		return usagef(cmd, "%v", err)
	}
	if opts.filter != "auto" {
		if _, err := clinvar.ParseFilter(opts.filter); err != nil {
			return usagef(cmd, "%v", err)
		}
	}
	if len(opts.genes) == 0 && opts.region == "" && opts.transcript == "" {
		return usagef(cmd, "one of --gene, --region or --transcript is required")
	}
	if len(opts.genes) > 0 && opts.region != "" {
		return usagef(cmd, "--gene and --region are mutually exclusive")
	}
	if opts.haplotypes != "" && opts.format == "tab" {
		return usagef(cmd, "--haplotypes needs json or svg output")
	}

	c, err := loadTranscripts(opts.src, logger)
	if err != nil {
		return err
	}

	jobs, err := buildJobs(c, opts)
	if err != nil {
		return err
	}

	dbPath := opts.db
	if variantsPath == "" && dbPath == "" {
		dbPath = defaultDBPath()
	}
	variants, err := openVariants(variantsPath, dbPath)
	if err != nil {
		return err
	}
	defer variants.Close()

	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer, err := newTrackWriter(cmd, opts.format, out, opts.width, opts.legend, highlight)
	if err != nil {
		return err
	}
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	engine := layout.NewEngine(cfg)
	engine.SetLogger(logger)

	// Fetch every job's variants before starting workers.
	queued := make([]layout.Job, 0, len(jobs))
	for i, j := range jobs {
		vs, err := variants.InRegion(j.chrom, j.start, j.stop)
		if err != nil {
			return fmt.Errorf("reading variants for %s: %w", j.name, err)
		}
		vs = filterVariants(vs, j.transcript, opts, logger)
		queued = append(queued, layout.Job{
			Seq:         i,
			Name:        j.name,
			Variants:    vs,
			Transcripts: j.transcripts,
			Scale:       j.scale,
		})
	}

	jobCh := make(chan layout.Job, len(queued))
	for _, j := range queued {
		jobCh <- j
	}
	close(jobCh)

	results := engine.LayoutAll(jobCh, opts.workers)
	err = layout.OrderedCollect(results, func(r layout.Result) error {
		logger.Debug("writing track",
			zap.String("track", r.Name),
			zap.Int("rows", len(r.Track.Rows)))
		return writer.WriteTrack(r.Name, r.Track, jobs[r.Seq].scale)
	})
	if err != nil {
		return fmt.Errorf("writing track: %w", err)
	}

	if opts.haplotypes != "" {
		if err := writeHaplotypes(writer, opts.haplotypes, jobs[0]); err != nil {
			return err
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}

// buildJobs resolves the requested genes, transcript or region against
// the loaded transcripts.
func buildJobs(c *cache.Cache, opts layoutOptions) ([]trackJob, error) {
	var pinned *cache.Transcript
	if opts.transcript != "" {
		pinned = c.GetTranscript(opts.transcript)
		if pinned == nil {
			return nil, withHint(fmt.Errorf("transcript %q not found", opts.transcript),
				"transcript IDs are matched without their version suffix")
		}
	}

	switch {
	case opts.region != "":
		chrom, start, stop, err := parseRegion(opts.region)
		if err != nil {
			return nil, err
		}
		if pinned != nil && (pinned.Chrom != clinvar.NormalizeChrom(chrom) || !pinned.Overlaps(start, stop)) {
			return nil, withHint(fmt.Errorf("transcript %s does not overlap %s", pinned.ID, opts.region),
				"drop --transcript to lay out the region on a linear scale")
		}
		j := trackJob{
			name:        opts.region,
			chrom:       chrom,
			start:       start,
			stop:        stop,
			transcript:  pinned,
			transcripts: c.FindTranscriptsInRegion(clinvar.NormalizeChrom(chrom), start, stop),
			scale:       layout.LinearScale{Start: start, Stop: stop, Width: opts.width},
		}
		if pinned != nil {
			j.scale = layout.NewExonScale(pinned, opts.padding, opts.width)
		}
		return []trackJob{j}, nil

	case len(opts.genes) > 0:
		jobs := make([]trackJob, 0, len(opts.genes))
		for _, key := range opts.genes {
			gene := c.GetGene(key)
			if gene == nil {
				return nil, withHint(fmt.Errorf("gene %q not found", key),
					"genes are matched by exact symbol or Ensembl gene ID")
			}
			t := gene.Canonical()
			if pinned != nil && pinned.GeneID == gene.ID {
				t = pinned
			}
			if t == nil {
				return nil, fmt.Errorf("gene %s has no transcripts", key)
			}
			jobs = append(jobs, geneJob(gene, t, opts))
		}
		return jobs, nil
	}

	gene := c.GetGene(pinned.GeneID)
	if gene == nil {
		gene = &cache.Gene{
			ID:          pinned.GeneID,
			Name:        pinned.GeneName,
			Chrom:       pinned.Chrom,
			Start:       pinned.Start,
			Stop:        pinned.Stop,
			Transcripts: []*cache.Transcript{pinned},
		}
	}
	return []trackJob{geneJob(gene, pinned, opts)}, nil
}

func geneJob(gene *cache.Gene, t *cache.Transcript, opts layoutOptions) trackJob {
	name := gene.Name
	if name == "" {
		name = gene.ID
	}
	return trackJob{
		name:        name + " " + t.ID,
		chrom:       gene.Chrom,
		start:       gene.Start,
		stop:        gene.Stop,
		transcript:  t,
		transcripts: gene.Transcripts,
		scale:       layout.NewExonScale(t, opts.padding, opts.width),
	}
}

// filterVariants applies the consequence filter and the review star
// threshold. The auto filter narrows large genes.
func filterVariants(vs []*clinvar.Variant, t *cache.Transcript, opts layoutOptions, logger *zap.Logger) []*clinvar.Variant {
	filter := clinvar.Filter(opts.filter)
	if opts.filter == "auto" {
		filter = clinvar.DefaultFilter(t)
	}
	out := clinvar.MinGoldStars(filter.Apply(vs), opts.minStars)
	logger.Debug("filtered variants",
		zap.String("filter", string(filter)),
		zap.Int("min_stars", opts.minStars),
		zap.Int("in", len(vs)),
		zap.Int("out", len(out)))
	return out
}

// highlightSetter is implemented by writers that dim markers outside the
// highlighted category.
type highlightSetter interface {
	SetHighlight(clinvar.Category)
}

// haplotypeWriter is implemented by writers that can draw haplotype tracks.
type haplotypeWriter interface {
	WriteHaplotypes(name string, tr *layout.HaplotypeTrack) error
}

func newTrackWriter(cmd *cobra.Command, format string, w io.Writer, width float64, legend bool, highlight clinvar.Category) (output.TrackWriter, error) {
	var tw output.TrackWriter
	switch format {
	case "tab":
		tw = output.NewTabWriter(w)
	case "json":
		tw = output.NewJSONWriter(w)
	case "svg":
		sw := output.NewSVGWriter(w, width)
		sw.SetLegend(legend)
		tw = sw
	default:
		return nil, usagef(cmd, "unknown output format %q (want tab, json or svg)", format)
	}
	if hs, ok := tw.(highlightSetter); ok {
		hs.SetHighlight(highlight)
	}
	return tw, nil
}

func writeHaplotypes(w output.TrackWriter, path string, j trackJob) error {
	hw, ok := w.(haplotypeWriter)
	if !ok {
		return fmt.Errorf("output format cannot draw haplotypes")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open haplotypes file: %w", err)
	}
	defer f.Close()

	groups, err := layout.ReadHaplotypeGroups(f)
	if err != nil {
		return err
	}
	tr := layout.LayoutHaplotypes(groups, j.scale, layout.NewColorCache())
	if err := hw.WriteHaplotypes(j.name+" haplotypes", tr); err != nil {
		return fmt.Errorf("writing haplotypes: %w", err)
	}
	return nil
}

// parseRegion parses chrom:start-stop with 1-based inclusive coordinates.
// Thousands separators are accepted.
func parseRegion(s string) (chrom string, start, stop int64, err error) {
	chrom, span, ok := strings.Cut(s, ":")
	if !ok || chrom == "" {
		return "", 0, 0, fmt.Errorf("invalid region %q (want chrom:start-stop)", s)
	}
	a, b, ok := strings.Cut(strings.ReplaceAll(span, ",", ""), "-")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid region %q (want chrom:start-stop)", s)
	}
	if start, err = strconv.ParseInt(a, 10, 64); err != nil {
		return "", 0, 0, fmt.Errorf("invalid region start %q: %w", a, err)
	}
	if stop, err = strconv.ParseInt(b, 10, 64); err != nil {
		return "", 0, 0, fmt.Errorf("invalid region stop %q: %w", b, err)
	}
	if start <= 0 || stop < start {
		return "", 0, 0, fmt.Errorf("invalid region %q: need 0 < start <= stop", s)
	}
	return chrom, start, stop, nil
}

func stringsOf[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
