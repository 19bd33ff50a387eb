// Package output provides track layout output formatters.
package output

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/inodb/vibe-track/internal/clinvar"
	"github.com/inodb/vibe-track/internal/layout"
)

// TrackWriter writes laid out tracks in some format.
type TrackWriter interface {
	WriteHeader() error
	WriteTrack(name string, tr *layout.Track, scale layout.Scaler) error
	Flush() error
}

// TabWriter writes one tab-delimited row per placed variant.
type TabWriter struct {
	w         *bufio.Writer
	columns   []string
	highlight clinvar.Category
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Track",
			"Variant_ID",
			"Location",
			"Transcript",
			"Consequence",
			"Clinical_significance",
			"Significance_category",
			"Consequence_category",
			"HGVSp",
			"Row",
			"X_start",
			"X_end",
			"Y",
			"Terminus",
			"Exon_segments",
			"Shape",
			"Opacity",
		},
	}
}

// SetHighlight sets the highlighted consequence category used for the
// Opacity column.
func (tw *TabWriter) SetHighlight(cat clinvar.Category) {
	tw.highlight = cat
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// WriteTrack writes every point of a track, row by row.
func (tw *TabWriter) WriteTrack(name string, tr *layout.Track, scale layout.Scaler) error {
	for _, m := range layout.Markers(tr, scale, tw.highlight) {
		if err := tw.writePoint(name, m); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) writePoint(name string, m layout.Marker) error {
	p := m.Point
	v := p.Variant

	terminus := "-"
	if p.IsFrameshift() {
		terminus = strconv.FormatInt(p.Terminus, 10)
	}

	values := []string{
		orDash(name),
		v.ID,
		v.Chrom + ":" + strconv.FormatInt(v.Pos, 10),
		orDash(v.TranscriptID),
		orDash(v.MajorConsequence),
		orDash(v.ClinicalSignificance),
		string(p.Significance),
		string(p.Category),
		orDash(v.HGVSp),
		strconv.Itoa(p.Row),
		num(p.XStart),
		num(p.XEnd),
		num(p.Y),
		terminus,
		formatSegments(p.Segments),
		string(m.Shape),
		num(m.Opacity),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatSegments renders segments as "start-stop,start-stop".
func formatSegments(segs []layout.Segment) string {
	if len(segs) == 0 {
		return "-"
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = strconv.FormatInt(s.Start, 10) + "-" + strconv.FormatInt(s.Stop, 10)
	}
	return strings.Join(parts, ",")
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
