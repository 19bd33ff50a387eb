package output

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"

	"github.com/inodb/vibe-track/internal/clinvar"
	"github.com/inodb/vibe-track/internal/layout"
)

// Vertical space around each variant track: the legend sits above the
// plot and the axis line below it.
const (
	svgTopMargin    = 25.0
	svgBottomMargin = 25.0
	svgTrackGap     = 10.0
	svgAxisStroke   = "#424242"
)

// SVGWriter renders tracks into a single SVG document. Tracks are stacked
// vertically and written out on Flush.
type SVGWriter struct {
	w         *bufio.Writer
	width     float64
	highlight clinvar.Category
	legend    bool

	body   []string
	height float64
}

// NewSVGWriter creates an SVG writer for a plot of the given width.
func NewSVGWriter(w io.Writer, width float64) *SVGWriter {
	return &SVGWriter{w: bufio.NewWriter(w), width: width, legend: true}
}

// SetHighlight sets the highlighted consequence category.
func (sw *SVGWriter) SetHighlight(cat clinvar.Category) {
	sw.highlight = cat
}

// SetLegend toggles the consequence legend above each variant track.
func (sw *SVGWriter) SetLegend(on bool) {
	sw.legend = on
}

// WriteHeader is a no-op; the document header is written on Flush once
// the total height is known.
func (sw *SVGWriter) WriteHeader() error {
	return nil
}

func (sw *SVGWriter) add(format string, args ...any) {
	sw.body = append(sw.body, fmt.Sprintf(format, args...))
}

// WriteTrack appends a variant track.
func (sw *SVGWriter) WriteTrack(name string, tr *layout.Track, scale layout.Scaler) error {
	top := sw.height
	sw.add(`<g class="variant-track" transform="translate(0,%s)">`, num(top))
	if name != "" {
		sw.add(`<title>%s</title>`, html.EscapeString(name))
	}
	if sw.legend {
		sw.writeLegend()
	}

	sw.add(`<g transform="translate(0,%s)">`, num(svgTopMargin))
	for _, m := range layout.Markers(tr, scale, sw.highlight) {
		sw.writeMarker(m)
	}
	sw.add(`</g>`)

	axis := tr.Height + svgTopMargin
	sw.add(`<line x1="0" y1="%s" x2="%s" y2="%s" stroke="%s"/>`, num(axis), num(sw.width), num(axis), svgAxisStroke)
	sw.add(`</g>`)

	sw.height += tr.Height + svgTopMargin + svgBottomMargin + svgTrackGap
	return nil
}

func (sw *SVGWriter) writeMarker(m layout.Marker) {
	v := m.Point.Variant
	sw.add(`<g class="variant" data-variant-id="%s">`, html.EscapeString(v.ID))
	sw.add(`<title>%s</title>`, html.EscapeString(tooltip(v)))
	if m.Point.IsFrameshift() {
		p := m.Point
		sw.add(`<rect x="%s" y="%s" width="%s" height="10" fill="transparent" opacity="%s"/>`,
			num(p.XStart), num(m.Y-5), num(p.XEnd-p.XStart), num(m.Opacity))
		for _, l := range m.Lines {
			dash := ""
			if l.Dashed {
				dash = ` stroke-dasharray="2 5"`
			}
			sw.add(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#333" stroke-width="0.5"%s opacity="%s"/>`,
				num(l.X1), num(l.Y), num(l.X2), num(l.Y), dash, num(m.Opacity))
		}
	}
	sw.add(`<path d="%s" transform="translate(%s,%s) rotate(%s)" fill="%s" stroke="%s" stroke-width="%s" opacity="%s"/>`,
		symbolPath(m.Shape, m.Area), num(m.X), num(m.Y), num(m.Rotation),
		m.Fill, m.Stroke, num(m.StrokeWidth), num(m.Opacity))
	sw.add(`</g>`)
}

func tooltip(v *clinvar.Variant) string {
	s := v.ID + " " + v.ClinicalSignificance
	if v.MajorConsequence != "" {
		s += " " + v.MajorConsequence
	}
	if v.HGVSp != "" {
		s += " " + v.HGVSp
	}
	return s
}

var legendEntries = []struct {
	label string
	shape layout.Shape
	x     float64
	line  bool
}{
	{"Frameshift", layout.ShapeCross, 0, true},
	{"Other pLoF", layout.ShapeCross, 86, false},
	{"Missense / Inframe indel", layout.ShapeTriangle, 165, false},
	{"Splice region", layout.ShapeDiamond, 318, false},
	{"Synonymous / non-coding", layout.ShapeCircle, 406, false},
}

func (sw *SVGWriter) writeLegend() {
	sw.add(`<g class="legend" transform="translate(0,9)">`)
	for _, e := range legendEntries {
		sw.add(`<g transform="translate(%s,0)">`, num(e.x))
		area, rotate, textX := 32.0, 0.0, 6.0
		if e.shape == layout.ShapeCross {
			area, rotate = 40, 45
		}
		if e.shape == layout.ShapeCircle {
			textX = 7
		}
		if e.line {
			sw.add(`<line x1="0" y1="0" x2="10" y2="0" stroke="#333" stroke-width="0.5"/>`)
			sw.add(`<path d="%s" fill="#333" stroke="none" transform="translate(10,0) rotate(45)"/>`, symbolPath(e.shape, area))
			textX = 16
		} else {
			sw.add(`<path d="%s" fill="#333" stroke="none" transform="rotate(%s)"/>`, symbolPath(e.shape, area), num(rotate))
		}
		sw.add(`<text dy="0.3em" font-size="12" x="%s">%s</text>`, num(textX), e.label)
		sw.add(`</g>`)
	}
	sw.add(`</g>`)
}

// WriteHaplotypes appends a haplotype track.
func (sw *SVGWriter) WriteHaplotypes(name string, tr *layout.HaplotypeTrack) error {
	sw.add(`<g class="haplotype-track" transform="translate(0,%s)">`, num(sw.height))
	if name != "" {
		sw.add(`<title>%s</title>`, html.EscapeString(name))
	}
	for _, r := range tr.Rows {
		sw.add(`<g class="haplotype" data-samples="%d">`, len(r.Group.Samples))
		sw.add(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="none"/>`,
			num(r.X), num(r.Y), num(r.Width), num(r.BarHeight), r.Fill)
		sw.add(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="black" stroke-width="1"/>`,
			num(r.X), num(r.LineY), num(r.X+r.Width), num(r.LineY))
		for _, m := range r.Marks {
			if m.Dashed {
				sw.add(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-dasharray="4 2" stroke-width="4"/>`,
					num(m.X), num(m.Y), num(m.X), num(m.Y2), m.Color)
				continue
			}
			sw.add(`<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="black"/>`,
				num(m.X), num(m.Y), num(m.Radius), m.Color)
		}
		sw.add(`</g>`)
	}
	sw.add(`</g>`)
	sw.height += tr.Height + svgTrackGap
	return nil
}

// Flush writes the document and flushes it to the underlying writer.
func (sw *SVGWriter) Flush() error {
	if _, err := fmt.Fprintf(sw.w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s">`+"\n",
		num(sw.width), num(sw.height)); err != nil {
		return err
	}
	for _, line := range sw.body {
		if _, err := sw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if _, err := sw.w.WriteString("</svg>\n"); err != nil {
		return err
	}
	sw.body = nil
	return sw.w.Flush()
}

// symbolPath returns a path centred on the origin enclosing roughly area
// square pixels, using the same geometry as d3-shape's symbol types.
func symbolPath(shape layout.Shape, area float64) string {
	switch shape {
	case layout.ShapeCross:
		r := math.Sqrt(area/5) / 2
		return fmt.Sprintf("M%s,%sL%s,%sL%s,%sL%s,%sL%s,%sL%s,%sL%s,%sL%s,%sL%s,%sL%s,%sL%s,%sL%s,%sZ",
			num(-3*r), num(-r), num(-r), num(-r), num(-r), num(-3*r), num(r), num(-3*r),
			num(r), num(-r), num(3*r), num(-r), num(3*r), num(r), num(r), num(r),
			num(r), num(3*r), num(-r), num(3*r), num(-r), num(r), num(-3*r), num(r))
	case layout.ShapeDiamond:
		tan30 := math.Sqrt(1.0 / 3)
		y := math.Sqrt(area / (tan30 * 2))
		x := y * tan30
		return fmt.Sprintf("M0,%sL%s,0L0,%sL%s,0Z", num(-y), num(x), num(y), num(-x))
	case layout.ShapeTriangle:
		sqrt3 := math.Sqrt(3)
		y := -math.Sqrt(area / (sqrt3 * 3))
		return fmt.Sprintf("M0,%sL%s,%sL%s,%sZ", num(y*2), num(-sqrt3*y), num(-y), num(sqrt3*y), num(-y))
	default:
		r := math.Sqrt(area / math.Pi)
		return fmt.Sprintf("M%s,0A%s,%s,0,1,1,%s,0A%s,%s,0,1,1,%s,0", num(r), num(r), num(r), num(-r), num(r), num(r), num(r))
	}
}
