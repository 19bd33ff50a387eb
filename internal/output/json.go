package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/inodb/vibe-track/internal/clinvar"
	"github.com/inodb/vibe-track/internal/layout"
)

// JSONWriter writes one JSON document per track, newline delimited.
type JSONWriter struct {
	w         *bufio.Writer
	enc       *json.Encoder
	highlight clinvar.Category
}

// NewJSONWriter creates a new JSON lines writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	bw := bufio.NewWriter(w)
	return &JSONWriter{w: bw, enc: json.NewEncoder(bw)}
}

// SetHighlight sets the highlighted consequence category.
func (jw *JSONWriter) SetHighlight(cat clinvar.Category) {
	jw.highlight = cat
}

type trackDoc struct {
	Track     string       `json:"track"`
	Height    float64      `json:"height"`
	RowHeight float64      `json:"row_height"`
	Rows      [][]pointDoc `json:"rows"`
}

type pointDoc struct {
	VariantID            string           `json:"variant_id"`
	Chrom                string           `json:"chrom"`
	Pos                  int64            `json:"pos"`
	TranscriptID         string           `json:"transcript_id,omitempty"`
	HGVSp                string           `json:"hgvsp,omitempty"`
	MajorConsequence     string           `json:"major_consequence,omitempty"`
	ClinicalSignificance string           `json:"clinical_significance"`
	Significance         string           `json:"significance_category"`
	Category             string           `json:"consequence_category"`
	Row                  int              `json:"row"`
	XStart               float64          `json:"x_start"`
	XEnd                 float64          `json:"x_end"`
	Y                    float64          `json:"y"`
	Terminus             *int64           `json:"terminus,omitempty"`
	Segments             []layout.Segment `json:"segments,omitempty"`
	Marker               markerDoc        `json:"marker"`
}

type markerDoc struct {
	Shape    string    `json:"shape"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Rotation float64   `json:"rotation,omitempty"`
	Fill     string    `json:"fill"`
	Opacity  float64   `json:"opacity"`
	Lines    []lineDoc `json:"lines,omitempty"`
}

type lineDoc struct {
	X1     float64 `json:"x1"`
	X2     float64 `json:"x2"`
	Y      float64 `json:"y"`
	Dashed bool    `json:"dashed,omitempty"`
}

// WriteHeader is a no-op; JSON lines have no header.
func (jw *JSONWriter) WriteHeader() error {
	return nil
}

// WriteTrack writes a track as a single JSON line.
func (jw *JSONWriter) WriteTrack(name string, tr *layout.Track, scale layout.Scaler) error {
	doc := trackDoc{
		Track:     name,
		Height:    tr.Height,
		RowHeight: tr.RowHeight,
		Rows:      make([][]pointDoc, len(tr.Rows)),
	}
	for i, row := range tr.Rows {
		doc.Rows[i] = make([]pointDoc, 0, len(row))
		for _, p := range row {
			m := layout.MarkerFor(p, tr.Height, scale, jw.highlight)
			doc.Rows[i] = append(doc.Rows[i], newPointDoc(m))
		}
	}
	return jw.enc.Encode(doc)
}

func newPointDoc(m layout.Marker) pointDoc {
	p := m.Point
	v := p.Variant
	d := pointDoc{
		VariantID:            v.ID,
		Chrom:                v.Chrom,
		Pos:                  v.Pos,
		TranscriptID:         v.TranscriptID,
		HGVSp:                v.HGVSp,
		MajorConsequence:     v.MajorConsequence,
		ClinicalSignificance: v.ClinicalSignificance,
		Significance:         string(p.Significance),
		Category:             string(p.Category),
		Row:                  p.Row,
		XStart:               p.XStart,
		XEnd:                 p.XEnd,
		Y:                    p.Y,
		Segments:             p.Segments,
		Marker: markerDoc{
			Shape:    string(m.Shape),
			X:        m.X,
			Y:        m.Y,
			Rotation: m.Rotation,
			Fill:     m.Fill,
			Opacity:  m.Opacity,
		},
	}
	if p.IsFrameshift() {
		terminus := p.Terminus
		d.Terminus = &terminus
	}
	for _, l := range m.Lines {
		d.Marker.Lines = append(d.Marker.Lines, lineDoc{X1: l.X1, X2: l.X2, Y: l.Y, Dashed: l.Dashed})
	}
	return d
}

type haplotypeDoc struct {
	Track  string            `json:"track"`
	Height float64           `json:"height"`
	Rows   []haplotypeRowDoc `json:"rows"`
}

type haplotypeRowDoc struct {
	Start       int64              `json:"start"`
	Stop        int64              `json:"stop"`
	NumSamples  int                `json:"num_samples"`
	X           float64            `json:"x"`
	Width       float64            `json:"width"`
	Y           float64            `json:"y"`
	RegionColor string             `json:"region_color"`
	Marks       []haplotypeMarkDoc `json:"marks"`
}

type haplotypeMarkDoc struct {
	Locus  string  `json:"locus"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Dashed bool    `json:"dashed,omitempty"`
	Color  string  `json:"color"`
}

// WriteHaplotypes writes a haplotype track as a single JSON line.
func (jw *JSONWriter) WriteHaplotypes(name string, tr *layout.HaplotypeTrack) error {
	doc := haplotypeDoc{Track: name, Height: tr.Height, Rows: make([]haplotypeRowDoc, 0, len(tr.Rows))}
	for _, r := range tr.Rows {
		rd := haplotypeRowDoc{
			Start:       r.Group.Start,
			Stop:        r.Group.Stop,
			NumSamples:  len(r.Group.Samples),
			X:           r.X,
			Width:       r.Width,
			Y:           r.Y,
			RegionColor: r.RegionColor,
			Marks:       make([]haplotypeMarkDoc, 0, len(r.Marks)),
		}
		for _, m := range r.Marks {
			rd.Marks = append(rd.Marks, haplotypeMarkDoc{
				Locus:  m.Variant.Locus,
				X:      m.X,
				Y:      m.Y,
				Dashed: m.Dashed,
				Color:  m.Color,
			})
		}
		doc.Rows = append(doc.Rows, rd)
	}
	return jw.enc.Encode(doc)
}

// Flush flushes any buffered data to the underlying writer.
func (jw *JSONWriter) Flush() error {
	return jw.w.Flush()
}
