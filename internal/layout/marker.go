package layout

import "github.com/inodb/vibe-track/internal/clinvar"

// Shape is a marker symbol.
type Shape string

// Marker shapes.
const (
	ShapeCircle   Shape = "circle"
	ShapeCross    Shape = "cross"
	ShapeTriangle Shape = "triangle"
	ShapeDiamond  Shape = "diamond"
)

// Symbol areas in square pixels.
const (
	symbolArea      = 32.0
	crossSymbolArea = 40.0
)

const (
	markerStroke      = "#666"
	markerStrokeWidth = 0.5
	lineStroke        = "#333"
	dimmedOpacity     = 0.2
)

// Line is a horizontal line segment in plot coordinates.
type Line struct {
	X1, X2 float64
	Y      float64
	Dashed bool
}

// Marker is the styled symbol for one point, in plot coordinates with y
// growing downwards.
type Marker struct {
	Point       *Point
	Shape       Shape
	Area        float64
	Rotation    float64
	X, Y        float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	// Lines connect a frameshift's exonic segments. Dashed lines cross
	// introns.
	Lines []Line
}

// Highlighted reports whether a point in category cat stays fully opaque
// while highlight is selected. An empty highlight selects everything.
// Synonymous variants are listed as "other" in the legend.
func Highlighted(cat, highlight clinvar.Category) bool {
	if highlight == "" || cat == highlight {
		return true
	}
	return cat == clinvar.CategorySynonymous && highlight == clinvar.CategoryOther
}

// MarkerFor styles a placed point. plotHeight is the track height used to
// flip y so that row 0 is at the bottom.
func MarkerFor(p *Point, plotHeight float64, scale Scaler, highlight clinvar.Category) Marker {
	m := Marker{
		Point:       p,
		Shape:       ShapeCircle,
		Area:        symbolArea,
		X:           p.XStart,
		Y:           plotHeight - p.Y,
		Fill:        clinvar.SignificanceColors[p.Significance],
		Stroke:      markerStroke,
		StrokeWidth: markerStrokeWidth,
		Opacity:     1,
	}
	if !Highlighted(p.Category, highlight) {
		m.Opacity = dimmedOpacity
	}

	switch p.Category {
	case clinvar.CategoryFrameshift:
		m.Shape, m.Area, m.Rotation = ShapeCross, crossSymbolArea, 45
		m.X = scale.Scale(p.Terminus)
		for i, s := range p.Segments {
			if i > 0 {
				m.Lines = append(m.Lines, Line{
					X1:     scale.Scale(p.Segments[i-1].Stop),
					X2:     scale.Scale(s.Start),
					Y:      m.Y,
					Dashed: true,
				})
			}
			m.Lines = append(m.Lines, Line{X1: scale.Scale(s.Start), X2: scale.Scale(s.Stop), Y: m.Y})
		}
	case clinvar.CategoryOtherLoF:
		m.Shape, m.Area, m.Rotation = ShapeCross, crossSymbolArea, 45
	case clinvar.CategoryMissense:
		m.Shape = ShapeTriangle
		m.Y++
	case clinvar.CategorySpliceRegion:
		m.Shape = ShapeDiamond
	}
	return m
}

// Markers styles every point of a track in row order.
func Markers(t *Track, scale Scaler, highlight clinvar.Category) []Marker {
	var out []Marker
	for _, row := range t.Rows {
		for _, p := range row {
			out = append(out, MarkerFor(p, t.Height, scale, highlight))
		}
	}
	return out
}
