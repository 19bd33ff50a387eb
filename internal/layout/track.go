package layout

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-track/internal/cache"
	"github.com/inodb/vibe-track/internal/clinvar"
)

// Point is a variant placed on the track.
type Point struct {
	Variant      *clinvar.Variant
	Significance clinvar.Significance
	Category     clinvar.Category
	XStart       float64
	XEnd         float64
	Row          int
	Y            float64 // vertical centre of the row, from the bottom
	// Terminus is the genomic frameshift termination site, or the variant
	// position for everything else.
	Terminus int64
	// Segments are the exonic parts of a frameshift span, ascending.
	Segments []Segment
}

// IsFrameshift reports whether the point is drawn as a span.
func (p *Point) IsFrameshift() bool {
	return p.Category == clinvar.CategoryFrameshift
}

// Track is the result of laying out one variant set.
type Track struct {
	Rows      [][]*Point
	RowHeight float64
	Height    float64
}

// Points returns all placed points row by row.
func (t *Track) Points() []*Point {
	var out []*Point
	for _, row := range t.Rows {
		out = append(out, row...)
	}
	return out
}

// Engine lays out variant tracks.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// NewEngine creates an engine. The config must already be valid.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, logger: zap.NewNop()}
}

// SetLogger sets a logger for layout diagnostics.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Layout resolves frameshift spans, packs variants into rows tier by tier
// and assigns each row its vertical position. Identical inputs always
// produce identical tracks.
func (e *Engine) Layout(variants []*clinvar.Variant, transcripts []*cache.Transcript, scale Scaler) *Track {
	byID := make(map[string]*cache.Transcript, len(transcripts))
	for _, t := range transcripts {
		byID[t.ID] = t
	}

	tiers := make([][]*Point, len(e.cfg.Tiers)+1)
	for _, v := range variants {
		p := e.place(v, byID, scale)
		i := e.cfg.tierIndex(p.Significance)
		tiers[i] = append(tiers[i], p)
	}

	packer := NewPacker(e.cfg.PointSpacing)
	var rows [][]*Point
	for _, tier := range tiers {
		for _, p := range tier {
			row := packer.Add(Item{XStart: p.XStart, XEnd: p.XEnd})
			if row == len(rows) {
				rows = append(rows, nil)
			}
			p.Row = row
			p.Y = e.cfg.RowHeight * (float64(row) + 0.5)
			rows[row] = append(rows[row], p)
		}
	}

	e.logger.Debug("laid out track",
		zap.Int("variants", len(variants)),
		zap.Int("rows", len(rows)))

	return &Track{
		Rows:      rows,
		RowHeight: e.cfg.RowHeight,
		Height:    float64(len(rows)) * e.cfg.RowHeight,
	}
}

func (e *Engine) place(v *clinvar.Variant, transcripts map[string]*cache.Transcript, scale Scaler) *Point {
	p := &Point{
		Variant:      v,
		Significance: clinvar.SignificanceCategory(v),
		Category:     clinvar.ConsequenceCategory(v),
		Terminus:     v.Pos,
	}
	x := scale.Scale(v.Pos)
	p.XStart, p.XEnd = x, x

	if !p.IsFrameshift() {
		return p
	}
	t, ok := transcripts[v.TranscriptID]
	if !ok {
		e.logger.Debug("frameshift transcript not loaded",
			zap.String("variant", v.ID),
			zap.String("transcript", v.TranscriptID))
		return p
	}
	p.Terminus = Terminus(v, t)
	x2 := scale.Scale(p.Terminus)
	p.XStart, p.XEnd = min(x, x2), max(x, x2)
	p.Segments = FrameshiftSegments(t, v.Pos, p.Terminus)
	return p
}
