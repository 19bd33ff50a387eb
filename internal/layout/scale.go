package layout

import (
	"sort"

	"github.com/inodb/vibe-track/internal/cache"
)

// Scaler maps a genomic position to a horizontal pixel coordinate. It
// must be monotonic over the visible window.
type Scaler interface {
	Scale(pos int64) float64
}

// ScaleFunc adapts a function to the Scaler interface.
type ScaleFunc func(pos int64) float64

// Scale calls f(pos).
func (f ScaleFunc) Scale(pos int64) float64 { return f(pos) }

// LinearScale maps [Start, Stop] linearly onto [0, Width].
type LinearScale struct {
	Start int64
	Stop  int64
	Width float64
}

// Scale implements Scaler.
func (s LinearScale) Scale(pos int64) float64 {
	if s.Stop <= s.Start {
		return 0
	}
	return float64(pos-s.Start) / float64(s.Stop-s.Start) * s.Width
}

// Region is an inclusive genomic interval shown by a RegionScale.
type Region struct {
	Start int64
	Stop  int64
}

// RegionScale shows only selected regions (typically padded exons) side by
// side, collapsing everything between them. Positions between regions map
// to the boundary of the next region.
type RegionScale struct {
	regions []Region
	offsets []int64 // cumulative shown bases before each region
	total   int64
	width   float64
}

// NewRegionScale merges overlapping regions and scales their combined
// length onto [0, width].
func NewRegionScale(regions []Region, width float64) *RegionScale {
	rs := make([]Region, len(regions))
	copy(rs, regions)
	sort.Slice(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })

	var merged []Region
	for _, r := range rs {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].Stop+1 {
			merged[n-1].Stop = max(merged[n-1].Stop, r.Stop)
			continue
		}
		merged = append(merged, r)
	}

	s := &RegionScale{regions: merged, width: width}
	for _, r := range merged {
		s.offsets = append(s.offsets, s.total)
		s.total += r.Stop - r.Start + 1
	}
	return s
}

// NewExonScale builds a RegionScale over a transcript's exons, each padded
// by padding bases on both sides. Only CDS features are used when the
// transcript has any, matching the coding-region view.
func NewExonScale(t *cache.Transcript, padding int64, width float64) *RegionScale {
	exons := t.CodingExons()
	if len(exons) == 0 {
		exons = t.SortedExons()
	}
	regions := make([]Region, 0, len(exons))
	for _, e := range exons {
		regions = append(regions, Region{Start: e.Start - padding, Stop: e.Stop + padding})
	}
	return NewRegionScale(regions, width)
}

// Regions returns the merged regions shown by the scale.
func (s *RegionScale) Regions() []Region {
	return s.regions
}

// Scale implements Scaler.
func (s *RegionScale) Scale(pos int64) float64 {
	if s.total == 0 {
		return 0
	}
	// First region ending at or after pos.
	i := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].Stop >= pos
	})
	var shown int64
	switch {
	case i == len(s.regions):
		shown = s.total
	case pos < s.regions[i].Start:
		shown = s.offsets[i]
	default:
		shown = s.offsets[i] + pos - s.regions[i].Start
	}
	return float64(shown) / float64(s.total) * s.width
}
