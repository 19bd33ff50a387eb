package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/vibe-track/internal/cache"
)

func TestLinearScale(t *testing.T) {
	s := LinearScale{Start: 100, Stop: 200, Width: 1000}
	assert.Equal(t, 0.0, s.Scale(100))
	assert.Equal(t, 500.0, s.Scale(150))
	assert.Equal(t, 1000.0, s.Scale(200))

	assert.Equal(t, 0.0, LinearScale{Start: 5, Stop: 5, Width: 10}.Scale(7), "empty window")
}

func TestRegionScale(t *testing.T) {
	s := NewRegionScale([]Region{{Start: 200, Stop: 209}, {Start: 100, Stop: 109}}, 200)

	tests := []struct {
		pos  int64
		want float64
	}{
		{50, 0},
		{100, 0},
		{105, 50},
		{150, 100}, // intron collapses onto the next region
		{200, 100},
		{209, 190},
		{500, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Scale(tt.pos), "pos %d", tt.pos)
	}
}

func TestRegionScale_Merge(t *testing.T) {
	s := NewRegionScale([]Region{{Start: 100, Stop: 150}, {Start: 140, Stop: 200}, {Start: 201, Stop: 210}}, 100)
	assert.Equal(t, []Region{{Start: 100, Stop: 210}}, s.Regions())
}

func TestRegionScale_Monotonic(t *testing.T) {
	s := NewRegionScale([]Region{{Start: 100, Stop: 120}, {Start: 300, Stop: 340}, {Start: 700, Stop: 701}}, 640)
	prev := s.Scale(0)
	for pos := int64(1); pos < 1000; pos++ {
		x := s.Scale(pos)
		assert.GreaterOrEqual(t, x, prev, "pos %d", pos)
		prev = x
	}
}

func TestNewExonScale(t *testing.T) {
	tx := &cache.Transcript{Exons: []cache.Exon{
		{Start: 50, Stop: 99, FeatureType: cache.FeatureUTR},
		{Start: 100, Stop: 109, FeatureType: cache.FeatureCDS},
		{Start: 200, Stop: 209, FeatureType: cache.FeatureCDS},
	}}
	s := NewExonScale(tx, 5, 100)
	assert.Equal(t, []Region{{Start: 95, Stop: 114}, {Start: 195, Stop: 214}}, s.Regions())

	nc := &cache.Transcript{Exons: []cache.Exon{{Start: 10, Stop: 20, FeatureType: cache.FeatureExon}}}
	assert.Equal(t, []Region{{Start: 10, Stop: 20}}, NewExonScale(nc, 0, 100).Regions())
}
