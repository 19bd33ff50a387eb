package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-track/internal/cache"
	"github.com/inodb/vibe-track/internal/clinvar"
)

func TestHighlighted(t *testing.T) {
	assert.True(t, Highlighted(clinvar.CategoryMissense, ""))
	assert.True(t, Highlighted(clinvar.CategoryMissense, clinvar.CategoryMissense))
	assert.False(t, Highlighted(clinvar.CategoryMissense, clinvar.CategoryFrameshift))
	assert.True(t, Highlighted(clinvar.CategorySynonymous, clinvar.CategoryOther))
	assert.False(t, Highlighted(clinvar.CategoryOther, clinvar.CategorySynonymous))
}

func TestMarkerFor_Shapes(t *testing.T) {
	tests := []struct {
		consequence string
		shape       Shape
		rotation    float64
		area        float64
		y           float64
	}{
		{"stop_gained", ShapeCross, 45, 40, 5},
		{"missense_variant", ShapeTriangle, 0, 32, 6},
		{"splice_region_variant", ShapeDiamond, 0, 32, 5},
		{"synonymous_variant", ShapeCircle, 0, 32, 5},
		{"intron_variant", ShapeCircle, 0, 32, 5},
	}
	for _, tt := range tests {
		t.Run(tt.consequence, func(t *testing.T) {
			tr := NewEngine(DefaultConfig()).Layout(
				[]*clinvar.Variant{variant("v", 150, "Pathogenic", tt.consequence)}, nil, identity)
			m := MarkerFor(tr.Rows[0][0], tr.Height, identity, "")
			assert.Equal(t, tt.shape, m.Shape)
			assert.Equal(t, tt.rotation, m.Rotation)
			assert.Equal(t, tt.area, m.Area)
			assert.Equal(t, 150.0, m.X)
			assert.Equal(t, tt.y, m.Y)
			assert.Equal(t, "#E6573D", m.Fill)
			assert.Equal(t, "#666", m.Stroke)
			assert.Equal(t, 1.0, m.Opacity)
		})
	}
}

func TestMarkerFor_Frameshift(t *testing.T) {
	tx := transcript("ENST1", cache.StrandPlus, cds(100, 109), cds(200, 249))
	v := frameshift(105, "p.Leu2GlufsTer7")
	v.ClinicalSignificance = "Benign"

	tr := NewEngine(DefaultConfig()).Layout([]*clinvar.Variant{v}, []*cache.Transcript{tx}, identity)
	m := MarkerFor(tr.Rows[0][0], tr.Height, identity, "")

	assert.Equal(t, ShapeCross, m.Shape)
	assert.Equal(t, 45.0, m.Rotation)
	assert.Equal(t, 211.0, m.X, "drawn at the termination site")
	assert.Equal(t, "#5CA943", m.Fill)
	require.Len(t, m.Lines, 3)
	assert.Equal(t, Line{X1: 105, X2: 109, Y: 5}, m.Lines[0])
	assert.Equal(t, Line{X1: 109, X2: 200, Y: 5, Dashed: true}, m.Lines[1])
	assert.Equal(t, Line{X1: 200, X2: 211, Y: 5}, m.Lines[2])
}

func TestMarkers_Dimming(t *testing.T) {
	tr := NewEngine(DefaultConfig()).Layout([]*clinvar.Variant{
		variant("mis", 100, "Pathogenic", "missense_variant"),
		variant("syn", 300, "Pathogenic", "synonymous_variant"),
	}, nil, identity)

	ms := Markers(tr, identity, clinvar.CategoryOther)
	require.Len(t, ms, 2)
	assert.Equal(t, 0.2, ms[0].Opacity)
	assert.Equal(t, 1.0, ms[1].Opacity)
}
