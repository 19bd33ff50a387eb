package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-track/internal/cache"
	"github.com/inodb/vibe-track/internal/clinvar"
	"github.com/inodb/vibe-track/internal/layout"
)

var identity = layout.ScaleFunc(func(pos int64) float64 { return float64(pos) })

// testTrack lays out a frameshift spanning an intron and a missense variant.
func testTrack(t *testing.T) *layout.Track {
	t.Helper()
	tx, err := cache.NewTranscript("ENST1", cache.StrandPlus, []cache.Exon{
		{Start: 100, Stop: 109, FeatureType: cache.FeatureCDS},
		{Start: 200, Stop: 249, FeatureType: cache.FeatureCDS},
	})
	require.NoError(t, err)

	variants := []*clinvar.Variant{
		{
			ID: "1-105-AC-A", Chrom: "1", Pos: 105,
			HGVSp: "p.Leu2GlufsTer7", MajorConsequence: "frameshift_variant",
			ClinicalSignificance: "Pathogenic", TranscriptID: "ENST1",
		},
		{
			ID: "1-150-G-T", Chrom: "1", Pos: 150,
			HGVSp: "p.Gly17Val", MajorConsequence: "missense_variant",
			ClinicalSignificance: "Uncertain significance", TranscriptID: "ENST1",
		},
	}
	return layout.NewEngine(layout.DefaultConfig()).Layout(variants, []*cache.Transcript{tx}, identity)
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := buf.String()
	for _, col := range []string{"#Track", "Variant_ID", "Row", "X_start", "Terminus", "Exon_segments", "Shape"} {
		assert.Contains(t, header, col)
	}
}

func TestTabWriter_WriteTrack(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteTrack("GENE1", testTrack(t), identity))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	fs := strings.Split(lines[0], "\t")
	require.Len(t, fs, 17)
	assert.Equal(t, "GENE1", fs[0])
	assert.Equal(t, "1-105-AC-A", fs[1])
	assert.Equal(t, "1:105", fs[2])
	assert.Equal(t, "pathogenic", fs[6])
	assert.Equal(t, "frameshift", fs[7])
	assert.Equal(t, "0", fs[9])
	assert.Equal(t, "105", fs[10])
	assert.Equal(t, "211", fs[11])
	assert.Equal(t, "5", fs[12])
	assert.Equal(t, "211", fs[13])
	assert.Equal(t, "105-109,200-211", fs[14])
	assert.Equal(t, "cross", fs[15])
	assert.Equal(t, "1", fs[16])

	ms := strings.Split(lines[1], "\t")
	assert.Equal(t, "1", ms[9], "missense overlaps the frameshift span")
	assert.Equal(t, "15", ms[12])
	assert.Equal(t, "-", ms[13])
	assert.Equal(t, "-", ms[14])
	assert.Equal(t, "triangle", ms[15])
}

func TestTabWriter_Highlight(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)
	w.SetHighlight(clinvar.CategoryMissense)

	require.NoError(t, w.WriteTrack("", testTrack(t), identity))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "0.2", strings.Split(lines[0], "\t")[16])
	assert.Equal(t, "1", strings.Split(lines[1], "\t")[16])
	assert.True(t, strings.HasPrefix(lines[0], "-\t"), "empty track name")
}
