package output

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-track/internal/layout"
)

// wellFormed reports whether s parses as XML.
func wellFormed(s string) error {
	dec := xml.NewDecoder(strings.NewReader(s))
	for {
		if _, err := dec.Token(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func TestSVGWriter_WriteTrack(t *testing.T) {
	var buf bytes.Buffer
	w := NewSVGWriter(&buf, 600)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteTrack("GENE1 <canonical>", testTrack(t), identity))
	require.NoError(t, w.Flush())

	out := buf.String()
	require.NoError(t, wellFormed(out))

	// 20 plot + 25 legend + 25 axis + 10 gap
	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="600" height="80">`))
	assert.Contains(t, out, `<title>GENE1 &lt;canonical&gt;</title>`)
	assert.Contains(t, out, `data-variant-id="1-105-AC-A"`)
	assert.Contains(t, out, `stroke-dasharray="2 5"`, "intron connector")
	assert.Contains(t, out, `transform="translate(211,15) rotate(45)"`, "cross at the terminus")
	assert.Contains(t, out, `transform="translate(150,6) rotate(0)"`, "missense triangle nudged down")
	assert.Contains(t, out, `fill="#E6573D"`)
	assert.Contains(t, out, `fill="#FAB470"`)
	assert.Contains(t, out, "Missense / Inframe indel")
	assert.Contains(t, out, `<line x1="0" y1="45" x2="600" y2="45" stroke="#424242"/>`)
}

func TestSVGWriter_NoLegend(t *testing.T) {
	var buf bytes.Buffer
	w := NewSVGWriter(&buf, 600)
	w.SetLegend(false)
	require.NoError(t, w.WriteTrack("", testTrack(t), identity))
	require.NoError(t, w.Flush())
	assert.NotContains(t, buf.String(), "Frameshift")
}

func TestSVGWriter_Stacked(t *testing.T) {
	groups := []layout.HaplotypeGroup{{
		Start: 100, Stop: 200,
		Variants: []layout.HaplotypeVariant{
			{Locus: "1-150", Position: 150, Alleles: []string{"A", "T"}},
			{Locus: "1-160", Position: 160, Alleles: []string{"ACGTACG", "A"}},
		},
	}}

	var buf bytes.Buffer
	w := NewSVGWriter(&buf, 300)
	require.NoError(t, w.WriteTrack("variants", testTrack(t), identity))
	require.NoError(t, w.WriteHaplotypes("haplotypes", layout.LayoutHaplotypes(groups, identity, layout.NewColorCache())))
	require.NoError(t, w.Flush())

	out := buf.String()
	require.NoError(t, wellFormed(out))
	assert.Contains(t, out, `<g class="haplotype-track" transform="translate(0,80)">`)
	assert.Contains(t, out, `stroke="#FF0000" stroke-dasharray="4 2"`)
	assert.Contains(t, out, `<circle cx="150" cy="30" r="4"`)
	assert.Contains(t, out, `height="115"`)
}

func TestSymbolPath(t *testing.T) {
	for _, s := range []layout.Shape{layout.ShapeCircle, layout.ShapeCross, layout.ShapeTriangle, layout.ShapeDiamond} {
		d := symbolPath(s, 32)
		assert.True(t, strings.HasPrefix(d, "M"), s)
		assert.NotContains(t, d, "NaN", s)
	}
	assert.Equal(t, "M-3.79,-1.26L-1.26,-1.26L-1.26,-3.79L1.26,-3.79L1.26,-1.26L3.79,-1.26L3.79,1.26L1.26,1.26L1.26,3.79L-1.26,3.79L-1.26,1.26L-3.79,1.26Z",
		symbolPath(layout.ShapeCross, 32))
}
