package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/vibe-track/internal/cache"
	"github.com/inodb/vibe-track/internal/clinvar"
)

func cds(start, stop int64) cache.Exon {
	return cache.Exon{Start: start, Stop: stop, FeatureType: cache.FeatureCDS}
}

func utr(start, stop int64) cache.Exon {
	return cache.Exon{Start: start, Stop: stop, FeatureType: cache.FeatureUTR}
}

func transcript(id string, strand cache.Strand, exons ...cache.Exon) *cache.Transcript {
	return &cache.Transcript{ID: id, Chrom: "1", Strand: strand, Exons: exons}
}

func frameshift(pos int64, hgvsp string) *clinvar.Variant {
	return &clinvar.Variant{
		ID:                   "1-" + hgvsp,
		Chrom:                "1",
		Pos:                  pos,
		HGVSp:                hgvsp,
		MajorConsequence:     clinvar.ConsequenceFrameshift,
		ClinicalSignificance: "Pathogenic",
		TranscriptID:         "ENST1",
	}
}

func TestParseFrameshift(t *testing.T) {
	tests := []struct {
		hgvsp string
		want  Frameshift
		ok    bool
	}{
		{"p.Leu2GlufsTer5", Frameshift{Codon: 2, Termination: 5}, true},
		{"p.Arg97ProfsTer23", Frameshift{Codon: 97, Termination: 23}, true},
		{"p.Arg97ProfsTer?", Frameshift{Codon: 97}, true},
		{"p.arg97profster23", Frameshift{Codon: 97, Termination: 23}, true},
		{"p.Leu2fsTer5", Frameshift{}, false},
		{"p.Leu2Glu", Frameshift{}, false},
		{"p.Leu2GlufsTer5extra", Frameshift{}, false},
		{"c.4delT", Frameshift{}, false},
		{"", Frameshift{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.hgvsp, func(t *testing.T) {
			got, ok := ParseFrameshift(tt.hgvsp)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminus_SingleExon(t *testing.T) {
	tx := transcript("ENST1", cache.StrandPlus, cds(100, 200))

	assert.Equal(t, int64(115), Terminus(frameshift(103, "p.Leu2GlufsTer5"), tx))
	assert.Equal(t, int64(200), Terminus(frameshift(103, "p.Leu2GlufsTer?"), tx),
		"unknown termination runs to the end of the transcript")
}

func TestTerminus_Fallbacks(t *testing.T) {
	tx := transcript("ENST1", cache.StrandPlus, cds(100, 200))

	tests := []struct {
		name string
		v    *clinvar.Variant
		tx   *cache.Transcript
	}{
		{"no transcript", frameshift(103, "p.Leu2GlufsTer5"), nil},
		{"no hgvsp", frameshift(103, ""), tx},
		{"missense notation", frameshift(103, "p.Leu2Glu"), tx},
		{"no new amino acid", frameshift(103, "p.Leu2fsTer5"), tx},
		{"no CDS", frameshift(103, "p.Leu2GlufsTer5"), transcript("ENST1", cache.StrandPlus, utr(100, 200))},
		{"no exons", frameshift(103, "p.Leu2GlufsTer5"), transcript("ENST1", cache.StrandPlus)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, int64(103), Terminus(tt.v, tt.tx))
		})
	}
}

func TestTerminus_MultiExonPlus(t *testing.T) {
	tx := transcript("ENST1", cache.StrandPlus,
		utr(50, 99), cds(100, 109), cds(200, 249), utr(300, 400))

	// 15 bases: 10 in the first CDS exon, 5 into the second.
	assert.Equal(t, int64(205), Terminus(frameshift(103, "p.Leu2GlufsTer5"), tx))
	assert.Equal(t, int64(400), Terminus(frameshift(103, "p.Leu2GlufsTer?"), tx))
}

func TestTerminus_MultiExonMinus(t *testing.T) {
	tx := transcript("ENST1", cache.StrandMinus,
		utr(50, 60), cds(100, 149), cds(300, 309))

	// Transcription starts at 309: 10 bases in [300,309], 5 more into [100,149].
	assert.Equal(t, int64(144), Terminus(frameshift(305, "p.Leu2GlufsTer5"), tx))
	assert.Equal(t, int64(50), Terminus(frameshift(305, "p.Leu2GlufsTer?"), tx))
}

func TestTerminus_OffsetBeyondTranscript(t *testing.T) {
	plus := transcript("ENST1", cache.StrandPlus, cds(100, 200))
	assert.Equal(t, int64(200), Terminus(frameshift(103, "p.Leu50GlufsTer10"), plus))

	minus := transcript("ENST1", cache.StrandMinus, cds(100, 200))
	assert.Equal(t, int64(100), Terminus(frameshift(197, "p.Leu50GlufsTer10"), minus))
}

func TestTerminus_HugeCodonNumbers(t *testing.T) {
	plus := transcript("ENST1", cache.StrandPlus, cds(100, 200))
	minus := transcript("ENST1", cache.StrandMinus, cds(100, 200))

	for _, hgvsp := range []string{
		"p.Leu4000000000000000000GlufsTer5",
		"p.Leu2GlufsTer4000000000000000000",
		"p.Leu4611686018427387904GlufsTer4611686018427387904",
	} {
		assert.Equal(t, int64(200), Terminus(frameshift(103, hgvsp), plus), hgvsp)
		assert.Equal(t, int64(100), Terminus(frameshift(197, hgvsp), minus), hgvsp)
	}

	// Values beyond int64 are not frameshifts at all.
	assert.Equal(t, int64(103), Terminus(frameshift(103, "p.Leu99999999999999999999GlufsTer5"), plus))
}

func TestTerminus_StrandMirror(t *testing.T) {
	// Reflect coordinates through 300: [100,200] maps onto itself.
	plus := transcript("ENST1", cache.StrandPlus, cds(100, 200))
	minus := transcript("ENST1", cache.StrandMinus, cds(100, 200))

	for _, hgvsp := range []string{"p.Leu2GlufsTer5", "p.Leu10GlufsTer3", "p.Leu2GlufsTer?"} {
		t.Run(hgvsp, func(t *testing.T) {
			p := Terminus(frameshift(103, hgvsp), plus)
			m := Terminus(frameshift(197, hgvsp), minus)
			assert.Greater(t, p, int64(103), "plus strand terminus is downstream")
			assert.Less(t, m, int64(197), "minus strand terminus is downstream")
			assert.Equal(t, 300-p, m)
		})
	}
}

func TestFrameshiftSegments(t *testing.T) {
	tx := transcript("ENST1", cache.StrandPlus, cds(300, 400), cds(100, 109), cds(200, 249))

	want := []Segment{{Start: 105, Stop: 109}, {Start: 200, Stop: 211}}
	assert.Equal(t, want, FrameshiftSegments(tx, 105, 211))
	assert.Equal(t, want, FrameshiftSegments(tx, 211, 105), "order of bounds does not matter")

	assert.Equal(t, []Segment{{Start: 103, Stop: 103}}, FrameshiftSegments(tx, 103, 103))
	assert.Empty(t, FrameshiftSegments(tx, 150, 160), "intronic span has no segments")
	assert.Nil(t, FrameshiftSegments(nil, 105, 211))
}
