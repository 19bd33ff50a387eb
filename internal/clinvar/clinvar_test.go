package clinvar

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-track/internal/cache"
)

func TestSignificanceCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Significance
	}{
		{"Pathogenic", SignificancePathogenic},
		{"Likely pathogenic", SignificancePathogenic},
		{"Pathogenic/Likely pathogenic", SignificancePathogenic},
		{"Uncertain significance", SignificanceUncertain},
		{"Conflicting interpretations of pathogenicity", SignificanceUncertain},
		{"Benign/Likely benign", SignificanceBenign},
		{"Likely benign, risk factor", SignificancePathogenic},
		{"Benign, Uncertain significance", SignificanceUncertain},
		{"drug response", SignificanceOther},
		{"not provided", SignificanceOther},
		{"", SignificanceOther},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SignificanceCategory(&Variant{ClinicalSignificance: tt.input}))
		})
	}
}

func TestConsequenceCategory(t *testing.T) {
	tests := []struct {
		consequence string
		want        Category
	}{
		{"frameshift_variant", CategoryFrameshift},
		{"stop_gained", CategoryOtherLoF},
		{"splice_donor_variant", CategoryOtherLoF},
		{"splice_acceptor_variant", CategoryOtherLoF},
		{"missense_variant", CategoryMissense},
		{"inframe_deletion", CategoryMissense},
		{"start_lost", CategoryMissense},
		{"splice_region_variant", CategorySpliceRegion},
		{"synonymous_variant", CategorySynonymous},
		{"intron_variant", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConsequenceCategory(&Variant{MajorConsequence: tt.consequence}), tt.consequence)
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCategory("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseCategory("nonsense")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Variant{ID: "1-100-A-T", Pos: 100, ClinicalSignificance: "Benign"}).Validate())

	var verr *ValidationError
	err := (&Variant{Pos: 100, ClinicalSignificance: "Benign"}).Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "variant_id", verr.Field)

	err = (&Variant{ID: "x", Pos: 0, ClinicalSignificance: "Benign"}).Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "pos", verr.Field)

	err = (&Variant{ID: "x", Pos: 5}).Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "clinical_significance", verr.Field)
}

const testVariantsTSV = "# exported from the browser\n" +
	"variant_id\tpos\tclinical_significance\thgvsp\tmajor_consequence\ttranscript_id\tgold_stars\n" +
	"1-103-A-AT\t103\tPathogenic\tp.Leu2GlufsTer5\tframeshift_variant\tENST1\t2\n" +
	"chr1-150-C-T\t150\tBenign\t.\tsynonymous_variant\tENST1\t1\n"

func TestReadTSV(t *testing.T) {
	variants, err := ReadTSV(strings.NewReader(testVariantsTSV))
	require.NoError(t, err)
	require.Len(t, variants, 2)

	v := variants[0]
	assert.Equal(t, "1-103-A-AT", v.ID)
	assert.Equal(t, "1", v.Chrom, "chrom derived from variant ID")
	assert.Equal(t, int64(103), v.Pos)
	assert.Equal(t, "p.Leu2GlufsTer5", v.HGVSp)
	assert.Equal(t, 2, v.GoldStars)
	assert.True(t, v.IsFrameshift())

	assert.Empty(t, variants[1].HGVSp, "dot means empty")
	assert.Equal(t, "1", variants[1].NormalizeChrom())
}

func TestReadTSV_Errors(t *testing.T) {
	_, err := ReadTSV(strings.NewReader("variant_id\tpos\n1-1-A-T\t1\n"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Line)

	_, err = ReadTSV(strings.NewReader("variant_id\tpos\tclinical_significance\n1-1-A-T\tabc\tBenign\n"))
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)

	_, err = ReadTSV(strings.NewReader("# only comments\n"))
	assert.Error(t, err)
}

func TestReadJSON_Envelope(t *testing.T) {
	doc := `{"data": {"gene": {"clinvar_variants": [
	  {"variant_id": "1-103-A-AT", "pos": 103, "clinical_significance": "Pathogenic", "hgvsp": "p.Leu2GlufsTer5"}
	]}}}`
	variants, err := ReadJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "1", variants[0].Chrom)

	_, err = ReadJSON(strings.NewReader(`[{"variant_id": "x", "clinical_significance": "Benign"}]`))
	assert.Error(t, err, "missing pos is rejected")
}

func TestReadFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variants.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(testVariantsTSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	variants, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, variants, 2)
}

func TestReadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variants.json")
	require.NoError(t, os.WriteFile(path, []byte(`
	  [{"variant_id": "2-10-A-T", "pos": 10, "clinical_significance": "Benign"}]`), 0644))
	variants, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "2", variants[0].Chrom)
}

func TestDefaultFilter(t *testing.T) {
	small := &cache.Transcript{Exons: []cache.Exon{{Start: 1, Stop: 1000, FeatureType: cache.FeatureCDS}}}
	assert.Equal(t, FilterAll, DefaultFilter(small))

	medium := &cache.Transcript{Exons: []cache.Exon{{Start: 1, Stop: 16000, FeatureType: cache.FeatureCDS}}}
	assert.Equal(t, FilterMissenseOrLoF, DefaultFilter(medium))

	large := &cache.Transcript{Exons: []cache.Exon{
		{Start: 1, Stop: 20000, FeatureType: cache.FeatureCDS},
		{Start: 30000, Stop: 50000, FeatureType: cache.FeatureCDS},
		{Start: 60000, Stop: 90000, FeatureType: cache.FeatureUTR},
	}}
	assert.Equal(t, FilterLoF, DefaultFilter(large))
	assert.Equal(t, FilterAll, DefaultFilter(nil))
}

func TestFilterApply(t *testing.T) {
	variants := []*Variant{
		{ID: "a", MajorConsequence: "frameshift_variant"},
		{ID: "b", MajorConsequence: "missense_variant"},
		{ID: "c", MajorConsequence: "synonymous_variant"},
		{ID: "d", MajorConsequence: "stop_gained", GoldStars: 3},
	}
	ids := func(vs []*Variant) []string {
		var out []string
		for _, v := range vs {
			out = append(out, v.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(FilterAll.Apply(variants)))
	assert.Equal(t, []string{"a", "b", "d"}, ids(FilterMissenseOrLoF.Apply(variants)))
	assert.Equal(t, []string{"a", "d"}, ids(FilterLoF.Apply(variants)))
	assert.Equal(t, []string{"d"}, ids(MinGoldStars(variants, 2)))

	f, err := ParseFilter("lof")
	require.NoError(t, err)
	assert.Equal(t, FilterLoF, f)
	_, err = ParseFilter("bogus")
	assert.Error(t, err)
}

func TestIndex_InRegion(t *testing.T) {
	variants := []*Variant{
		{ID: "v0", Chrom: "1", Pos: 500},
		{ID: "v1", Chrom: "1", Pos: 100},
		{ID: "v2", Chrom: "chr1", Pos: 200},
		{ID: "v3", Chrom: "2", Pos: 150},
		{ID: "v4", Chrom: "1", Pos: 201},
	}
	idx, err := NewIndex(variants)
	require.NoError(t, err)
	assert.Equal(t, 5, idx.Len())

	var ids []string
	for _, v := range idx.InRegion("chr1", 100, 200) {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"v1", "v2"}, ids, "inclusive bounds, input order")

	assert.Len(t, idx.InRegion("1", 1, 1000), 4)
	assert.Empty(t, idx.InRegion("1", 300, 400))
	assert.Empty(t, idx.InRegion("X", 1, 1000))
	assert.Empty(t, idx.InRegion("1", 1000, 1))
}
