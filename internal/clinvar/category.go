package clinvar

import (
	"fmt"
	"strings"
)

// Significance is the coarse clinical significance category of a variant.
type Significance string

// Clinical significance categories, also the default packing tiers.
const (
	SignificancePathogenic Significance = "pathogenic"
	SignificanceUncertain  Significance = "uncertain"
	SignificanceBenign     Significance = "benign"
	SignificanceOther      Significance = "other"
)

// Significances lists the categories in default priority order.
var Significances = []Significance{
	SignificancePathogenic,
	SignificanceUncertain,
	SignificanceBenign,
	SignificanceOther,
}

// SignificanceColors are the marker fills per significance category.
var SignificanceColors = map[Significance]string{
	SignificancePathogenic: "#E6573D",
	SignificanceUncertain:  "#FAB470",
	SignificanceBenign:     "#5CA943",
	SignificanceOther:      "#bababa",
}

var significanceGroups = map[Significance]map[string]bool{
	SignificancePathogenic: {
		"Pathogenic":                    true,
		"Likely pathogenic":             true,
		"Pathogenic/Likely pathogenic":  true,
		"Pathogenic/Likely risk allele": true,
		"association":                   true,
		"risk factor":                   true,
	},
	SignificanceUncertain: {
		"Uncertain significance":                       true,
		"Conflicting interpretations of pathogenicity": true,
		"Conflicting classifications of pathogenicity": true,
		"conflicting data from submitters":             true,
	},
	SignificanceBenign: {
		"Benign":               true,
		"Likely benign":        true,
		"Benign/Likely benign": true,
	},
}

// SignificanceCategory maps a variant's clinical significance to a category.
// Comma-separated significances resolve to the highest-priority category
// any value belongs to.
func SignificanceCategory(v *Variant) Significance {
	values := splitSignificance(v.ClinicalSignificance)
	for _, cat := range Significances[:3] {
		group := significanceGroups[cat]
		for _, s := range values {
			if group[s] {
				return cat
			}
		}
	}
	return SignificanceOther
}

func splitSignificance(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Category is the consequence category used for marker shapes.
type Category string

// Consequence categories.
const (
	CategoryFrameshift   Category = "frameshift"
	CategoryOtherLoF     Category = "other_lof"
	CategoryMissense     Category = "missense"
	CategorySpliceRegion Category = "splice_region"
	CategorySynonymous   Category = "synonymous"
	CategoryOther        Category = "other"
)

// Categories lists every consequence category.
var Categories = []Category{
	CategoryFrameshift,
	CategoryOtherLoF,
	CategoryMissense,
	CategorySpliceRegion,
	CategorySynonymous,
	CategoryOther,
}

// ParseCategory validates a category name. The empty string is accepted
// and means no category.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown consequence category %q", s)
}

// ConsequenceCategory maps a variant's major consequence to a category.
func ConsequenceCategory(v *Variant) Category {
	switch v.MajorConsequence {
	case ConsequenceFrameshift:
		return CategoryFrameshift
	case ConsequenceStopGained, ConsequenceSpliceAcceptor,
		ConsequenceSpliceDonor, ConsequenceTranscriptAblated:
		return CategoryOtherLoF
	case ConsequenceMissense, ConsequenceInframeInsertion,
		ConsequenceInframeDeletion, ConsequenceStopLost,
		ConsequenceStartLost, ConsequenceProteinAltering:
		return CategoryMissense
	case ConsequenceSpliceRegion:
		return CategorySpliceRegion
	case ConsequenceSynonymous:
		return CategorySynonymous
	}
	return CategoryOther
}

// IsLoF returns true for putative loss-of-function consequences.
func IsLoF(consequence string) bool {
	switch consequence {
	case ConsequenceFrameshift, ConsequenceStopGained,
		ConsequenceSpliceAcceptor, ConsequenceSpliceDonor,
		ConsequenceTranscriptAblated:
		return true
	}
	return false
}

// IsMissenseOrLoF returns true for LoF or protein-altering consequences.
func IsMissenseOrLoF(consequence string) bool {
	if IsLoF(consequence) {
		return true
	}
	switch consequence {
	case ConsequenceMissense, ConsequenceInframeInsertion,
		ConsequenceInframeDeletion, ConsequenceStopLost,
		ConsequenceStartLost, ConsequenceProteinAltering:
		return true
	}
	return false
}
