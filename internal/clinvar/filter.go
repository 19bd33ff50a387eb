package clinvar

import (
	"fmt"

	"github.com/inodb/vibe-track/internal/cache"
)

// Filter selects a subset of variants by consequence.
type Filter string

// Consequence filters.
const (
	FilterAll           Filter = "all"
	FilterMissenseOrLoF Filter = "missenseOrLoF"
	FilterLoF           Filter = "lof"
)

// Padding added to each side of a CDS region when sizing a gene.
const cdsPadding = 75

// Padded CDS sizes above which the default filter narrows.
const (
	lofFilterThreshold      = 40000
	missenseFilterThreshold = 15000
)

// ParseFilter validates a filter name.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterAll, FilterMissenseOrLoF, FilterLoF:
		return Filter(s), nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown variant filter %q (want all, missenseOrLoF or lof)", s)
}

// DefaultFilter picks a filter from the padded CDS size of a transcript so
// very large genes start with a readable number of variants.
func DefaultFilter(t *cache.Transcript) Filter {
	if t == nil {
		return FilterAll
	}
	var total int64
	for _, e := range t.Exons {
		if e.IsCoding() {
			total += (e.Stop - e.Start) + cdsPadding*2
		}
	}
	switch {
	case total > lofFilterThreshold:
		return FilterLoF
	case total > missenseFilterThreshold:
		return FilterMissenseOrLoF
	}
	return FilterAll
}

// Apply returns the variants passing the filter, in input order.
func (f Filter) Apply(variants []*Variant) []*Variant {
	if f == FilterAll || f == "" {
		return variants
	}
	out := make([]*Variant, 0, len(variants))
	for _, v := range variants {
		switch f {
		case FilterLoF:
			if IsLoF(v.MajorConsequence) {
				out = append(out, v)
			}
		case FilterMissenseOrLoF:
			if IsMissenseOrLoF(v.MajorConsequence) {
				out = append(out, v)
			}
		}
	}
	return out
}

// MinGoldStars returns the variants with at least n review stars.
func MinGoldStars(variants []*Variant, n int) []*Variant {
	if n <= 0 {
		return variants
	}
	out := make([]*Variant, 0, len(variants))
	for _, v := range variants {
		if v.GoldStars >= n {
			out = append(out, v)
		}
	}
	return out
}
