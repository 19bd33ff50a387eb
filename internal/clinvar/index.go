package clinvar

import (
	"sort"

	"github.com/biogo/store/interval"
)

// Index answers genomic window queries over a fixed variant set.
type Index struct {
	trees map[string]*interval.IntTree
	count int
}

// indexed wraps a variant as a one-base half-open interval.
type indexed struct {
	v   *Variant
	seq uintptr
}

func (n indexed) Overlap(b interval.IntRange) bool {
	return int(n.v.Pos)+1 > b.Start && int(n.v.Pos) < b.End
}
func (n indexed) ID() uintptr { return n.seq }
func (n indexed) Range() interval.IntRange {
	return interval.IntRange{Start: int(n.v.Pos), End: int(n.v.Pos) + 1}
}

// window is an inclusive [start, stop] query.
type window struct {
	start, stop int
}

func (w window) Overlap(b interval.IntRange) bool {
	return b.End > w.start && b.Start < w.stop+1
}

// NewIndex builds an index over variants, keyed by normalized chromosome.
func NewIndex(variants []*Variant) (*Index, error) {
	idx := &Index{trees: make(map[string]*interval.IntTree)}
	for i, v := range variants {
		chrom := v.NormalizeChrom()
		t, ok := idx.trees[chrom]
		if !ok {
			t = &interval.IntTree{}
			idx.trees[chrom] = t
		}
		if err := t.Insert(indexed{v: v, seq: uintptr(i)}, true); err != nil {
			return nil, err
		}
		idx.count++
	}
	for _, t := range idx.trees {
		t.AdjustRanges()
	}
	return idx, nil
}

// Len returns the number of indexed variants.
func (idx *Index) Len() int {
	return idx.count
}

// InRegion returns the variants with start <= pos <= stop on chrom, in the
// order they were given to NewIndex.
func (idx *Index) InRegion(chrom string, start, stop int64) []*Variant {
	t, ok := idx.trees[NormalizeChrom(chrom)]
	if !ok || stop < start {
		return nil
	}
	hits := t.Get(window{start: int(start), stop: int(stop)})
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].ID() < hits[j].ID()
	})
	out := make([]*Variant, len(hits))
	for i, h := range hits {
		out[i] = h.(indexed).v
	}
	return out
}
