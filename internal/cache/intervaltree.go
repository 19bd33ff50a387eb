package cache

import "sort"

// IntervalTree answers overlap queries over items with closed genomic
// spans. Items are sorted by start once; a running maximum of stops lets
// a query skip every prefix that ends before the window.
type IntervalTree[T any] struct {
	items  []spanned[T]
	maxEnd []int64 // maxEnd[i] = max stop over items[:i+1]
}

type spanned[T any] struct {
	start, stop int64
	item        T
}

// BuildIntervalTree indexes items by the span returned for each one.
// Items with equal starts keep their input order.
func BuildIntervalTree[T any](items []T, span func(T) (start, stop int64)) *IntervalTree[T] {
	t := &IntervalTree[T]{items: make([]spanned[T], len(items))}
	for i, it := range items {
		start, stop := span(it)
		t.items[i] = spanned[T]{start: start, stop: stop, item: it}
	}
	sort.SliceStable(t.items, func(i, j int) bool {
		return t.items[i].start < t.items[j].start
	})

	t.maxEnd = make([]int64, len(t.items))
	for i, s := range t.items {
		t.maxEnd[i] = s.stop
		if i > 0 && t.maxEnd[i-1] > s.stop {
			t.maxEnd[i] = t.maxEnd[i-1]
		}
	}
	return t
}

// transcriptTree indexes transcripts by their genomic extent.
func transcriptTree(transcripts []*Transcript) *IntervalTree[*Transcript] {
	return BuildIntervalTree(transcripts, func(t *Transcript) (int64, int64) {
		return t.Start, t.Stop
	})
}

// Len returns the number of indexed items.
func (t *IntervalTree[T]) Len() int {
	return len(t.items)
}

// FindOverlaps returns the items whose span contains pos.
func (t *IntervalTree[T]) FindOverlaps(pos int64) []T {
	return t.FindOverlapsRange(pos, pos)
}

// FindOverlapsRange returns the items intersecting [start, stop] in
// ascending start order.
func (t *IntervalTree[T]) FindOverlapsRange(start, stop int64) []T {
	if stop < start {
		return nil
	}
	// Only items[:hi] start at or before stop.
	hi := sort.Search(len(t.items), func(i int) bool {
		return t.items[i].start > stop
	})
	// Everything before lo ends before start.
	lo := sort.Search(hi, func(i int) bool {
		return t.maxEnd[i] >= start
	})

	var out []T
	for _, s := range t.items[lo:hi] {
		if s.stop >= start {
			out = append(out, s.item)
		}
	}
	return out
}
