// Package cache provides transcript models and loaders for track layout.
package cache

import (
	"sort"
)

// Cache holds transcripts for layout, indexed by chromosome and by ID.
type Cache struct {
	// transcripts stores transcripts indexed by chromosome
	transcripts map[string][]*Transcript
	byID        map[string]*Transcript
	genes       map[string]*Gene
	trees       map[string]*IntervalTree[*Transcript] // built lazily, reset on add
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		transcripts: make(map[string][]*Transcript),
		byID:        make(map[string]*Transcript),
		genes:       make(map[string]*Gene),
		trees:       make(map[string]*IntervalTree[*Transcript]),
	}
}

// AddTranscript adds a transcript to the cache. A transcript with an ID
// already present replaces the earlier one in the ID index.
func (c *Cache) AddTranscript(t *Transcript) {
	chrom := t.Chrom
	c.transcripts[chrom] = append(c.transcripts[chrom], t)
	c.byID[t.ID] = t
	delete(c.trees, chrom)
}

// AddGene adds a gene and all of its transcripts.
func (c *Cache) AddGene(g *Gene) {
	c.genes[g.ID] = g
	if g.Name != "" {
		c.genes[g.Name] = g
	}
	for _, t := range g.Transcripts {
		if t.Chrom == "" {
			t.Chrom = g.Chrom
		}
		c.AddTranscript(t)
	}
}

// GetGene returns a gene by ID or symbol, or nil if not found.
func (c *Cache) GetGene(key string) *Gene {
	return c.genes[key]
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
func (c *Cache) GetTranscript(id string) *Transcript {
	return c.byID[id]
}

// Transcripts returns the transcripts with the given IDs, skipping unknown IDs.
func (c *Cache) Transcripts(ids ...string) []*Transcript {
	var out []*Transcript
	for _, id := range ids {
		if t := c.byID[id]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

// FindTranscripts returns all transcripts that overlap a given genomic position.
func (c *Cache) FindTranscripts(chrom string, pos int64) []*Transcript {
	tree := c.tree(chrom)
	if tree == nil {
		return nil
	}
	return tree.FindOverlaps(pos)
}

// FindTranscriptsInRegion returns all transcripts overlapping [start, stop].
func (c *Cache) FindTranscriptsInRegion(chrom string, start, stop int64) []*Transcript {
	tree := c.tree(chrom)
	if tree == nil {
		return nil
	}
	return tree.FindOverlapsRange(start, stop)
}

func (c *Cache) tree(chrom string) *IntervalTree[*Transcript] {
	if t, ok := c.trees[chrom]; ok {
		return t
	}
	transcripts, ok := c.transcripts[chrom]
	if !ok {
		return nil
	}
	t := transcriptTree(transcripts)
	c.trees[chrom] = t
	return t
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, transcripts := range c.transcripts {
		count += len(transcripts)
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.transcripts))
	for chrom := range c.transcripts {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FindTranscriptsByChrom returns all transcripts for a chromosome.
func (c *Cache) FindTranscriptsByChrom(chrom string) []*Transcript {
	return c.transcripts[chrom]
}

// Genes returns each gene once, ordered by chromosome, start and ID.
func (c *Cache) Genes() []*Gene {
	seen := make(map[*Gene]bool, len(c.genes))
	var genes []*Gene
	for _, g := range c.genes {
		if !seen[g] {
			seen[g] = true
			genes = append(genes, g)
		}
	}
	sort.Slice(genes, func(i, j int) bool {
		a, b := genes[i], genes[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
	return genes
}
