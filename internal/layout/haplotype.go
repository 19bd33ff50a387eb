package layout

import (
	"encoding/json"
	"fmt"
	"io"
)

// HaplotypeVariant is one phased variant within a haplotype group.
type HaplotypeVariant struct {
	Locus    string   `json:"locus"`
	Position int64    `json:"position"`
	Chrom    string   `json:"chrom,omitempty"`
	Alleles  []string `json:"alleles"`
}

// HaplotypeSample identifies a sample carrying a haplotype.
type HaplotypeSample struct {
	SampleID string `json:"sample_id"`
}

// HaplotypeGroup is a genomic region shared by a set of samples.
type HaplotypeGroup struct {
	Start    int64              `json:"start"`
	Stop     int64              `json:"stop"`
	Samples  []HaplotypeSample  `json:"samples"`
	Variants []HaplotypeVariant `json:"-"`
}

// UnmarshalJSON accepts variants either as a list or nested as
// {"variants": {"variants": [...]}}.
func (g *HaplotypeGroup) UnmarshalJSON(data []byte) error {
	type plain HaplotypeGroup
	var raw struct {
		plain
		Variants json.RawMessage `json:"variants"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = HaplotypeGroup(raw.plain)
	if len(raw.Variants) == 0 || string(raw.Variants) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw.Variants, &g.Variants); err == nil {
		return nil
	}
	var set struct {
		Variants []HaplotypeVariant `json:"variants"`
	}
	if err := json.Unmarshal(raw.Variants, &set); err != nil {
		return fmt.Errorf("haplotype group %d-%d variants: %w", g.Start, g.Stop, err)
	}
	g.Variants = set.Variants
	return nil
}

// ReadHaplotypeGroups decodes a JSON array of groups or an object with a
// "groups" field.
func ReadHaplotypeGroups(r io.Reader) ([]HaplotypeGroup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading haplotype groups: %w", err)
	}
	var groups []HaplotypeGroup
	if err := json.Unmarshal(data, &groups); err == nil {
		return groups, nil
	}
	var wrapped struct {
		Groups []HaplotypeGroup `json:"groups"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing haplotype groups: %w", err)
	}
	return wrapped.Groups, nil
}

// Haplotype track geometry.
const (
	haplotypeTop       = 22.5
	haplotypeRowStep   = 20.0
	haplotypeBarHeight = 15.0
	haplotypeRowHeight = 25.0
	haplotypeRadius    = 4.0
	// Alleles longer than this are drawn as structural events.
	haplotypeLongAllele = 5

	haplotypeBarFill   = "#d3d3d3"
	haplotypeDeletion  = "#FF0000"
	haplotypeInsertion = "#0000FF"
)

// RegionColor shades a group by how many samples share it.
func RegionColor(numSamples int) string {
	switch {
	case numSamples > 2:
		return "#b35806"
	case numSamples > 1:
		return "#f1a340"
	default:
		return "#fee0b6"
	}
}

// HaplotypeMark is a variant drawn on a haplotype row: a circle, or a
// dashed vertical bar for long deletions and insertions.
type HaplotypeMark struct {
	Variant *HaplotypeVariant
	X       float64
	Y       float64 // circle centre, or bar top
	Y2      float64 // bar bottom, equal to Y for circles
	Radius  float64
	Dashed  bool
	Color   string
}

// HaplotypeRow is one group laid out on its own row.
type HaplotypeRow struct {
	Group       *HaplotypeGroup
	X           float64
	Width       float64
	Y           float64 // top of the background bar
	BarHeight   float64
	LineY       float64
	Fill        string
	RegionColor string
	Marks       []HaplotypeMark
}

// HaplotypeTrack is the layout of a set of haplotype groups.
type HaplotypeTrack struct {
	Rows   []HaplotypeRow
	Height float64
}

// LayoutHaplotypes places each group on its own row in input order.
// Short variants are coloured per locus from colors.
func LayoutHaplotypes(groups []HaplotypeGroup, scale Scaler, colors *ColorCache) *HaplotypeTrack {
	track := &HaplotypeTrack{Height: float64(len(groups)) * haplotypeRowHeight}
	for i := range groups {
		g := &groups[i]
		x1, x2 := scale.Scale(g.Start), scale.Scale(g.Stop)
		top := haplotypeTop + float64(i)*haplotypeRowStep
		row := HaplotypeRow{
			Group:       g,
			X:           x1,
			Width:       x2 - x1,
			Y:           top,
			BarHeight:   haplotypeBarHeight,
			LineY:       top + haplotypeBarHeight/2,
			Fill:        haplotypeBarFill,
			RegionColor: RegionColor(len(g.Samples)),
		}
		for j := range g.Variants {
			row.Marks = append(row.Marks, haplotypeMark(&g.Variants[j], row, scale, colors))
		}
		track.Rows = append(track.Rows, row)
	}
	return track
}

func haplotypeMark(v *HaplotypeVariant, row HaplotypeRow, scale Scaler, colors *ColorCache) HaplotypeMark {
	m := HaplotypeMark{Variant: v, X: scale.Scale(v.Position)}
	var ref, alt string
	if len(v.Alleles) > 0 {
		ref = v.Alleles[0]
	}
	if len(v.Alleles) > 1 {
		alt = v.Alleles[1]
	}
	switch {
	case len(ref) > haplotypeLongAllele:
		m.Dashed, m.Color = true, haplotypeDeletion
	case len(alt) > haplotypeLongAllele:
		m.Dashed, m.Color = true, haplotypeInsertion
	}
	if m.Dashed {
		m.Y, m.Y2 = row.Y, row.Y+row.BarHeight
		return m
	}
	m.Color = colors.Color(v.Locus)
	m.Y, m.Y2 = row.LineY, row.LineY
	m.Radius = haplotypeRadius
	return m
}
