package layout

import (
	"fmt"

	"github.com/inodb/vibe-track/internal/clinvar"
)

// Default layout parameters.
const (
	DefaultPointSpacing = 9.0
	DefaultRowHeight    = 10.0
)

// Config controls how variants are packed into rows.
type Config struct {
	// Tiers are packed in order; every variant in an earlier tier is
	// placed before any variant in a later one. Significance categories
	// not listed form one last implicit tier.
	Tiers        []clinvar.Significance `mapstructure:"tiers"`
	PointSpacing float64                `mapstructure:"point_spacing"`
	RowHeight    float64                `mapstructure:"row_height"`
}

// DefaultConfig returns the standard tier order and spacing.
func DefaultConfig() Config {
	tiers := make([]clinvar.Significance, len(clinvar.Significances))
	copy(tiers, clinvar.Significances)
	return Config{
		Tiers:        tiers,
		PointSpacing: DefaultPointSpacing,
		RowHeight:    DefaultRowHeight,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.PointSpacing < 0 {
		return fmt.Errorf("point spacing must not be negative, got %v", c.PointSpacing)
	}
	if c.RowHeight <= 0 {
		return fmt.Errorf("row height must be positive, got %v", c.RowHeight)
	}
	seen := make(map[clinvar.Significance]bool, len(c.Tiers))
	for _, tier := range c.Tiers {
		if _, ok := clinvar.SignificanceColors[tier]; !ok {
			return fmt.Errorf("unknown tier %q", tier)
		}
		if seen[tier] {
			return fmt.Errorf("duplicate tier %q", tier)
		}
		seen[tier] = true
	}
	return nil
}

// tierIndex returns the packing tier of a significance category.
func (c Config) tierIndex(s clinvar.Significance) int {
	for i, tier := range c.Tiers {
		if tier == s {
			return i
		}
	}
	return len(c.Tiers)
}
