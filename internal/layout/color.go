package layout

import (
	"fmt"
	"sync"
)

// ColorCache assigns each identifier a stable pseudo-random hue. It is safe
// for concurrent use; callers share one cache per rendering context.
type ColorCache struct {
	mu     sync.Mutex
	colors map[string]string
}

// NewColorCache creates an empty cache.
func NewColorCache() *ColorCache {
	return &ColorCache{colors: make(map[string]string)}
}

// Color returns the colour for id, computing it on first use.
func (c *ColorCache) Color(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok := c.colors[id]; ok {
		return col
	}
	col := hashColor(id)
	c.colors[id] = col
	return col
}

// Len returns the number of cached colours.
func (c *ColorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.colors)
}

// hashColor derives a fully saturated hue from the sum of the character
// codes in id using a linear congruential step.
func hashColor(id string) string {
	var seed int64
	for _, r := range id {
		seed += int64(r)
	}
	hash := (seed*9301 + 49297) % 233280
	return fmt.Sprintf("hsl(%d, 100%%, 50%%)", hash%360)
}
