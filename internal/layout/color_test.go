package layout

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorCache(t *testing.T) {
	c := NewColorCache()
	assert.Equal(t, "hsl(14, 100%, 50%)", c.Color("a"))
	assert.Equal(t, c.Color("a"), c.Color("a"))
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, c.Color("ab"), c.Color("ba"))
	assert.Equal(t, 3, c.Len(), "ab and ba are memoised separately")

	// Only the character sum matters, whichever cache computes it.
	other := NewColorCache()
	assert.Equal(t, c.Color("ab"), other.Color("ba"))
	assert.Equal(t, c.Color("ac"), other.Color("bb"))
	assert.NotEqual(t, c.Color("ab"), other.Color("ac"))
}

func TestColorCache_Concurrent(t *testing.T) {
	c := NewColorCache()
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				c.Color(fmt.Sprintf("1-%d-A-T", (i+w)%50))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}

func TestColorCache_Independent(t *testing.T) {
	a, b := NewColorCache(), NewColorCache()
	a.Color("x")
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, a.Color("x"), b.Color("x"))
}
