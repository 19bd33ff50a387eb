package layout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomItems(seed int64, n int) []Item {
	rng := rand.New(rand.NewSource(seed))
	items := make([]Item, n)
	for i := range items {
		start := float64(rng.Intn(1000))
		end := start
		if rng.Intn(4) == 0 {
			end += float64(rng.Intn(60))
		}
		items[i] = Item{Key: i, XStart: start, XEnd: end}
	}
	return items
}

func TestPack_IdenticalPoints(t *testing.T) {
	rows := Pack([]Item{{Key: 0, XStart: 50, XEnd: 50}, {Key: 1, XStart: 50, XEnd: 50}}, 9)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0][0].Key)
	assert.Equal(t, 1, rows[1][0].Key)
}

func TestPack_SpacingBoundary(t *testing.T) {
	rows := Pack([]Item{{Key: 0, XStart: 0, XEnd: 0}, {Key: 1, XStart: 9, XEnd: 9}}, 9)
	assert.Len(t, rows, 1, "exactly one spacing apart fits")

	rows = Pack([]Item{{Key: 0, XStart: 0, XEnd: 0}, {Key: 1, XStart: 8.5, XEnd: 8.5}}, 9)
	assert.Len(t, rows, 2)

	rows = Pack([]Item{{Key: 0, XStart: 20, XEnd: 20}, {Key: 1, XStart: 10, XEnd: 10}}, 9)
	assert.Len(t, rows, 1, "left neighbour more than spacing away fits")
}

func TestPack_FirstFit(t *testing.T) {
	rows := Pack([]Item{
		{Key: 0, XStart: 0, XEnd: 100},
		{Key: 1, XStart: 50, XEnd: 50},
		{Key: 2, XStart: 200, XEnd: 200},
		{Key: 3, XStart: 52, XEnd: 52},
	}, 9)
	require.Len(t, rows, 3)
	assert.Equal(t, []Item{{Key: 0, XStart: 0, XEnd: 100}, {Key: 2, XStart: 200, XEnd: 200}}, rows[0])
	assert.Equal(t, 1, rows[1][0].Key)
	assert.Equal(t, 3, rows[2][0].Key)
}

func TestPack_Empty(t *testing.T) {
	assert.Empty(t, Pack(nil, 9))
}

func TestPack_NoOverlapWithinRow(t *testing.T) {
	const spacing = 9
	for seed := int64(1); seed <= 20; seed++ {
		rows := Pack(randomItems(seed, 300), spacing)
		for r, row := range rows {
			for i := range row {
				for j := i + 1; j < len(row); j++ {
					a, b := row[i], row[j]
					ok := a.XEnd+spacing <= b.XStart || b.XEnd+spacing <= a.XStart
					assert.True(t, ok, "seed %d row %d: %+v and %+v overlap", seed, r, a, b)
				}
			}
		}
	}
}

func TestPack_Deterministic(t *testing.T) {
	items := randomItems(42, 200)
	assert.Equal(t, Pack(items, 9), Pack(items, 9))
}

func TestPacker_RowCountMonotonic(t *testing.T) {
	p := NewPacker(9)
	prev := 0
	for _, it := range randomItems(7, 200) {
		row := p.Add(it)
		assert.Less(t, row, p.RowCount())
		assert.GreaterOrEqual(t, p.RowCount(), prev)
		prev = p.RowCount()
	}
}
