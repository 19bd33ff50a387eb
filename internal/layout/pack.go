package layout

// Item is a horizontal span to be placed in a packed row. Point features
// have XStart == XEnd. Key identifies the item to the caller.
type Item struct {
	Key    int
	XStart float64
	XEnd   float64
}

// Packer assigns items to rows greedily: each item goes in the first row
// where it collides with nothing already placed, or in a new row.
// Placement order is the order of Add calls; earlier items are never moved.
type Packer struct {
	spacing float64
	rows    [][]Item
}

// NewPacker creates a packer with the given padding on each side of an item.
func NewPacker(spacing float64) *Packer {
	return &Packer{spacing: spacing}
}

// Add places an item and returns its row index.
func (p *Packer) Add(it Item) int {
	for i, row := range p.rows {
		if !p.collides(row, it) {
			p.rows[i] = append(row, it)
			return i
		}
	}
	p.rows = append(p.rows, []Item{it})
	return len(p.rows) - 1
}

func (p *Packer) collides(row []Item, it Item) bool {
	for _, q := range row {
		if it.XStart < q.XEnd+p.spacing && it.XEnd >= q.XStart-p.spacing {
			return true
		}
	}
	return false
}

// Rows returns the rows placed so far.
func (p *Packer) Rows() [][]Item {
	return p.rows
}

// RowCount returns the number of rows placed so far.
func (p *Packer) RowCount() int {
	return len(p.rows)
}

// Pack places items in order and returns the rows. An empty input yields
// no rows.
func Pack(items []Item, spacing float64) [][]Item {
	p := NewPacker(spacing)
	for _, it := range items {
		p.Add(it)
	}
	return p.Rows()
}
