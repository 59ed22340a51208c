package perceptron

import "fmt"

// weightCell is one weight store entry. The total accumulates
// current * elapsed-time lazily; last is the global time of the most recent
// touch and never exceeds the store's global time.
type weightCell struct {
	current float64
	total   float64
	last    uint64
}

const slabSize = 4096

// cellArena hands out weightCells from fixed-size slabs. Handles are indices
// that stay valid until Reset; cells are never freed individually, the whole
// arena is dropped in bulk when the store is torn down.
type cellArena struct {
	slabs [][]weightCell
	count int
	max   int // 0 means unbounded
}

func newCellArena(maxCells int) *cellArena {
	return &cellArena{max: maxCells}
}

// alloc returns a handle to a zeroed cell, or ErrArenaExhausted when the
// configured capacity is reached.
func (a *cellArena) alloc() (int32, error) {
	if a.max > 0 && a.count >= a.max {
		return 0, fmt.Errorf("%w: %d cells", ErrArenaExhausted, a.max)
	}
	if a.count%slabSize == 0 {
		a.slabs = append(a.slabs, make([]weightCell, slabSize))
	}
	h := int32(a.count)
	a.count++
	return h, nil
}

// at returns the cell for a handle. Handles come only from alloc, so no
// bounds check is needed on the hot path.
func (a *cellArena) at(h int32) *weightCell {
	return &a.slabs[int(h)/slabSize][int(h)%slabSize]
}

// len reports the number of allocated cells.
func (a *cellArena) len() int {
	return a.count
}

// fits reports whether n more cells can be allocated.
func (a *cellArena) fits(n int) bool {
	return a.max == 0 || a.count+n <= a.max
}

// reset drops every slab at once.
func (a *cellArena) reset() {
	a.slabs = nil
	a.count = 0
}
