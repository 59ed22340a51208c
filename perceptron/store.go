package perceptron

import "fmt"

// cellKey addresses one weight cell. Feature IDs are already 64-bit hashes;
// the class rides alongside instead of being folded into the hash so that
// distinct classes can never collide with each other.
type cellKey struct {
	fid   uint64
	class Class
}

// Store is the hashed sparse weight store. It owns every weight cell through
// an arena tied to its lifetime and owns the global training clock. Reads
// (GetCurrent, GetAveraged, Score*) never allocate and never mutate; writes
// happen only through a Trainer.
type Store struct {
	numClasses int
	cells      map[cellKey]int32
	arena      *cellArena
	time       uint64
}

// StoreOption configures a Store at construction.
type StoreOption func(*Store)

// WithMaxCells bounds the number of weight cells the store may allocate.
// Updates that would exceed the bound fail with ErrArenaExhausted.
func WithMaxCells(n int) StoreOption {
	return func(s *Store) {
		s.arena.max = n
	}
}

// NewStore creates an empty store over numClasses classes.
func NewStore(numClasses int, opts ...StoreOption) *Store {
	s := &Store{
		numClasses: numClasses,
		cells:      make(map[cellKey]int32),
		arena:      newCellArena(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NumClasses returns the number of classes the store scores over.
func (s *Store) NumClasses() int {
	return s.numClasses
}

// Time returns the global training clock: the number of training instances
// applied so far.
func (s *Store) Time() uint64 {
	return s.time
}

// Len returns the number of allocated weight cells.
func (s *Store) Len() int {
	return s.arena.len()
}

// GetCurrent returns the current weight for (fid, class), or 0 if no cell
// exists. Reading never creates a cell.
func (s *Store) GetCurrent(fid uint64, class Class) float64 {
	if h, ok := s.cells[cellKey{fid, class}]; ok {
		return s.arena.at(h).current
	}
	return 0
}

// GetAveraged returns the time-averaged weight for (fid, class). The cell's
// current value is treated as a step function of the global clock and
// integrated through the gap since its last touch, without writing anything
// back, so repeated queries are idempotent.
func (s *Store) GetAveraged(fid uint64, class Class) float64 {
	if s.time == 0 {
		return 0
	}
	h, ok := s.cells[cellKey{fid, class}]
	if !ok {
		return 0
	}
	c := s.arena.at(h)
	return (c.total + c.current*float64(s.time-c.last)) / float64(s.time)
}

// UpdateWeight applies a perceptron step of delta to (fid, class), creating
// the cell lazily. The cell's total is brought up to date before the change
// so the averaging clock stays correct; a zero delta therefore still
// advances the bookkeeping. The only failure is arena exhaustion.
func (s *Store) UpdateWeight(fid uint64, class Class, delta float64) error {
	key := cellKey{fid, class}
	h, ok := s.cells[key]
	if !ok {
		var err error
		h, err = s.arena.alloc()
		if err != nil {
			return fmt.Errorf("update weight (feature %d, class %d): %w", fid, class, err)
		}
		s.cells[key] = h
	}
	c := s.arena.at(h)
	c.total += c.current * float64(s.time-c.last)
	c.last = s.time
	c.current += delta
	return nil
}

// reserve verifies the arena has headroom for every cell the given feature
// and class pairs would create, without creating any. The Trainer uses it to
// make instance updates all-or-nothing under arena exhaustion.
func (s *Store) reserve(features []Feature, classes ...Class) error {
	missing := 0
	seen := make(map[cellKey]struct{}, len(features)*len(classes))
	for _, f := range features {
		for _, class := range classes {
			key := cellKey{f.ID, class}
			if _, ok := s.cells[key]; ok {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			missing++
		}
	}
	if !s.arena.fits(missing) {
		return fmt.Errorf("reserve %d cells: %w", missing, ErrArenaExhausted)
	}
	return nil
}

// advanceTime ticks the global clock by one training instance.
func (s *Store) advanceTime() {
	s.time++
}

// Reset drops every cell in bulk and rewinds the global clock.
func (s *Store) Reset() {
	s.cells = make(map[cellKey]int32)
	s.arena.reset()
	s.time = 0
}
