package perceptron

import (
	"errors"
	"testing"
)

func TestGetCurrentAbsent(t *testing.T) {
	s := NewStore(3)
	if got := s.GetCurrent(42, 1); got != 0 {
		t.Errorf("GetCurrent absent = %v, want 0", got)
	}
	if got := s.GetAveraged(42, 1); got != 0 {
		t.Errorf("GetAveraged absent = %v, want 0", got)
	}
	if s.Len() != 0 {
		t.Errorf("reading created %d cells", s.Len())
	}
}

func TestUpdateWeightLazyCreate(t *testing.T) {
	s := NewStore(2)
	if err := s.UpdateWeight(7, 0, 1.5); err != nil {
		t.Fatal(err)
	}
	if got := s.GetCurrent(7, 0); got != 1.5 {
		t.Errorf("GetCurrent = %v, want 1.5", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	// The sibling class must not have been created.
	if got := s.GetCurrent(7, 1); got != 0 {
		t.Errorf("GetCurrent sibling = %v, want 0", got)
	}
}

func TestUpdateWeightLazyTotal(t *testing.T) {
	s := NewStore(2)
	// Weight 2.0 at time 0, clock advances to 5, then another touch.
	if err := s.UpdateWeight(7, 0, 2.0); err != nil {
		t.Fatal(err)
	}
	for range 5 {
		s.advanceTime()
	}
	if err := s.UpdateWeight(7, 0, 1.0); err != nil {
		t.Fatal(err)
	}
	c := s.arena.at(s.cells[cellKey{7, 0}])
	// total integrates 2.0 held over 5 ticks.
	if c.total != 10.0 {
		t.Errorf("total = %v, want 10.0", c.total)
	}
	if c.last != 5 {
		t.Errorf("last = %v, want 5", c.last)
	}
	if c.current != 3.0 {
		t.Errorf("current = %v, want 3.0", c.current)
	}
}

func TestUpdateWeightZeroDeltaAdvancesBookkeeping(t *testing.T) {
	s := NewStore(2)
	if err := s.UpdateWeight(7, 0, 2.0); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		s.advanceTime()
	}
	if err := s.UpdateWeight(7, 0, 0); err != nil {
		t.Fatal(err)
	}
	c := s.arena.at(s.cells[cellKey{7, 0}])
	if c.current != 2.0 {
		t.Errorf("current = %v, want 2.0 (unchanged)", c.current)
	}
	if c.total != 6.0 || c.last != 3 {
		t.Errorf("total, last = %v, %v; want 6.0, 3", c.total, c.last)
	}
}

func TestGetAveragedIdempotent(t *testing.T) {
	s := NewStore(2)
	if err := s.UpdateWeight(7, 0, 1.0); err != nil {
		t.Fatal(err)
	}
	s.advanceTime()
	s.advanceTime()
	first := s.GetAveraged(7, 0)
	second := s.GetAveraged(7, 0)
	if first != second {
		t.Errorf("GetAveraged not idempotent: %v then %v", first, second)
	}
	if first != 1.0 {
		t.Errorf("GetAveraged = %v, want 1.0", first)
	}
}

func TestGetAveragedIntegratesGap(t *testing.T) {
	s := NewStore(2)
	// current = 4 for the first tick, then 0 updates for three more ticks:
	// averaged = 4*4/4 = 4 (constant weight integrates to itself).
	if err := s.UpdateWeight(7, 0, 4.0); err != nil {
		t.Fatal(err)
	}
	for range 4 {
		s.advanceTime()
	}
	if got := s.GetAveraged(7, 0); got != 4.0 {
		t.Errorf("GetAveraged = %v, want 4.0", got)
	}
}

func TestLastUpdateNeverExceedsGlobalTime(t *testing.T) {
	s := NewStore(2)
	for i := range 10 {
		if err := s.UpdateWeight(uint64(i%3), Class(i%2), 0.5); err != nil {
			t.Fatal(err)
		}
		s.advanceTime()
		for key, h := range s.cells {
			if c := s.arena.at(h); c.last > s.time {
				t.Fatalf("cell %v: last %d > global time %d", key, c.last, s.time)
			}
		}
	}
}

func TestArenaExhaustionLeavesStoreConsistent(t *testing.T) {
	s := NewStore(2, WithMaxCells(1))
	if err := s.UpdateWeight(1, 0, 1.0); err != nil {
		t.Fatal(err)
	}
	err := s.UpdateWeight(2, 0, 1.0)
	if !errors.Is(err, ErrArenaExhausted) {
		t.Fatalf("err = %v, want ErrArenaExhausted", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after failed update, want 1", s.Len())
	}
	if got := s.GetCurrent(1, 0); got != 1.0 {
		t.Errorf("existing cell disturbed: %v", got)
	}
	// The existing cell can still be updated.
	if err := s.UpdateWeight(1, 0, 0.5); err != nil {
		t.Errorf("update of existing cell failed: %v", err)
	}
}

func TestReset(t *testing.T) {
	s := NewStore(2)
	if err := s.UpdateWeight(1, 0, 1.0); err != nil {
		t.Fatal(err)
	}
	s.advanceTime()
	s.Reset()
	if s.Len() != 0 || s.Time() != 0 {
		t.Errorf("Reset left %d cells, time %d", s.Len(), s.Time())
	}
	if got := s.GetCurrent(1, 0); got != 0 {
		t.Errorf("GetCurrent after Reset = %v, want 0", got)
	}
}
