package perceptron

import "fmt"

// Trainer applies the perceptron update rule to a Store. It is the single
// writer: construct one Trainer per store and keep scoring goroutines quiet
// while an update is in flight.
type Trainer struct {
	store *Store
}

// NewTrainer creates a Trainer over the given store.
func NewTrainer(store *Store) *Trainer {
	return &Trainer{store: store}
}

// Store returns the underlying weight store.
func (t *Trainer) Store() *Store {
	return t.store
}

// Update applies one training instance. When the guess differs from the best
// class, every feature's weight is pulled toward the best class and pushed
// away from the guess; either way the global clock advances by exactly one,
// so the clock counts instances seen, not weights touched.
//
// Updates are all-or-nothing: the instance is validated and arena headroom
// is reserved before the first weight is touched. A failed update leaves the
// store, including its clock, unchanged.
func (t *Trainer) Update(inst Instance) error {
	if err := t.validate(inst); err != nil {
		return err
	}
	if inst.Guess != inst.Best {
		if err := t.store.reserve(inst.Features, inst.Best, inst.Guess); err != nil {
			return err
		}
		for _, f := range inst.Features {
			if err := t.store.UpdateWeight(f.ID, inst.Best, f.Value); err != nil {
				return err
			}
			if err := t.store.UpdateWeight(f.ID, inst.Guess, -f.Value); err != nil {
				return err
			}
		}
	}
	t.store.advanceTime()
	return nil
}

func (t *Trainer) validate(inst Instance) error {
	if len(inst.Features) == 0 {
		return ErrNoFeatures
	}
	n := Class(t.store.numClasses)
	if inst.Best < 0 || inst.Best >= n {
		return fmt.Errorf("best class %d of %d: %w", inst.Best, n, ErrClassRange)
	}
	if inst.Guess < 0 || inst.Guess >= n {
		return fmt.Errorf("guess class %d of %d: %w", inst.Guess, n, ErrClassRange)
	}
	if inst.Costs != nil && int(inst.Best) >= len(inst.Costs) {
		return fmt.Errorf("best class %d, %d costs: %w", inst.Best, len(inst.Costs), ErrMissingCost)
	}
	return nil
}
