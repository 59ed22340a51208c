// Package perceptron implements a sparse multi-class averaged perceptron.
//
// Weights live in a hashed sparse store keyed by (feature id, class). Each
// cell carries a running total and a timestamp so that the time-averaged
// weight can be reconstructed lazily at query time (Collins 2002) instead of
// being accumulated on every training step. Scoring is read-only and safe to
// run from multiple goroutines against one store; all mutation goes through
// a single Trainer.
package perceptron

import "errors"

// Feature is one entry of a sparse feature vector. IDs are hashes of a
// feature template plus its value; collisions between templates are a
// tolerated approximation.
type Feature struct {
	ID    uint64  `json:"id"`
	Value float64 `json:"value"`
}

// Class identifies one of the discrete output labels.
type Class int

// Instance is a single training example. It is consumed once by the Trainer
// and then discarded.
type Instance struct {
	// Features is the expanded sparse feature vector.
	Features []Feature

	// Guess is the class predicted by the current model.
	Guess Class

	// Best is the gold or cost-minimizing class.
	Best Class

	// Costs optionally maps each class to its misclassification cost,
	// indexed by class. When present it must cover Best.
	Costs []float64
}

// Validation and resource errors surfaced by the store and trainer.
var (
	// ErrArenaExhausted is returned when the weight store cannot allocate
	// another cell. The store is left in its last consistent state.
	ErrArenaExhausted = errors.New("weight arena exhausted")

	// ErrNoFeatures rejects an instance with an empty feature list.
	ErrNoFeatures = errors.New("instance has no features")

	// ErrMissingCost rejects an instance whose cost vector does not cover
	// its best class.
	ErrMissingCost = errors.New("cost vector does not cover best class")

	// ErrClassRange rejects an instance referencing a class outside the
	// store's class range.
	ErrClassRange = errors.New("class out of range")
)

// CostBest returns the cost-minimizing class for a dense cost vector.
// Ties resolve to the lowest class.
func CostBest(costs []float64) Class {
	best := Class(0)
	for c := 1; c < len(costs); c++ {
		if costs[c] < costs[best] {
			best = Class(c)
		}
	}
	return best
}
