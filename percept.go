// Package percept classifies sparse, hashed feature sets with an averaged
// perceptron, e.g. for per-token tagging decisions.
//
//	tagger, _ := percept.Load("model.json")
//	class := tagger.PredictAttrs(map[string]any{
//	    "word":     "dog",
//	    "prev-tag": "DT",
//	})
package percept

import (
	"fmt"

	"github.com/happyhackingspace/percept/perceptron"
)

// Tagger wraps a trained weight store for inference. Its methods are
// read-only and safe for concurrent use.
type Tagger struct {
	store        *perceptron.Store
	conjunctions bool
}

// Load loads a trained tagger from a model file.
func Load(path string) (*Tagger, error) {
	snap, err := perceptron.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("percept: %w", err)
	}
	store, err := perceptron.RestoreStore(snap)
	if err != nil {
		return nil, fmt.Errorf("percept: %w", err)
	}
	return &Tagger{store: store, conjunctions: snap.Conjunctions}, nil
}

// Save writes the tagger to a model file.
func (t *Tagger) Save(path string) error {
	if t.store == nil {
		return fmt.Errorf("percept: tagger not initialized")
	}
	snap := t.store.Snapshot()
	snap.Conjunctions = t.conjunctions
	if err := perceptron.SaveModel(snap, path); err != nil {
		return fmt.Errorf("percept: %w", err)
	}
	return nil
}

// Scores returns one score per class for an atomic feature vector. When the
// model was trained with conjunction features, the vector is expanded the
// same way before scoring.
func (t *Tagger) Scores(atomic []perceptron.Feature) []float64 {
	features := atomic
	if t.conjunctions {
		features = perceptron.Conjoin(atomic)
	}
	return t.store.Score(features)
}

// Predict returns the highest-scoring class for an atomic feature vector.
func (t *Tagger) Predict(atomic []perceptron.Feature) perceptron.Class {
	return perceptron.Decide(t.Scores(atomic))
}

// PredictAttrs hashes a raw attribute map and predicts its class.
func (t *Tagger) PredictAttrs(attrs map[string]any) perceptron.Class {
	return t.Predict(perceptron.Featurize(attrs))
}

// NumClasses returns the number of classes the tagger predicts over.
func (t *Tagger) NumClasses() int {
	return t.store.NumClasses()
}

// Cells returns the number of weight cells in the underlying store.
func (t *Tagger) Cells() int {
	return t.store.Len()
}
