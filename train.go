package percept

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/happyhackingspace/percept/internal/metrics"
	"github.com/happyhackingspace/percept/internal/storage"
	"github.com/happyhackingspace/percept/perceptron"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	// Iterations is the number of passes over the corpus.
	Iterations int

	// NumClasses fixes the class count; 0 infers max label + 1.
	NumClasses int

	// MaxCells bounds the weight arena; 0 means unbounded.
	MaxCells int

	// Averaged finalizes the model with time-averaged weights.
	Averaged bool

	// Conjunctions expands instances with pairwise conjunction features.
	Conjunctions bool

	Verbose bool
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() *TrainConfig {
	return &TrainConfig{
		Iterations: 5,
		Averaged:   true,
	}
}

// EvalConfig holds configuration for cross-validation.
type EvalConfig struct {
	Folds int
	Train *TrainConfig
}

// EvalResult holds cross-validation results.
type EvalResult struct {
	Accuracy   float64
	Correct    int
	Total      int
	NumClasses int
	// Confusion[true][predicted] counts test decisions.
	Confusion [][]int
}

// Train trains a tagger on the corpus database at dataPath.
func Train(dataPath string, config *TrainConfig) (*Tagger, error) {
	if config == nil {
		config = DefaultTrainConfig()
	}
	insts, err := loadCorpus(dataPath)
	if err != nil {
		return nil, err
	}
	numClasses := config.NumClasses
	if numClasses == 0 {
		numClasses = inferClasses(insts)
	}
	store, err := trainStore(insts, numClasses, config)
	if err != nil {
		return nil, fmt.Errorf("percept: %w", err)
	}
	return &Tagger{store: store, conjunctions: config.Conjunctions}, nil
}

// Evaluate runs k-fold cross-validation on the corpus at dataPath.
func Evaluate(dataPath string, config *EvalConfig) (*EvalResult, error) {
	nFolds := 10
	trainCfg := DefaultTrainConfig()
	if config != nil {
		if config.Folds > 0 {
			nFolds = config.Folds
		}
		if config.Train != nil {
			trainCfg = config.Train
		}
	}

	insts, err := loadCorpus(dataPath)
	if err != nil {
		return nil, err
	}
	if nFolds > len(insts) {
		nFolds = len(insts)
	}
	numClasses := trainCfg.NumClasses
	if numClasses == 0 {
		numClasses = inferClasses(insts)
	}

	result := &EvalResult{NumClasses: numClasses}
	result.Confusion = make([][]int, numClasses)
	for c := range numClasses {
		result.Confusion[c] = make([]int, numClasses)
	}

	for fold := range nFolds {
		var trainSet, testSet []storage.Instance
		for i, inst := range insts {
			if i%nFolds == fold {
				testSet = append(testSet, inst)
			} else {
				trainSet = append(trainSet, inst)
			}
		}

		store, err := trainStore(trainSet, numClasses, trainCfg)
		if err != nil {
			return nil, fmt.Errorf("percept: fold %d: %w", fold, err)
		}
		tagger := &Tagger{store: store, conjunctions: trainCfg.Conjunctions}

		for _, inst := range testSet {
			if inst.Label >= numClasses {
				continue
			}
			pred := tagger.Predict(atomicFeatures(inst))
			result.Confusion[inst.Label][pred]++
			if int(pred) == inst.Label {
				result.Correct++
			}
			result.Total++
		}
	}

	if result.Total > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Total)
	}
	return result, nil
}

func loadCorpus(dataPath string) ([]storage.Instance, error) {
	store, err := storage.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("percept: %w", err)
	}
	defer func() { _ = store.Close() }()

	insts, err := store.Instances()
	if err != nil {
		return nil, fmt.Errorf("percept: %w", err)
	}
	if len(insts) == 0 {
		return nil, fmt.Errorf("percept: no instances found in %s", dataPath)
	}
	return insts, nil
}

// trainStore runs the online perceptron loop: score, decide, update. The
// store's global clock ends up counting exactly the applied instances.
func trainStore(insts []storage.Instance, numClasses int, config *TrainConfig) (*perceptron.Store, error) {
	var opts []perceptron.StoreOption
	if config.MaxCells > 0 {
		opts = append(opts, perceptron.WithMaxCells(config.MaxCells))
	}
	store := perceptron.NewStore(numClasses, opts...)
	trainer := perceptron.NewTrainer(store)
	scores := make([]float64, numClasses)

	iterations := config.Iterations
	if iterations <= 0 {
		iterations = 1
	}
	for it := range iterations {
		mistakes, rejected := 0, 0
		for _, inst := range insts {
			features := expandedFeatures(inst, config.Conjunctions)
			store.ScoreInto(scores, features)
			guess := perceptron.Decide(scores)
			best := perceptron.Class(inst.Label)

			err := trainer.Update(perceptron.Instance{
				Features: features,
				Guess:    guess,
				Best:     best,
				Costs:    inst.Costs,
			})
			if err != nil {
				if errors.Is(err, perceptron.ErrArenaExhausted) {
					return nil, err
				}
				rejected++
				metrics.RecordInstanceRejected()
				slog.Warn("Skipping invalid instance", "error", err)
				continue
			}
			metrics.RecordInstanceTrained()
			if guess != best {
				mistakes++
			}
		}
		slog.Debug("Training iteration",
			"iteration", it+1, "mistakes", mistakes, "rejected", rejected, "cells", store.Len())
	}
	metrics.SetWeightCells(store.Len())

	if config.Averaged {
		return store.FinalizeAveraged()
	}
	return store, nil
}

func atomicFeatures(inst storage.Instance) []perceptron.Feature {
	if len(inst.Features) > 0 {
		return inst.Features
	}
	return perceptron.Featurize(inst.Attrs)
}

func expandedFeatures(inst storage.Instance, conjunctions bool) []perceptron.Feature {
	features := atomicFeatures(inst)
	if conjunctions {
		features = perceptron.Conjoin(features)
	}
	return features
}

func inferClasses(insts []storage.Instance) int {
	max := 0
	for _, inst := range insts {
		if inst.Label > max {
			max = inst.Label
		}
		if len(inst.Costs) > max+1 {
			max = len(inst.Costs) - 1
		}
	}
	return max + 1
}
