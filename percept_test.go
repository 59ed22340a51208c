package percept

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/happyhackingspace/percept/internal/storage"
	"github.com/happyhackingspace/percept/perceptron"
)

// buildCorpus writes a linearly separable two-class corpus into a fresh
// database and returns its path. Class 0 fires feature 100, class 1 fires
// feature 200, and both share feature 300.
func buildCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.db")
	s, err := storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	var lines []string
	for i := range 20 {
		label := i % 2
		fid := 100 + 100*label
		lines = append(lines, fmt.Sprintf(
			`{"label": %d, "features": [{"id": %d, "value": 1.0}, {"id": 300, "value": 1.0}]}`,
			label, fid))
	}
	if _, err := s.ImportJSONL(strings.NewReader(strings.Join(lines, "\n"))); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTrainAndPredict(t *testing.T) {
	path := buildCorpus(t)

	tagger, err := Train(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tagger.NumClasses() != 2 {
		t.Fatalf("NumClasses() = %d, want 2", tagger.NumClasses())
	}

	class0 := []perceptron.Feature{{ID: 100, Value: 1.0}, {ID: 300, Value: 1.0}}
	class1 := []perceptron.Feature{{ID: 200, Value: 1.0}, {ID: 300, Value: 1.0}}
	if got := tagger.Predict(class0); got != 0 {
		t.Errorf("Predict(class0) = %d, want 0", got)
	}
	if got := tagger.Predict(class1); got != 1 {
		t.Errorf("Predict(class1) = %d, want 1", got)
	}
}

func TestTrainEmptyCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	s, err := storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	if _, err := Train(path, nil); err == nil {
		t.Error("training on an empty corpus succeeded")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := buildCorpus(t)
	tagger, err := Train(path, &TrainConfig{Iterations: 3, Averaged: true})
	if err != nil {
		t.Fatal(err)
	}

	modelPath := filepath.Join(t.TempDir(), "model.json")
	if err := tagger.Save(modelPath); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(modelPath)
	if err != nil {
		t.Fatal(err)
	}

	features := []perceptron.Feature{{ID: 100, Value: 1.0}, {ID: 300, Value: 1.0}}
	want := tagger.Scores(features)
	got := loaded.Scores(features)
	for c := range want {
		if got[c] != want[c] {
			t.Errorf("class %d: loaded score %v, want %v", c, got[c], want[c])
		}
	}
}

func TestTrainWithConjunctions(t *testing.T) {
	path := buildCorpus(t)
	tagger, err := Train(path, &TrainConfig{Iterations: 3, Averaged: true, Conjunctions: true})
	if err != nil {
		t.Fatal(err)
	}

	modelPath := filepath.Join(t.TempDir(), "model.json")
	if err := tagger.Save(modelPath); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(modelPath)
	if err != nil {
		t.Fatal(err)
	}

	// Conjunction expansion must survive the roundtrip so inference sees the
	// same feature space as training.
	features := []perceptron.Feature{{ID: 100, Value: 1.0}, {ID: 300, Value: 1.0}}
	if got, want := loaded.Predict(features), tagger.Predict(features); got != want {
		t.Errorf("loaded prediction %d, want %d", got, want)
	}
}

func TestTrainArenaExhausted(t *testing.T) {
	path := buildCorpus(t)
	// The corpus needs 6 cells (3 feature ids x 2 classes); 2 cannot hold it.
	if _, err := Train(path, &TrainConfig{Iterations: 1, MaxCells: 2}); err == nil {
		t.Error("training with a tiny arena succeeded")
	}
}

func TestEvaluate(t *testing.T) {
	path := buildCorpus(t)
	result, err := Evaluate(path, &EvalConfig{Folds: 5})
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 20 {
		t.Errorf("Total = %d, want 20", result.Total)
	}
	if result.Accuracy < 0.9 {
		t.Errorf("Accuracy = %v on a separable corpus", result.Accuracy)
	}
	if len(result.Confusion) != 2 {
		t.Fatalf("confusion matrix has %d rows", len(result.Confusion))
	}
	diag := result.Confusion[0][0] + result.Confusion[1][1]
	if diag != result.Correct {
		t.Errorf("confusion diagonal %d != correct %d", diag, result.Correct)
	}
}
