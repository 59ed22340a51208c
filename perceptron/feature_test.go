package perceptron

import "testing"

func TestHashFeatureDeterministic(t *testing.T) {
	a := HashFeature("word", "dog")
	b := HashFeature("word", "dog")
	if a != b {
		t.Error("same template/value hashed differently")
	}
	if HashFeature("word", "dog") == HashFeature("word", "cat") {
		t.Error("distinct values hashed identically")
	}
	if HashFeature("word", "dog") == HashFeature("prev", "dog") {
		t.Error("distinct templates hashed identically")
	}
}

func TestFeaturize(t *testing.T) {
	attrs := map[string]any{
		"word":     "dog",
		"suffixes": []string{"og", "g"},
		"is-title": true,
		"is-digit": false,
		"length":   3,
		"shape":    0.5,
	}
	features := Featurize(attrs)

	// is-digit=false is dropped; everything else contributes one feature
	// except the two-item list.
	if len(features) != 6 {
		t.Fatalf("len = %d, want 6", len(features))
	}

	byID := make(map[uint64]float64, len(features))
	for _, f := range features {
		byID[f.ID] = f.Value
	}
	if byID[HashFeature("word", "dog")] != 1.0 {
		t.Error("missing word=dog feature")
	}
	if byID[HashFeature("word", "cat")] != 0 {
		t.Error("unexpected word=cat feature")
	}
}

func TestFeaturizeNumericValue(t *testing.T) {
	features := Featurize(map[string]any{"length": 3})
	if len(features) != 1 {
		t.Fatalf("len = %d, want 1", len(features))
	}
	if features[0].Value != 3.0 {
		t.Errorf("value = %v, want 3.0", features[0].Value)
	}
}

func TestFeaturizeDeterministicOrder(t *testing.T) {
	attrs := map[string]any{"b": "2", "a": "1", "c": "3"}
	first := Featurize(attrs)
	second := Featurize(attrs)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("position %d differs across runs: %v vs %v", i, first[i], second[i])
		}
	}
}
