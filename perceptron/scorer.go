package perceptron

// Score returns one score per class for the given sparse feature vector:
// scores[c] = sum over features of current(f.ID, c) * f.Value. Feature IDs
// with no cell contribute nothing. Score performs no writes and may run
// concurrently with other reads against the same store.
func (s *Store) Score(features []Feature) []float64 {
	scores := make([]float64, s.numClasses)
	s.ScoreInto(scores, features)
	return scores
}

// ScoreInto is Score without the allocation; dst must have NumClasses
// entries and is overwritten.
func (s *Store) ScoreInto(dst []float64, features []Feature) {
	for c := range dst {
		dst[c] = 0
	}
	for _, f := range features {
		for c := range s.numClasses {
			if h, ok := s.cells[cellKey{f.ID, Class(c)}]; ok {
				dst[c] += s.arena.at(h).current * f.Value
			}
		}
	}
}

// ScoreAveraged is Score using the time-averaged weights instead of the
// current ones.
func (s *Store) ScoreAveraged(features []Feature) []float64 {
	scores := make([]float64, s.numClasses)
	if s.time == 0 {
		return scores
	}
	for _, f := range features {
		for c := range s.numClasses {
			scores[c] += s.GetAveraged(f.ID, Class(c)) * f.Value
		}
	}
	return scores
}

// Decide returns the highest-scoring class. Ties resolve to the lowest
// class so decisions are deterministic.
func Decide(scores []float64) Class {
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return Class(best)
}
