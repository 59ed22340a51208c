package perceptron

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// conjoinTag namespaces conjunction ids away from atomic feature ids.
const conjoinTag = 0xC7

// Conjoin expands an atomic feature list with every pairwise conjunction.
// The result holds the atomic features in input order followed by the pairs
// in (i, j) order with i < j; each conjunction's weight is the product of
// its sources' weights.
//
// Conjunction ids depend only on the two source ids, not on their order, so
// identical atomic multisets always expand to identical id sets and weights
// learned for a conjunction are reused across instances.
func Conjoin(atomic []Feature) []Feature {
	n := len(atomic)
	out := make([]Feature, n, n+n*(n-1)/2)
	copy(out, atomic)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, Feature{
				ID:    ConjoinID(atomic[i].ID, atomic[j].ID),
				Value: atomic[i].Value * atomic[j].Value,
			})
		}
	}
	return out
}

// ConjoinID derives the id of the conjunction of two source features. The
// smaller id is hashed first so the pair is order-insensitive.
func ConjoinID(a, b uint64) uint64 {
	if b < a {
		a, b = b, a
	}
	var buf [17]byte
	buf[0] = conjoinTag
	binary.LittleEndian.PutUint64(buf[1:9], a)
	binary.LittleEndian.PutUint64(buf[9:17], b)
	return xxhash.Sum64(buf[:])
}
