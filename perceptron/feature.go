package perceptron

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// HashFeature returns the feature id for a template/value pair. Two
// templates hashing to the same id is a tolerated approximation; the id
// space is 64 bits so collisions are rare in practice.
func HashFeature(template, value string) uint64 {
	return xxhash.Sum64String(template + "=" + value)
}

// Featurize converts a raw attribute map into hashed atomic features.
//
// Conversion rules:
//   - string value: hash of "key=value" with weight 1.0
//   - []string value: hash of "key:item" with weight 1.0 for each item
//   - bool value: hash of key with weight 1.0 if true, dropped if false
//   - int/float value: hash of key with the numeric value as weight
//
// Output order is deterministic: attributes are visited in sorted key order
// and list items in list order.
func Featurize(attrs map[string]any) []Feature {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	features := make([]Feature, 0, len(attrs))
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case string:
			features = append(features, Feature{ID: HashFeature(k, v), Value: 1.0})
		case []string:
			for _, item := range v {
				features = append(features, Feature{ID: xxhash.Sum64String(k + ":" + item), Value: 1.0})
			}
		case bool:
			if v {
				features = append(features, Feature{ID: xxhash.Sum64String(k), Value: 1.0})
			}
		case int:
			features = append(features, Feature{ID: xxhash.Sum64String(k), Value: float64(v)})
		case int64:
			features = append(features, Feature{ID: xxhash.Sum64String(k), Value: float64(v)})
		case float64:
			features = append(features, Feature{ID: xxhash.Sum64String(k), Value: v})
		default:
			features = append(features, Feature{ID: HashFeature(k, fmt.Sprintf("%v", v)), Value: 1.0})
		}
	}
	return features
}
