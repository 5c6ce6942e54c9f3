package maps

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

func FromKeys[L ~[]K, K comparable](l L) map[K]struct{} {
	res := make(map[K]struct{}, len(l))
	for _, key := range l {
		res[key] = struct{}{}
	}
	return res
}

func Keys[M ~map[K]V, K comparable, V any](m M) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}

// SortedKeys returns the keys of m in increasing order, for deterministic
// iteration over map-shaped state.
func SortedKeys[M ~map[K]V, K constraints.Ordered, V any](m M) []K {
	keys := Keys(m)
	slices.Sort(keys)
	return keys
}
