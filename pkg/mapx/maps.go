// Package mapx provides generic map helpers used where iteration order must be stable.
package mapx

import (
	"cmp"
	"slices"
)

// SortedKeys returns the keys of m in sorted order.
// Returns nil for a nil map.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	if m == nil {
		return nil
	}

	keys := make([]K, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// SortedValues returns the values of m ordered by key.
func SortedValues[K cmp.Ordered, V any](m map[K]V) []V {
	keys := SortedKeys(m)
	values := make([]V, len(keys))

	for idx, key := range keys {
		values[idx] = m[key]
	}

	return values
}
