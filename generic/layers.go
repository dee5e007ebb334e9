package generic

// =============================================================================
// LAYERS - Ordered key-value lookup (scenario overlay chains)
// =============================================================================

// Layer is one immutable level of a lookup stack, e.g. "overlay of scenario
// B" or "entity store of scenario A". A nil Values map is an empty layer.
type Layer[K comparable, V any] struct {
	Name   string
	Values map[K]V
}

// Layers is searched front to back: index 0 is the most specific layer.
// The type never mutates its layers; writers build new layer values.
type Layers[K comparable, V any] []Layer[K, V]

// Lookup returns the value of the first layer that defines key, along with
// that layer's name. Presence of the key counts, even for a zero value.
func (ls Layers[K, V]) Lookup(key K) (V, string, bool) {
	for _, l := range ls {
		if v, ok := l.Values[key]; ok {
			return v, l.Name, true
		}
	}
	var zero V
	return zero, "", false
}

// Merge accumulates the layers from the least specific to the most specific
// so that more specific layers overwrite. Unlike Lookup it keeps keys that
// only ancestors define.
func (ls Layers[K, V]) Merge() map[K]V {
	merged := make(map[K]V)
	for i := len(ls) - 1; i >= 0; i-- {
		for k, v := range ls[i].Values {
			merged[k] = v
		}
	}
	return merged
}

// FirstNonEmpty returns the first list with at least one element, in its
// entirety. Lists are given most specific first.
func FirstNonEmpty[T any](lists ...[]T) []T {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

// MergeByKey unions lists keyed by key. Lists are given most specific first;
// they are applied in reverse so the most specific entry for a key wins.
// The result keeps the position at which each key was first introduced.
func MergeByKey[T any, K comparable](lists [][]T, key func(T) K) []T {
	index := make(map[K]int)
	var out []T
	for i := len(lists) - 1; i >= 0; i-- {
		for _, v := range lists[i] {
			k := key(v)
			if pos, ok := index[k]; ok {
				out[pos] = v
				continue
			}
			index[k] = len(out)
			out = append(out, v)
		}
	}
	return out
}
