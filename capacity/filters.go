package capacity

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// FILTER OPTIONS AND SYNCHRONIZATION
// =============================================================================

// AvailableGroups returns the group ids used by any membership, plus
// scenario.NoGroup when an item has none. Sorted.
func AvailableGroups(items []Item) []scenario.GroupID {
	seen := make(map[scenario.GroupID]bool)
	for _, it := range items {
		if len(it.Groups) == 0 {
			seen[scenario.NoGroup] = true
		}
		for _, g := range it.Groups {
			seen[g.GroupID] = true
		}
	}
	out := make([]scenario.GroupID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AvailableQualifications returns the qualifications of all staff. Sorted.
func AvailableQualifications(items []Item) []string {
	seen := make(map[string]bool)
	for _, it := range items {
		if !it.IsCapacity() {
			continue
		}
		q := it.Qualification
		if q == "" {
			q = NoQualification
		}
		seen[q] = true
	}
	out := make([]string, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	sort.Strings(out)
	return out
}

// FilterState is one filter's options and the user's selection.
type FilterState[T ~string] struct {
	Available []T `json:"available"`
	Selected  []T `json:"selected"`
}

// FilterSync reconciles a filter with newly computed options. When the
// available set differs from the previous one, everything is selected;
// otherwise the user's selection is kept as is.
func FilterSync[T ~string](prev FilterState[T], available []T) FilterState[T] {
	if bytes.Equal(sortedJSON(prev.Available), sortedJSON(available)) {
		return FilterState[T]{Available: available, Selected: prev.Selected}
	}
	return FilterState[T]{Available: available, Selected: append([]T{}, available...)}
}

func sortedJSON[T ~string](values []T) []byte {
	sorted := make([]string, len(values))
	for i, v := range values {
		sorted[i] = string(v)
	}
	sort.Strings(sorted)
	data, _ := json.Marshal(sorted)
	return data
}
