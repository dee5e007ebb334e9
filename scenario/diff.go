package scenario

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kitaplan/capacity-engine/generic"
	"github.com/pmezard/go-difflib/difflib"
)

// =============================================================================
// ITEM DIFF - Original (parent) vs current (this scenario)
// =============================================================================

// FieldChange is one data item field that differs from the parent.
type FieldChange struct {
	Field    string `json:"field"`
	Original string `json:"original"`
	Current  string `json:"current"`
}

// ItemDiff compares an item as inherited from the parent scenario with the
// item as seen in the scenario itself.
type ItemDiff struct {
	ItemID     ItemID        `json:"itemId"`
	ScenarioID ScenarioID    `json:"scenarioId"`
	HasOverlay bool          `json:"hasOverlay"`
	Fields     []FieldChange `json:"fields"`
	Unified    string        `json:"unified"`
}

type itemView struct {
	Item             DataItem          `json:"item"`
	Bookings         []Booking         `json:"bookings"`
	GroupAssignments []GroupAssignment `json:"groupAssignments"`
}

func viewOf(s *Snapshot, scenarioID ScenarioID, itemID ItemID) (itemView, bool) {
	item, ok := EffectiveDataItem(s, scenarioID, itemID)
	if !ok {
		return itemView{}, false
	}
	return itemView{
		Item:             item,
		Bookings:         EffectiveBookings(s, scenarioID, itemID).Sorted(),
		GroupAssignments: EffectiveGroupAssignments(s, scenarioID, itemID).Sorted(),
	}, true
}

// DiffItem reports how scenarioID changes the item relative to its parent.
// For root scenarios and items created in scenarioID the original side is
// empty.
func DiffItem(s *Snapshot, scenarioID ScenarioID, itemID ItemID) (ItemDiff, error) {
	sc, ok := s.Scenario(scenarioID)
	if !ok {
		return ItemDiff{}, generic.ScenarioNotFound(string(scenarioID))
	}
	current, ok := viewOf(s, scenarioID, itemID)
	if !ok {
		return ItemDiff{}, generic.ItemNotFound(string(itemID))
	}
	var original itemView
	hasOriginal := false
	if !sc.IsRoot() {
		original, hasOriginal = viewOf(s, sc.BaseScenarioID, itemID)
	}

	diff := ItemDiff{
		ItemID:     itemID,
		ScenarioID: scenarioID,
		HasOverlay: HasOverlay(s, scenarioID, itemID),
	}
	if hasOriginal {
		diff.Fields = FieldChanges(original.Item, current.Item)
	} else {
		diff.Fields = FieldChanges(DataItem{}, current.Item)
	}

	var a []string
	if hasOriginal {
		a = difflib.SplitLines(indentJSON(original))
	}
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        difflib.SplitLines(indentJSON(current)),
		FromFile: fmt.Sprintf("%s/%s", sc.BaseScenarioID, itemID),
		ToFile:   fmt.Sprintf("%s/%s", scenarioID, itemID),
		Context:  3,
	})
	if err != nil {
		return ItemDiff{}, fmt.Errorf("diff item %s: %w", itemID, err)
	}
	diff.Unified = unified
	return diff, nil
}

// FieldChanges lists the top-level fields whose canonical encoding differs.
func FieldChanges(original, current DataItem) []FieldChange {
	a, b := fieldMap(original), fieldMap(current)
	keys := make(map[string]struct{})
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	changes := []FieldChange{}
	for _, k := range sorted {
		if a[k] != b[k] {
			changes = append(changes, FieldChange{Field: k, Original: a[k], Current: b[k]})
		}
	}
	return changes
}

func fieldMap(item DataItem) map[string]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(generic.CanonicalJSON(item), &raw); err != nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = strings.Trim(string(v), `"`)
	}
	return out
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data) + "\n"
}
