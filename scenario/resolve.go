/*
resolve.go - Effective values through the scenario chain

PURPOSE:
  Computes what a scenario "sees": its own data and overlays plus
  everything inherited from its ancestors.

MERGE STRATEGIES:
  Map-style lookup (one data item, one item's bookings, one item's group
  assignments):
    Walk the chain from the scenario to the root; each scenario is two
    layers, overlay first, then its own entity store. The first layer that
    has the key wins. Overlay beats base at the same depth; nearer
    ancestors beat farther ones.

  Collection-style lookup (group definitions):
    Same order, but on whole arrays: the first non-empty array wins in its
    entirety.

  Set-union-by-key (qualification definitions and assignments):
    Walk root to leaf and insert/overwrite by natural key. A derived
    scenario sees its ancestors' catalog plus its own additions.

FAILURE SEMANTICS:
  Never fails. Unknown scenarios, items or empty chains yield zero values
  and empty (non-nil) containers.

SEE ALSO:
  - generic/layers.go: The layer lookup primitives
  - write.go: Writers keep overlays minimal
*/
package scenario

import (
	"sort"

	"github.com/kitaplan/capacity-engine/generic"
)

// =============================================================================
// LAYER BUILDERS
// =============================================================================

func (s *Snapshot) overlay(id ScenarioID) *Overlay {
	if s == nil || s.OverlaysByScenario == nil {
		return nil
	}
	return s.OverlaysByScenario[id]
}

func dataLayers(s *Snapshot, chain []ScenarioID) generic.Layers[ItemID, DataItem] {
	layers := make(generic.Layers[ItemID, DataItem], 0, 2*len(chain))
	for _, id := range chain {
		if o := s.overlay(id); o != nil {
			layers = append(layers, generic.Layer[ItemID, DataItem]{Name: "overlay:" + string(id), Values: o.DataItems})
		}
		layers = append(layers, generic.Layer[ItemID, DataItem]{Name: string(id), Values: s.DataByScenario[id]})
	}
	return layers
}

func bookingLayers(s *Snapshot, chain []ScenarioID) generic.Layers[ItemID, BookingSet] {
	layers := make(generic.Layers[ItemID, BookingSet], 0, 2*len(chain))
	for _, id := range chain {
		if o := s.overlay(id); o != nil {
			layers = append(layers, generic.Layer[ItemID, BookingSet]{Name: "overlay:" + string(id), Values: o.Bookings})
		}
		layers = append(layers, generic.Layer[ItemID, BookingSet]{Name: string(id), Values: s.BookingsByScenario[id]})
	}
	return layers
}

func groupLayers(s *Snapshot, chain []ScenarioID) generic.Layers[ItemID, GroupAssignmentSet] {
	layers := make(generic.Layers[ItemID, GroupAssignmentSet], 0, 2*len(chain))
	for _, id := range chain {
		if o := s.overlay(id); o != nil {
			layers = append(layers, generic.Layer[ItemID, GroupAssignmentSet]{Name: "overlay:" + string(id), Values: o.GroupAssignments})
		}
		layers = append(layers, generic.Layer[ItemID, GroupAssignmentSet]{Name: string(id), Values: s.GroupsByScenario[id]})
	}
	return layers
}

// =============================================================================
// DATA ITEMS
// =============================================================================

// EffectiveDataItem resolves one item through the chain of scenarioID.
func EffectiveDataItem(s *Snapshot, scenarioID ScenarioID, itemID ItemID) (DataItem, bool) {
	item, _, ok := dataLayers(s, chainIDs(s, scenarioID)).Lookup(itemID)
	return item, ok
}

// EffectiveDataItems resolves every item visible in scenarioID, ordered by
// type (demand first), name and id.
func EffectiveDataItems(s *Snapshot, scenarioID ScenarioID) []DataItem {
	merged := dataLayers(s, chainIDs(s, scenarioID)).Merge()
	out := make([]DataItem, 0, len(merged))
	for _, item := range merged {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type > out[j].Type
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// OwnerOf returns the chain scenario whose entity store holds the item.
func OwnerOf(s *Snapshot, scenarioID ScenarioID, itemID ItemID) (ScenarioID, bool) {
	for _, id := range chainIDs(s, scenarioID) {
		if _, ok := s.DataByScenario[id][itemID]; ok {
			return id, true
		}
	}
	return "", false
}

// HasOverlay reports whether scenarioID itself overrides any part of the
// item (data, bookings or group assignments).
func HasOverlay(s *Snapshot, scenarioID ScenarioID, itemID ItemID) bool {
	o := s.overlay(scenarioID)
	if o == nil {
		return false
	}
	_, d := o.DataItems[itemID]
	_, b := o.Bookings[itemID]
	_, g := o.GroupAssignments[itemID]
	return d || b || g
}

// =============================================================================
// BOOKINGS AND GROUP ASSIGNMENTS
// =============================================================================

// EffectiveBookings resolves the bookings of one item. The returned map is
// a copy; callers may modify it.
func EffectiveBookings(s *Snapshot, scenarioID ScenarioID, itemID ItemID) BookingSet {
	set, _, _ := bookingLayers(s, chainIDs(s, scenarioID)).Lookup(itemID)
	out := make(BookingSet, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}

// EffectiveGroupAssignments resolves the group memberships of one item.
// The returned map is a copy.
func EffectiveGroupAssignments(s *Snapshot, scenarioID ScenarioID, itemID ItemID) GroupAssignmentSet {
	set, _, _ := groupLayers(s, chainIDs(s, scenarioID)).Lookup(itemID)
	out := make(GroupAssignmentSet, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}

// =============================================================================
// CATALOGS
// =============================================================================

// EffectiveGroupDefs returns the first non-empty group definition list in
// chain order (overlay before base at each level).
func EffectiveGroupDefs(s *Snapshot, scenarioID ScenarioID) []GroupDef {
	var lists [][]GroupDef
	for _, id := range chainIDs(s, scenarioID) {
		if o := s.overlay(id); o != nil {
			lists = append(lists, o.GroupDefs)
		}
		lists = append(lists, s.GroupDefsByScenario[id])
	}
	defs := generic.FirstNonEmpty(lists...)
	return append([]GroupDef{}, defs...)
}

// EffectiveQualificationDefs unions the qualification catalog over the
// whole chain; the most specific definition of a key wins.
func EffectiveQualificationDefs(s *Snapshot, scenarioID ScenarioID) []QualificationDef {
	var lists [][]QualificationDef
	for _, id := range chainIDs(s, scenarioID) {
		if o := s.overlay(id); o != nil {
			lists = append(lists, o.QualificationDefs)
		}
		lists = append(lists, s.QualificationDefsByScenario[id])
	}
	defs := generic.MergeByKey(lists, func(d QualificationDef) string { return d.Key })
	return append([]QualificationDef{}, defs...)
}

// EffectiveQualificationAssignments unions the qualification assignments of
// one item over the chain, deduplicated by qualification.
func EffectiveQualificationAssignments(s *Snapshot, scenarioID ScenarioID, itemID ItemID) []QualificationAssignment {
	var lists [][]QualificationAssignment
	for _, id := range chainIDs(s, scenarioID) {
		lists = append(lists, s.QualificationAssignmentsByScenario[id][itemID])
	}
	out := generic.MergeByKey(lists, func(a QualificationAssignment) string { return a.Qualification })
	return append([]QualificationAssignment{}, out...)
}

// GroupName returns the name of a group in the given definitions.
func GroupName(defs []GroupDef, id GroupID) (string, bool) {
	for _, d := range defs {
		if d.ID == id {
			return d.Name, true
		}
	}
	return "", false
}
