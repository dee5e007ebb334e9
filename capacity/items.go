/*
Package capacity computes presence, booking hours and the two regulatory
ratios (Anstellungsschlüssel, Fachkraftquote) for one scenario.

PURPOSE:
  Everything here is a pure function over already-resolved data. The
  package never walks scenario chains itself: ResolveItems is the single
  bridge from a scenario.Snapshot to the flat item view the engine reads.

KEY CONCEPTS:
  - Item: one data item with its effective bookings, memberships and
    qualification
  - Window: what "present" is asked about (a weekly half-hour segment or a
    calendar period)
  - Filters: group and qualification selections; nil means inactive
  - RatioEngine: weighting and the staffing formulas

SEE ALSO:
  - presence.go: IsPresent
  - ratio.go: RatioEngine
  - weekly.go, midterm.go: chart builders
*/
package capacity

import (
	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

// NoQualification labels staff without any qualification.
const NoQualification = "keine Qualifikation"

// =============================================================================
// ITEM - Overlay-resolved data item bundle
// =============================================================================

// Item is a data item as seen by one scenario.
type Item struct {
	Data          scenario.DataItem
	Bookings      []scenario.Booking
	Groups        []scenario.GroupAssignment
	Qualification string
}

func (it Item) ID() scenario.ItemID { return it.Data.ID }
func (it Item) IsDemand() bool      { return it.Data.Type == scenario.ItemDemand }
func (it Item) IsCapacity() bool    { return it.Data.Type == scenario.ItemCapacity }

// Birthdate returns the parsed birthdate; ok is false when unknown.
func (it Item) Birthdate() (generic.TimePoint, bool) {
	return generic.ParseDate(it.Data.Birthdate)
}

// IsUnderThree reports whether the child is younger than three years at
// the given date. Unknown birthdates count as older.
func (it Item) IsUnderThree(at generic.TimePoint) bool {
	birth, ok := it.Birthdate()
	if !ok {
		return false
	}
	return birth.AddYears(3).After(at)
}

// GroupsAt returns the ids of the memberships active on the date.
func (it Item) GroupsAt(at generic.TimePoint) []scenario.GroupID {
	var out []scenario.GroupID
	for _, g := range it.Groups {
		if g.Range().Contains(at) {
			out = append(out, g.GroupID)
		}
	}
	return out
}

// ItemSet is the flat view of one scenario the engine computes on.
type ItemSet struct {
	ScenarioID        scenario.ScenarioID
	Items             []Item
	GroupDefs         []scenario.GroupDef
	QualificationDefs []scenario.QualificationDef
}

// Demand returns the children.
func (s ItemSet) Demand() []Item { return s.filter(Item.IsDemand) }

// Capacity returns the staff members.
func (s ItemSet) Capacity() []Item { return s.filter(Item.IsCapacity) }

func (s ItemSet) filter(keep func(Item) bool) []Item {
	var out []Item
	for _, it := range s.Items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// GroupName returns the display name of a group id.
func (s ItemSet) GroupName(id scenario.GroupID) string {
	name, _ := scenario.GroupName(s.GroupDefs, id)
	return name
}

// ResolveItems resolves every item visible in scenarioID. The result does
// not share memory with the snapshot.
func ResolveItems(snap *scenario.Snapshot, scenarioID scenario.ScenarioID) ItemSet {
	set := ItemSet{
		ScenarioID:        scenarioID,
		GroupDefs:         scenario.EffectiveGroupDefs(snap, scenarioID),
		QualificationDefs: scenario.EffectiveQualificationDefs(snap, scenarioID),
	}
	for _, data := range scenario.EffectiveDataItems(snap, scenarioID) {
		set.Items = append(set.Items, Item{
			Data:          data,
			Bookings:      scenario.EffectiveBookings(snap, scenarioID, data.ID).Sorted(),
			Groups:        scenario.EffectiveGroupAssignments(snap, scenarioID, data.ID).Sorted(),
			Qualification: QualificationOf(snap, scenarioID, data),
		})
	}
	return set
}

// QualificationOf prefers the item's own field, then the first effective
// qualification assignment.
func QualificationOf(snap *scenario.Snapshot, scenarioID scenario.ScenarioID, data scenario.DataItem) string {
	if data.Qualification != "" {
		return data.Qualification
	}
	if assigned := scenario.EffectiveQualificationAssignments(snap, scenarioID, data.ID); len(assigned) > 0 {
		return assigned[0].Qualification
	}
	return NoQualification
}
