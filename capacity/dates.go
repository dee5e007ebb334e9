package capacity

import (
	"sort"

	"github.com/kitaplan/capacity-engine/generic"
)

// =============================================================================
// DATES OF INTEREST - Where something changes
// =============================================================================

// DatesOfInterest lists the dates on which the item set changes: every
// start date and the day after every end date of items, memberships,
// bookings and pauses. The result is sorted and distinct.
//
// Ends are shifted by one day because an item ending on the 10th is still
// present on the 10th; the change happens on the 11th.
func DatesOfInterest(items []Item) []generic.TimePoint {
	seen := make(map[string]generic.TimePoint)
	add := func(s string, shift int) {
		if tp, ok := generic.ParseDate(s); ok {
			tp = tp.AddDays(shift)
			seen[tp.String()] = tp
		}
	}
	for _, it := range items {
		add(it.Data.StartDate, 0)
		add(it.Data.EndDate, 1)
		if ps := it.Data.PausedState; ps != nil && ps.Enabled {
			add(ps.Start, 0)
			add(ps.End, 1)
		}
		for _, g := range it.Groups {
			add(g.Start, 0)
			add(g.End, 1)
		}
		for _, b := range it.Bookings {
			add(b.StartDate, 0)
			add(b.EndDate, 1)
		}
	}

	out := make([]generic.TimePoint, 0, len(seen))
	for _, tp := range seen {
		out = append(out, tp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// LatestDateOfInterest is the end of the midterm chart: the latest date of
// interest, or today when nothing lies beyond it.
func LatestDateOfInterest(items []Item, today generic.TimePoint) generic.TimePoint {
	latest := today
	for _, tp := range DatesOfInterest(items) {
		if tp.After(latest) {
			latest = tp
		}
	}
	return latest
}
