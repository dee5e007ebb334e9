/*
presence.go - Is an item present in a window?

PURPOSE:
  The unit of truth for both charts. An item is present when all four
  checks pass, in this order:

  1. Pause: an enabled pause removes the item. Segment windows check the
     segment date (inclusive bounds); period windows only drop the item
     when the pause covers the whole period.
  2. Qualification: staff only. With an active qualification filter the
     item's qualification must be selected.
  3. Group: with an active group filter, an item without memberships needs
     the "no group" entry ("0"); otherwise one membership must have a
     selected group and be active at the window.
  4. Booking: a booking valid at the window must have a segment on the
     window's weekday overlapping the window's time range.

WINDOWS:
  SegmentWindow  one date and a time range, e.g. Mon 2024-06-03 08:30-09:00
  PeriodWindow   a calendar period; a booking counts if any of its weekday
                 segments falls on a day inside the overlap

INTERVALS:
  Dates are closed intervals with open (unparseable or empty) ends
  unbounded. Times of day are half-open: 08:00-12:00 does not overlap
  12:00-12:30.
*/
package capacity

import (
	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// WINDOWS
// =============================================================================

// Window is what presence is evaluated against.
type Window interface {
	// Reference is the date used for age and group lookups.
	Reference() generic.TimePoint

	pausedThrough(p scenario.PausedState) bool
	memberDuring(r generic.DateRange) bool
	bookedDuring(b scenario.Booking) bool
}

// SegmentWindow is one time slot on one date.
type SegmentWindow struct {
	Date  generic.TimePoint
	Range generic.ClockRange
}

func (w SegmentWindow) Reference() generic.TimePoint { return w.Date }

// Weekday is the ISO weekday (1 = Monday) of the segment.
func (w SegmentWindow) Weekday() int { return w.Date.ISOWeekday() }

func (w SegmentWindow) pausedThrough(p scenario.PausedState) bool {
	return p.Enabled && p.Range().Contains(w.Date)
}

func (w SegmentWindow) memberDuring(r generic.DateRange) bool { return r.Contains(w.Date) }

func (w SegmentWindow) bookedDuring(b scenario.Booking) bool {
	if !b.Range().Contains(w.Date) {
		return false
	}
	for _, seg := range b.SegmentsOn(w.Weekday()) {
		if r, ok := seg.Range(); ok && r.Overlaps(w.Range) {
			return true
		}
	}
	return false
}

// PeriodWindow is a calendar period of the midterm chart.
type PeriodWindow struct {
	Period generic.Period
}

func (w PeriodWindow) Reference() generic.TimePoint { return w.Period.Midpoint() }

func (w PeriodWindow) pausedThrough(p scenario.PausedState) bool {
	return p.Enabled && p.Range().Covers(w.Period)
}

func (w PeriodWindow) memberDuring(r generic.DateRange) bool { return r.Overlaps(w.Period) }

func (w PeriodWindow) bookedDuring(b scenario.Booking) bool {
	overlap, ok := b.Range().Clip(w.Period)
	if !ok {
		return false
	}
	// A week covers every weekday; shorter overlaps are checked day by day.
	days := overlap.Days()
	if len(days) > 7 {
		days = days[:7]
	}
	for _, day := range days {
		if b.HoursOn(day.ISOWeekday()).IsPositive() {
			return true
		}
	}
	return false
}

// =============================================================================
// FILTERS
// =============================================================================

// Filters restrict presence to selected groups and qualifications. A nil
// selection means the filter is inactive; an empty one selects nothing.
type Filters struct {
	Groups         []scenario.GroupID `json:"groups"`
	Qualifications []string           `json:"qualifications"`
}

func (f Filters) groupSelected(id scenario.GroupID) bool {
	for _, g := range f.Groups {
		if g == id {
			return true
		}
	}
	return false
}

func (f Filters) qualificationSelected(q string) bool {
	for _, s := range f.Qualifications {
		if s == q {
			return true
		}
	}
	return false
}

// =============================================================================
// PRESENCE
// =============================================================================

// IsPresent reports whether the item counts in the window.
func IsPresent(item Item, w Window, f Filters) bool {
	if ps := item.Data.PausedState; ps != nil && w.pausedThrough(*ps) {
		return false
	}

	if item.IsCapacity() && f.Qualifications != nil {
		q := item.Qualification
		if q == "" {
			q = NoQualification
		}
		if !f.qualificationSelected(q) {
			return false
		}
	}

	if f.Groups != nil && !inSelectedGroup(item, w, f) {
		return false
	}

	for _, b := range item.Bookings {
		if w.bookedDuring(b) {
			return true
		}
	}
	return false
}

func inSelectedGroup(item Item, w Window, f Filters) bool {
	if len(item.Groups) == 0 {
		return f.groupSelected(scenario.NoGroup)
	}
	for _, g := range item.Groups {
		if f.groupSelected(g.GroupID) && w.memberDuring(g.Range()) {
			return true
		}
	}
	return false
}

// Present returns the items present in the window.
func Present(items []Item, w Window, f Filters) []Item {
	var out []Item
	for _, it := range items {
		if IsPresent(it, w, f) {
			out = append(out, it)
		}
	}
	return out
}
