/*
midterm.go - Calendar period chart (weeks, months, quarters, years)

PURPOSE:
  For every period from today's period up to the latest date of interest,
  counts the present children and staff and integrates their booked hours
  over the period.

HOUR INTEGRATION:
  Unlike the weekly chart, hours are not a fixed amount per person. For
  each booking, every Monday to Friday in the overlap of the booking's date
  range and the period contributes that weekday's segment hours:

    booking Mon 08:00-12:00, Wed 08:00-13:00, valid 2024-06-05 onwards
    period  June 2024 (Sat 1st to Sun 30th)
    → Mondays 10, 17, 24 (3 × 4h) + Wednesdays 5, 12, 19, 26 (4 × 5h) = 32h

  Days on which the item is paused contribute nothing. Since the sum is
  over days, periods that tile a range add up to the range's total.

SEE ALSO:
  - generic/period.go: GeneratePeriods
  - dates.go: LatestDateOfInterest
*/
package capacity

import (
	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

// BookingHoursInPeriod sums the booking's weekday hours over the days the
// booking and the period share.
func BookingHoursInPeriod(b scenario.Booking, p generic.Period) generic.Hours {
	return bookingHours(b, p, nil)
}

func bookingHours(b scenario.Booking, p generic.Period, skip func(generic.TimePoint) bool) generic.Hours {
	overlap, ok := b.Range().Clip(p)
	if !ok {
		return generic.ZeroHours
	}
	perDay := make(map[int]generic.Hours, 5)
	for day := 1; day <= 5; day++ {
		perDay[day] = b.HoursOn(day)
	}

	total := generic.ZeroHours
	for _, d := range overlap.Days() {
		if d.IsWeekend() || (skip != nil && skip(d)) {
			continue
		}
		total = total.Add(perDay[d.ISOWeekday()])
	}
	return total
}

// ItemHoursInPeriod sums all bookings of the item, skipping paused days.
func ItemHoursInPeriod(item Item, p generic.Period) generic.Hours {
	total := generic.ZeroHours
	for _, b := range item.Bookings {
		total = total.Add(bookingHours(b, p, item.Data.IsPausedOn))
	}
	return total
}

// MidtermPeriod is one bar of the midterm chart.
type MidtermPeriod struct {
	Label      string
	Start      string
	End        string
	Bedarf     int
	Kapazitaet int
	Ratios     Ratios
}

// MidtermChart is the period series of one scenario.
type MidtermChart struct {
	ScenarioID scenario.ScenarioID
	Dimension  generic.TimeDimension
	Periods    []MidtermPeriod
}

// PeriodStats evaluates one calendar period.
func (e *RatioEngine) PeriodStats(set ItemSet, p generic.Period, f Filters) MidtermPeriod {
	w := PeriodWindow{Period: p}
	hours := func(it Item) generic.Hours { return ItemHoursInPeriod(it, p) }
	children := contributions(Present(set.Demand(), w, f), w.Reference(), hours)
	staff := contributions(Present(set.Capacity(), w, f), w.Reference(), hours)

	return MidtermPeriod{
		Label:      p.Label,
		Start:      p.Start.String(),
		End:        p.End.String(),
		Bedarf:     len(children),
		Kapazitaet: len(staff),
		Ratios:     e.Compute(children, staff, set.GroupDefs),
	}
}

// BuildMidtermChart evaluates the periods from today's period through the
// latest date of interest of the item set.
func (e *RatioEngine) BuildMidtermChart(set ItemSet, d generic.TimeDimension, today generic.TimePoint, f Filters) MidtermChart {
	chart := MidtermChart{ScenarioID: set.ScenarioID, Dimension: d}
	for _, p := range generic.GeneratePeriods(d, today, LatestDateOfInterest(set.Items, today)) {
		chart.Periods = append(chart.Periods, e.PeriodStats(set, p, f))
	}
	return chart
}
