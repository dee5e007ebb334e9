package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Closed calendar interval
// =============================================================================

// Period is the closed interval [Start, End] of whole days.
//
// Examples:
//   - ISO week 23/2024: Mon 2024-06-03 - Sun 2024-06-09
//   - June 2024: 2024-06-01 - 2024-06-30
type Period struct {
	Start TimePoint
	End   TimePoint
	Label string
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Midpoint is the reference instant used for per-period aggregates
// (age at period, etc.).
func (p Period) Midpoint() TimePoint {
	return p.Start.AddDays(DaysBetween(p.Start, p.End) / 2)
}

// Valid reports whether End is not before Start.
func (p Period) Valid() bool { return !p.End.Before(p.Start) }

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// DATE RANGE - Interval with optional (open) bounds
// =============================================================================

// DateRange is a closed interval whose ends may be missing. A missing or
// unparseable end means "unbounded" on that side, because source data is
// frequently incomplete.
type DateRange struct {
	Start    TimePoint
	End      TimePoint
	HasStart bool
	HasEnd   bool
}

// ParseRange builds a DateRange from two raw date strings.
func ParseRange(start, end string) DateRange {
	var r DateRange
	r.Start, r.HasStart = ParseDate(start)
	r.End, r.HasEnd = ParseDate(end)
	return r
}

// Contains is inclusive on both ends.
func (r DateRange) Contains(t TimePoint) bool {
	if r.HasStart && t.Before(r.Start) {
		return false
	}
	if r.HasEnd && t.After(r.End) {
		return false
	}
	return true
}

// Overlaps reports whether the range shares at least one day with p.
func (r DateRange) Overlaps(p Period) bool {
	_, ok := r.Clip(p)
	return ok
}

// Clip returns the intersection of the range with p.
func (r DateRange) Clip(p Period) (Period, bool) {
	out := Period{Start: p.Start, End: p.End, Label: p.Label}
	if r.HasStart && r.Start.After(out.Start) {
		out.Start = r.Start
	}
	if r.HasEnd && r.End.Before(out.End) {
		out.End = r.End
	}
	return out, out.Valid()
}

// Covers reports whether every day of p lies inside the range.
func (r DateRange) Covers(p Period) bool {
	return r.Contains(p.Start) && r.Contains(p.End)
}

// =============================================================================
// PERIOD GENERATION - Chart time axis
// =============================================================================

// TimeDimension selects the granularity of the midterm chart.
type TimeDimension string

const (
	DimensionWeeks    TimeDimension = "Wochen"
	DimensionMonths   TimeDimension = "Monate"
	DimensionQuarters TimeDimension = "Quartale"
	DimensionYears    TimeDimension = "Jahre"
)

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// ParseDimension validates a dimension name.
func ParseDimension(s string) (TimeDimension, error) {
	switch d := TimeDimension(s); d {
	case DimensionWeeks, DimensionMonths, DimensionQuarters, DimensionYears:
		return d, nil
	case "":
		return DimensionMonths, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDimension, s)
	}
}

// PeriodFor returns the period of the given dimension that contains date.
func (d TimeDimension) PeriodFor(date TimePoint) Period {
	switch d {
	case DimensionWeeks:
		start := StartOfWeek(date)
		year, week := start.ISOWeek()
		return Period{Start: start, End: start.AddDays(6), Label: fmt.Sprintf("KW %02d/%d", week, year)}
	case DimensionQuarters:
		start := StartOfQuarter(date)
		return Period{Start: start, End: start.AddMonths(3).AddDays(-1), Label: fmt.Sprintf("Q%d %d", Quarter(start), start.Year())}
	case DimensionYears:
		return Period{Start: StartOfYear(date.Year()), End: EndOfYear(date.Year()), Label: fmt.Sprintf("%d", date.Year())}
	default:
		return Period{
			Start: StartOfMonth(date.Year(), date.Month()),
			End:   EndOfMonth(date.Year(), date.Month()),
			Label: fmt.Sprintf("%s %d", germanMonths[date.Month()-time.January], date.Year()),
		}
	}
}

// GeneratePeriods returns contiguous, non-overlapping periods starting with
// the period containing from and ending with the period containing to.
// An end before from yields the single period containing from.
func GeneratePeriods(d TimeDimension, from, to TimePoint) []Period {
	current := d.PeriodFor(from)
	periods := []Period{current}
	for current.End.Before(to) {
		current = d.PeriodFor(current.End.AddDays(1))
		periods = append(periods, current)
	}
	return periods
}
