package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date (day granularity, UTC)
// =============================================================================

// TimePoint is a calendar day. All dates in the engine go through this type;
// the stored form is the ISO string "YYYY-MM-DD".
type TimePoint struct {
	Time time.Time
}

const (
	// ISODate is the internal date layout.
	ISODate = "2006-01-02"

	// GermanDate is the layout used by the source system's exports.
	GermanDate = "02.01.2006"

	// germanDateLoose also takes days and months without a leading zero.
	germanDateLoose = "2.1.2006"
)

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// ParseDate accepts ISO ("2024-06-10") and German ("10.06.2024", "1.6.2024")
// dates.
// ok is false for empty or malformed input; callers treat that as an
// unbounded interval end.
func ParseDate(s string) (TimePoint, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimePoint{}, false
	}
	for _, layout := range []string{ISODate, GermanDate, germanDateLoose, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
	}
	return TimePoint{}, false
}

// MustParseDate panics on malformed input. Tests and fixtures only.
func MustParseDate(s string) TimePoint {
	tp, ok := ParseDate(s)
	if !ok {
		panic(fmt.Sprintf("invalid date: %q", s))
	}
	return tp
}

// NormalizeDate converts any accepted date form to ISO. Unparseable input
// is returned unchanged so that nothing from the source data is lost.
func NormalizeDate(s string) string {
	tp, ok := ParseDate(s)
	if !ok {
		return s
	}
	return tp.String()
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.Time.AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISOWeekday returns 1 (Monday) through 7 (Sunday), the numbering used by
// booking day entries.
func (tp TimePoint) ISOWeekday() int {
	wd := int(tp.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ISOWeek returns the ISO 8601 year and week number.
func (tp TimePoint) ISOWeek() (year, week int) { return tp.Time.ISOWeek() }

func (tp TimePoint) String() string { return tp.Time.Format(ISODate) }

// German formats the date as DD.MM.YYYY.
func (tp TimePoint) German() string { return tp.Time.Format(GermanDate) }

// =============================================================================
// CALENDAR ALIGNMENT
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }
func StartOfYear(year int) TimePoint     { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint       { return NewTimePoint(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, 1)
}
func EndOfMonth(year int, month time.Month) TimePoint {
	return StartOfMonth(year, month).AddMonths(1).AddDays(-1)
}

// StartOfWeek returns the Monday of the ISO week containing tp.
func StartOfWeek(tp TimePoint) TimePoint {
	return tp.AddDays(1 - tp.ISOWeekday())
}

// StartOfQuarter returns the first day of the quarter containing tp.
func StartOfQuarter(tp TimePoint) TimePoint {
	month := time.Month((int(tp.Month())-1)/3*3 + 1)
	return StartOfMonth(tp.Year(), month)
}

// Quarter returns 1-4.
func Quarter(tp TimePoint) int { return (int(tp.Month())-1)/3 + 1 }

// DateOfWeekday returns the date of the given ISO weekday (1-7) in the week
// that contains ref.
func DateOfWeekday(ref TimePoint, isoWeekday int) TimePoint {
	return StartOfWeek(ref).AddDays(isoWeekday - 1)
}

// =============================================================================
// CLOCK - Time of day "HH:MM"
// =============================================================================

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM" (24h). "24:00" is accepted as end of day.
func ParseClock(s string) (Clock, bool) {
	s = strings.TrimSpace(s)
	h, m, found := strings.Cut(s, ":")
	if !found {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	if hours < 0 || minutes < 0 || minutes > 59 || hours > 24 || (hours == 24 && minutes != 0) {
		return 0, false
	}
	return Clock(hours*60 + minutes), true
}

// MustParseClock panics on malformed input. Tests and fixtures only.
func MustParseClock(s string) Clock {
	c, ok := ParseClock(s)
	if !ok {
		panic(fmt.Sprintf("invalid clock time: %q", s))
	}
	return c
}

func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }
func (c Clock) Minutes() int          { return int(c) }
func (c Clock) String() string        { return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60) }

// HoursBetween returns end-start in hours, or zero when end is not after start.
func HoursBetween(start, end Clock) Hours {
	if end <= start {
		return ZeroHours
	}
	return HoursFromMinutes(int(end - start))
}

// ClockRange is a half-open time-of-day interval [Start, End).
type ClockRange struct {
	Start Clock
	End   Clock
}

// Overlaps reports whether two half-open ranges share at least one minute.
func (r ClockRange) Overlaps(other ClockRange) bool {
	return r.Start < other.End && r.End > other.Start
}

func (r ClockRange) String() string { return r.Start.String() + "-" + r.End.String() }
