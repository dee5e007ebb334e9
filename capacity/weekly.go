package capacity

import (
	"fmt"

	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// WEEKLY CHART - Half-hour segments Monday to Friday
// =============================================================================

// ChartConfig sets the day range and the segment width of the weekly chart.
type ChartConfig struct {
	DayStart       generic.Clock
	DayEnd         generic.Clock
	SegmentMinutes int
}

// DefaultChartConfig is 07:00 to 17:00 in half-hour steps.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		DayStart:       generic.MustParseClock("07:00"),
		DayEnd:         generic.MustParseClock("17:00"),
		SegmentMinutes: 30,
	}
}

func (c ChartConfig) normalized() ChartConfig {
	def := DefaultChartConfig()
	if c.SegmentMinutes <= 0 {
		c.SegmentMinutes = def.SegmentMinutes
	}
	if c.DayEnd <= c.DayStart {
		c.DayStart, c.DayEnd = def.DayStart, def.DayEnd
	}
	return c
}

// SegmentAt returns the chart segment containing the clock time.
func (c ChartConfig) SegmentAt(date generic.TimePoint, at generic.Clock) SegmentWindow {
	c = c.normalized()
	diff := at.Minutes() - c.DayStart.Minutes()
	steps := diff / c.SegmentMinutes
	if diff < 0 && diff%c.SegmentMinutes != 0 {
		steps--
	}
	start := c.DayStart.Add(steps * c.SegmentMinutes)
	return SegmentWindow{Date: date, Range: generic.ClockRange{Start: start, End: start.Add(c.SegmentMinutes)}}
}

// Segments returns the segment windows of one date.
func (c ChartConfig) Segments(date generic.TimePoint) []SegmentWindow {
	c = c.normalized()
	var out []SegmentWindow
	for start := c.DayStart; start < c.DayEnd; start = start.Add(c.SegmentMinutes) {
		end := start.Add(c.SegmentMinutes)
		if end > c.DayEnd {
			end = c.DayEnd
		}
		out = append(out, SegmentWindow{Date: date, Range: generic.ClockRange{Start: start, End: end}})
	}
	return out
}

// WeeklySegment is one bar of the weekly chart.
type WeeklySegment struct {
	Date    string
	Weekday int
	DayName string
	Start   string
	End     string
	Label   string

	// Bedarf and Kapazitaet are the present children and staff.
	Bedarf     int
	Kapazitaet int
	Ratios     Ratios
}

// WeeklyChart covers Monday to Friday of one ISO week.
type WeeklyChart struct {
	ScenarioID scenario.ScenarioID
	WeekStart  string
	Label      string
	Segments   []WeeklySegment
}

// SegmentStats evaluates a single segment window.
func (e *RatioEngine) SegmentStats(set ItemSet, w SegmentWindow, f Filters) WeeklySegment {
	hours := generic.HoursBetween(w.Range.Start, w.Range.End)
	children := contributions(Present(set.Demand(), w, f), w.Date, func(Item) generic.Hours { return hours })
	staff := contributions(Present(set.Capacity(), w, f), w.Date, func(Item) generic.Hours { return hours })

	day := w.Weekday()
	return WeeklySegment{
		Date:       w.Date.String(),
		Weekday:    day,
		DayName:    scenario.DayName(day),
		Start:      w.Range.Start.String(),
		End:        w.Range.End.String(),
		Label:      fmt.Sprintf("%s %s", shortDayName(day), w.Range.Start),
		Bedarf:     len(children),
		Kapazitaet: len(staff),
		Ratios:     e.Compute(children, staff, set.GroupDefs),
	}
}

// BuildWeeklyChart evaluates every segment of the working week containing
// weekOf. Each present person contributes the segment length in hours.
func (e *RatioEngine) BuildWeeklyChart(set ItemSet, weekOf generic.TimePoint, f Filters, cfg ChartConfig) WeeklyChart {
	monday := generic.StartOfWeek(weekOf)
	year, week := monday.ISOWeek()
	chart := WeeklyChart{
		ScenarioID: set.ScenarioID,
		WeekStart:  monday.String(),
		Label:      fmt.Sprintf("KW %02d/%d", week, year),
	}
	for day := 0; day < 5; day++ {
		for _, w := range cfg.Segments(monday.AddDays(day)) {
			chart.Segments = append(chart.Segments, e.SegmentStats(set, w, f))
		}
	}
	return chart
}

func contributions(items []Item, at generic.TimePoint, hours func(Item) generic.Hours) []Contribution {
	out := make([]Contribution, 0, len(items))
	for _, it := range items {
		out = append(out, Contribution{Item: it, Hours: hours(it), At: at})
	}
	return out
}

var shortDayNames = map[int]string{1: "Mo", 2: "Di", 3: "Mi", 4: "Do", 5: "Fr", 6: "Sa", 7: "So"}

func shortDayName(day int) string { return shortDayNames[day] }
