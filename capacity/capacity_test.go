package capacity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitaplan/capacity-engine/capacity"
	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var monday = generic.MustParseDate("2024-06-03")

func booking(id string, day int, start, end string) scenario.Booking {
	return scenario.Booking{
		ID: scenario.BookingID(id),
		Times: []scenario.DayTimes{{
			Day:      day,
			Segments: []scenario.TimeSegment{{ID: id + "-1", BookingStart: start, BookingEnd: end}},
		}},
	}
}

func everyDay(id, start, end string) scenario.Booking {
	b := scenario.Booking{ID: scenario.BookingID(id)}
	for day := 1; day <= 7; day++ {
		b.Times = append(b.Times, scenario.DayTimes{
			Day:      day,
			Segments: []scenario.TimeSegment{{BookingStart: start, BookingEnd: end}},
		})
	}
	return b
}

func child(name, birthdate string, bookings ...scenario.Booking) capacity.Item {
	return capacity.Item{
		Data:     scenario.DataItem{ID: scenario.ItemID(name), Type: scenario.ItemDemand, Name: name, Birthdate: birthdate},
		Bookings: bookings,
	}
}

func staff(name, qualification string, bookings ...scenario.Booking) capacity.Item {
	return capacity.Item{
		Data:          scenario.DataItem{ID: scenario.ItemID(name), Type: scenario.ItemCapacity, Name: name},
		Bookings:      bookings,
		Qualification: qualification,
	}
}

func segment(date generic.TimePoint, start, end string) capacity.SegmentWindow {
	return capacity.SegmentWindow{
		Date:  date,
		Range: generic.ClockRange{Start: generic.MustParseClock(start), End: generic.MustParseClock(end)},
	}
}

// kindEinsSnapshot is the root/derived pair of the Fuchs example: Kind 1 is
// booked Mon 08:00-12:00 in the root and Mon 08:00-13:00 in the derived
// scenario.
func kindEinsSnapshot(t *testing.T) *scenario.Snapshot {
	t.Helper()
	s := scenario.NewSnapshot()
	_, err := scenario.AddScenario(s, scenario.Scenario{ID: "root", Name: "Ist-Stand"})
	require.NoError(t, err)
	_, err = scenario.AddScenario(s, scenario.Scenario{ID: "derived", BaseScenarioID: "root", Name: "Längere Buchung"})
	require.NoError(t, err)

	require.NoError(t, scenario.SetGroupDefs(s, "root", []scenario.GroupDef{{ID: "1", Name: "Fuchs"}}))
	_, err = scenario.AddDataItem(s, "root", scenario.DataItem{ID: "kind-1", Type: scenario.ItemDemand, Name: "Kind 1"})
	require.NoError(t, err)
	_, err = scenario.PutBooking(s, "root", "kind-1", booking("b1", 1, "08:00", "12:00"))
	require.NoError(t, err)
	_, err = scenario.PutGroupAssignment(s, "root", "kind-1", scenario.GroupAssignment{ID: "m1", GroupID: "1"})
	require.NoError(t, err)

	_, err = scenario.PutBooking(s, "derived", "kind-1", booking("b1", 1, "08:00", "13:00"))
	require.NoError(t, err)
	return s
}

// =============================================================================
// END TO END
// =============================================================================

func TestKindEins_DerivedBookingExtendsPresence(t *testing.T) {
	s := kindEinsSnapshot(t)
	engine := capacity.NewRatioEngine()
	cfg := capacity.DefaultChartConfig()

	derived := capacity.ResolveItems(s, "derived")
	root := capacity.ResolveItems(s, "root")

	// WHEN: querying Mon 08:30
	stats := engine.SegmentStats(derived, cfg.SegmentAt(monday, generic.MustParseClock("08:30")), capacity.Filters{})
	assert.Equal(t, 1, stats.Bedarf)

	// WHEN: querying Mon 12:15
	derivedNoon := engine.SegmentStats(derived, cfg.SegmentAt(monday, generic.MustParseClock("12:15")), capacity.Filters{})
	rootNoon := engine.SegmentStats(root, cfg.SegmentAt(monday, generic.MustParseClock("12:15")), capacity.Filters{})

	// THEN: only the derived scenario still has the child
	assert.Equal(t, 1, derivedNoon.Bedarf)
	assert.Equal(t, 0, rootNoon.Bedarf)
	assert.Equal(t, "12:00", derivedNoon.Start)
	assert.Equal(t, "12:30", derivedNoon.End)
}

func TestKindEins_GroupFilter(t *testing.T) {
	s := kindEinsSnapshot(t)
	engine := capacity.NewRatioEngine()
	w := segment(monday, "08:30", "09:00")
	set := capacity.ResolveItems(s, "derived")

	fuchs := engine.SegmentStats(set, w, capacity.Filters{Groups: []scenario.GroupID{"1"}})
	other := engine.SegmentStats(set, w, capacity.Filters{Groups: []scenario.GroupID{"2", scenario.NoGroup}})

	assert.Equal(t, 1, fuchs.Bedarf)
	assert.Equal(t, 0, other.Bedarf)
}

func TestResolveItems(t *testing.T) {
	s := kindEinsSnapshot(t)
	_, err := scenario.AddDataItem(s, "root", scenario.DataItem{ID: "anna", Type: scenario.ItemCapacity, Name: "Anna"})
	require.NoError(t, err)
	_, err = scenario.AddDataItem(s, "root", scenario.DataItem{ID: "ben", Type: scenario.ItemCapacity, Name: "Ben", Qualification: "K"})
	require.NoError(t, err)
	require.NoError(t, scenario.AssignQualification(s, "derived", "anna", "E"))

	derived := capacity.ResolveItems(s, "derived")
	require.Len(t, derived.Items, 3)
	assert.Len(t, derived.Demand(), 1)
	assert.Len(t, derived.Capacity(), 2)
	assert.Equal(t, "Fuchs", derived.GroupName("1"))

	byID := map[scenario.ItemID]capacity.Item{}
	for _, it := range derived.Items {
		byID[it.ID()] = it
	}
	assert.Equal(t, "E", byID["anna"].Qualification)
	assert.Equal(t, "K", byID["ben"].Qualification)
	assert.Equal(t, "13:00", byID["kind-1"].Bookings[0].Times[0].Segments[0].BookingEnd)

	root := capacity.ResolveItems(s, "root")
	for _, it := range root.Items {
		if it.ID() == "anna" {
			assert.Equal(t, capacity.NoQualification, it.Qualification)
		}
	}
}

// =============================================================================
// PRESENCE
// =============================================================================

func TestIsPresent_BookingEndIsInclusive(t *testing.T) {
	// GIVEN: a booking valid until 2024-06-10
	b := everyDay("b", "08:00", "12:00")
	b.EndDate = "2024-06-10"
	kid := child("Kind", "", b)

	// THEN: present on the 10th, absent on the 11th
	assert.True(t, capacity.IsPresent(kid, segment(generic.MustParseDate("2024-06-10"), "09:00", "09:30"), capacity.Filters{}))
	assert.False(t, capacity.IsPresent(kid, segment(generic.MustParseDate("2024-06-11"), "09:00", "09:30"), capacity.Filters{}))
}

func TestIsPresent_HalfOpenTimes(t *testing.T) {
	kid := child("Kind", "", booking("b", 1, "08:00", "12:00"))

	assert.True(t, capacity.IsPresent(kid, segment(monday, "11:30", "12:00"), capacity.Filters{}))
	assert.False(t, capacity.IsPresent(kid, segment(monday, "12:00", "12:30"), capacity.Filters{}))
	assert.False(t, capacity.IsPresent(kid, segment(monday, "07:30", "08:00"), capacity.Filters{}))
	// Tuesday
	assert.False(t, capacity.IsPresent(kid, segment(monday.AddDays(1), "09:00", "09:30"), capacity.Filters{}))
}

func TestIsPresent_UnparseableDatesAreUnbounded(t *testing.T) {
	b := booking("b", 1, "08:00", "12:00")
	b.StartDate = "irgendwann"
	b.EndDate = ""

	assert.True(t, capacity.IsPresent(child("Kind", "", b), segment(monday, "09:00", "09:30"), capacity.Filters{}))
}

func TestIsPresent_Pause(t *testing.T) {
	kid := child("Kind", "", everyDay("b", "08:00", "12:00"))
	kid.Data.PausedState = &scenario.PausedState{Enabled: true, Start: "2024-06-01", End: "2024-06-10"}

	assert.False(t, capacity.IsPresent(kid, segment(monday, "09:00", "09:30"), capacity.Filters{}))
	assert.True(t, capacity.IsPresent(kid, segment(generic.MustParseDate("2024-06-11"), "09:00", "09:30"), capacity.Filters{}))

	// partial overlap with a period still counts
	june := generic.DimensionMonths.PeriodFor(monday)
	assert.True(t, capacity.IsPresent(kid, capacity.PeriodWindow{Period: june}, capacity.Filters{}))

	// a pause covering the period removes the item
	kid.Data.PausedState.End = "2024-07-31"
	assert.False(t, capacity.IsPresent(kid, capacity.PeriodWindow{Period: june}, capacity.Filters{}))

	// a disabled pause does nothing
	kid.Data.PausedState.Enabled = false
	assert.True(t, capacity.IsPresent(kid, segment(monday, "09:00", "09:30"), capacity.Filters{}))
}

func TestIsPresent_QualificationFilterOnlyAffectsStaff(t *testing.T) {
	w := segment(monday, "09:00", "09:30")
	erzieherin := staff("Erzieherin", "E", booking("b", 1, "07:00", "15:00"))
	ohne := staff("Aushilfe", "", booking("b", 1, "07:00", "15:00"))
	kid := child("Kind", "", booking("b", 1, "08:00", "12:00"))

	f := capacity.Filters{Qualifications: []string{"E"}}
	assert.True(t, capacity.IsPresent(erzieherin, w, f))
	assert.False(t, capacity.IsPresent(ohne, w, f))
	assert.True(t, capacity.IsPresent(kid, w, f))

	f = capacity.Filters{Qualifications: []string{capacity.NoQualification}}
	assert.True(t, capacity.IsPresent(ohne, w, f))

	// empty selection selects nothing
	assert.False(t, capacity.IsPresent(erzieherin, w, capacity.Filters{Qualifications: []string{}}))
}

func TestIsPresent_GroupMembershipDates(t *testing.T) {
	kid := child("Kind", "", everyDay("b", "08:00", "12:00"))
	kid.Groups = []scenario.GroupAssignment{
		{ID: "m1", GroupID: "1", End: "2024-06-30"},
		{ID: "m2", GroupID: "2", Start: "2024-07-01"},
	}
	f := capacity.Filters{Groups: []scenario.GroupID{"2"}}

	assert.False(t, capacity.IsPresent(kid, segment(monday, "09:00", "09:30"), f))
	assert.True(t, capacity.IsPresent(kid, segment(generic.MustParseDate("2024-07-01"), "09:00", "09:30"), f))

	// period windows use overlap
	june := generic.DimensionMonths.PeriodFor(monday)
	assert.False(t, capacity.IsPresent(kid, capacity.PeriodWindow{Period: june}, f))
	q3 := generic.DimensionQuarters.PeriodFor(generic.MustParseDate("2024-07-15"))
	assert.True(t, capacity.IsPresent(kid, capacity.PeriodWindow{Period: q3}, f))
}

func TestIsPresent_PeriodNeedsBookedWeekday(t *testing.T) {
	// booked Fridays only, valid Mon 3rd to Wed 5th: no Friday in range
	b := booking("b", 5, "08:00", "12:00")
	b.StartDate = "2024-06-03"
	b.EndDate = "2024-06-05"
	kid := child("Kind", "", b)

	week := generic.DimensionWeeks.PeriodFor(monday)
	assert.False(t, capacity.IsPresent(kid, capacity.PeriodWindow{Period: week}, capacity.Filters{}))

	b.EndDate = "2024-06-07"
	kid.Bookings = []scenario.Booking{b}
	assert.True(t, capacity.IsPresent(kid, capacity.PeriodWindow{Period: week}, capacity.Filters{}))
}

// =============================================================================
// RATIOS
// =============================================================================

func TestStaffingWeighting(t *testing.T) {
	groups := []scenario.GroupDef{{ID: "1", Name: "Fuchs"}, {ID: "3", Name: "Schulkinder Eulen"}}

	baby := child("Baby", "2022-09-01")
	assert.True(t, capacity.StaffingWeighting(baby, monday, groups).Equal(capacity.WeightUnderThree))
	// third birthday
	assert.True(t, capacity.StaffingWeighting(baby, generic.MustParseDate("2025-09-01"), groups).Equal(capacity.WeightDefault))

	schoolkid := child("Schulkind", "2017-01-01")
	schoolkid.Groups = []scenario.GroupAssignment{{ID: "m", GroupID: "3"}}
	assert.True(t, capacity.StaffingWeighting(schoolkid, monday, groups).Equal(capacity.WeightSchoolChild))

	fuchs := child("Fuchs", "")
	fuchs.Groups = []scenario.GroupAssignment{{ID: "m", GroupID: "1"}}
	assert.True(t, capacity.StaffingWeighting(fuchs, monday, groups).Equal(capacity.WeightDefault))
}

func TestCompute_WorkedExample(t *testing.T) {
	engine := capacity.NewRatioEngine()
	ten := decimal.NewFromInt(10)

	children := []capacity.Contribution{
		{Item: child("Zwei", "2022-01-01"), Hours: ten, At: monday},
		{Item: child("Fünf", "2019-01-01"), Hours: ten, At: monday},
	}
	workers := []capacity.Contribution{
		{Item: staff("Erzieherin", "E"), Hours: decimal.NewFromInt(2), At: monday},
		{Item: staff("Aushilfe", ""), Hours: decimal.NewFromInt(1), At: monday},
	}

	r := engine.Compute(children, workers, nil)

	assert.Equal(t, 2, r.ChildCount)
	assert.Equal(t, 2, r.StaffCount)
	assert.Equal(t, "20", r.ChildHours.String())
	assert.Equal(t, "30", r.WeightedChildHours.String())
	assert.Equal(t, "2.73", r.RequiredStaffHours.StringFixed(2))
	assert.Equal(t, "1.10", r.StaffRatio.StringFixed(2))
	assert.True(t, r.StaffRequirementMet)
	assert.Equal(t, "66.67", r.FachkraftQuotePercent.StringFixed(2))
	assert.Equal(t, "1.36", r.RequiredFachkraftHours.StringFixed(2))
	assert.True(t, r.FachkraftRequirementMet)
}

func TestCompute_EmptyIsZero(t *testing.T) {
	r := capacity.NewRatioEngine().Compute(nil, nil, nil)

	assert.True(t, r.StaffRatio.IsZero())
	assert.True(t, r.FachkraftQuotePercent.IsZero())
	assert.True(t, r.StaffRequirementMet)
	assert.True(t, r.FachkraftRequirementMet)
}

func TestCompute_QuoteWeightingHook(t *testing.T) {
	engine := capacity.NewRatioEngine()
	engine.QuoteWeighting = func(capacity.Item, generic.TimePoint, []scenario.GroupDef) decimal.Decimal {
		return decimal.NewFromInt(1)
	}
	children := []capacity.Contribution{{Item: child("Baby", "2023-01-01"), Hours: decimal.NewFromInt(11), At: monday}}

	r := engine.Compute(children, nil, nil)

	assert.Equal(t, "2", r.RequiredStaffHours.String())
	assert.Equal(t, "0.5", r.RequiredFachkraftHours.String())
}

func TestCompute_AddingQualifiedStaffNeverLowersQuote(t *testing.T) {
	engine := capacity.NewRatioEngine()
	children := []capacity.Contribution{{Item: child("Kind", "2019-01-01"), Hours: decimal.NewFromInt(40), At: monday}}

	cases := [][]capacity.Contribution{
		nil,
		{{Item: staff("A", ""), Hours: decimal.NewFromInt(5)}},
		{{Item: staff("A", "K"), Hours: decimal.NewFromInt(5)}, {Item: staff("B", "H"), Hours: decimal.NewFromInt(3)}},
	}
	for _, workers := range cases {
		before := engine.Compute(children, workers, nil)
		more := append(append([]capacity.Contribution{}, workers...),
			capacity.Contribution{Item: staff("Neu", "E"), Hours: decimal.NewFromInt(4)})
		after := engine.Compute(children, more, nil)

		assert.True(t, after.FachkraftQuotePercent.GreaterThanOrEqual(before.FachkraftQuotePercent),
			"%s -> %s", before.FachkraftQuotePercent, after.FachkraftQuotePercent)
	}
}

// =============================================================================
// WEEKLY CHART
// =============================================================================

func TestBuildWeeklyChart(t *testing.T) {
	s := kindEinsSnapshot(t)
	_, err := scenario.AddDataItem(s, "root", scenario.DataItem{ID: "anna", Type: scenario.ItemCapacity, Name: "Anna", Qualification: "E"})
	require.NoError(t, err)
	_, err = scenario.PutBooking(s, "root", "anna", booking("a1", 1, "07:00", "11:00"))
	require.NoError(t, err)

	// a Wednesday still yields the week starting Monday
	chart := capacity.NewRatioEngine().BuildWeeklyChart(
		capacity.ResolveItems(s, "root"), monday.AddDays(2), capacity.Filters{}, capacity.DefaultChartConfig())

	assert.Equal(t, "2024-06-03", chart.WeekStart)
	assert.Equal(t, "KW 23/2024", chart.Label)
	require.Len(t, chart.Segments, 5*20)

	first := chart.Segments[0]
	assert.Equal(t, "Mo 07:00", first.Label)
	assert.Equal(t, "Montag", first.DayName)
	assert.Equal(t, 0, first.Bedarf)
	assert.Equal(t, 1, first.Kapazitaet)

	at0830 := chart.Segments[3]
	assert.Equal(t, "08:30", at0830.Start)
	assert.Equal(t, 1, at0830.Bedarf)
	assert.Equal(t, 1, at0830.Kapazitaet)
	assert.Equal(t, "0.5", at0830.Ratios.ChildHours.String())
	assert.Equal(t, "0.5", at0830.Ratios.AvailableStaffHours.String())
	assert.Equal(t, "100", at0830.Ratios.FachkraftQuotePercent.String())

	tuesday := chart.Segments[20]
	assert.Equal(t, "2024-06-04", tuesday.Date)
	assert.Equal(t, 0, tuesday.Bedarf)
}

func TestChartConfig_SegmentAt(t *testing.T) {
	cfg := capacity.DefaultChartConfig()

	w := cfg.SegmentAt(monday, generic.MustParseClock("16:59"))
	assert.Equal(t, "16:30-17:00", w.Range.String())

	w = cfg.SegmentAt(monday, generic.MustParseClock("06:45"))
	assert.Equal(t, "06:30-07:00", w.Range.String())

	w = capacity.ChartConfig{}.SegmentAt(monday, generic.MustParseClock("09:10"))
	assert.Equal(t, "09:00-09:30", w.Range.String())
}

// =============================================================================
// MIDTERM CHART
// =============================================================================

func TestBookingHoursInPeriod_WeeksTileMonth(t *testing.T) {
	// GIVEN: Mon 4h, Wed 5h, Fri 6.75h, valid since January
	b := scenario.Booking{
		ID:        "b",
		StartDate: "2021-01-15",
		Times: []scenario.DayTimes{
			{Day: 1, Segments: []scenario.TimeSegment{{BookingStart: "08:00", BookingEnd: "12:00"}}},
			{Day: 3, Segments: []scenario.TimeSegment{{BookingStart: "08:00", BookingEnd: "13:00"}}},
			{Day: 5, Segments: []scenario.TimeSegment{{BookingStart: "07:30", BookingEnd: "14:15"}}},
		},
	}
	february := generic.DimensionMonths.PeriodFor(generic.MustParseDate("2021-02-10"))

	// WHEN: February 2021 (Mon 1st to Sun 28th) is split into weeks
	weeks := generic.GeneratePeriods(generic.DimensionWeeks, february.Start, february.End)
	require.Len(t, weeks, 4)

	sum := generic.ZeroHours
	for _, w := range weeks {
		sum = sum.Add(capacity.BookingHoursInPeriod(b, w))
	}

	// THEN: the weeks add up to the month
	month := capacity.BookingHoursInPeriod(b, february)
	assert.Equal(t, "63", month.String())
	assert.True(t, sum.Equal(month))
}

func TestBookingHoursInPeriod_ClipsToBookingRange(t *testing.T) {
	b := booking("b", 1, "08:00", "12:00")
	b.StartDate = "2024-06-05"
	b.Times = append(b.Times, scenario.DayTimes{Day: 3, Segments: []scenario.TimeSegment{{BookingStart: "08:00", BookingEnd: "13:00"}}})

	june := generic.DimensionMonths.PeriodFor(monday)
	assert.Equal(t, "32", capacity.BookingHoursInPeriod(b, june).String())

	b.EndDate = "2024-05-31"
	assert.True(t, capacity.BookingHoursInPeriod(b, june).IsZero())
}

func TestItemHoursInPeriod_SkipsPausedDays(t *testing.T) {
	kid := child("Kind", "", booking("b", 1, "08:00", "12:00"))
	kid.Data.PausedState = &scenario.PausedState{Enabled: true, Start: "2024-06-10", End: "2024-06-17"}

	june := generic.DimensionMonths.PeriodFor(monday)
	// Mondays 3, 10, 17, 24 minus two paused
	assert.Equal(t, "8", capacity.ItemHoursInPeriod(kid, june).String())
}

func TestBuildMidtermChart(t *testing.T) {
	s := kindEinsSnapshot(t)
	_, err := scenario.UpdateDataItem(s, "root", "kind-1", scenario.DataItemPatch{EndDate: strPtr("31.08.2024")})
	require.NoError(t, err)

	chart := capacity.NewRatioEngine().BuildMidtermChart(
		capacity.ResolveItems(s, "root"), generic.DimensionMonths, generic.MustParseDate("2024-06-15"), capacity.Filters{})

	// the day after the end date is the last date of interest
	require.Len(t, chart.Periods, 4)
	assert.Equal(t, "Juni 2024", chart.Periods[0].Label)
	assert.Equal(t, "2024-06-01", chart.Periods[0].Start)
	assert.Equal(t, "September 2024", chart.Periods[3].Label)

	assert.Equal(t, 1, chart.Periods[0].Bedarf)
	// Mondays in June 2024: 3, 10, 17, 24
	assert.Equal(t, "16", chart.Periods[0].Ratios.ChildHours.String())
}

func strPtr(s string) *string { return &s }

// =============================================================================
// DATES OF INTEREST AND FILTERS
// =============================================================================

func TestDatesOfInterest(t *testing.T) {
	b := booking("b", 1, "08:00", "12:00")
	b.StartDate = "2024-09-01"
	b.EndDate = "2025-07-31"
	kid := child("Kind", "", b)
	kid.Data.StartDate = "2024-09-01"
	kid.Groups = []scenario.GroupAssignment{{ID: "m", GroupID: "1", End: "2025-03-31"}}
	kid.Data.PausedState = &scenario.PausedState{Enabled: false, End: "2030-01-01"}

	dates := capacity.DatesOfInterest([]capacity.Item{kid})
	var got []string
	for _, d := range dates {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"2024-09-01", "2025-04-01", "2025-08-01"}, got)

	today := generic.MustParseDate("2024-06-03")
	assert.Equal(t, "2025-08-01", capacity.LatestDateOfInterest([]capacity.Item{kid}, today).String())
	assert.Equal(t, today, capacity.LatestDateOfInterest(nil, today))
}

func TestAvailableOptions(t *testing.T) {
	inGroup := child("A", "")
	inGroup.Groups = []scenario.GroupAssignment{{ID: "m", GroupID: "2"}}
	items := []capacity.Item{
		inGroup,
		child("B", ""),
		staff("C", "K"),
		staff("D", ""),
	}

	assert.Equal(t, []scenario.GroupID{scenario.NoGroup, "2"}, capacity.AvailableGroups(items))
	assert.Equal(t, []string{"K", capacity.NoQualification}, capacity.AvailableQualifications(items))
}

func TestFilterSync(t *testing.T) {
	prev := capacity.FilterState[string]{Available: []string{"E", "K"}, Selected: []string{"K"}}

	// same set in another order keeps the manual selection
	kept := capacity.FilterSync(prev, []string{"K", "E"})
	assert.Equal(t, []string{"K"}, kept.Selected)

	// a changed set selects everything
	reset := capacity.FilterSync(prev, []string{"E", "H", "K"})
	assert.Equal(t, []string{"E", "H", "K"}, reset.Selected)

	// first render
	first := capacity.FilterSync(capacity.FilterState[scenario.GroupID]{}, []scenario.GroupID{"1"})
	assert.Equal(t, []scenario.GroupID{"1"}, first.Selected)
}
