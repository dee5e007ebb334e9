package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// chainSnapshot builds root A <- B <- C. A owns child X with one booking and
// one membership; B overlays X's name.
func chainSnapshot(t *testing.T) *scenario.Snapshot {
	t.Helper()
	s := scenario.NewSnapshot()
	for _, sc := range threeGenerations()[:3] {
		_, err := scenario.AddScenario(s, sc)
		require.NoError(t, err)
	}
	_, err := scenario.AddDataItem(s, "A", scenario.DataItem{
		ID: "X", Type: scenario.ItemDemand, Name: "Kind X", StartDate: "01.09.2023",
	})
	require.NoError(t, err)
	_, err = scenario.PutBooking(s, "A", "X", monday("b1", "08:00", "12:00"))
	require.NoError(t, err)
	_, err = scenario.PutGroupAssignment(s, "A", "X", scenario.GroupAssignment{ID: "g1", GroupID: "1"})
	require.NoError(t, err)

	name := "Kind X (B)"
	_, err = scenario.UpdateDataItem(s, "B", "X", scenario.DataItemPatch{Name: &name})
	require.NoError(t, err)
	return s
}

func monday(id, start, end string) scenario.Booking {
	return scenario.Booking{
		ID: scenario.BookingID(id),
		Times: []scenario.DayTimes{{
			Day: 1,
			Segments: []scenario.TimeSegment{
				{ID: id + "-s1", BookingStart: start, BookingEnd: end},
			},
		}},
	}
}

// =============================================================================
// MAP-STYLE LOOKUP
// =============================================================================

func TestEffectiveDataItem_ChainPrecedence(t *testing.T) {
	// GIVEN: A defines X, B overlays X, C does not touch X
	s := chainSnapshot(t)

	a, okA := scenario.EffectiveDataItem(s, "A", "X")
	b, okB := scenario.EffectiveDataItem(s, "B", "X")
	c, okC := scenario.EffectiveDataItem(s, "C", "X")
	require.True(t, okA && okB && okC)

	// THEN: resolve(C) == resolve(B) != resolve(A)
	assert.Equal(t, b, c)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "Kind X (B)", c.Name)
	assert.Equal(t, "Kind X", a.Name)
}

func TestEffectiveDataItem_DatesNormalizedOnAdd(t *testing.T) {
	s := chainSnapshot(t)
	item, _ := scenario.EffectiveDataItem(s, "A", "X")
	assert.Equal(t, "2023-09-01", item.StartDate)
}

func TestEffectiveDataItem_Missing(t *testing.T) {
	s := chainSnapshot(t)

	_, ok := scenario.EffectiveDataItem(s, "C", "nobody")
	assert.False(t, ok)

	_, ok = scenario.EffectiveDataItem(s, "unknown-scenario", "X")
	assert.False(t, ok)

	_, ok = scenario.EffectiveDataItem(nil, "A", "X")
	assert.False(t, ok)
}

func TestEffectiveDataItems_UnionOverChain(t *testing.T) {
	s := chainSnapshot(t)
	_, err := scenario.AddDataItem(s, "C", scenario.DataItem{ID: "Y", Type: scenario.ItemCapacity, Name: "Erzieherin Y"})
	require.NoError(t, err)

	items := scenario.EffectiveDataItems(s, "C")
	require.Len(t, items, 2)
	// demand first
	assert.Equal(t, scenario.ItemID("X"), items[0].ID)
	assert.Equal(t, "Kind X (B)", items[0].Name)
	assert.Equal(t, scenario.ItemID("Y"), items[1].ID)

	assert.Len(t, scenario.EffectiveDataItems(s, "B"), 1)
	assert.Empty(t, scenario.EffectiveDataItems(s, "missing"))
}

func TestEffectiveBookings_OverlayBeatsBaseAtSameDepth(t *testing.T) {
	s := chainSnapshot(t)

	// WHEN: B changes the booking
	_, err := scenario.PutBooking(s, "B", "X", monday("b1", "08:00", "13:00"))
	require.NoError(t, err)

	// THEN: B and C see the overlay, A keeps its booking
	assert.Equal(t, "13:00", scenario.EffectiveBookings(s, "C", "X")["b1"].Times[0].Segments[0].BookingEnd)
	assert.Equal(t, "12:00", scenario.EffectiveBookings(s, "A", "X")["b1"].Times[0].Segments[0].BookingEnd)
	assert.True(t, scenario.HasOverlay(s, "B", "X"))
	assert.False(t, scenario.HasOverlay(s, "C", "X"))
}

func TestEffectiveBookings_ReturnsCopy(t *testing.T) {
	s := chainSnapshot(t)

	bookings := scenario.EffectiveBookings(s, "A", "X")
	delete(bookings, "b1")

	assert.Len(t, scenario.EffectiveBookings(s, "A", "X"), 1)
}

func TestEffectiveBookings_EmptyWhenUnknown(t *testing.T) {
	s := chainSnapshot(t)
	bookings := scenario.EffectiveBookings(s, "C", "nobody")
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
}

func TestEffectiveGroupAssignments_Inherited(t *testing.T) {
	s := chainSnapshot(t)
	groups := scenario.EffectiveGroupAssignments(s, "C", "X")
	require.Len(t, groups, 1)
	assert.Equal(t, scenario.GroupID("1"), groups["g1"].GroupID)
}

// =============================================================================
// COLLECTION-STYLE AND SET-UNION LOOKUP
// =============================================================================

func TestEffectiveGroupDefs_FirstNonEmptyWinsEntirely(t *testing.T) {
	s := chainSnapshot(t)
	require.NoError(t, scenario.SetGroupDefs(s, "A", []scenario.GroupDef{
		{ID: "1", Name: "Fuchs"}, {ID: "2", Name: "Igel"},
	}))
	require.NoError(t, scenario.SetGroupDefs(s, "B", []scenario.GroupDef{
		{ID: "3", Name: "Schulkinder Eulen"},
	}))

	defs := scenario.EffectiveGroupDefs(s, "C")
	require.Len(t, defs, 1, "no per-element merge")
	assert.Equal(t, "Schulkinder Eulen", defs[0].Name)

	assert.Len(t, scenario.EffectiveGroupDefs(s, "A"), 2)
}

func TestEffectiveQualificationDefs_CatalogAccumulation(t *testing.T) {
	s := chainSnapshot(t)

	// GIVEN: A defines E and K, B adds H and redefines K
	require.NoError(t, scenario.PutQualificationDef(s, "A", scenario.QualificationDef{Key: "E", Name: "Erzieher/in"}))
	require.NoError(t, scenario.PutQualificationDef(s, "A", scenario.QualificationDef{Key: "K", Name: "Kinderpfleger/in"}))
	require.NoError(t, scenario.PutQualificationDef(s, "B", scenario.QualificationDef{Key: "H", Name: "Hilfskraft"}))
	require.NoError(t, scenario.PutQualificationDef(s, "B", scenario.QualificationDef{Key: "K", Name: "Kinderpfleger/in (neu)"}))

	// THEN: C sees all keys, K in B's version
	defs := scenario.EffectiveQualificationDefs(s, "C")
	byKey := map[string]string{}
	for _, d := range defs {
		byKey[d.Key] = d.Name
	}
	assert.Equal(t, map[string]string{
		"E": "Erzieher/in",
		"K": "Kinderpfleger/in (neu)",
		"H": "Hilfskraft",
	}, byKey)

	// order follows first introduction, root first
	assert.Equal(t, "E", defs[0].Key)
	assert.Equal(t, "K", defs[1].Key)
	assert.Equal(t, "H", defs[2].Key)

	// A is untouched
	assert.Len(t, scenario.EffectiveQualificationDefs(s, "A"), 2)
}

func TestEffectiveQualificationAssignments_DedupByQualification(t *testing.T) {
	s := chainSnapshot(t)
	require.NoError(t, scenario.AssignQualification(s, "A", "X", "E"))
	require.NoError(t, scenario.AssignQualification(s, "B", "X", "E"))
	require.NoError(t, scenario.AssignQualification(s, "C", "X", "K"))

	got := scenario.EffectiveQualificationAssignments(s, "C", "X")
	require.Len(t, got, 2)
	assert.Equal(t, "E", got[0].Qualification)
	assert.Equal(t, "K", got[1].Qualification)

	assert.Len(t, scenario.EffectiveQualificationAssignments(s, "A", "X"), 1)
}
