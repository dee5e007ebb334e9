package factory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitaplan/capacity-engine/capacity"
	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

const fuchsImport = `{
  "scenario": {"id": "ist", "name": "Ist-Stand"},
  "groups": [{"id": "1", "name": "Fuchs"}],
  "qualifications": [{"key": "E", "name": "Erzieher/in"}, {"key": "H", "name": "Hilfskraft"}],
  "children": [
    {
      "id": "k1",
      "name": "Kind 1",
      "startdate": "01.09.2023",
      "birthdate": "12.03.2022",
      "groups": [{"id": "m1", "groupId": "1", "start": "01.09.2023"}],
      "bookings": [
        {"id": "b1", "startdate": "01.09.2023",
         "times": [{"day": 1, "segments": [{"start": "08:00", "end": "12:00"}]}]}
      ]
    }
  ],
  "staff": [
    {
      "name": "Anna",
      "qualification": "E",
      "paused": {"start": "01.08.2024", "end": "31.08.2024"},
      "bookings": [
        {"times": [{"day": 1, "segments": [{"start": "07:30", "end": "15:30"}]}]}
      ]
    }
  ]
}`

func TestParseImport_BuildsRootScenario(t *testing.T) {
	// GIVEN: a facility export with one child and one staff member
	f := NewImportFactory()

	// WHEN
	snap, rootID, err := f.ParseImport([]byte(fuchsImport))

	// THEN
	require.NoError(t, err)
	assert.Equal(t, scenario.ScenarioID("ist"), rootID)
	require.Len(t, snap.Scenarios, 1)
	assert.True(t, snap.Scenarios[0].IsRoot())

	kind, ok := scenario.EffectiveDataItem(snap, rootID, "k1")
	require.True(t, ok)
	assert.Equal(t, scenario.ItemDemand, kind.Type)
	assert.Equal(t, "2023-09-01", kind.StartDate)
	assert.Equal(t, "2022-03-12", kind.Birthdate)

	bookings := scenario.EffectiveBookings(snap, rootID, "k1")
	require.Contains(t, bookings, scenario.BookingID("b1"))
	assert.Equal(t, "2023-09-01", bookings["b1"].StartDate)
	assert.Equal(t, "Montag", bookings["b1"].Times[0].DayName)
	assert.NotEmpty(t, bookings["b1"].Times[0].Segments[0].ID)

	groups := scenario.EffectiveGroupAssignments(snap, rootID, "k1")
	require.Contains(t, groups, scenario.AssignmentID("m1"))
	assert.Equal(t, scenario.GroupID("1"), groups["m1"].GroupID)

	assert.Len(t, scenario.EffectiveQualificationDefs(snap, rootID), 2)
	assert.Equal(t, "Fuchs", scenario.EffectiveGroupDefs(snap, rootID)[0].Name)
}

func TestParseImport_StaffGetsGeneratedIDAndQualification(t *testing.T) {
	snap, rootID, err := NewImportFactory().ParseImport([]byte(fuchsImport))
	require.NoError(t, err)

	set := capacity.ResolveItems(snap, rootID)
	staff := set.Capacity()
	require.Len(t, staff, 1)

	anna := staff[0]
	assert.NotEmpty(t, anna.ID())
	assert.Equal(t, "E", anna.Qualification)
	require.NotNil(t, anna.Data.PausedState)
	assert.True(t, anna.Data.PausedState.Enabled)
	assert.Equal(t, "2024-08-01", anna.Data.PausedState.Start)

	qa := scenario.EffectiveQualificationAssignments(snap, rootID, anna.ID())
	require.Len(t, qa, 1)
	assert.Equal(t, "E", qa[0].Qualification)
}

func TestParseImport_ImportedChildIsPresent(t *testing.T) {
	// GIVEN: the imported facility
	snap, rootID, err := NewImportFactory().ParseImport([]byte(fuchsImport))
	require.NoError(t, err)
	set := capacity.ResolveItems(snap, rootID)

	// WHEN: Monday 2024-06-10 08:30
	w := capacity.DefaultChartConfig().SegmentAt(generic.MustParseDate("2024-06-10"), generic.MustParseClock("08:30"))
	stats := capacity.NewRatioEngine().SegmentStats(set, w, capacity.Filters{})

	// THEN: Kind 1 and Anna are counted
	assert.Equal(t, 1, stats.Ratios.ChildCount)
	assert.Equal(t, 1, stats.Ratios.StaffCount)
}

func TestParseImport_Errors(t *testing.T) {
	f := NewImportFactory()

	cases := map[string]string{
		"malformed json":   `{"children": [`,
		"nameless child":   `{"children": [{"id": "k1"}]}`,
		"bad weekday":      `{"staff": [{"name": "Anna", "bookings": [{"times": [{"day": 9, "segments": []}]}]}]}`,
		"bad clock":        `{"children": [{"name": "K", "bookings": [{"times": [{"day": 1, "segments": [{"start": "8 Uhr", "end": "12:00"}]}]}]}]}`,
		"group without id": `{"groups": [{"name": "Fuchs"}]}`,
	}
	for name, doc := range cases {
		_, _, err := f.ParseImport([]byte(doc))
		assert.ErrorIs(t, err, generic.ErrInvalidInput, name)
		assert.True(t, generic.IsClientError(err), name)
	}
}

func TestApply_AddsSecondRootScenario(t *testing.T) {
	snap, _, err := NewImportFactory().ParseImport([]byte(fuchsImport))
	require.NoError(t, err)

	id, err := NewImportFactory().Apply(snap, ImportDocument{
		Children: []PersonJSON{{Name: "Kind 2"}},
	})

	require.NoError(t, err)
	assert.NotEqual(t, scenario.ScenarioID("ist"), id)
	sc, ok := snap.Scenario(id)
	require.True(t, ok)
	assert.Equal(t, DefaultScenarioName, sc.Name)
	assert.Len(t, scenario.EffectiveDataItems(snap, id), 1)
	assert.Len(t, scenario.EffectiveDataItems(snap, "ist"), 2)
}

func TestApply_DuplicateScenarioID(t *testing.T) {
	snap, _, err := NewImportFactory().ParseImport([]byte(fuchsImport))
	require.NoError(t, err)

	_, err = NewImportFactory().Apply(snap, ImportDocument{Scenario: ScenarioJSON{ID: "ist"}})

	assert.ErrorIs(t, err, generic.ErrScenarioExists)
}

func TestToJSON_RoundTripsEffectiveView(t *testing.T) {
	// GIVEN: an imported facility with a derived scenario renaming the child
	f := NewImportFactory()
	snap, rootID, err := f.ParseImport([]byte(fuchsImport))
	require.NoError(t, err)
	_, err = scenario.AddScenario(snap, scenario.Scenario{ID: "plan", BaseScenarioID: rootID, Name: "Plan"})
	require.NoError(t, err)
	name := "Kind 1 (Plan)"
	_, err = scenario.UpdateDataItem(snap, "plan", "k1", scenario.DataItemPatch{Name: &name})
	require.NoError(t, err)

	// WHEN: the derived view is exported and re-imported as a new root
	doc, err := f.ToJSON(snap, "plan")
	require.NoError(t, err)
	doc.Scenario.ID = "kopie"
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	copySnap, copyID, err := f.ParseImport(data)
	require.NoError(t, err)

	// THEN: dates are German in the document, and the copy resolves the same
	require.Len(t, doc.Children, 1)
	assert.Equal(t, "01.09.2023", doc.Children[0].StartDate)

	got, ok := scenario.EffectiveDataItem(copySnap, copyID, "k1")
	require.True(t, ok)
	assert.Equal(t, "Kind 1 (Plan)", got.Name)
	assert.Equal(t, "2023-09-01", got.StartDate)
	assert.True(t, generic.CanonicalEqual(
		scenario.EffectiveBookings(snap, "plan", "k1"),
		scenario.EffectiveBookings(copySnap, copyID, "k1"),
	))
}

func TestToJSON_UnknownScenario(t *testing.T) {
	_, err := NewImportFactory().ToJSON(scenario.NewSnapshot(), "nope")
	assert.True(t, generic.IsNotFound(err))
}
