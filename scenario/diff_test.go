package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

func TestDiffItem_DerivedOverlay(t *testing.T) {
	s := chainSnapshot(t)

	diff, err := scenario.DiffItem(s, "B", "X")
	require.NoError(t, err)

	assert.True(t, diff.HasOverlay)
	require.Len(t, diff.Fields, 1)
	assert.Equal(t, scenario.FieldChange{Field: "name", Original: "Kind X", Current: "Kind X (B)"}, diff.Fields[0])
	assert.Contains(t, diff.Unified, "--- A/X")
	assert.Contains(t, diff.Unified, "+++ B/X")
	assert.Contains(t, diff.Unified, `"name": "Kind X (B)"`)
}

func TestDiffItem_InheritedWithoutChanges(t *testing.T) {
	s := chainSnapshot(t)

	diff, err := scenario.DiffItem(s, "C", "X")
	require.NoError(t, err)

	assert.False(t, diff.HasOverlay)
	assert.Empty(t, diff.Fields)
	assert.Empty(t, diff.Unified)
}

func TestDiffItem_BookingChangeShowsInUnified(t *testing.T) {
	s := chainSnapshot(t)
	_, err := scenario.PutBooking(s, "C", "X", monday("b1", "08:00", "13:00"))
	require.NoError(t, err)

	diff, err := scenario.DiffItem(s, "C", "X")
	require.NoError(t, err)

	assert.Empty(t, diff.Fields, "data item unchanged")
	assert.Regexp(t, `(?m)^-\s+"booking_end": "12:00"`, diff.Unified)
	assert.Regexp(t, `(?m)^\+\s+"booking_end": "13:00"`, diff.Unified)
}

func TestDiffItem_RootHasNoOriginal(t *testing.T) {
	s := chainSnapshot(t)

	diff, err := scenario.DiffItem(s, "A", "X")
	require.NoError(t, err)
	assert.NotEmpty(t, diff.Fields)
	assert.Contains(t, diff.Unified, "+++ A/X")
}

func TestDiffItem_Errors(t *testing.T) {
	s := chainSnapshot(t)

	_, err := scenario.DiffItem(s, "ghost", "X")
	assert.ErrorIs(t, err, generic.ErrScenarioNotFound)

	_, err = scenario.DiffItem(s, "B", "ghost")
	assert.ErrorIs(t, err, generic.ErrItemNotFound)
}

func TestFieldChanges(t *testing.T) {
	a := scenario.DataItem{ID: "1", Type: scenario.ItemCapacity, Name: "Anna", Qualification: "K"}
	b := a
	b.Qualification = "E"
	b.EndDate = "2025-12-31"

	changes := scenario.FieldChanges(a, b)
	assert.Equal(t, []scenario.FieldChange{
		{Field: "enddate", Original: "", Current: "2025-12-31"},
		{Field: "qualification", Original: "K", Current: "E"},
	}, changes)
}
