package generic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kitaplan/capacity-engine/generic"
)

func TestLayers_LookupFirstMatchWins(t *testing.T) {
	layers := generic.Layers[string, int]{
		{Name: "overlay:C", Values: nil},
		{Name: "C", Values: map[string]int{"c": 3}},
		{Name: "overlay:B", Values: map[string]int{"x": 20, "zero": 0}},
		{Name: "A", Values: map[string]int{"x": 1, "a": 1}},
	}

	v, from, ok := layers.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, 20, v)
	assert.Equal(t, "overlay:B", from)

	// presence counts even for a zero value
	v, from, ok = layers.Lookup("zero")
	assert.True(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, "overlay:B", from)

	_, _, ok = layers.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]int{"c": 3, "x": 20, "zero": 0, "a": 1}, layers.Merge())
}

func TestFirstNonEmpty(t *testing.T) {
	got := generic.FirstNonEmpty([]string{}, nil, []string{"b1", "b2"}, []string{"a"})
	assert.Equal(t, []string{"b1", "b2"}, got)

	assert.Nil(t, generic.FirstNonEmpty[string](nil, []string{}))
}

func TestMergeByKey_MostSpecificWinsInFirstPosition(t *testing.T) {
	type def struct{ Key, Name string }
	leaf := []def{{"K", "neu"}, {"H", "Hilfskraft"}}
	root := []def{{"E", "Erzieher"}, {"K", "Kinderpfleger"}}

	got := generic.MergeByKey([][]def{leaf, nil, root}, func(d def) string { return d.Key })

	assert.Equal(t, []def{{"E", "Erzieher"}, {"K", "neu"}, {"H", "Hilfskraft"}}, got)
}

func TestCanonicalEqual(t *testing.T) {
	a := map[string][]int{"x": {1, 2}, "y": {3}}
	b := map[string][]int{"y": {3}, "x": {1, 2}}
	assert.True(t, generic.CanonicalEqual(a, b))
	assert.False(t, generic.CanonicalEqual(a, map[string][]int{"x": {2, 1}, "y": {3}}))

	// unserializable values never compare equal
	assert.False(t, generic.CanonicalEqual(make(chan int), make(chan int)))
}

func TestSafeDiv(t *testing.T) {
	assert.True(t, generic.SafeDiv(generic.NewHours(3), generic.ZeroHours).IsZero())
	assert.Equal(t, "1.5", generic.SafeDiv(generic.NewHours(3), generic.NewHours(2)).String())
	assert.Equal(t, "2.5", generic.SumHours(generic.NewHours(0.5), generic.NewHours(2)).String())
}
