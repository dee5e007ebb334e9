package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitaplan/capacity-engine/scenario"
	"github.com/kitaplan/capacity-engine/store/memory"
)

func TestAutosaver_RunNowFlushesOnlyDirtySnapshot(t *testing.T) {
	ctx := context.Background()

	// GIVEN: A live snapshot with one edit and an empty target store
	live := memory.New(scenario.NewSnapshot())
	target := memory.New(scenario.NewSnapshot())
	require.NoError(t, live.Update(ctx, func(s *scenario.Snapshot) error {
		_, err := scenario.AddScenario(s, scenario.Scenario{ID: "ist", Name: "Ist"})
		return err
	}))

	saver := NewAutosaver(live, target, NewMetrics())

	// WHEN/THEN: The first run writes, the second has nothing to do
	assert.True(t, saver.RunNow(ctx))
	assert.False(t, saver.RunNow(ctx))
	assert.False(t, live.Dirty())

	stored, err := target.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored.Scenarios, 1)
	assert.Equal(t, scenario.ScenarioID("ist"), stored.Scenarios[0].ID)
}

func TestAutosaver_StopFlushesPendingEdits(t *testing.T) {
	ctx := context.Background()
	live := memory.New(scenario.NewSnapshot())
	target := memory.New(scenario.NewSnapshot())

	saver := NewAutosaver(live, target, nil)
	saver.Interval = time.Hour
	saver.Start()

	require.NoError(t, live.Update(ctx, func(s *scenario.Snapshot) error {
		_, err := scenario.AddScenario(s, scenario.Scenario{ID: "ist", Name: "Ist"})
		return err
	}))
	saver.Stop()

	assert.False(t, live.Dirty())
	assert.Len(t, target.Snapshot().Scenarios, 1)

	// Stopping twice is harmless
	saver.Stop()
}

func TestAutosaver_DisabledDoesNotStart(t *testing.T) {
	saver := NewAutosaver(memory.New(nil), nil, nil)
	saver.Start()
	assert.Nil(t, saver.ticker)
	assert.False(t, saver.RunNow(context.Background()))

	saver = NewAutosaver(memory.New(nil), memory.New(nil), nil)
	saver.Interval = 0
	saver.Start()
	assert.Nil(t, saver.ticker)
}
