package simulator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/simulator"
	"github.com/iimin/restosim/testutil/storetest"
)

// TestRunCountsCommitFailuresWithoutRegistryDrift drives a short run in
// which the first two commits fail. Failed commits must show up in the
// failure stats and must not register anything, so the client count in
// the registry matches the success count exactly.
func TestRunCountsCommitFailuresWithoutRegistryDrift(t *testing.T) {
	db := &storetest.FakeDB{
		CommitErrs: []error{
			errors.New("connection reset"),
			errors.New("connection reset"),
		},
	}

	catalog, err := simulator.NewCatalog(map[string]int{"create_client": 1})
	require.NoError(t, err)

	reg := registry.New()

	sim := simulator.New(db, reg, catalog, simulator.Config{
		Users:     5,
		Duration:  time.Second,
		ThinkMin:  5 * time.Millisecond,
		ThinkMax:  15 * time.Millisecond,
		LoadLimit: 10,
		Seed:      42,
	})

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	successes, failures := stats.Totals()

	assert.Equal(t, uint64(2), failures)
	assert.Equal(t, failures, stats.Failures(simulator.ActionCreateClient))
	assert.Equal(t, successes, stats.Successes(simulator.ActionCreateClient))
	assert.Positive(t, successes)

	assert.Equal(t, int(successes), reg.Count(registry.Client))
}

func TestRunWithCancelledContextStopsQuickly(t *testing.T) {
	db := &storetest.FakeDB{}

	catalog, err := simulator.NewCatalog(map[string]int{"create_client": 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := simulator.New(db, registry.New(), catalog, simulator.Config{
		Users:     3,
		Duration:  time.Minute,
		ThinkMin:  5 * time.Millisecond,
		ThinkMax:  15 * time.Millisecond,
		LoadLimit: 10,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, runErr := sim.Run(ctx)
		assert.NoError(t, runErr)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("simulation did not stop after context cancellation")
	}
}
