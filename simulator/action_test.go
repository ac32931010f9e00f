package simulator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iimin/restosim/simulator"
)

func TestActionNamesRoundTrip(t *testing.T) {
	for name := range simulator.DefaultWeights() {
		kind, err := simulator.ParseActionKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, kind.String())
	}
}

func TestParseActionKindRejectsUnknownName(t *testing.T) {
	_, err := simulator.ParseActionKind("launch_rockets")
	assert.Error(t, err)
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]int
	}{
		{name: "empty table", weights: map[string]int{}},
		{name: "unknown action", weights: map[string]int{"create_client": 1, "explode": 2}},
		{name: "zero weight", weights: map[string]int{"create_client": 0}},
		{name: "negative weight", weights: map[string]int{"create_client": -3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := simulator.NewCatalog(tc.weights)
			assert.Error(t, err)
		})
	}
}

func TestCatalogOmitsUnlistedActions(t *testing.T) {
	catalog, err := simulator.NewCatalog(map[string]int{"create_client": 1})
	require.NoError(t, err)

	require.Equal(t, []simulator.ActionKind{simulator.ActionCreateClient}, catalog.Kinds())

	for i := 0; i < 100; i++ {
		assert.Equal(t, simulator.ActionCreateClient, catalog.Pick())
	}
}

func TestWeightedSelectionFairness(t *testing.T) {
	catalog, err := simulator.NewCatalog(map[string]int{
		"create_client": 3,
		"delete_review": 1,
	})
	require.NoError(t, err)

	const trials = 40000

	counts := make(map[simulator.ActionKind]int)
	for i := 0; i < trials; i++ {
		counts[catalog.Pick()]++
	}

	assert.Equal(t, trials, counts[simulator.ActionCreateClient]+counts[simulator.ActionDeleteReview])
	assert.InDelta(t, 0.75, float64(counts[simulator.ActionCreateClient])/trials, 0.02)
}
