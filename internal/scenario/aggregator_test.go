package scenario

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

func newAggregator(t *testing.T, slots, workers int) *Aggregator {
	t.Helper()
	logger, _ := test.NewNullLogger()
	calc, err := standings.NewCalculator(slots)
	require.NoError(t, err)
	return NewAggregator(calc, workers, logger)
}

func TestAggregator_ThreeTeamFixture(t *testing.T) {
	// s0: A beats B, B beats C -> A, B
	// s1: B beats A, B beats C -> B, A (A over C by name)
	// s2: A beats B, C beats B -> A, C (A over C by name)
	// s3: B beats A, C beats B -> C, B (C won the meeting)
	base := newLeague(t, teamsOf("A", "B", "C"))
	matches := []standings.Match{
		{ID: 1, Team1: "A", Team2: "B"},
		{ID: 2, Team1: "B", Team2: "C"},
	}
	e, err := NewEnumerator(base, matches)
	require.NoError(t, err)

	result, err := newAggregator(t, 2, 1).Aggregate(e)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalScenarios)
	assert.Equal(t, 2, result.UndecidedCount)
	assert.Equal(t, 0, result.DecidedCount)
	assert.Equal(t, TeamProbability{Count: 3, Total: 4, Probability: 75}, result.Teams["A"])
	assert.Equal(t, TeamProbability{Count: 3, Total: 4, Probability: 75}, result.Teams["B"])
	assert.Equal(t, TeamProbability{Count: 2, Total: 4, Probability: 50}, result.Teams["C"])
}

func TestAggregator_ProbabilityConservation(t *testing.T) {
	for _, remaining := range []int{0, 1, 4, 8} {
		base, matches := twelveTeamLeague(t, remaining)
		// decide one match where there is one to decide
		if remaining > 1 {
			matches[0].Winner = matches[0].Team2
		}

		e, err := NewEnumerator(base, matches)
		require.NoError(t, err)

		result, err := newAggregator(t, 8, 1).Aggregate(e)
		require.NoError(t, err)

		sum := 0.0
		counts := 0
		for _, p := range result.Teams {
			sum += p.Probability
			counts += p.Count
		}
		assert.InDelta(t, 800.0, sum, 1e-9, "remaining=%d", remaining)
		assert.Equal(t, 8*result.TotalScenarios, counts, "remaining=%d", remaining)
	}
}

func TestAggregator_Deterministic(t *testing.T) {
	base, matches := twelveTeamLeague(t, 8)
	e, err := NewEnumerator(base, matches)
	require.NoError(t, err)

	first, err := newAggregator(t, 8, 1).Aggregate(e)
	require.NoError(t, err)
	second, err := newAggregator(t, 8, 1).Aggregate(e)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregator_ShardedMatchesSequential(t *testing.T) {
	base, matches := twelveTeamLeague(t, 8)
	e, err := NewEnumerator(base, matches)
	require.NoError(t, err)

	sequential, err := newAggregator(t, 8, 1).Aggregate(e)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 7, 1000} {
		sharded, err := newAggregator(t, 8, workers).Aggregate(e)
		require.NoError(t, err)
		assert.Equal(t, sequential, sharded, "workers=%d", workers)
	}
}

func TestAggregator_RejectsMoreSlotsThanTeams(t *testing.T) {
	base := newLeague(t, teamsOf("A", "B"))
	e, err := NewEnumerator(base, nil)
	require.NoError(t, err)

	_, err = newAggregator(t, 3, 1).Aggregate(e)
	assert.ErrorIs(t, err, standings.ErrInvalidSlots)
}
