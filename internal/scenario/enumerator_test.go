package scenario

import (
	"fmt"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

// newLeague builds a snapshot from team records and {winner, loser} games
func newLeague(t *testing.T, teams []standings.Team, games ...[2]string) *standings.Snapshot {
	t.Helper()

	h2h := standings.HeadToHead{}
	for _, g := range games {
		for _, id := range g {
			if h2h[id] == nil {
				h2h[id] = map[string]standings.Record{}
			}
		}
		won := h2h[g[0]][g[1]]
		won.Wins++
		h2h[g[0]][g[1]] = won
		lost := h2h[g[1]][g[0]]
		lost.Losses++
		h2h[g[1]][g[0]] = lost
	}

	s, err := standings.NewSnapshot(teams, h2h)
	require.NoError(t, err)
	return s
}

func teamsOf(ids ...string) []standings.Team {
	teams := make([]standings.Team, len(ids))
	for i, id := range ids {
		teams[i] = standings.Team{ID: id, Name: id}
	}
	return teams
}

// twelveTeamLeague is a 12-team league with a partial round robin played
// and the given number of remaining matches
func twelveTeamLeague(t *testing.T, remaining int) (*standings.Snapshot, []standings.Match) {
	t.Helper()

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("T%02d", i+1)
	}

	wins := map[string]int{}
	losses := map[string]int{}
	var games [][2]string
	var matches []standings.Match
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if (i+j)%3 == 0 {
				if len(matches) < remaining {
					matches = append(matches, standings.Match{ID: len(matches) + 1, Team1: ids[i], Team2: ids[j]})
				}
				continue
			}
			winner, loser := ids[i], ids[j]
			if (i*7+j*3)%5 >= 3 {
				winner, loser = loser, winner
			}
			games = append(games, [2]string{winner, loser})
			wins[winner]++
			losses[loser]++
		}
	}

	teams := make([]standings.Team, len(ids))
	for i, id := range ids {
		teams[i] = standings.Team{ID: id, Name: "Team " + id, Wins: wins[id], Losses: losses[id]}
	}
	require.Len(t, matches, remaining)

	return newLeague(t, teams, games...), matches
}

func TestEnumerator_BitConvention(t *testing.T) {
	base := newLeague(t, teamsOf("A", "B", "C"))
	matches := []standings.Match{
		{ID: 1, Team1: "A", Team2: "B"},
		{ID: 2, Team1: "B", Team2: "C"},
	}

	e, err := NewEnumerator(base, matches)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), e.Total())

	sc := e.Scenario(2)
	assert.Equal(t, []Outcome{Team1Wins, Team2Wins}, sc.Outcomes)
	assert.Equal(t, "A", sc.Winner(0, matches[0]))
	assert.Equal(t, "C", sc.Winner(1, matches[1]))

	var seen []uint64
	for sc, snap := range e.All() {
		seen = append(seen, sc.Index)

		a, _ := snap.Team("A")
		c, _ := snap.Team("C")
		assert.Equal(t, sc.Index&1 == 0, a.Wins == 1, "scenario %d", sc.Index)
		assert.Equal(t, sc.Index&2 != 0, c.Wins == 1, "scenario %d", sc.Index)
	}
	assert.Equal(t, []uint64{0, 1, 2, 3}, seen)
}

func TestEnumerator_AppliesDecidedMatches(t *testing.T) {
	base := newLeague(t, teamsOf("A", "B", "C"))
	matches := []standings.Match{
		{ID: 1, Team1: "A", Team2: "B", Winner: "B"},
		{ID: 2, Team1: "B", Team2: "C"},
	}

	e, err := NewEnumerator(base, matches)
	require.NoError(t, err)
	assert.Len(t, e.Decided(), 1)
	assert.Len(t, e.Undecided(), 1)

	for _, snap := range e.All() {
		b, _ := snap.Team("B")
		record, err := snap.HeadToHead("B", "A")
		require.NoError(t, err)
		assert.Equal(t, standings.Record{Wins: 1}, record)
		assert.GreaterOrEqual(t, b.Wins, 1)
	}

	// the caller's snapshot is never written to
	b, _ := base.Team("B")
	assert.Equal(t, 0, b.Wins)
}

func TestEnumerator_SnapshotsAreNotShared(t *testing.T) {
	base, matches := twelveTeamLeague(t, 3)
	e, err := NewEnumerator(base, matches)
	require.NoError(t, err)

	// T01 is team1 of all three remaining matches
	for _, m := range matches {
		require.Equal(t, "T01", m.Team1)
	}
	before, _ := base.Team("T01")

	var snaps []*standings.Snapshot
	for sc, snap := range e.All() {
		snaps = append(snaps, snap)
		after, _ := snap.Team("T01")
		assert.Equal(t, before.Wins+3-bits.OnesCount64(sc.Index), after.Wins, "scenario %d", sc.Index)
	}
	require.Len(t, snaps, 8)

	for i := range snaps {
		for j := i + 1; j < len(snaps); j++ {
			assert.NotSame(t, snaps[i], snaps[j])
		}
	}
	unchanged, _ := base.Team("T01")
	assert.Equal(t, before, unchanged)
}

func TestEnumerator_RangeStopsEarly(t *testing.T) {
	base, matches := twelveTeamLeague(t, 4)
	e, err := NewEnumerator(base, matches)
	require.NoError(t, err)

	count := 0
	for range e.Range(3, 100) {
		count++
		if count == 5 {
			break
		}
	}
	assert.Equal(t, 5, count)
}

func TestNewEnumerator_Validation(t *testing.T) {
	base := newLeague(t, teamsOf("A", "B"))

	_, err := NewEnumerator(base, []standings.Match{{ID: 1, Team1: "A", Team2: "Z"}})
	assert.ErrorIs(t, err, standings.ErrUnknownTeam)

	_, err = NewEnumerator(base, []standings.Match{{ID: 1, Team1: "A", Team2: "B", Winner: "Z"}})
	assert.ErrorIs(t, err, standings.ErrInvalidMatch)

	tooMany := make([]standings.Match, MaxUndecided+1)
	for i := range tooMany {
		tooMany[i] = standings.Match{ID: i, Team1: "A", Team2: "B"}
	}
	_, err = NewEnumerator(base, tooMany)
	assert.ErrorIs(t, err, ErrTooManyUndecided)
}

func TestEnumerator_NoUndecidedMatches(t *testing.T) {
	base := newLeague(t, teamsOf("A", "B"))
	e, err := NewEnumerator(base, []standings.Match{{ID: 1, Team1: "A", Team2: "B", Winner: "A"}})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), e.Total())
	count := 0
	for sc, snap := range e.All() {
		count++
		assert.Empty(t, sc.Outcomes)
		a, _ := snap.Team("A")
		assert.Equal(t, 1, a.Wins)
	}
	assert.Equal(t, 1, count)
}
