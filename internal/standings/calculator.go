package standings

import (
	"fmt"
	"sort"
)

// DefaultSlots is the number of teams that reach the playoffs
const DefaultSlots = 8

// Entry is one row of the standings table
type Entry struct {
	Team
	Position   int     `json:"position"`
	WinPct     float64 `json:"win_pct"`
	Qualified  bool    `json:"qualified"`
	Bubble     bool    `json:"bubble"`
	Eliminated bool    `json:"eliminated"`
}

// Calculator ranks every team of a snapshot into a total order
type Calculator struct {
	slots int
}

// NewCalculator creates a calculator for a league with the given number
// of playoff slots
func NewCalculator(slots int) (*Calculator, error) {
	if slots < 1 {
		return nil, invalid(ErrInvalidSlots, "slots", "need at least one playoff slot, got %d", slots)
	}
	return &Calculator{slots: slots}, nil
}

// Slots returns the playoff slot count K
func (c *Calculator) Slots() int {
	return c.slots
}

// CheckSnapshot rejects a snapshot with fewer teams than playoff slots
func (c *Calculator) CheckSnapshot(s *Snapshot) error {
	if s.Len() < c.slots {
		return invalid(ErrInvalidSlots, "slots", "%d slots but only %d teams", c.slots, s.Len())
	}
	return nil
}

// Standings returns one entry per team, position 1..N, no ties
func (c *Calculator) Standings(s *Snapshot) []Entry {
	order := Rank(s)
	entries := make([]Entry, len(order))
	for i, team := range order {
		position := i + 1
		entries[i] = Entry{
			Team:       s.teams[team],
			Position:   position,
			WinPct:     s.teams[team].WinPct(),
			Qualified:  position <= c.slots,
			Bubble:     position >= c.slots-1 && position <= c.slots+2,
			Eliminated: position > c.slots,
		}
	}
	return entries
}

// Qualifiers returns the indices of the teams in positions 1..K
func (c *Calculator) Qualifiers(s *Snapshot) []int {
	order := Rank(s)
	if len(order) > c.slots {
		order = order[:c.slots]
	}
	return order
}

// Rank returns team indices in final standings order. Teams are sorted by
// wins and every run of equal wins is handed to the tiebreak resolver.
func Rank(s *Snapshot) []int {
	byWins := make([]int, len(s.teams))
	for i := range byWins {
		byWins[i] = i
	}
	sort.SliceStable(byWins, func(i, j int) bool {
		return s.teams[byWins[i]].Wins > s.teams[byWins[j]].Wins
	})

	r := resolver{s: s}
	result := make([]int, 0, len(byWins))
	for start := 0; start < len(byWins); {
		end := start + 1
		for end < len(byWins) && s.teams[byWins[end]].Wins == s.teams[byWins[start]].Wins {
			end++
		}
		result = append(result, r.resolve(byWins[start:end])...)
		start = end
	}

	return result
}

// Order returns team ids in final standings order
func Order(s *Snapshot) []string {
	order := Rank(s)
	ids := make([]string, len(order))
	for i, team := range order {
		ids[i] = s.teams[team].ID
	}
	return ids
}

// Position returns the 1-based standings position of a team
func Position(s *Snapshot, teamID string) (int, error) {
	team, ok := s.index[teamID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}
	for i, ranked := range Rank(s) {
		if ranked == team {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
}
