package standings

import "fmt"

// Snapshot is the league state (team records and head-to-head matrix) at a
// point in time. A Snapshot is never changed after construction; Apply and
// Clone hand out new values.
type Snapshot struct {
	teams []Team
	// index is shared between clones and never written after NewSnapshot
	index map[string]int
	h2h   [][]Record
}

// NewSnapshot validates the teams and head-to-head matrix and builds a
// Snapshot. Pairs missing from h2h are treated as never having met.
func NewSnapshot(teams []Team, h2h HeadToHead) (*Snapshot, error) {
	s := &Snapshot{
		teams: make([]Team, len(teams)),
		index: make(map[string]int, len(teams)),
		h2h:   make([][]Record, len(teams)),
	}

	for i, team := range teams {
		field := fmt.Sprintf("teams[%d]", i)
		if team.ID == "" {
			return nil, invalid(ErrInvalidTeam, field, "team id is empty")
		}
		if _, exists := s.index[team.ID]; exists {
			return nil, invalid(ErrInvalidTeam, field, "duplicate team id %q", team.ID)
		}
		if team.Wins < 0 || team.Losses < 0 {
			return nil, invalid(ErrInvalidTeam, field, "team %q has a negative record", team.ID)
		}
		s.teams[i] = team
		s.index[team.ID] = i
		s.h2h[i] = make([]Record, len(teams))
	}

	for teamA, row := range h2h {
		a, ok := s.index[teamA]
		if !ok {
			return nil, invalid(ErrUnknownTeam, "head_to_head", "team %q is not in the league", teamA)
		}
		for teamB, record := range row {
			b, ok := s.index[teamB]
			if !ok {
				return nil, invalid(ErrUnknownTeam, "head_to_head", "team %q is not in the league", teamB)
			}
			if record.Wins < 0 || record.Losses < 0 {
				return nil, invalid(ErrInvalidTeam, "head_to_head", "%s vs %s has a negative record", teamA, teamB)
			}
			if a == b && (record.Wins != 0 || record.Losses != 0) {
				return nil, invalid(ErrAsymmetricHeadToHead, "head_to_head", "%s has a record against itself", teamA)
			}
			s.h2h[a][b] = record
		}
	}

	// Checked once here, never per scenario
	for a := range s.teams {
		for b := a + 1; b < len(s.teams); b++ {
			if s.h2h[a][b].Wins != s.h2h[b][a].Losses || s.h2h[a][b].Losses != s.h2h[b][a].Wins {
				return nil, invalid(ErrAsymmetricHeadToHead, "head_to_head",
					"%s vs %s is %d-%d but %s vs %s is %d-%d",
					s.teams[a].ID, s.teams[b].ID, s.h2h[a][b].Wins, s.h2h[a][b].Losses,
					s.teams[b].ID, s.teams[a].ID, s.h2h[b][a].Wins, s.h2h[b][a].Losses)
			}
		}
	}

	return s, nil
}

// Len returns the number of teams
func (s *Snapshot) Len() int {
	return len(s.teams)
}

// Teams returns a copy of the teams in the order they were supplied
func (s *Snapshot) Teams() []Team {
	out := make([]Team, len(s.teams))
	copy(out, s.teams)
	return out
}

// Team looks a team up by id
func (s *Snapshot) Team(id string) (Team, bool) {
	i, ok := s.index[id]
	if !ok {
		return Team{}, false
	}
	return s.teams[i], true
}

// Index returns the position of a team inside the snapshot
func (s *Snapshot) Index(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// HeadToHead returns A's record against B
func (s *Snapshot) HeadToHead(a, b string) (Record, error) {
	i, ok := s.index[a]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownTeam, a)
	}
	j, ok := s.index[b]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownTeam, b)
	}
	return s.h2h[i][j], nil
}

// Matrix exports the head-to-head matrix keyed by team id
func (s *Snapshot) Matrix() HeadToHead {
	out := make(HeadToHead, len(s.teams))
	for i, team := range s.teams {
		row := make(map[string]Record, len(s.teams))
		for j, opponent := range s.teams {
			row[opponent.ID] = s.h2h[i][j]
		}
		out[team.ID] = row
	}
	return out
}

// Clone returns a deep copy owned exclusively by the caller
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		teams: make([]Team, len(s.teams)),
		index: s.index,
		h2h:   make([][]Record, len(s.h2h)),
	}
	copy(c.teams, s.teams)
	for i, row := range s.h2h {
		c.h2h[i] = make([]Record, len(row))
		copy(c.h2h[i], row)
	}
	return c
}

// RecordResult applies one game to s in place, by team index. It is only
// meant for a working copy obtained from Clone that nobody else can see.
func (s *Snapshot) RecordResult(winner, loser int) {
	s.teams[winner].Wins++
	s.teams[loser].Losses++
	s.h2h[winner][loser].Wins++
	s.h2h[loser][winner].Losses++
}

// Apply returns a new Snapshot with every decided match applied once.
// Undecided matches are skipped.
func (s *Snapshot) Apply(matches ...Match) (*Snapshot, error) {
	for _, m := range matches {
		if err := m.Validate(s); err != nil {
			return nil, err
		}
	}

	next := s.Clone()
	for _, m := range matches {
		if !m.Decided() {
			continue
		}
		next.RecordResult(s.index[m.Winner], s.index[m.Loser()])
	}
	return next, nil
}
