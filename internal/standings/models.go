package standings

import "fmt"

// Team represents a club and its season record
type Team struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Abbr   string `json:"abbr,omitempty" yaml:"abbr"`
	Wins   int    `json:"wins" yaml:"wins"`
	Losses int    `json:"losses" yaml:"losses"`
}

// WinPct returns wins / games played, or 0 for a team that has not played
func (t Team) WinPct() float64 {
	played := t.Wins + t.Losses
	if played == 0 {
		return 0
	}
	return float64(t.Wins) / float64(played)
}

// Record is the win/loss count of one team against one opponent
type Record struct {
	Wins   int `json:"wins" yaml:"wins"`
	Losses int `json:"losses" yaml:"losses"`
}

// HeadToHead maps team A -> team B -> A's record against B
type HeadToHead map[string]map[string]Record

// Get returns A's record against B, zero when the pair has never met
func (h HeadToHead) Get(a, b string) Record {
	if row, ok := h[a]; ok {
		return row[b]
	}
	return Record{}
}

// Match is a scheduled game. An empty Winner means the game is undecided.
type Match struct {
	ID     int    `json:"id" yaml:"id"`
	Team1  string `json:"team1" yaml:"team1"`
	Team2  string `json:"team2" yaml:"team2"`
	Date   string `json:"date,omitempty" yaml:"date"`
	Time   string `json:"time,omitempty" yaml:"time"`
	Winner string `json:"winner,omitempty" yaml:"winner"`
	// Locked marks an official result the calling layer must not change
	Locked bool `json:"locked,omitempty" yaml:"locked"`
}

// Decided reports whether the match has a winner
func (m Match) Decided() bool {
	return m.Winner != ""
}

// Involves reports whether the team plays in this match
func (m Match) Involves(teamID string) bool {
	return m.Team1 == teamID || m.Team2 == teamID
}

// Loser returns the team that did not win, or "" for an undecided match
func (m Match) Loser() string {
	switch m.Winner {
	case m.Team1:
		return m.Team2
	case m.Team2:
		return m.Team1
	}
	return ""
}

// Validate checks the match against the teams of a snapshot
func (m Match) Validate(s *Snapshot) error {
	field := fmt.Sprintf("matches[%d]", m.ID)
	if _, ok := s.index[m.Team1]; !ok {
		return invalid(ErrUnknownTeam, field, "team1 %q is not in the league", m.Team1)
	}
	if _, ok := s.index[m.Team2]; !ok {
		return invalid(ErrUnknownTeam, field, "team2 %q is not in the league", m.Team2)
	}
	if m.Team1 == m.Team2 {
		return invalid(ErrInvalidMatch, field, "team %q cannot play itself", m.Team1)
	}
	if m.Winner != "" && m.Winner != m.Team1 && m.Winner != m.Team2 {
		return invalid(ErrInvalidMatch, field, "winner %q is not playing in this match", m.Winner)
	}
	return nil
}

// Remaining counts the undecided matches a team still has to play
func Remaining(teamID string, matches []Match) int {
	count := 0
	for _, m := range matches {
		if !m.Decided() && m.Involves(teamID) {
			count++
		}
	}
	return count
}
