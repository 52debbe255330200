// Package simulator keeps the user's hypothetical match results and runs the
// standings and scenario engine over them.
package simulator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/versus-league/playoff-mcp-server/internal/scenario"
	"github.com/versus-league/playoff-mcp-server/internal/season"
	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

var (
	// ErrMatchLocked is returned when changing an official result
	ErrMatchLocked = errors.New("match result is locked")
	// ErrUnknownMatch is returned for a match id that is not on the schedule
	ErrUnknownMatch = errors.New("unknown match")
)

// Progress counts how much of the schedule has a result
type Progress struct {
	Total     int    `json:"total"`
	Decided   int    `json:"decided"`
	Undecided int    `json:"undecided"`
	Locked    int    `json:"locked"`
	Scenarios uint64 `json:"scenarios"`
}

// Session is one what-if simulation over a season. It is safe for
// concurrent use.
type Session struct {
	mu      sync.RWMutex
	season  *season.Season
	matches []standings.Match

	aggregator *scenario.Aggregator
	analyzer   *scenario.Analyzer
	logger     *logrus.Logger
}

// NewSession starts a session from the season's schedule
func NewSession(s *season.Season, workers int, logger *logrus.Logger) *Session {
	return &Session{
		season:     s,
		matches:    s.Schedule(),
		aggregator: scenario.NewAggregator(s.Calculator(), workers, logger),
		analyzer:   scenario.NewAnalyzer(s.Calculator(), workers, logger),
		logger:     logger,
	}
}

// Season returns the season the session was started from
func (s *Session) Season() *season.Season {
	return s.season
}

// Matches returns a copy of the session's schedule
func (s *Session) Matches() []standings.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]standings.Match(nil), s.matches...)
}

// Match returns one match of the session's schedule
func (s *Session) Match(id int) (standings.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, err := s.find(id)
	if err != nil {
		return standings.Match{}, err
	}
	return s.matches[i], nil
}

// SelectWinner sets the winner of a match. Selecting the current winner
// again clears the result.
func (s *Session) SelectWinner(matchID int, teamID string) (standings.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(matchID)
	if err != nil {
		return standings.Match{}, err
	}
	m := &s.matches[i]
	if m.Locked {
		return *m, fmt.Errorf("%w: match %d", ErrMatchLocked, matchID)
	}
	if !m.Involves(teamID) {
		return *m, &standings.ValidationError{
			Field:   fmt.Sprintf("matches[%d]", matchID),
			Message: fmt.Sprintf("team %q does not play in %s vs %s", teamID, m.Team1, m.Team2),
			Err:     standings.ErrInvalidMatch,
		}
	}

	if m.Winner == teamID {
		m.Winner = ""
	} else {
		m.Winner = teamID
	}

	s.logger.WithFields(logrus.Fields{
		"match":  matchID,
		"winner": m.Winner,
	}).Debug("Match result changed")

	return *m, nil
}

// ClearWinner removes the hypothetical result of a match
func (s *Session) ClearWinner(matchID int) (standings.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(matchID)
	if err != nil {
		return standings.Match{}, err
	}
	m := &s.matches[i]
	if m.Locked {
		return *m, fmt.Errorf("%w: match %d", ErrMatchLocked, matchID)
	}
	m.Winner = ""
	return *m, nil
}

// Reset restores the season's schedule, dropping every selection
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = s.season.Schedule()
	s.logger.Debug("Simulation reset")
}

// Progress reports decided and undecided counts of the session's schedule
func (s *Session) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := Progress{Total: len(s.matches)}
	for _, m := range s.matches {
		if m.Decided() {
			p.Decided++
		}
		if m.Locked {
			p.Locked++
		}
	}
	p.Undecided = p.Total - p.Decided
	if p.Undecided <= scenario.MaxUndecided {
		p.Scenarios = uint64(1) << p.Undecided
	}
	return p
}

// Standings ranks the season with every decided match applied
func (s *Session) Standings() ([]standings.Entry, error) {
	e, err := s.enumerator()
	if err != nil {
		return nil, err
	}
	return s.season.Calculator().Standings(e.Current()), nil
}

// Probabilities runs the full enumeration over the undecided matches
func (s *Session) Probabilities() (*scenario.Probabilities, error) {
	e, err := s.enumerator()
	if err != nil {
		return nil, err
	}
	return s.aggregator.Aggregate(e)
}

// Table returns the standings and the probabilities computed from the same
// copy of the schedule
func (s *Session) Table() ([]standings.Entry, *scenario.Probabilities, error) {
	e, err := s.enumerator()
	if err != nil {
		return nil, nil, err
	}
	probs, err := s.aggregator.Aggregate(e)
	if err != nil {
		return nil, nil, err
	}
	return s.season.Calculator().Standings(e.Current()), probs, nil
}

// Analyze runs the team scenario analysis for one team
func (s *Session) Analyze(teamID string) (*scenario.Analysis, error) {
	e, err := s.enumerator()
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(e, teamID)
}

// enumerator builds an enumerator over a copy of the current schedule so
// that the computation runs without holding the lock
func (s *Session) enumerator() (*scenario.Enumerator, error) {
	matches := s.Matches()
	e, err := scenario.NewEnumerator(s.season.Snapshot(), matches)
	if err != nil {
		return nil, fmt.Errorf("failed to build scenarios: %w", err)
	}
	return e, nil
}

// find must be called with the lock held
func (s *Session) find(id int) (int, error) {
	for i, m := range s.matches {
		if m.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownMatch, id)
}
