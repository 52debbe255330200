// Package scenario enumerates every outcome of the remaining schedule and
// aggregates standings across them.
//
// Cost is exponential: U undecided matches produce 2^U scenarios, each of
// which is ranked in full. Callers are expected to keep U at or below
// SafeUndecided (about a million scenarios).
package scenario

import (
	"fmt"
	"iter"

	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

const (
	// SafeUndecided is the largest U that is still practical to enumerate
	SafeUndecided = 20
	// MaxUndecided is the hard limit imposed by 64-bit scenario indices
	MaxUndecided = 62
)

// ErrTooManyUndecided is returned when 2^U cannot be represented
var ErrTooManyUndecided = fmt.Errorf("more than %d undecided matches", MaxUndecided)

// Outcome is the result of one undecided match within a scenario
type Outcome uint8

const (
	// Team1Wins means the first listed team wins; bit i of the index is clear
	Team1Wins Outcome = iota
	// Team2Wins means the second listed team wins; bit i of the index is set
	Team2Wins
)

func (o Outcome) String() string {
	if o == Team2Wins {
		return "team2"
	}
	return "team1"
}

// Scenario assigns a winner to every undecided match. Outcomes[i] belongs
// to undecided match i and equals Team2Wins exactly when bit i of Index is
// set, so scenario 0 is "every team1 wins".
type Scenario struct {
	Index    uint64    `json:"index"`
	Outcomes []Outcome `json:"outcomes"`
}

// Winner returns the id of the team that wins the given undecided match
func (s Scenario) Winner(i int, m standings.Match) string {
	if s.Outcomes[i] == Team2Wins {
		return m.Team2
	}
	return m.Team1
}

// Enumerator walks all 2^U scenarios of a schedule in index order
type Enumerator struct {
	// current is the base snapshot with every decided match applied
	current   *standings.Snapshot
	decided   []standings.Match
	undecided []standings.Match
	// pairs holds the team1/team2 snapshot indices of each undecided match
	pairs [][2]int
}

// NewEnumerator splits the schedule into decided and undecided matches and
// applies the decided ones to base. base itself is left untouched.
func NewEnumerator(base *standings.Snapshot, matches []standings.Match) (*Enumerator, error) {
	e := &Enumerator{}
	for _, m := range matches {
		if err := m.Validate(base); err != nil {
			return nil, err
		}
		if m.Decided() {
			e.decided = append(e.decided, m)
			continue
		}
		team1, _ := base.Index(m.Team1)
		team2, _ := base.Index(m.Team2)
		e.undecided = append(e.undecided, m)
		e.pairs = append(e.pairs, [2]int{team1, team2})
	}

	if len(e.undecided) > MaxUndecided {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyUndecided, len(e.undecided))
	}

	current, err := base.Apply(e.decided...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply decided matches: %w", err)
	}
	e.current = current

	return e, nil
}

// Current returns the snapshot after the decided matches
func (e *Enumerator) Current() *standings.Snapshot {
	return e.current
}

// Decided returns a copy of the decided matches
func (e *Enumerator) Decided() []standings.Match {
	return append([]standings.Match(nil), e.decided...)
}

// Undecided returns a copy of the undecided matches in enumeration order
func (e *Enumerator) Undecided() []standings.Match {
	return append([]standings.Match(nil), e.undecided...)
}

// Total returns 2^U
func (e *Enumerator) Total() uint64 {
	return uint64(1) << len(e.undecided)
}

// Scenario decodes a scenario index
func (e *Enumerator) Scenario(index uint64) Scenario {
	outcomes := make([]Outcome, len(e.undecided))
	for i := range outcomes {
		if index&(uint64(1)<<i) != 0 {
			outcomes[i] = Team2Wins
		}
	}
	return Scenario{Index: index, Outcomes: outcomes}
}

// Build returns a fresh snapshot for the scenario. The caller owns it.
func (e *Enumerator) Build(sc Scenario) *standings.Snapshot {
	working := e.current.Clone()
	for i, pair := range e.pairs {
		if sc.Outcomes[i] == Team2Wins {
			working.RecordResult(pair[1], pair[0])
		} else {
			working.RecordResult(pair[0], pair[1])
		}
	}
	return working
}

// All yields every scenario with its snapshot, index 0 first
func (e *Enumerator) All() iter.Seq2[Scenario, *standings.Snapshot] {
	return e.Range(0, e.Total())
}

// Range yields scenarios with index in [from, to). Each yielded snapshot is
// built for that scenario alone and is never reused.
func (e *Enumerator) Range(from, to uint64) iter.Seq2[Scenario, *standings.Snapshot] {
	if to > e.Total() {
		to = e.Total()
	}
	return func(yield func(Scenario, *standings.Snapshot) bool) {
		for index := from; index < to; index++ {
			sc := e.Scenario(index)
			if !yield(sc, e.Build(sc)) {
				return
			}
		}
	}
}
