package scenario

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

// Status classifies a team's qualification chances
type Status string

const (
	StatusQualified  Status = "qualified"
	StatusEliminated Status = "eliminated"
	StatusContending Status = "contending"
)

const (
	qualifiedThreshold  = 99.9
	eliminatedThreshold = 0.1
	// minImpact is the smallest swing, in percentage points, worth reporting
	minImpact = 1.0
	// displayedKeyMatches caps ImpactfulMatches
	displayedKeyMatches = 6
)

// CaseOutcome is the qualification probability over a restricted set of
// scenarios (the team wins, or loses, all of its remaining matches)
type CaseOutcome struct {
	WinsNeeded  int     `json:"wins_needed"`
	Probability float64 `json:"probability"`
	Scenarios   int     `json:"scenarios"`
}

// KeyMatch is an undecided match between two other teams whose result
// moves the analyzed team's chances
type KeyMatch struct {
	Match           standings.Match `json:"match"`
	Team1QualifyPct float64         `json:"team1_qualify_pct"`
	Team2QualifyPct float64         `json:"team2_qualify_pct"`
	Impact          float64         `json:"impact"`
	Favorable       string          `json:"favorable"`
	Unfavorable     string          `json:"unfavorable"`
}

// Analysis is what one team needs from the rest of the schedule
type Analysis struct {
	TeamID             string            `json:"team_id"`
	Team               standings.Team    `json:"team"`
	Status             Status            `json:"status"`
	CurrentProbability float64           `json:"current_probability"`
	QualifyScenarios   int               `json:"qualify_scenarios"`
	EliminateScenarios int               `json:"eliminate_scenarios"`
	TotalScenarios     int               `json:"total_scenarios"`
	TeamMatches        []standings.Match `json:"team_matches"`
	BestCase           CaseOutcome       `json:"best_case"`
	WorstCase          CaseOutcome       `json:"worst_case"`
	ImpactfulMatches   []KeyMatch        `json:"impactful_matches"`
	// MagicNumber is nil when the team cannot clinch with its own wins
	MagicNumber *int `json:"magic_number"`
	// EliminationNumber is an approximation, see eliminationNumber
	EliminationNumber int `json:"elimination_number"`

	keyMatches []KeyMatch
}

// KeyMatches returns the impactful matches sorted by impact. A limit of 0
// or less returns all of them.
func (a *Analysis) KeyMatches(limit int) []KeyMatch {
	if limit <= 0 || limit > len(a.keyMatches) {
		limit = len(a.keyMatches)
	}
	return append([]KeyMatch(nil), a.keyMatches[:limit]...)
}

// CanSelfSecure reports whether a finite magic number exists
func (a *Analysis) CanSelfSecure() bool {
	return a.MagicNumber != nil
}

// Analyzer answers "what does team X need" over the full scenario space
type Analyzer struct {
	calc    *standings.Calculator
	workers int
	logger  *logrus.Logger
}

// NewAnalyzer creates a team scenario analyzer
func NewAnalyzer(calc *standings.Calculator, workers int, logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		calc:    calc,
		workers: workers,
		logger:  logger,
	}
}

type conditional struct {
	qualify int
	total   int
}

type teamTally struct {
	qualify   int
	best      conditional
	worst     conditional
	byOutcome [][2]conditional
}

// Analyze runs the enumeration focused on one team
func (a *Analyzer) Analyze(e *Enumerator, teamID string) (*Analysis, error) {
	current := e.Current()
	team, ok := current.Team(teamID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", standings.ErrUnknownTeam, teamID)
	}
	if err := a.calc.CheckSnapshot(current); err != nil {
		return nil, err
	}
	target, _ := current.Index(teamID)

	// own[i] is true when undecided match i involves the team
	own := make([]bool, len(e.undecided))
	var teamMatches []standings.Match
	for i, m := range e.undecided {
		if m.Involves(teamID) {
			own[i] = true
			teamMatches = append(teamMatches, m)
		}
	}
	remaining := len(teamMatches)

	total := e.Total()
	a.logger.WithFields(logrus.Fields{
		"team":      teamID,
		"undecided": len(e.undecided),
		"remaining": remaining,
		"scenarios": total,
	}).Debug("Analyzing team scenarios")

	tally := shard(total, a.workers,
		func() *teamTally {
			return &teamTally{byOutcome: make([][2]conditional, len(e.undecided))}
		},
		func(acc *teamTally, from, to uint64) {
			for sc, snap := range e.Range(from, to) {
				qualifies := false
				for _, q := range a.calc.Qualifiers(snap) {
					if q == target {
						qualifies = true
						break
					}
				}

				ownWins := 0
				for i, m := range e.undecided {
					if own[i] && sc.Winner(i, m) == teamID {
						ownWins++
					}
					acc.byOutcome[i][sc.Outcomes[i]].add(qualifies)
				}

				if qualifies {
					acc.qualify++
				}
				if ownWins == remaining {
					acc.best.add(qualifies)
				}
				if ownWins == 0 {
					acc.worst.add(qualifies)
				}
			}
		},
		func(dst, src *teamTally) {
			dst.qualify += src.qualify
			dst.best.merge(src.best)
			dst.worst.merge(src.worst)
			for i := range src.byOutcome {
				dst.byOutcome[i][Team1Wins].merge(src.byOutcome[i][Team1Wins])
				dst.byOutcome[i][Team2Wins].merge(src.byOutcome[i][Team2Wins])
			}
		},
	)

	analysis := &Analysis{
		TeamID:             teamID,
		Team:               team,
		CurrentProbability: percent(tally.qualify, int(total)),
		QualifyScenarios:   tally.qualify,
		EliminateScenarios: int(total) - tally.qualify,
		TotalScenarios:     int(total),
		TeamMatches:        teamMatches,
		BestCase: CaseOutcome{
			WinsNeeded:  remaining,
			Probability: tally.best.pct(),
			Scenarios:   tally.best.total,
		},
		WorstCase: CaseOutcome{
			WinsNeeded:  0,
			Probability: tally.worst.pct(),
			Scenarios:   tally.worst.total,
		},
		MagicNumber:       a.magicNumber(current, team, e.undecided),
		EliminationNumber: a.eliminationNumber(current, team, e.undecided),
	}
	analysis.Status = classify(analysis.CurrentProbability)

	for i, m := range e.undecided {
		if own[i] {
			continue
		}
		team1Pct := tally.byOutcome[i][Team1Wins].pct()
		team2Pct := tally.byOutcome[i][Team2Wins].pct()
		impact := team1Pct - team2Pct
		if impact < 0 {
			impact = -impact
		}
		if impact <= minImpact {
			continue
		}

		key := KeyMatch{
			Match:           m,
			Team1QualifyPct: team1Pct,
			Team2QualifyPct: team2Pct,
			Impact:          impact,
			Favorable:       m.Team2,
			Unfavorable:     m.Team1,
		}
		if team1Pct > team2Pct {
			key.Favorable, key.Unfavorable = m.Team1, m.Team2
		}
		analysis.keyMatches = append(analysis.keyMatches, key)
	}
	sort.SliceStable(analysis.keyMatches, func(i, j int) bool {
		return analysis.keyMatches[i].Impact > analysis.keyMatches[j].Impact
	})
	analysis.ImpactfulMatches = analysis.KeyMatches(displayedKeyMatches)

	return analysis, nil
}

// magicNumber is the number of wins that puts the team beyond the most
// wins the team currently in position K+1 can still reach. It returns nil
// when the team does not have that many matches left.
func (a *Analyzer) magicNumber(current *standings.Snapshot, team standings.Team, undecided []standings.Match) *int {
	slots := a.calc.Slots()
	remaining := standings.Remaining(team.ID, undecided)

	needed := 0
	if current.Len() > slots {
		order := standings.Order(current)
		bubble, _ := current.Team(order[slots])
		maxBubble := bubble.Wins + standings.Remaining(bubble.ID, undecided)
		needed = max(0, maxBubble-team.Wins+1)
	}

	if needed > remaining {
		return nil
	}
	return &needed
}

// eliminationNumber is a deliberately rough "losses tolerated" figure: 0 if
// the team cannot reach the current K-th place win total, otherwise one
// less than its remaining matches. It is not an elimination proof.
func (a *Analyzer) eliminationNumber(current *standings.Snapshot, team standings.Team, undecided []standings.Match) int {
	slots := a.calc.Slots()
	remaining := standings.Remaining(team.ID, undecided)

	if current.Len() >= slots {
		order := standings.Order(current)
		cutoff, _ := current.Team(order[slots-1])
		if team.Wins+remaining < cutoff.Wins {
			return 0
		}
	}

	return max(0, remaining-1)
}

func classify(probability float64) Status {
	switch {
	case probability >= qualifiedThreshold:
		return StatusQualified
	case probability <= eliminatedThreshold:
		return StatusEliminated
	}
	return StatusContending
}

func (c *conditional) add(qualifies bool) {
	c.total++
	if qualifies {
		c.qualify++
	}
}

func (c *conditional) merge(other conditional) {
	c.qualify += other.qualify
	c.total += other.total
}

func (c conditional) pct() float64 {
	return percent(c.qualify, c.total)
}
