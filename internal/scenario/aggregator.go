package scenario

import (
	"github.com/sirupsen/logrus"
	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

// TeamProbability is how often a team finished inside the playoff slots
type TeamProbability struct {
	Count       int     `json:"count"`
	Total       int     `json:"total"`
	Probability float64 `json:"probability"`
}

// Probabilities is the aggregated result of one enumeration
type Probabilities struct {
	Teams          map[string]TeamProbability `json:"probabilities"`
	TotalScenarios int                        `json:"total_scenarios"`
	UndecidedCount int                        `json:"undecided_count"`
	DecidedCount   int                        `json:"decided_count"`
}

// Aggregator tallies per-team qualification over every scenario
type Aggregator struct {
	calc    *standings.Calculator
	workers int
	logger  *logrus.Logger
}

// NewAggregator creates an aggregator. workers > 1 shards the scenario range
// across goroutines; 1 or less uses a single worker.
func NewAggregator(calc *standings.Calculator, workers int, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		calc:    calc,
		workers: workers,
		logger:  logger,
	}
}

type qualifyTally struct {
	counts []int
}

// Aggregate enumerates every scenario, counts the top-K finishers and turns
// the counts into percentages. The percentages always sum to K × 100.
func (a *Aggregator) Aggregate(e *Enumerator) (*Probabilities, error) {
	current := e.Current()
	if err := a.calc.CheckSnapshot(current); err != nil {
		return nil, err
	}

	total := e.Total()
	fields := logrus.Fields{
		"undecided": len(e.undecided),
		"decided":   len(e.decided),
		"scenarios": total,
		"workers":   a.workers,
	}
	if len(e.undecided) > SafeUndecided {
		a.logger.WithFields(fields).Warn("Enumerating an unusually large scenario space")
	} else {
		a.logger.WithFields(fields).Debug("Enumerating scenarios")
	}

	tally := shard(total, a.workers,
		func() *qualifyTally {
			return &qualifyTally{counts: make([]int, current.Len())}
		},
		func(acc *qualifyTally, from, to uint64) {
			for _, snap := range e.Range(from, to) {
				for _, team := range a.calc.Qualifiers(snap) {
					acc.counts[team]++
				}
			}
		},
		func(dst, src *qualifyTally) {
			for i, count := range src.counts {
				dst.counts[i] += count
			}
		},
	)

	result := &Probabilities{
		Teams:          make(map[string]TeamProbability, current.Len()),
		TotalScenarios: int(total),
		UndecidedCount: len(e.undecided),
		DecidedCount:   len(e.decided),
	}
	for i, team := range current.Teams() {
		count := tally.counts[i]
		result.Teams[team.ID] = TeamProbability{
			Count:       count,
			Total:       int(total),
			Probability: percent(count, int(total)),
		}
	}

	return result, nil
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
