package standings

import "sort"

// epsilon absorbs float rounding when grouping teams by a tiebreak metric
const epsilon = 1e-4

// neutralWinPct is the head-to-head win% of a team that has not played
// anyone else in the tied group
const neutralWinPct = 0.5

// resolver orders groups of teams tied on wins. It reads the snapshot and
// never writes to it; every call returns a fresh slice.
type resolver struct {
	s *Snapshot
}

// resolve orders one tied group
func (r resolver) resolve(group []int) []int {
	switch len(group) {
	case 0, 1:
		return append([]int(nil), group...)
	case 2:
		return r.pairwise(group[0], group[1])
	}
	return r.multiway(group)
}

// pairwise breaks a two-team tie: head-to-head, then strength of victory
// against the other team only, then name
func (r resolver) pairwise(a, b int) []int {
	record := r.s.h2h[a][b]
	if record.Wins > record.Losses {
		return []int{a, b}
	}
	if record.Losses > record.Wins {
		return []int{b, a}
	}

	pair := []int{a, b}
	sovA, sovB := r.sov(a, pair), r.sov(b, pair)
	if sovA > sovB {
		return []int{a, b}
	}
	if sovB > sovA {
		return []int{b, a}
	}

	return r.alphabetical(pair)
}

// multiway breaks a tie between three or more teams. Any sub-group carved
// out by either metric starts again from head-to-head, never from SoV.
func (r resolver) multiway(group []int) []int {
	// Step 1-3: mini-league among the tied teams
	pct := make([]float64, len(group))
	for i, team := range group {
		pct[i] = r.groupWinPct(team, group)
	}
	if groups := partition(group, pct); len(groups) > 1 {
		return r.resolveEach(groups)
	}

	// Step 4: head-to-head separated nobody, use season-wide SoV
	sov := make([]float64, len(group))
	for i, team := range group {
		sov[i] = float64(r.sov(team, nil))
	}
	if groups := partition(group, sov); len(groups) > 1 {
		return r.resolveEach(groups)
	}

	return r.alphabetical(group)
}

// resolveEach resolves every sub-group from scratch and concatenates them
func (r resolver) resolveEach(groups [][]int) []int {
	var result []int
	for _, group := range groups {
		result = append(result, r.resolve(group)...)
	}
	return result
}

// groupWinPct is the team's win% counting only games against group members
func (r resolver) groupWinPct(team int, group []int) float64 {
	wins, losses := 0, 0
	for _, opponent := range group {
		if opponent == team {
			continue
		}
		wins += r.s.h2h[team][opponent].Wins
		losses += r.s.h2h[team][opponent].Losses
	}
	if wins+losses == 0 {
		return neutralWinPct
	}
	return float64(wins) / float64(wins+losses)
}

// sov sums, over each opponent the team has beaten, the opponent's wins
// times the number of times it was beaten. A nil set means every team.
func (r resolver) sov(team int, opponents []int) int {
	total := 0
	visit := func(opponent int) {
		if beaten := r.s.h2h[team][opponent].Wins; beaten > 0 {
			total += r.s.teams[opponent].Wins * beaten
		}
	}

	if opponents == nil {
		for opponent := range r.s.teams {
			visit(opponent)
		}
		return total
	}
	for _, opponent := range opponents {
		visit(opponent)
	}
	return total
}

// alphabetical is the terminal fallback: name, then id
func (r resolver) alphabetical(group []int) []int {
	sorted := append([]int(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := r.s.teams[sorted[i]], r.s.teams[sorted[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return sorted
}

// partition sorts the group by metric (descending) and splits it into runs
// whose values are within epsilon of the first value of the run
func partition(group []int, metric []float64) [][]int {
	type scored struct {
		team  int
		value float64
	}

	entries := make([]scored, len(group))
	for i, team := range group {
		entries[i] = scored{team: team, value: metric[i]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].value > entries[j].value
	})

	var groups [][]int
	var current []int
	var currentValue float64
	for i, entry := range entries {
		if i > 0 && currentValue-entry.value >= epsilon {
			groups = append(groups, current)
			current = nil
		}
		if len(current) == 0 {
			currentValue = entry.value
		}
		current = append(current, entry.team)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}
