package scenario

import "fmt"

// FormatProbability renders a percentage the way the standings page shows
// it: near-certain values are clamped to 100% and 0%
func FormatProbability(probability float64) string {
	if probability >= qualifiedThreshold {
		return "100%"
	}
	if probability <= eliminatedThreshold {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", probability)
}

// ProbabilityClass buckets a percentage into high, medium or low
func ProbabilityClass(probability float64) string {
	if probability >= 70 {
		return "high"
	}
	if probability >= 30 {
		return "medium"
	}
	return "low"
}

// Summary describes the analysis in a few plain sentences
func (a *Analysis) Summary() []string {
	name := a.Team.Name
	if name == "" {
		name = a.TeamID
	}

	switch a.Status {
	case StatusQualified:
		return []string{fmt.Sprintf("%s is already mathematically qualified for playoffs.", name)}
	case StatusEliminated:
		return []string{fmt.Sprintf("%s is mathematically eliminated from playoffs.", name)}
	}

	lines := []string{
		fmt.Sprintf("%s has %s probability to qualify.", name, FormatProbability(a.CurrentProbability)),
	}
	if len(a.TeamMatches) == 0 {
		return lines
	}

	lines = append(lines, fmt.Sprintf("Plays %d remaining match(es).", len(a.TeamMatches)))

	if a.BestCase.Probability >= qualifiedThreshold {
		lines = append(lines, "If they win all their matches: Qualified")
	} else if a.BestCase.Probability > 0 {
		lines = append(lines, fmt.Sprintf("Best case (wins all): %s chance to qualify", FormatProbability(a.BestCase.Probability)))
	}

	if a.WorstCase.Probability <= eliminatedThreshold {
		lines = append(lines, "If they lose all their matches: Eliminated")
	} else if a.WorstCase.Probability < 100 {
		lines = append(lines, fmt.Sprintf("Worst case (loses all): %s chance to qualify", FormatProbability(a.WorstCase.Probability)))
	}

	if a.MagicNumber != nil && *a.MagicNumber > 0 {
		lines = append(lines, fmt.Sprintf("%s needs %d more win(s) to secure playoffs", name, *a.MagicNumber))
	}

	return lines
}
