package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/versus-league/playoff-mcp-server/internal/scenario"
	"github.com/versus-league/playoff-mcp-server/internal/simulator"
	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

// StandingsData is the payload of get_standings
type StandingsData struct {
	Season    string            `json:"season"`
	Slots     int               `json:"slots"`
	Standings []standings.Entry `json:"standings"`
}

// ProbabilityRow is one team's line in the probability table
type ProbabilityRow struct {
	TeamID      string  `json:"team_id"`
	Name        string  `json:"name"`
	Position    int     `json:"position"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
	Display     string  `json:"display"`
	Class       string  `json:"class"`
}

// ProbabilitiesData is the payload of get_playoff_probabilities
type ProbabilitiesData struct {
	Teams          []ProbabilityRow `json:"teams"`
	TotalScenarios int              `json:"total_scenarios"`
	UndecidedCount int              `json:"undecided_count"`
	DecidedCount   int              `json:"decided_count"`
}

// AnalysisData is the payload of analyze_team_scenarios
type AnalysisData struct {
	*scenario.Analysis
	Display string   `json:"display"`
	Lines   []string `json:"summary_lines"`
}

// StandingsHandler handles the standings and playoff probability tools
type StandingsHandler struct {
	session *simulator.Session
	source  string
	logger  *logrus.Logger
}

// NewStandingsHandler creates a new standings handler. source names where
// the season was loaded from.
func NewStandingsHandler(session *simulator.Session, source string, logger *logrus.Logger) *StandingsHandler {
	return &StandingsHandler{
		session: session,
		source:  source,
		logger:  logger,
	}
}

// GetStandingsTool returns the tool definition for get_standings
func (h *StandingsHandler) GetStandingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_standings",
		Description: "Get the current league standings with every selected match result applied. Ties are broken by head-to-head record, strength of victory and team name.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleGetStandings handles the get_standings tool call
func (h *StandingsHandler) HandleGetStandings(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_standings")

	data, err := StandingsTable(h.session)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute standings")
		return errorResult("Failed to compute standings: %s", err.Error()), nil
	}

	return respond(h.logger, NewResponse(h.session, h.source, data, StandingsSummary(data.Standings)))
}

// GetPlayoffProbabilitiesTool returns the tool definition for get_playoff_probabilities
func (h *StandingsHandler) GetPlayoffProbabilitiesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_playoff_probabilities",
		Description: "Enumerate every outcome of the remaining matches and report how often each team finishes inside the playoff slots.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleGetPlayoffProbabilities handles the get_playoff_probabilities tool call
func (h *StandingsHandler) HandleGetPlayoffProbabilities(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_playoff_probabilities")

	data, err := ProbabilityTable(h.session)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute probabilities")
		return errorResult("Failed to compute playoff probabilities: %s", err.Error()), nil
	}

	return respond(h.logger, NewResponse(h.session, h.source, data, ProbabilitySummary(data)))
}

// AnalyzeTeamScenariosTool returns the tool definition for analyze_team_scenarios
func (h *StandingsHandler) AnalyzeTeamScenariosTool() mcp.Tool {
	return mcp.Tool{
		Name:        "analyze_team_scenarios",
		Description: "Analyze what one team needs to qualify: best and worst case, magic number and the other matches that swing its chances the most.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"team_id": map[string]interface{}{
					"type":        "string",
					"description": "The team id, e.g. KC or G2",
					"required":    true,
				},
			},
		},
	}
}

// HandleAnalyzeTeamScenarios handles the analyze_team_scenarios tool call
func (h *StandingsHandler) HandleAnalyzeTeamScenarios(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling analyze_team_scenarios")

	teamID, err := stringArg(args, "team_id")
	if err != nil {
		return nil, err
	}

	data, err := TeamAnalysis(h.session, teamID)
	if err != nil {
		h.logger.WithError(err).WithField("team_id", teamID).Error("Failed to analyze team")
		return errorResult("Failed to analyze team %s: %s", teamID, err.Error()), nil
	}

	return respond(h.logger, NewResponse(h.session, h.source, data, strings.Join(data.Lines, " ")))
}

// StandingsTable ranks the session's season with its selected results
func StandingsTable(session *simulator.Session) (*StandingsData, error) {
	entries, err := session.Standings()
	if err != nil {
		return nil, err
	}
	s := session.Season()
	return &StandingsData{
		Season:    s.Name,
		Slots:     s.Slots,
		Standings: entries,
	}, nil
}

// TeamAnalysis runs the scenario analysis for one team and adds the display
// strings
func TeamAnalysis(session *simulator.Session, teamID string) (*AnalysisData, error) {
	analysis, err := session.Analyze(teamID)
	if err != nil {
		return nil, err
	}
	return &AnalysisData{
		Analysis: analysis,
		Display:  scenario.FormatProbability(analysis.CurrentProbability),
		Lines:    analysis.Summary(),
	}, nil
}

// ProbabilityTable runs the enumeration and orders teams by probability,
// then by current standings position
func ProbabilityTable(session *simulator.Session) (*ProbabilitiesData, error) {
	entries, probs, err := session.Table()
	if err != nil {
		return nil, err
	}

	rows := make([]ProbabilityRow, 0, len(entries))
	for _, entry := range entries {
		p := probs.Teams[entry.ID]
		rows = append(rows, ProbabilityRow{
			TeamID:      entry.ID,
			Name:        entry.Name,
			Position:    entry.Position,
			Count:       p.Count,
			Probability: p.Probability,
			Display:     scenario.FormatProbability(p.Probability),
			Class:       scenario.ProbabilityClass(p.Probability),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Probability > rows[j].Probability
	})

	return &ProbabilitiesData{
		Teams:          rows,
		TotalScenarios: probs.TotalScenarios,
		UndecidedCount: probs.UndecidedCount,
		DecidedCount:   probs.DecidedCount,
	}, nil
}

// ProbabilitySummary describes the probability table in one line
func ProbabilitySummary(data *ProbabilitiesData) string {
	summary := fmt.Sprintf("%d scenarios over %d undecided matches", data.TotalScenarios, data.UndecidedCount)
	if len(data.Teams) > 0 {
		leader := data.Teams[0]
		summary += fmt.Sprintf(", %s leads at %s", leader.Name, leader.Display)
	}
	return summary
}

// StandingsSummary describes the table in one line
func StandingsSummary(entries []standings.Entry) string {
	if len(entries) == 0 {
		return "No teams"
	}
	qualified := 0
	for _, e := range entries {
		if e.Qualified {
			qualified++
		}
	}
	leader := entries[0]
	return fmt.Sprintf("%d teams, %s leads at %d-%d, top %d qualify",
		len(entries), leader.Name, leader.Wins, leader.Losses, qualified)
}
