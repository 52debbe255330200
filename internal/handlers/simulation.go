package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/versus-league/playoff-mcp-server/internal/simulator"
	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

// MatchesData is the payload of list_matches and select_winner
type MatchesData struct {
	Matches  []standings.Match  `json:"matches"`
	Progress simulator.Progress `json:"progress"`
}

// SimulationHandler handles the tools that change the simulated schedule
type SimulationHandler struct {
	session *simulator.Session
	source  string
	logger  *logrus.Logger
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(session *simulator.Session, source string, logger *logrus.Logger) *SimulationHandler {
	return &SimulationHandler{
		session: session,
		source:  source,
		logger:  logger,
	}
}

// ListMatchesTool returns the tool definition for list_matches
func (h *SimulationHandler) ListMatchesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_matches",
		Description: "List the remaining schedule with the winner selected for each match, if any",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleListMatches handles the list_matches tool call
func (h *SimulationHandler) HandleListMatches(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling list_matches")

	data := h.matchesData()
	summary := fmt.Sprintf("%d matches, %d decided, %d undecided",
		data.Progress.Total, data.Progress.Decided, data.Progress.Undecided)

	return respond(h.logger, NewResponse(h.session, h.source, data, summary))
}

// SelectWinnerTool returns the tool definition for select_winner
func (h *SimulationHandler) SelectWinnerTool() mcp.Tool {
	return mcp.Tool{
		Name:        "select_winner",
		Description: "Pick the winner of a remaining match. Picking the same winner again clears the result. Official results cannot be changed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "number",
					"description": "The match id from list_matches",
					"required":    true,
				},
				"team_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the winning team",
					"required":    true,
				},
			},
		},
	}
}

// HandleSelectWinner handles the select_winner tool call
func (h *SimulationHandler) HandleSelectWinner(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling select_winner")

	matchID, err := intArg(args, "match_id")
	if err != nil {
		return nil, err
	}
	teamID, err := stringArg(args, "team_id")
	if err != nil {
		return nil, err
	}

	match, err := h.session.SelectWinner(matchID, teamID)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"match_id": matchID,
			"team_id":  teamID,
		}).Warn("Failed to select winner")
		return errorResult("Failed to select winner: %s", err.Error()), nil
	}

	summary := fmt.Sprintf("Match %d (%s vs %s) cleared", match.ID, match.Team1, match.Team2)
	if match.Decided() {
		summary = fmt.Sprintf("Match %d (%s vs %s) won by %s", match.ID, match.Team1, match.Team2, match.Winner)
	}

	return respond(h.logger, NewResponse(h.session, h.source, h.matchesData(), summary))
}

// ResetSimulationTool returns the tool definition for reset_simulation
func (h *SimulationHandler) ResetSimulationTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reset_simulation",
		Description: "Drop every selected winner and restore the season's schedule",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleResetSimulation handles the reset_simulation tool call
func (h *SimulationHandler) HandleResetSimulation(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling reset_simulation")

	h.session.Reset()

	return respond(h.logger, NewResponse(h.session, h.source, h.matchesData(), "Simulation reset"))
}

func (h *SimulationHandler) matchesData() MatchesData {
	return MatchesData{
		Matches:  h.session.Matches(),
		Progress: h.session.Progress(),
	}
}
