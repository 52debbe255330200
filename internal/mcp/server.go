package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/versus-league/playoff-mcp-server/internal/handlers"
	"github.com/versus-league/playoff-mcp-server/internal/simulator"
)

// Version is reported to MCP clients
const Version = "1.0.0"

// NewPlayoffMCPServer registers the standings and simulation tools over a
// session. source names where the session's season was loaded from.
func NewPlayoffMCPServer(session *simulator.Session, source string, logger *logrus.Logger) *server.DefaultServer {
	// Create handlers
	standingsHandler := handlers.NewStandingsHandler(session, source, logger)
	simulationHandler := handlers.NewSimulationHandler(session, source, logger)

	// Create MCP server
	s := server.NewDefaultServer(session.Season().Name+" Playoff Simulator", Version)

	if s == nil {
		logger.Error("Failed to create MCP server instance")
		return nil
	}

	logger.Info("MCP server instance created successfully")

	// Set up list tools handler
	s.HandleListTools(func(ctx context.Context, cursor *string) (*mcp.ListToolsResult, error) {
		tools := []mcp.Tool{
			standingsHandler.GetStandingsTool(),
			standingsHandler.GetPlayoffProbabilitiesTool(),
			standingsHandler.AnalyzeTeamScenariosTool(),
			simulationHandler.ListMatchesTool(),
			simulationHandler.SelectWinnerTool(),
			simulationHandler.ResetSimulationTool(),
		}

		logger.WithField("tools_count", len(tools)).Info("Listing available tools")

		return &mcp.ListToolsResult{
			Tools: tools,
		}, nil
	})

	// Set up call tool handler
	s.HandleCallTool(func(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		logger.WithFields(logrus.Fields{
			"tool": name,
			"args": arguments,
		}).Info("Tool called")

		// Route to specific tool handlers
		switch name {
		case "get_standings":
			return standingsHandler.HandleGetStandings(ctx, arguments)
		case "get_playoff_probabilities":
			return standingsHandler.HandleGetPlayoffProbabilities(ctx, arguments)
		case "analyze_team_scenarios":
			return standingsHandler.HandleAnalyzeTeamScenarios(ctx, arguments)
		case "list_matches":
			return simulationHandler.HandleListMatches(ctx, arguments)
		case "select_winner":
			return simulationHandler.HandleSelectWinner(ctx, arguments)
		case "reset_simulation":
			return simulationHandler.HandleResetSimulation(ctx, arguments)
		default:
			logger.WithField("tool", name).Warn("Unknown tool called")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					&mcp.TextContent{
						Type: "text",
						Text: "Unknown tool: " + name,
					},
				},
				IsError: true,
			}, nil
		}
	})

	logger.Info("All tools registered successfully")
	return s
}
