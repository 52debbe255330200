package handlers

import (
	"time"

	"github.com/versus-league/playoff-mcp-server/internal/simulator"
)

// APIResponse represents the standard response format for our tools
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Summary  string      `json:"summary"`
	Error    string      `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata contains response metadata
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Season    string    `json:"season"`
	Undecided int       `json:"undecided"`
	Scenarios uint64    `json:"scenarios"`
}

// NewResponse builds a successful response stamped with the session state
func NewResponse(session *simulator.Session, source string, data interface{}, summary string) APIResponse {
	progress := session.Progress()
	return APIResponse{
		Success: true,
		Data:    data,
		Summary: summary,
		Metadata: Metadata{
			Timestamp: time.Now(),
			Source:    source,
			Season:    session.Season().Name,
			Undecided: progress.Undecided,
			Scenarios: progress.Scenarios,
		},
	}
}
