package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/versus-league/playoff-mcp-server/internal/season"
	"github.com/versus-league/playoff-mcp-server/internal/simulator"
)

func newTestServer(t *testing.T, rate string) *Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s, err := season.Default()
	require.NoError(t, err)

	server, err := NewServer(simulator.NewSession(s, 2, logger), season.EmbeddedSource, rate, logger)
	require.NoError(t, err)
	return server
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success  bool            `json:"success"`
	Summary  string          `json:"summary"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Metadata struct {
		Source    string `json:"source"`
		Undecided int    `json:"undecided"`
		Scenarios uint64 `json:"scenarios"`
	} `json:"metadata"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestServer_GetStandings(t *testing.T) {
	server := newTestServer(t, "")

	rec := do(t, server, http.MethodGet, "/standings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, season.EmbeddedSource, env.Metadata.Source)
	assert.Equal(t, 6, env.Metadata.Undecided)

	var data struct {
		Standings []struct {
			ID       string `json:"id"`
			Position int    `json:"position"`
		} `json:"standings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Standings, 12)
	assert.Equal(t, "KC", data.Standings[0].ID)
	assert.Equal(t, "KCB", data.Standings[11].ID)
}

func TestServer_GetProbabilities(t *testing.T) {
	server := newTestServer(t, "")

	rec := do(t, server, http.MethodGet, "/probabilities", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		TotalScenarios int `json:"total_scenarios"`
		Teams          []struct {
			TeamID      string  `json:"team_id"`
			Probability float64 `json:"probability"`
		} `json:"teams"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, 64, data.TotalScenarios)
	require.Len(t, data.Teams, 12)
	assert.Equal(t, "KC", data.Teams[0].TeamID)

	// rate limit headers from the limiter middleware
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestServer_GetAnalysis(t *testing.T) {
	server := newTestServer(t, "")

	rec := do(t, server, http.MethodGet, "/teams/G2/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		TeamID           string `json:"team_id"`
		QualifyScenarios int    `json:"qualify_scenarios"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, "G2", data.TeamID)
	assert.Equal(t, 44, data.QualifyScenarios)

	rec = do(t, server, http.MethodGet, "/teams/XYZ/analysis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec).Error, "unknown team")
}

func TestServer_SelectWinnerAndReset(t *testing.T) {
	server := newTestServer(t, "")

	rec := do(t, server, http.MethodPost, "/matches/1/winner", `{"team_id": "LR"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Match 1 won by LR", env.Summary)
	assert.Equal(t, uint64(32), env.Metadata.Scenarios)

	rec = do(t, server, http.MethodGet, "/matches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Matches []struct {
			ID     int    `json:"id"`
			Winner string `json:"winner"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, "LR", data.Matches[0].Winner)

	rec = do(t, server, http.MethodPost, "/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decode(t, rec).Metadata.Undecided)
}

func TestServer_SelectWinnerErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"non numeric id", "/matches/abc/winner", `{"team_id": "LR"}`, http.StatusBadRequest},
		{"bad body", "/matches/1/winner", `{`, http.StatusBadRequest},
		{"missing team", "/matches/1/winner", `{}`, http.StatusBadRequest},
		{"team not in match", "/matches/1/winner", `{"team_id": "KC"}`, http.StatusBadRequest},
		{"unknown match", "/matches/99/winner", `{"team_id": "KC"}`, http.StatusNotFound},
	}

	server := newTestServer(t, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, server, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decode(t, rec).Error)
		})
	}
}

func TestServer_LockedMatchConflict(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s, err := season.Default()
	require.NoError(t, err)
	s.Matches[2].Winner = "SK"
	s.Matches[2].Locked = true
	require.NoError(t, s.Validate())

	server, err := NewServer(simulator.NewSession(s, 1, logger), "test", "", logger)
	require.NoError(t, err)

	rec := do(t, server, http.MethodPost, "/matches/3/winner", `{"team_id": "SHFT"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_RateLimitsEnumeration(t *testing.T) {
	server := newTestServer(t, "2-M")

	for i := 0; i < 2; i++ {
		rec := do(t, server, http.MethodGet, "/probabilities", "")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := do(t, server, http.MethodGet, "/teams/KC/analysis", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", decode(t, rec).Error)

	// cheap endpoints are not limited
	rec = do(t, server, http.MethodGet, "/standings", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	server := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/standings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServer_InvalidRate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s, err := season.Default()
	require.NoError(t, err)

	_, err = NewServer(simulator.NewSession(s, 1, logger), "test", "lots", logger)
	assert.Error(t, err)
}
