// Package httpapi serves the standings and simulation over plain HTTP for
// the browser front end.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/versus-league/playoff-mcp-server/internal/handlers"
	"github.com/versus-league/playoff-mcp-server/internal/simulator"
	"github.com/versus-league/playoff-mcp-server/internal/standings"
)

// DefaultRateLimit bounds the enumeration endpoints per client IP
const DefaultRateLimit = "30-M"

// Server is the HTTP surface over one simulator session
type Server struct {
	session *simulator.Session
	source  string
	logger  *logrus.Logger
	router  chi.Router
}

type winnerRequest struct {
	TeamID string `json:"team_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the router. rate is a limiter formatted rate such as
// "30-M"; an empty rate uses DefaultRateLimit.
func NewServer(session *simulator.Session, source, rate string, logger *logrus.Logger) (*Server, error) {
	if rate == "" {
		rate = DefaultRateLimit
	}
	limit, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	s := &Server{
		session: session,
		source:  source,
		logger:  logger,
	}

	limited := stdlib.NewMiddleware(
		limiter.New(memory.NewStore(), limit),
		stdlib.WithLimitReachedHandler(s.limitReached),
	)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/standings", s.getStandings)
	r.Get("/matches", s.getMatches)
	r.Post("/matches/{id}/winner", s.postWinner)
	r.Post("/reset", s.postReset)

	// every scenario is enumerated on these
	r.Group(func(r chi.Router) {
		r.Use(limited.Handler)
		r.Get("/probabilities", s.getProbabilities)
		r.Get("/teams/{id}/analysis", s.getAnalysis)
	})

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) getStandings(w http.ResponseWriter, r *http.Request) {
	data, err := handlers.StandingsTable(s.session)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, handlers.NewResponse(s.session, s.source, data, handlers.StandingsSummary(data.Standings)))
}

func (s *Server) getProbabilities(w http.ResponseWriter, r *http.Request) {
	data, err := handlers.ProbabilityTable(s.session)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, handlers.NewResponse(s.session, s.source, data, handlers.ProbabilitySummary(data)))
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "id")
	data, err := handlers.TeamAnalysis(s.session, teamID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	summary := ""
	if len(data.Lines) > 0 {
		summary = data.Lines[0]
	}
	s.writeJSON(w, http.StatusOK, handlers.NewResponse(s.session, s.source, data, summary))
}

func (s *Server) getMatches(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.matchesResponse("Schedule"))
}

func (s *Server) postWinner(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "match id must be a number"})
		return
	}

	var req winnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.TeamID == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "team_id is required"})
		return
	}

	match, err := s.session.SelectWinner(matchID, req.TeamID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	summary := fmt.Sprintf("Match %d cleared", match.ID)
	if match.Decided() {
		summary = fmt.Sprintf("Match %d won by %s", match.ID, match.Winner)
	}
	s.writeJSON(w, http.StatusOK, s.matchesResponse(summary))
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	s.writeJSON(w, http.StatusOK, s.matchesResponse("Simulation reset"))
}

func (s *Server) matchesResponse(summary string) handlers.APIResponse {
	data := handlers.MatchesData{
		Matches:  s.session.Matches(),
		Progress: s.session.Progress(),
	}
	return handlers.NewResponse(s.session, s.source, data, summary)
}

func (s *Server) limitReached(w http.ResponseWriter, r *http.Request) {
	s.logger.WithField("remote_addr", r.RemoteAddr).Warn("Rate limit reached")
	s.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
}

// writeError maps engine and session errors onto status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var validation *standings.ValidationError
	switch {
	case errors.Is(err, simulator.ErrUnknownMatch), errors.Is(err, standings.ErrUnknownTeam):
		return http.StatusNotFound
	case errors.Is(err, simulator.ErrMatchLocked):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to write response")
	}
}
