// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/types"
	"github.com/okian/lineup/pkg/logger"
)

// maxBodyBytes bounds request bodies; every request here is a few fields.
const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	Connect(ctx context.Context, src model.Source) (types.ConnectResponse, error)
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	View() types.SessionResponse
	Withdraw(ctx context.Context, id string) error

	Players(ctx context.Context) ([]model.Record, error)
	Matches(ctx context.Context) ([]model.Record, error)

	Preferences(ctx context.Context) (types.Preferences, error)
	SavePreferences(ctx context.Context, p types.Preferences) error
}

// Server wires HTTP routes for the reveal console API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	revealHandler *RevealHandler
	recordHandler *RecordHandler
	prefsHandler  *PreferencesHandler
	stream        http.Handler
	logger        logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStream mounts the live reveal stream at /ws.
func WithStream(h http.Handler) Option {
	return func(s *Server) {
		s.stream = h
	}
}

// WithLogger reports failed requests, tagged with the request id, to l.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		revealHandler: NewRevealHandler(deps),
		recordHandler: NewRecordHandler(deps),
		prefsHandler:  NewPreferencesHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.instrument(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", s.instrument(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/connect", s.instrument(s.revealHandler.HandleConnect, "connect"))
	mux.HandleFunc("/roster", s.instrument(s.revealHandler.HandleRoster, "roster"))
	mux.HandleFunc("/generate", s.instrument(s.revealHandler.HandleGenerate, "generate"))
	mux.HandleFunc("/session", s.instrument(s.revealHandler.HandleSession, "session"))
	mux.HandleFunc("/players", s.instrument(s.recordHandler.HandlePlayers, "players"))
	mux.HandleFunc("/matches", s.instrument(s.recordHandler.HandleMatches, "matches"))
	mux.HandleFunc("/preferences", s.instrument(s.prefsHandler.HandlePreferences, "preferences"))
	if s.stream != nil {
		// no metrics wrapper: the upgrade needs the raw ResponseWriter
		mux.Handle("/ws", s.stream)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err into a status and response code.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
