package api

import (
	"context"
	"net/http"

	"github.com/okian/lineup/internal/domain/model"
)

// RecordHandler passes backend player and match lists through.
type RecordHandler struct {
	deps Dependencies
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(deps Dependencies) *RecordHandler {
	return &RecordHandler{deps: deps}
}

// HandlePlayers handles GET /players.
func (h *RecordHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.players", h.deps.Players)
}

// HandleMatches handles GET /matches.
func (h *RecordHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.matches", h.deps.Matches)
}

func (h *RecordHandler) serve(w http.ResponseWriter, r *http.Request, op string, fetch func(context.Context) ([]model.Record, error)) {
	if r.Method != http.MethodGet {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	records, err := fetch(r.Context())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}
