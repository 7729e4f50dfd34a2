package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/lineup/internal/domain/types"
)

// Locator cookie written on a successful connect.
const (
	locatorCookie = "sheetUrl"
	locatorMaxAge = 30 * 24 * time.Hour
)

// RevealHandler serves roster loading and reveal control.
type RevealHandler struct {
	deps Dependencies
}

// NewRevealHandler creates a new reveal handler.
func NewRevealHandler(deps Dependencies) *RevealHandler {
	return &RevealHandler{deps: deps}
}

// HandleConnect handles POST /connect. The source may also be given as the
// url or match_id query parameter.
func (h *RevealHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	const op = "api.connect"
	if r.Method != http.MethodPost {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	req := types.ConnectRequest{
		URL:     r.URL.Query().Get("url"),
		MatchID: r.URL.Query().Get("match_id"),
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	resp, err := h.deps.Connect(r.Context(), req.Source())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if req.URL != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     locatorCookie,
			Value:    req.URL,
			Path:     "/",
			MaxAge:   int(locatorMaxAge / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRoster handles GET /roster, the tokens currently on screen, and
// DELETE /roster?name=, which withdraws one of them.
func (h *RevealHandler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	const op = "api.roster"
	switch r.Method {
	case http.MethodGet:
		tokens := h.deps.View().Board.Tokens
		writeJSON(w, http.StatusOK, types.ConnectResponse{Count: len(tokens), Tokens: tokens})
	case http.MethodDelete:
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			writeError(w, NewKind(op, ErrBadRequest))
			return
		}
		if err := h.deps.Withdraw(r.Context(), name); err != nil {
			writeError(w, Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, NewKind(op, ErrMethodNotAllowed))
	}
}

// HandleGenerate handles POST /generate. It answers 202 once the reveal is
// running; progress is streamed on /ws and visible on /session.
func (h *RevealHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate"
	if r.Method != http.MethodPost {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	var req types.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.URL == "" && req.MatchID == "" {
		if c, err := r.Cookie(locatorCookie); err == nil {
			req.URL = c.Value
		}
	}

	resp, err := h.deps.Generate(r.Context(), req)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// HandleSession handles GET /session.
func (h *RevealHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, NewKind("api.session", ErrMethodNotAllowed))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.View())
}
