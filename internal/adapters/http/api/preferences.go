package api

import (
	"net/http"

	"github.com/okian/lineup/internal/domain/types"
)

// PreferencesHandler reads and stores the console inputs.
type PreferencesHandler struct {
	deps Dependencies
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(deps Dependencies) *PreferencesHandler {
	return &PreferencesHandler{deps: deps}
}

// HandlePreferences handles GET and PUT /preferences.
func (h *PreferencesHandler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	const op = "api.preferences"
	switch r.Method {
	case http.MethodGet:
		p, err := h.deps.Preferences(r.Context())
		if err != nil {
			writeError(w, WrapKind(op, ErrUnavailable, err))
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var p types.Preferences
		if err := decodeJSON(r, &p); err != nil {
			writeError(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.SavePreferences(r.Context(), p); err != nil {
			writeError(w, WrapKind(op, ErrUnavailable, err))
			return
		}
		writeJSON(w, http.StatusOK, p)
	default:
		writeError(w, NewKind(op, ErrMethodNotAllowed))
	}
}
