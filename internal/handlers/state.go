package handlers

import (
	"net/http"

	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/store"
)

// StateHandler exposes the root state flags and the dark-mode toggle.
type StateHandler struct {
	logger *common.Logger
	store  *store.Store
}

// NewStateHandler creates a new state handler.
func NewStateHandler(logger *common.Logger, s *store.Store) *StateHandler {
	return &StateHandler{logger: logger, store: s}
}

// ServeHTTP handles GET /api/state.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, h.store.Root.Snapshot())
}

// ClearError handles DELETE /api/state/error.
func (h *StateHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}
	h.store.Root.ClearError()
	WriteJSON(w, http.StatusOK, h.store.Root.Snapshot())
}

// ToggleDarkMode handles POST /api/preferences/dark-mode.
func (h *StateHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	on, err := h.store.Root.ToggleDarkMode(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist dark mode")
		WriteError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"darkMode": on})
}
