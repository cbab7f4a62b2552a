package handlers

import (
	"net/http"

	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/store"
)

// WatchlistHandler serves the watchlist, notes, investments and top gainers
// from the assets store module.
type WatchlistHandler struct {
	logger *common.Logger
	assets *store.Assets
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(logger *common.Logger, assets *store.Assets) *WatchlistHandler {
	return &WatchlistHandler{logger: logger, assets: assets}
}

// List handles GET /api/watchlist.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.assets.FetchWatchlist(r.Context())
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// Create handles POST /api/watchlist.
func (h *WatchlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.NewWatchlistEntry
	if !DecodeJSON(w, r, &in) {
		return
	}
	entry, err := h.assets.AddToWatchlist(r.Context(), in)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, entry)
}

// Get handles GET /api/watchlist/{id}.
func (h *WatchlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := h.assets.FetchEntry(r.Context(), id)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/watchlist/{id}.
func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.assets.RemoveFromWatchlist(r.Context(), id); err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Portfolio handles GET /api/watchlist/{id}/portfolio.
func (h *WatchlistHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	summary, err := h.assets.FetchPortfolioSummary(r.Context(), id)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

type noteBody struct {
	Text string `json:"text"`
}

// ListNotes handles GET /api/watchlist/{id}/notes.
func (h *WatchlistHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	notes, err := h.assets.FetchNotes(r.Context(), id)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, notes)
}

// CreateNote handles POST /api/watchlist/{id}/notes.
func (h *WatchlistHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	var body noteBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	note, err := h.assets.AddNote(r.Context(), id, body.Text)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/watchlist/{id}/notes/{noteId}.
func (h *WatchlistHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := PathID(w, r, "noteId")
	if !ok {
		return
	}
	var body noteBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	note, err := h.assets.UpdateNote(r.Context(), id, noteID, body.Text)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/watchlist/{id}/notes/{noteId}.
func (h *WatchlistHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := PathID(w, r, "noteId")
	if !ok {
		return
	}
	if err := h.assets.DeleteNote(r.Context(), id, noteID); err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddInvestment handles POST /api/investments.
func (h *WatchlistHandler) AddInvestment(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var inv models.Investment
	if !DecodeJSON(w, r, &inv) {
		return
	}
	res, err := h.assets.AddInvestment(r.Context(), inv)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

// TopGainers handles GET /api/top-gainers.
func (h *WatchlistHandler) TopGainers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.assets.TopGainers())
}

// SetTopGainers handles PUT /api/top-gainers.
func (h *WatchlistHandler) SetTopGainers(w http.ResponseWriter, r *http.Request) {
	var gainers []models.PriceQuote
	if !DecodeJSON(w, r, &gainers) {
		return
	}
	h.assets.SetTopGainers(gainers)
	WriteJSON(w, http.StatusOK, h.assets.TopGainers())
}
