package handlers

import (
	"net/http"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/request"
	"github.com/bobmcallan/finance-portal/internal/store"
)

// QuoteHandler serves prices and price series.
type QuoteHandler struct {
	logger *common.Logger
	assets *store.Assets
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(logger *common.Logger, assets *store.Assets) *QuoteHandler {
	return &QuoteHandler{logger: logger, assets: assets}
}

type batchBody struct {
	Symbols []string         `json:"symbols"`
	Type    models.AssetType `json:"type,omitempty"`
	Market  string           `json:"market,omitempty"`
}

// assetType reads the optional ?type= parameter.
func assetType(r *http.Request) (models.AssetType, error) {
	raw := r.URL.Query().Get("type")
	typ, ok := models.ParseAssetType(raw)
	if !ok {
		return "", apierr.Validation("type", "must be crypto or stock, got %q", raw)
	}
	return typ, nil
}

// Price handles GET /api/quotes/{symbol}?type=&market=.
func (h *QuoteHandler) Price(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	typ, err := assetType(r)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	q, err := h.assets.FetchPrice(r.Context(), r.PathValue("symbol"), typ, r.URL.Query().Get("market"))
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, q)
}

// Batch handles POST /api/quotes.
func (h *QuoteHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var body batchBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	res, err := h.assets.FetchPrices(r.Context(), body.Symbols, body.Type, body.Market)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Series returns a handler for GET /api/{history,intraday,chart}/{symbol}
// accepting ?type=&market=&period=&interval=.
func (h *QuoteHandler) Series(kind models.SeriesKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMethod(w, r, "GET") {
			return
		}
		typ, err := assetType(r)
		if err != nil {
			WriteStoreError(w, h.logger, err)
			return
		}
		q := r.URL.Query()
		opts := request.Options{
			Market:   q.Get("market"),
			Period:   q.Get("period"),
			Interval: q.Get("interval"),
		}
		symbol := r.PathValue("symbol")

		var series models.Series
		switch kind {
		case models.SeriesIntraday:
			series, err = h.assets.FetchIntraday(r.Context(), symbol, typ, opts)
		case models.SeriesChart:
			series, err = h.assets.FetchChart(r.Context(), symbol, typ, opts)
		default:
			series, err = h.assets.FetchHistory(r.Context(), symbol, typ, opts)
		}
		if err != nil {
			WriteStoreError(w, h.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, series)
	}
}
