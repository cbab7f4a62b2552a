package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/client"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/request"
	"github.com/bobmcallan/finance-portal/internal/store"
	"github.com/bobmcallan/finance-portal/internal/symbols"
)

func newTestStore(t *testing.T, assets, finance http.HandlerFunc) *store.Store {
	t.Helper()

	notFound := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }
	if assets == nil {
		assets = notFound
	}
	if finance == nil {
		finance = notFound
	}
	assetSrv := httptest.NewServer(assets)
	financeSrv := httptest.NewServer(finance)
	t.Cleanup(assetSrv.Close)
	t.Cleanup(financeSrv.Close)

	builder := request.NewBuilder(symbols.NewResolver(nil), "")
	return store.New(context.Background(), store.Deps{
		AssetAPI:   client.NewAssetClient(assetSrv.URL, builder),
		FinanceAPI: client.NewFinanceClient(financeSrv.URL),
		Logger:     common.NewSilentLogger(),
	})
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
}

func TestHealthHandler_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
}

func TestHealthHandler_RejectsNonGET(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("POST", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
	if got := w.Header().Get("Allow"); got != "GET" {
		t.Errorf("expected Allow GET, got %q", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got content type %q", ct)
	}
}

func TestVersionHandler_ReturnsJSON(t *testing.T) {
	handler := NewVersionHandler(nil)

	req := httptest.NewRequest("GET", "/api/version", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var body map[string]string
	decode(t, w, &body)
	for _, field := range []string{"version", "build", "git_commit"} {
		if _, ok := body[field]; !ok {
			t.Errorf("expected %s field in response", field)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apierr.Validation("symbol", "is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("add: %w", apierr.Validation("text", "is required")), http.StatusBadRequest},
		{"not found", apierr.Classify(404, nil), http.StatusNotFound},
		{"rate limited", apierr.Classify(429, nil), http.StatusTooManyRequests},
		{"server error", apierr.Classify(500, nil), http.StatusInternalServerError},
		{"other status", apierr.Classify(503, nil), http.StatusServiceUnavailable},
		{"network", &apierr.NetworkError{Err: errors.New("dial tcp: refused")}, http.StatusBadGateway},
		{"unclassified", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteStoreError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteStoreError(w, common.NewSilentLogger(), apierr.Classify(429, []byte(`{"error":"ignored"}`)))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "error" || body["error"] != apierr.MsgRateLimited {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/watchlist/"+tt.value, nil)
			req.SetPathValue("id", tt.value)
			w := httptest.NewRecorder()

			got, ok := PathID(w, req, "id")
			if ok != tt.ok || got != tt.want {
				t.Errorf("PathID(%q) = %d, %v; want %d, %v", tt.value, got, ok, tt.want, tt.ok)
			}
			if !ok && w.Code != http.StatusBadRequest {
				t.Errorf("expected 400 on rejection, got %d", w.Code)
			}
		})
	}
}

func TestDecodeJSON_RejectsMalformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"symbol":`))
	w := httptest.NewRecorder()

	var v map[string]string
	if DecodeJSON(w, req, &v) {
		t.Fatal("expected decode failure")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?year=2026&month=x", nil)

	if n, err := QueryInt(req, "year"); err != nil || n != 2026 {
		t.Errorf("year: got %d, %v", n, err)
	}
	if n, err := QueryInt(req, "missing"); err != nil || n != 0 {
		t.Errorf("missing: got %d, %v", n, err)
	}
	if _, err := QueryInt(req, "month"); err == nil {
		t.Error("expected error for non-numeric month")
	}
}

func TestStateHandler_ToggleAndClear(t *testing.T) {
	s := newTestStore(t, nil, nil)
	h := NewStateHandler(common.NewSilentLogger(), s)

	w := httptest.NewRecorder()
	h.ToggleDarkMode(w, httptest.NewRequest("POST", "/api/preferences/dark-mode", nil))
	var toggled map[string]bool
	decode(t, w, &toggled)
	if !toggled["darkMode"] {
		t.Error("expected dark mode on after toggle")
	}

	// A failing action leaves an error for ClearError to reset.
	s.Assets.FetchWatchlist(context.Background())
	if s.Root.Error() == "" {
		t.Fatal("expected recorded error")
	}

	w = httptest.NewRecorder()
	h.ClearError(w, httptest.NewRequest("DELETE", "/api/state/error", nil))
	var state store.State
	decode(t, w, &state)
	if state.Error != "" || !state.DarkMode {
		t.Errorf("unexpected state after clear: %+v", state)
	}

	w = httptest.NewRecorder()
	h.ClearError(w, httptest.NewRequest("GET", "/api/state/error", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestQuoteHandler_Price(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price/AAPL" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Asset not found"}`))
			return
		}
		w.Write([]byte(`{"success":true,"priceData":{"05. price":"189.9100"}}`))
	}, nil)
	h := NewQuoteHandler(common.NewSilentLogger(), s.Assets)

	req := httptest.NewRequest("GET", "/api/quotes/appl", nil)
	req.SetPathValue("symbol", "appl")
	w := httptest.NewRecorder()
	h.Price(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var q models.PriceQuote
	decode(t, w, &q)
	if q.Symbol != "AAPL" || !q.Corrected || q.OriginalSymbol != "appl" {
		t.Errorf("expected corrected AAPL quote, got %+v", q)
	}

	req = httptest.NewRequest("GET", "/api/quotes/ZZZ", nil)
	req.SetPathValue("symbol", "ZZZ")
	w = httptest.NewRecorder()
	h.Price(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "Asset not found" {
		t.Errorf("expected backend message, got %q", body["error"])
	}
}

func TestQuoteHandler_BatchRequiresSymbols(t *testing.T) {
	s := newTestStore(t, nil, nil)
	h := NewQuoteHandler(common.NewSilentLogger(), s.Assets)

	w := httptest.NewRecorder()
	h.Batch(w, httptest.NewRequest("POST", "/api/quotes", strings.NewReader(`{"symbols":[]}`)))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty batch, got %d", w.Code)
	}
}

func TestWatchlistHandler_SetTopGainers(t *testing.T) {
	s := newTestStore(t, nil, nil)
	h := NewWatchlistHandler(common.NewSilentLogger(), s.Assets)

	w := httptest.NewRecorder()
	h.SetTopGainers(w, httptest.NewRequest("PUT", "/api/top-gainers",
		strings.NewReader(`[{"symbol":"SOL","type":"crypto","price":"150"},{"symbol":"NVDA","type":"stock","price":"900"}]`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.TopGainers(w, httptest.NewRequest("GET", "/api/top-gainers", nil))
	var got []models.PriceQuote
	decode(t, w, &got)
	if len(got) != 2 || got[0].Symbol != "SOL" || got[1].Symbol != "NVDA" {
		t.Errorf("expected insertion order kept, got %+v", got)
	}
}

func TestFinanceHandler_TransactionFilter(t *testing.T) {
	tests := []struct {
		query   string
		wantErr bool
		want    models.TransactionFilter
	}{
		{"", false, models.TransactionFilter{}},
		{"category=4", false, models.TransactionFilter{CategoryID: 4}},
		{"year=2026&month=3", false, models.TransactionFilter{Year: 2026, Month: 3}},
		{"currency=usd", false, models.TransactionFilter{Currency: "USD"}},
		{"month=13", true, models.TransactionFilter{}},
		{"category=x", true, models.TransactionFilter{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := transactionFilter(httptest.NewRequest("GET", "/api/transactions?"+tt.query, nil))
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if tt.wantErr && !apierr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestFinanceHandler_CreateTransactionValidation(t *testing.T) {
	s := newTestStore(t, nil, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend should not be called for invalid input, got %s %s", r.Method, r.URL.Path)
	})
	h := NewFinanceHandler(common.NewSilentLogger(), s.Finance)

	w := httptest.NewRecorder()
	h.CreateTransaction(w, httptest.NewRequest("POST", "/api/transactions",
		strings.NewReader(`{"amount":10,"currency":"euro","date":"2026-03-01"}`)))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if s.Root.Error() == "" {
		t.Error("expected store to record the validation error")
	}
}

func TestFinanceHandler_Ledger(t *testing.T) {
	s := newTestStore(t, nil, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/expenses":
			w.Write([]byte(`[{"id":1,"amount":40,"category":"Food"}]`))
		case "/incomes":
			w.Write([]byte(`[{"id":2,"amount":1000,"category":"Salary"}]`))
		case "/balance":
			w.Write([]byte(`960`))
		case "/expenses/by-category":
			w.Write([]byte(`{"Food":40}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	h := NewFinanceHandler(common.NewSilentLogger(), s.Finance)

	w := httptest.NewRecorder()
	h.Ledger(w, httptest.NewRequest("GET", "/api/ledger", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ledger map[string]json.RawMessage
	decode(t, w, &ledger)
	if string(ledger["balance"]) != `"960"` {
		t.Errorf("expected balance 960, got %s", ledger["balance"])
	}
}
