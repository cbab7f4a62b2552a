package server

import (
	"net/http"

	"github.com/bobmcallan/finance-portal/internal/models"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	a := s.app

	// MCP endpoint (JSON-RPC over HTTP)
	if a.MCPHandler != nil {
		mux.Handle("/mcp", a.MCPHandler)
	}

	mux.HandleFunc("/api/health", a.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", a.VersionHandler.ServeHTTP)

	// Root state and preferences
	mux.HandleFunc("/api/state", a.StateHandler.ServeHTTP)
	mux.HandleFunc("/api/state/error", a.StateHandler.ClearError)
	mux.HandleFunc("/api/preferences/dark-mode", a.StateHandler.ToggleDarkMode)

	// Assets
	wl := a.WatchlistHandler
	mux.HandleFunc("/api/watchlist", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, wl.List, wl.Create)
	})
	mux.HandleFunc("/api/watchlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceItem(w, r, wl.Get, nil, wl.Delete)
	})
	mux.HandleFunc("/api/watchlist/{id}/portfolio", wl.Portfolio)
	mux.HandleFunc("/api/watchlist/{id}/notes", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, wl.ListNotes, wl.CreateNote)
	})
	mux.HandleFunc("/api/watchlist/{id}/notes/{noteId}", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceItem(w, r, nil, wl.UpdateNote, wl.DeleteNote)
	})
	mux.HandleFunc("/api/investments", wl.AddInvestment)
	mux.HandleFunc("/api/top-gainers", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{
			"GET": wl.TopGainers,
			"PUT": wl.SetTopGainers,
		})
	})

	q := a.QuoteHandler
	mux.HandleFunc("/api/quotes", q.Batch)
	mux.HandleFunc("/api/quotes/{symbol}", q.Price)
	mux.HandleFunc("/api/history/{symbol}", q.Series(models.SeriesHistory))
	mux.HandleFunc("/api/intraday/{symbol}", q.Series(models.SeriesIntraday))
	mux.HandleFunc("/api/chart/{symbol}", q.Series(models.SeriesChart))

	// Finance
	fin := a.FinanceHandler
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, fin.ListTransactions, fin.CreateTransaction)
	})
	mux.HandleFunc("/api/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceItem(w, r, fin.GetTransaction, fin.UpdateTransaction, fin.DeleteTransaction)
	})
	mux.HandleFunc("/api/categories", fin.Categories)
	mux.HandleFunc("/api/summary/monthly", fin.MonthlySummary)
	mux.HandleFunc("/api/summary/categories", fin.CategorySummary)
	mux.HandleFunc("/api/summary/period", fin.PeriodSum)
	mux.HandleFunc("/api/exchange-rates", fin.ExchangeRates)
	mux.HandleFunc("/api/exchange-rate", fin.ExchangeRate)
	mux.HandleFunc("/api/convert", fin.Convert)
	mux.HandleFunc("/api/finance/currency", fin.SetCurrency)
	mux.HandleFunc("/api/finance/date-range", fin.SetDateRange)
	mux.HandleFunc("/api/ledger", fin.Ledger)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"status":"error","error":"The requested endpoint does not exist"}`))
}
