package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/store"
	"github.com/shopspring/decimal"
)

// FinanceHandler serves transactions, summaries and currency settings from
// the finance store module.
type FinanceHandler struct {
	logger  *common.Logger
	finance *store.Finance
}

// NewFinanceHandler creates a new finance handler.
func NewFinanceHandler(logger *common.Logger, finance *store.Finance) *FinanceHandler {
	return &FinanceHandler{logger: logger, finance: finance}
}

// transactionFilter reads ?category=&year=&month=&currency=.
func transactionFilter(r *http.Request) (models.TransactionFilter, error) {
	var f models.TransactionFilter
	q := r.URL.Query()
	if c := q.Get("category"); c != "" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil || id <= 0 {
			return f, apierr.Validation("category", "invalid id %q", c)
		}
		f.CategoryID = id
	}
	year, err := QueryInt(r, "year")
	if err != nil {
		return f, apierr.Validation("year", "%v", err)
	}
	month, err := QueryInt(r, "month")
	if err != nil {
		return f, apierr.Validation("month", "%v", err)
	}
	if month < 0 || month > 12 {
		return f, apierr.Validation("month", "must be 1-12, got %d", month)
	}
	f.Year, f.Month = year, month
	f.Currency = strings.ToUpper(q.Get("currency"))
	return f, nil
}

// ListTransactions handles GET /api/transactions.
func (h *FinanceHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	txs, err := h.finance.FetchTransactions(r.Context(), filter)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"balance":      h.finance.TotalBalance(),
	})
}

// CreateTransaction handles POST /api/transactions.
func (h *FinanceHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if !DecodeJSON(w, r, &tx) {
		return
	}
	created, err := h.finance.CreateTransaction(r.Context(), tx)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// GetTransaction handles GET /api/transactions/{id}.
func (h *FinanceHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	tx, err := h.finance.FetchTransactionByID(r.Context(), id)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}.
func (h *FinanceHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	var tx models.Transaction
	if !DecodeJSON(w, r, &tx) {
		return
	}
	updated, err := h.finance.UpdateTransaction(r.Context(), id, tx)
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *FinanceHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.finance.DeleteTransaction(r.Context(), id); err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories handles GET /api/categories.
func (h *FinanceHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	cats, err := h.finance.FetchCategories(r.Context())
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, cats)
}

// MonthlySummary handles GET /api/summary/monthly?year=&currency=.
func (h *FinanceHandler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	year, err := QueryInt(r, "year")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := h.finance.FetchMonthlySummary(r.Context(), year, r.URL.Query().Get("currency"))
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// CategorySummary handles GET /api/summary/categories.
func (h *FinanceHandler) CategorySummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	summary, err := h.finance.FetchCategorySummary(r.Context())
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// PeriodSum handles GET /api/summary/period.
func (h *FinanceHandler) PeriodSum(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	sum, err := h.finance.FetchPeriodSum(r.Context())
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"summary":   sum,
		"formatted": models.FormatMoney(sum.Sum, sum.Currency),
	})
}

// ExchangeRates handles GET /api/exchange-rates.
func (h *FinanceHandler) ExchangeRates(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	rates, err := h.finance.FetchExchangeRates(r.Context())
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"rates":      rates,
		"currencies": h.finance.AvailableCurrencies(),
	})
}

// Convert handles GET /api/convert?amount=&from=&to=.
func (h *FinanceHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	q := r.URL.Query()
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	conv, err := h.finance.ConvertCurrency(r.Context(), amount, q.Get("from"), q.Get("to"))
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"conversion": conv,
		"formatted":  models.FormatMoney(conv.Result, conv.To),
	})
}

// SetCurrency handles PUT /api/finance/currency with {"currency": "USD"}.
func (h *FinanceHandler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}
	var body struct {
		Currency string `json:"currency"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	if err := h.finance.SetSelectedCurrency(r.Context(), body.Currency); err != nil {
		if apierr.IsValidation(err) {
			WriteStoreError(w, h.logger, err)
			return
		}
		h.logger.Error().Err(err).Msg("Failed to persist selected currency")
		WriteError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"currency": h.finance.SelectedCurrency()})
}

// SetDateRange handles PUT /api/finance/date-range with {"start","end"}.
func (h *FinanceHandler) SetDateRange(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}
	var dr models.DateRange
	if !DecodeJSON(w, r, &dr) {
		return
	}
	if err := h.finance.SetDateRange(dr); err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.finance.DateRange())
}

// Ledger handles GET /api/ledger: it refreshes the legacy expense/income
// ledger and returns it.
func (h *FinanceHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	ctx := r.Context()
	steps := []func() error{
		func() error { _, err := h.finance.FetchExpenses(ctx); return err },
		func() error { _, err := h.finance.FetchIncomes(ctx); return err },
		func() error { _, err := h.finance.FetchBalance(ctx); return err },
		func() error { _, err := h.finance.FetchExpensesByCategory(ctx); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			WriteStoreError(w, h.logger, err)
			return
		}
	}
	WriteJSON(w, http.StatusOK, h.finance.Ledger())
}

// ExchangeRate handles GET /api/exchange-rate?from=&to= (legacy pair).
func (h *FinanceHandler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	q := r.URL.Query()
	rate, err := h.finance.FetchExchangeRate(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		WriteStoreError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, rate)
}
