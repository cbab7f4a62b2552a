package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/shopspring/decimal"
)

// FinanceClient communicates with the backend finance API (/api/finance).
type FinanceClient struct {
	t *transport
}

// NewFinanceClient creates a client targeting the given finance base URL.
func NewFinanceClient(baseURL string, opts ...Option) *FinanceClient {
	return &FinanceClient{t: newTransport(baseURL, opts)}
}

// transactionsPath returns the listing endpoint for the filter.
func transactionsPath(f models.TransactionFilter) (string, url.Values) {
	switch {
	case f.CategoryID != 0:
		return idPath("/transactions/category", f.CategoryID), nil
	case f.Year != 0 && f.Month != 0:
		q := url.Values{}
		q.Set("year", strconv.Itoa(f.Year))
		q.Set("month", strconv.Itoa(f.Month))
		return "/transactions/month", q
	case f.Currency != "":
		return "/transactions/currency/" + url.PathEscape(strings.ToUpper(f.Currency)), nil
	}
	return "/transactions", nil
}

// GetTransactions lists transactions, optionally filtered.
// GET /transactions[/category/{id}|/month?year=&month=|/currency/{cur}] -> [Transaction]
func (c *FinanceClient) GetTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	path, query := transactionsPath(filter)
	var txs []models.Transaction
	if err := c.t.do(ctx, http.MethodGet, path, query, nil, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

// GetTransaction fetches one transaction.
// GET /transactions/{id} -> Transaction
func (c *FinanceClient) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	var tx models.Transaction
	err := c.t.do(ctx, http.MethodGet, idPath("/transactions", id), nil, nil, &tx)
	return tx, err
}

// CreateTransaction validates and stores a new transaction.
// POST /transactions -> Transaction
func (c *FinanceClient) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := models.ValidateTransaction(tx); err != nil {
		return models.Transaction{}, apierr.Validation("transaction", "%v", err)
	}
	var created models.Transaction
	err := c.t.do(ctx, http.MethodPost, "/transactions", nil, tx, &created)
	return created, err
}

// UpdateTransaction validates and replaces a transaction.
// PUT /transactions/{id} -> Transaction
func (c *FinanceClient) UpdateTransaction(ctx context.Context, id int64, tx models.Transaction) (models.Transaction, error) {
	if err := models.ValidateTransaction(tx); err != nil {
		return models.Transaction{}, apierr.Validation("transaction", "%v", err)
	}
	tx.ID = id
	var updated models.Transaction
	if err := c.t.do(ctx, http.MethodPut, idPath("/transactions", id), nil, tx, &updated); err != nil {
		return models.Transaction{}, err
	}
	if updated.ID == 0 {
		updated.ID = id
	}
	return updated, nil
}

// DeleteTransaction removes a transaction.
// DELETE /transactions/{id}
func (c *FinanceClient) DeleteTransaction(ctx context.Context, id int64) error {
	return c.t.do(ctx, http.MethodDelete, idPath("/transactions", id), nil, nil, nil)
}

// GetCategories lists the transaction categories.
// GET /categories -> [Category]
func (c *FinanceClient) GetCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := c.t.do(ctx, http.MethodGet, "/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

// GetMonthlySummary fetches per-month totals for a year.
// GET /summary/monthly?year=&currency= -> MonthlySummary
func (c *FinanceClient) GetMonthlySummary(ctx context.Context, year int, currency string) (models.MonthlySummary, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("currency", currency)

	var summary models.MonthlySummary
	if err := c.t.do(ctx, http.MethodGet, "/summary/monthly", q, nil, &summary); err != nil {
		return models.MonthlySummary{}, err
	}
	if summary.Year == 0 {
		summary.Year = year
	}
	if summary.Currency == "" {
		summary.Currency = currency
	}
	return summary, nil
}

// GetCategorySummary fetches per-category totals for a date range.
// GET /summary/category?start=&end=&currency= -> CategorySummary
func (c *FinanceClient) GetCategorySummary(ctx context.Context, r models.DateRange, currency string) (models.CategorySummary, error) {
	q := url.Values{}
	q.Set("start", r.Start)
	q.Set("end", r.End)
	q.Set("currency", currency)

	var summary models.CategorySummary
	if err := c.t.do(ctx, http.MethodGet, "/summary/category", q, nil, &summary); err != nil {
		return models.CategorySummary{}, err
	}
	if summary.Start == "" {
		summary.Start, summary.End = r.Start, r.End
	}
	if summary.Currency == "" {
		summary.Currency = currency
	}
	return summary, nil
}

// GetSumForPeriod fetches the total of all transactions in a date range,
// converted into currency.
// GET /summary/period?start=&end=&currency= -> {sum, currency}
func (c *FinanceClient) GetSumForPeriod(ctx context.Context, r models.DateRange, currency string) (models.PeriodSum, error) {
	q := url.Values{}
	q.Set("start", r.Start)
	q.Set("end", r.End)
	q.Set("currency", currency)

	var sum models.PeriodSum
	if err := c.t.do(ctx, http.MethodGet, "/summary/period", q, nil, &sum); err != nil {
		return models.PeriodSum{}, err
	}
	sum.Start, sum.End = r.Start, r.End
	if sum.Currency == "" {
		sum.Currency = currency
	}
	return sum, nil
}

// GetExchangeRates fetches rates keyed by currency code.
// GET /exchange-rates -> {CODE: rate}
func (c *FinanceClient) GetExchangeRates(ctx context.Context) (models.ExchangeRates, error) {
	rates := models.ExchangeRates{}
	if err := c.t.do(ctx, http.MethodGet, "/exchange-rates", nil, nil, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

// Convert converts amount between currencies. The backend may reply with a
// bare number or a conversion object.
// GET /convert?amount=&from=&to= -> number | Conversion
func (c *FinanceClient) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (models.Conversion, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == "" || to == "" {
		return models.Conversion{}, apierr.Validation("currency", "from and to are required")
	}

	q := url.Values{}
	q.Set("amount", amount.String())
	q.Set("from", from)
	q.Set("to", to)

	var raw json.RawMessage
	if err := c.t.do(ctx, http.MethodGet, "/convert", q, nil, &raw); err != nil {
		return models.Conversion{}, err
	}

	conv := models.Conversion{Amount: amount, From: from, To: to}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := decode(trimmed, &conv); err != nil {
			return models.Conversion{}, err
		}
	} else if len(trimmed) > 0 {
		if err := decode(trimmed, &conv.Result); err != nil {
			return models.Conversion{}, err
		}
	}
	if conv.Rate.IsZero() && !amount.IsZero() {
		conv.Rate = conv.Result.DivRound(amount, 8)
	}
	return conv, nil
}

// GetExpenses lists legacy ledger expenses.
// GET /expenses -> [LedgerEntry]
func (c *FinanceClient) GetExpenses(ctx context.Context) ([]models.LedgerEntry, error) {
	return c.ledger(ctx, "/expenses")
}

// GetIncomes lists legacy ledger incomes.
// GET /incomes -> [LedgerEntry]
func (c *FinanceClient) GetIncomes(ctx context.Context) ([]models.LedgerEntry, error) {
	return c.ledger(ctx, "/incomes")
}

func (c *FinanceClient) ledger(ctx context.Context, path string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := c.t.do(ctx, http.MethodGet, path, nil, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

// AddExpense posts a legacy ledger expense.
// POST /expenses -> LedgerEntry
func (c *FinanceClient) AddExpense(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error) {
	return c.addLedger(ctx, "/expenses", e)
}

// AddIncome posts a legacy ledger income.
// POST /incomes -> LedgerEntry
func (c *FinanceClient) AddIncome(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error) {
	return c.addLedger(ctx, "/incomes", e)
}

func (c *FinanceClient) addLedger(ctx context.Context, path string, e models.LedgerEntry) (models.LedgerEntry, error) {
	if !e.Amount.IsPositive() {
		return models.LedgerEntry{}, apierr.Validation("amount", "must be positive")
	}
	var saved models.LedgerEntry
	err := c.t.do(ctx, http.MethodPost, path, nil, e, &saved)
	return saved, err
}

// GetBalance fetches the legacy ledger balance (incomes minus expenses).
// GET /balance -> number
func (c *FinanceClient) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := c.t.do(ctx, http.MethodGet, "/balance", nil, nil, &balance)
	return balance, err
}

// GetExpensesByCategory fetches legacy expense totals per category name.
// GET /expenses/by-category -> {category: total}
func (c *FinanceClient) GetExpensesByCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	totals := map[string]decimal.Decimal{}
	if err := c.t.do(ctx, http.MethodGet, "/expenses/by-category", nil, nil, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

// GetExchangeRate fetches a single currency pair.
// GET /exchange-rate?fromCurrency=&toCurrency= -> CurrencyRate
func (c *FinanceClient) GetExchangeRate(ctx context.Context, from, to string) (models.CurrencyRate, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == "" || to == "" {
		return models.CurrencyRate{}, apierr.Validation("currency", "from and to are required")
	}

	q := url.Values{}
	q.Set("fromCurrency", from)
	q.Set("toCurrency", to)

	var rate models.CurrencyRate
	if err := c.t.do(ctx, http.MethodGet, "/exchange-rate", q, nil, &rate); err != nil {
		return models.CurrencyRate{}, err
	}
	if rate.FromCurrency == "" {
		rate.FromCurrency, rate.ToCurrency = from, to
	}
	return rate, nil
}
