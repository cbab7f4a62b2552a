package models

import "github.com/shopspring/decimal"

// Transaction is a booking on the finance side. Positive amounts are
// income, negative amounts are expenses.
type Transaction struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  int64           `json:"categoryId,omitempty"`
	Currency    string          `json:"currency" validate:"required,len=3,uppercase"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Description string          `json:"description,omitempty" validate:"max=500"`
}

// IsIncome reports whether the transaction adds money.
func (t Transaction) IsIncome() bool { return t.Amount.IsPositive() }

// IsExpense reports whether the transaction removes money.
func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

// Category groups transactions for display.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// MonthTotals is one month in a MonthlySummary.
type MonthTotals struct {
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// MonthlySummary is precomputed by the backend for one year and currency.
type MonthlySummary struct {
	Year     int           `json:"year"`
	Currency string        `json:"currency"`
	Months   []MonthTotals `json:"months"`
}

// CategoryTotal is one category in a CategorySummary.
type CategoryTotal struct {
	CategoryID int64           `json:"categoryId"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// CategorySummary is precomputed by the backend for a date range.
type CategorySummary struct {
	Start      string          `json:"start"`
	End        string          `json:"end"`
	Currency   string          `json:"currency"`
	Categories []CategoryTotal `json:"categories"`
}

// PeriodSum is the converted total of all transactions in a date range.
type PeriodSum struct {
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Sum      decimal.Decimal `json:"sum"`
	Currency string          `json:"currency"`
}

// ExchangeRates maps currency code to its rate against the base currency.
type ExchangeRates map[string]decimal.Decimal

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Rate   decimal.Decimal `json:"rate"`
	Result decimal.Decimal `json:"result"`
}

// LedgerEntry is an expense or income row from the simple ledger endpoints.
type LedgerEntry struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date,omitempty"`
}

// CurrencyRate is the single-pair quote from the legacy exchange-rate endpoint.
type CurrencyRate struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"`
	Timestamp    string          `json:"timestamp,omitempty"`
}

// DateRange bounds the category summary, as YYYY-MM-DD strings.
type DateRange struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

// TransactionFilter narrows a transaction listing. At most one filter is
// applied, in the order category, month, currency.
type TransactionFilter struct {
	CategoryID int64  `json:"categoryId,omitempty"`
	Year       int    `json:"year,omitempty"`
	Month      int    `json:"month,omitempty"`
	Currency   string `json:"currency,omitempty"`
}
