package store

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the selected currency until the user picks another.
const DefaultCurrency = "EUR"

// UnknownCategory is returned by CategoryName for ids not in the list.
const UnknownCategory = "Unknown"

const dateLayout = "2006-01-02"

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

func validCurrency(c string) bool {
	return currencyCode.MatchString(c)
}

// FinanceAPI is the backend surface the finance module needs.
type FinanceAPI interface {
	GetTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (models.Transaction, error)
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, tx models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetMonthlySummary(ctx context.Context, year int, currency string) (models.MonthlySummary, error)
	GetCategorySummary(ctx context.Context, r models.DateRange, currency string) (models.CategorySummary, error)
	GetSumForPeriod(ctx context.Context, r models.DateRange, currency string) (models.PeriodSum, error)
	GetExchangeRates(ctx context.Context) (models.ExchangeRates, error)
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (models.Conversion, error)
	GetExpenses(ctx context.Context) ([]models.LedgerEntry, error)
	GetIncomes(ctx context.Context) ([]models.LedgerEntry, error)
	AddExpense(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error)
	AddIncome(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error)
	GetBalance(ctx context.Context) (decimal.Decimal, error)
	GetExpensesByCategory(ctx context.Context) (map[string]decimal.Decimal, error)
	GetExchangeRate(ctx context.Context, from, to string) (models.CurrencyRate, error)
}

// Finance is the transactions module: transactions, categories, summaries,
// exchange rates, the selected currency and the reporting date range, plus
// the legacy expense/income ledger.
type Finance struct {
	root *Root
	api  FinanceAPI
	now  func() time.Time

	mu              sync.RWMutex
	transactions    []models.Transaction
	categories      []models.Category
	selected        *models.Transaction
	monthlySummary  *models.MonthlySummary
	categorySummary *models.CategorySummary
	periodSum       *models.PeriodSum
	rates           models.ExchangeRates
	currency        string
	dateRange       models.DateRange

	expenses           []models.LedgerEntry
	incomes            []models.LedgerEntry
	ledgerBalance      decimal.Decimal
	expensesByCategory map[string]decimal.Decimal
}

// NewFinance creates the finance module. The date range starts on the first
// of the current month and ends today.
func NewFinance(root *Root, api FinanceAPI, now func() time.Time) *Finance {
	if now == nil {
		now = time.Now
	}
	return &Finance{
		root:               root,
		api:                api,
		now:                now,
		transactions:       []models.Transaction{},
		categories:         []models.Category{},
		rates:              models.ExchangeRates{},
		currency:           DefaultCurrency,
		dateRange:          DefaultDateRange(now()),
		expenses:           []models.LedgerEntry{},
		incomes:            []models.LedgerEntry{},
		expensesByCategory: map[string]decimal.Decimal{},
	}
}

// DefaultDateRange spans the first of now's month through now.
func DefaultDateRange(now time.Time) models.DateRange {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return models.DateRange{Start: first.Format(dateLayout), End: now.Format(dateLayout)}
}

// --- actions ---

// FetchTransactions replaces the transaction list, optionally filtered.
func (f *Finance) FetchTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	act := f.root.Begin("finance.fetchTransactions")
	defer act.End()

	txs, err := f.api.GetTransactions(ctx, filter)
	if err != nil {
		return nil, act.Fail(err)
	}
	f.setTransactions(txs)
	return txs, nil
}

// FetchTransactionByID loads one transaction and selects it.
func (f *Finance) FetchTransactionByID(ctx context.Context, id int64) (models.Transaction, error) {
	act := f.root.Begin("finance.fetchTransactionById")
	defer act.End()

	tx, err := f.api.GetTransaction(ctx, id)
	if err != nil {
		return models.Transaction{}, act.Fail(err)
	}
	f.setSelected(tx)
	return tx, nil
}

// CreateTransaction stores a transaction and appends it.
func (f *Finance) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	act := f.root.Begin("finance.createTransaction")
	defer act.End()

	created, err := f.api.CreateTransaction(ctx, tx)
	if err != nil {
		return models.Transaction{}, act.Fail(err)
	}
	f.addTransaction(created)
	return created, nil
}

// UpdateTransaction replaces a transaction in place.
func (f *Finance) UpdateTransaction(ctx context.Context, id int64, tx models.Transaction) (models.Transaction, error) {
	act := f.root.Begin("finance.updateTransaction")
	defer act.End()

	updated, err := f.api.UpdateTransaction(ctx, id, tx)
	if err != nil {
		return models.Transaction{}, act.Fail(err)
	}
	f.updateTransaction(updated)
	return updated, nil
}

// DeleteTransaction removes a transaction.
func (f *Finance) DeleteTransaction(ctx context.Context, id int64) error {
	act := f.root.Begin("finance.deleteTransaction")
	defer act.End()

	if err := f.api.DeleteTransaction(ctx, id); err != nil {
		return act.Fail(err)
	}
	f.removeTransaction(id)
	return nil
}

// FetchCategories replaces the category list.
func (f *Finance) FetchCategories(ctx context.Context) ([]models.Category, error) {
	act := f.root.Begin("finance.fetchCategories")
	defer act.End()

	cats, err := f.api.GetCategories(ctx)
	if err != nil {
		return nil, act.Fail(err)
	}
	f.setCategories(cats)
	return cats, nil
}

// FetchMonthlySummary loads per-month totals. A zero year means the current
// year; an empty currency means the selected currency.
func (f *Finance) FetchMonthlySummary(ctx context.Context, year int, currency string) (models.MonthlySummary, error) {
	act := f.root.Begin("finance.fetchMonthlySummary")
	defer act.End()

	if year == 0 {
		year = f.now().Year()
	}
	if currency == "" {
		currency = f.SelectedCurrency()
	}

	summary, err := f.api.GetMonthlySummary(ctx, year, strings.ToUpper(currency))
	if err != nil {
		return models.MonthlySummary{}, act.Fail(err)
	}
	f.setMonthlySummary(summary)
	return summary, nil
}

// FetchCategorySummary loads per-category totals for the current date range
// in the selected currency.
func (f *Finance) FetchCategorySummary(ctx context.Context) (models.CategorySummary, error) {
	act := f.root.Begin("finance.fetchCategorySummary")
	defer act.End()

	summary, err := f.api.GetCategorySummary(ctx, f.DateRange(), f.SelectedCurrency())
	if err != nil {
		return models.CategorySummary{}, act.Fail(err)
	}
	f.setCategorySummary(summary)
	return summary, nil
}

// FetchPeriodSum loads the total of all transactions in the current date
// range, converted into the selected currency.
func (f *Finance) FetchPeriodSum(ctx context.Context) (models.PeriodSum, error) {
	act := f.root.Begin("finance.fetchPeriodSum")
	defer act.End()

	sum, err := f.api.GetSumForPeriod(ctx, f.DateRange(), f.SelectedCurrency())
	if err != nil {
		return models.PeriodSum{}, act.Fail(err)
	}
	f.mu.Lock()
	f.periodSum = &sum
	f.mu.Unlock()
	return sum, nil
}

// FetchExchangeRates replaces the exchange rates.
func (f *Finance) FetchExchangeRates(ctx context.Context) (models.ExchangeRates, error) {
	act := f.root.Begin("finance.fetchExchangeRates")
	defer act.End()

	rates, err := f.api.GetExchangeRates(ctx)
	if err != nil {
		return nil, act.Fail(err)
	}
	f.setRates(rates)
	return rates, nil
}

// ConvertCurrency converts an amount; the result is not stored.
func (f *Finance) ConvertCurrency(ctx context.Context, amount decimal.Decimal, from, to string) (models.Conversion, error) {
	act := f.root.Begin("finance.convertCurrency")
	defer act.End()

	conv, err := f.api.Convert(ctx, amount, from, to)
	if err != nil {
		return models.Conversion{}, act.Fail(err)
	}
	return conv, nil
}

// SetSelectedCurrency changes and persists the selected currency.
func (f *Finance) SetSelectedCurrency(ctx context.Context, currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !validCurrency(currency) {
		return apierr.Validation("currency", "must be a three-letter code, got %q", currency)
	}

	f.mu.Lock()
	f.currency = currency
	f.mu.Unlock()

	return f.root.savePreference(ctx, models.PrefSelectedCurrency, currency)
}

// SetDateRange changes the reporting range used by FetchCategorySummary and
// FetchPeriodSum.
func (f *Finance) SetDateRange(r models.DateRange) error {
	if err := models.Validate(r); err != nil {
		return apierr.Validation("dateRange", "%v", err)
	}
	if r.Start > r.End {
		return apierr.Validation("dateRange", "start %s is after end %s", r.Start, r.End)
	}

	f.mu.Lock()
	f.dateRange = r
	f.mu.Unlock()
	return nil
}

// FetchExpenses loads the legacy ledger expenses.
func (f *Finance) FetchExpenses(ctx context.Context) ([]models.LedgerEntry, error) {
	act := f.root.Begin("finance.fetchExpenses")
	defer act.End()

	entries, err := f.api.GetExpenses(ctx)
	if err != nil {
		return nil, act.Fail(err)
	}
	f.mu.Lock()
	f.expenses = append([]models.LedgerEntry{}, entries...)
	f.mu.Unlock()
	return entries, nil
}

// FetchIncomes loads the legacy ledger incomes.
func (f *Finance) FetchIncomes(ctx context.Context) ([]models.LedgerEntry, error) {
	act := f.root.Begin("finance.fetchIncomes")
	defer act.End()

	entries, err := f.api.GetIncomes(ctx)
	if err != nil {
		return nil, act.Fail(err)
	}
	f.mu.Lock()
	f.incomes = append([]models.LedgerEntry{}, entries...)
	f.mu.Unlock()
	return entries, nil
}

// AddExpense posts a legacy ledger expense and appends it.
func (f *Finance) AddExpense(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error) {
	act := f.root.Begin("finance.addExpense")
	defer act.End()

	saved, err := f.api.AddExpense(ctx, e)
	if err != nil {
		return models.LedgerEntry{}, act.Fail(err)
	}
	f.mu.Lock()
	f.expenses = append(f.expenses, saved)
	f.mu.Unlock()
	return saved, nil
}

// AddIncome posts a legacy ledger income and appends it.
func (f *Finance) AddIncome(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error) {
	act := f.root.Begin("finance.addIncome")
	defer act.End()

	saved, err := f.api.AddIncome(ctx, e)
	if err != nil {
		return models.LedgerEntry{}, act.Fail(err)
	}
	f.mu.Lock()
	f.incomes = append(f.incomes, saved)
	f.mu.Unlock()
	return saved, nil
}

// FetchBalance loads the legacy ledger balance.
func (f *Finance) FetchBalance(ctx context.Context) (decimal.Decimal, error) {
	act := f.root.Begin("finance.fetchBalance")
	defer act.End()

	b, err := f.api.GetBalance(ctx)
	if err != nil {
		return decimal.Zero, act.Fail(err)
	}
	f.mu.Lock()
	f.ledgerBalance = b
	f.mu.Unlock()
	return b, nil
}

// FetchExpensesByCategory loads legacy expense totals per category name.
func (f *Finance) FetchExpensesByCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	act := f.root.Begin("finance.fetchExpensesByCategory")
	defer act.End()

	totals, err := f.api.GetExpensesByCategory(ctx)
	if err != nil {
		return nil, act.Fail(err)
	}
	f.mu.Lock()
	f.expensesByCategory = totals
	f.mu.Unlock()
	return totals, nil
}

// FetchExchangeRate loads one currency pair and merges it into the rates
// when the pair starts from the default currency.
func (f *Finance) FetchExchangeRate(ctx context.Context, from, to string) (models.CurrencyRate, error) {
	act := f.root.Begin("finance.fetchExchangeRate")
	defer act.End()

	rate, err := f.api.GetExchangeRate(ctx, from, to)
	if err != nil {
		return models.CurrencyRate{}, act.Fail(err)
	}
	if rate.FromCurrency == DefaultCurrency && rate.ToCurrency != "" {
		f.mu.Lock()
		f.rates[rate.ToCurrency] = rate.Rate
		f.mu.Unlock()
	}
	return rate, nil
}

// --- mutations (no I/O) ---

func (f *Finance) setTransactions(txs []models.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append([]models.Transaction{}, txs...)
}

func (f *Finance) setSelected(tx models.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = &tx
}

func (f *Finance) addTransaction(tx models.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append(f.transactions, tx)
}

func (f *Finance) updateTransaction(tx models.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.transactions {
		if f.transactions[i].ID == tx.ID {
			f.transactions[i] = tx
			break
		}
	}
	if f.selected != nil && f.selected.ID == tx.ID {
		f.selected = &tx
	}
}

func (f *Finance) removeTransaction(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := make([]models.Transaction, 0, len(f.transactions))
	for _, t := range f.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.transactions = kept
	if f.selected != nil && f.selected.ID == id {
		f.selected = nil
	}
}

func (f *Finance) setCategories(cats []models.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append([]models.Category{}, cats...)
}

func (f *Finance) setMonthlySummary(s models.MonthlySummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.monthlySummary = &s
}

func (f *Finance) setCategorySummary(s models.CategorySummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categorySummary = &s
}

func (f *Finance) setRates(rates models.ExchangeRates) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates = make(models.ExchangeRates, len(rates))
	for k, v := range rates {
		f.rates[k] = v
	}
}

// restoreCurrency applies a persisted currency without writing it back.
func (f *Finance) restoreCurrency(currency string) {
	if !validCurrency(currency) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currency = currency
}

// --- getters ---

// Transactions returns a copy of the transaction list.
func (f *Finance) Transactions() []models.Transaction {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Transaction{}, f.transactions...)
}

// TransactionByID finds a transaction by id.
func (f *Finance) TransactionByID(id int64) (models.Transaction, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.transactions {
		if t.ID == id {
			return t, true
		}
	}
	return models.Transaction{}, false
}

// SelectedTransaction returns the transaction loaded by FetchTransactionByID.
func (f *Finance) SelectedTransaction() (models.Transaction, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.selected == nil {
		return models.Transaction{}, false
	}
	return *f.selected, true
}

// Categories returns a copy of the category list.
func (f *Finance) Categories() []models.Category {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Category{}, f.categories...)
}

// CategoryByID finds a category by id.
func (f *Finance) CategoryByID(id int64) (models.Category, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// CategoryName returns the category's name, or UnknownCategory.
func (f *Finance) CategoryName(id int64) string {
	if c, ok := f.CategoryByID(id); ok {
		return c.Name
	}
	return UnknownCategory
}

// MonthlySummary returns the last loaded monthly summary.
func (f *Finance) MonthlySummary() (models.MonthlySummary, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.monthlySummary == nil {
		return models.MonthlySummary{}, false
	}
	return *f.monthlySummary, true
}

// CategorySummary returns the last loaded category summary.
func (f *Finance) CategorySummary() (models.CategorySummary, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.categorySummary == nil {
		return models.CategorySummary{}, false
	}
	return *f.categorySummary, true
}

// PeriodSum returns the last loaded period total.
func (f *Finance) PeriodSum() (models.PeriodSum, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.periodSum == nil {
		return models.PeriodSum{}, false
	}
	return *f.periodSum, true
}

// ExchangeRates returns a copy of the rates.
func (f *Finance) ExchangeRates() models.ExchangeRates {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(models.ExchangeRates, len(f.rates))
	for k, v := range f.rates {
		out[k] = v
	}
	return out
}

// AvailableCurrencies lists the rate currencies, sorted, followed by EUR
// unless the rates already contain it.
func (f *Finance) AvailableCurrencies() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.rates)+1)
	for k := range f.rates {
		out = append(out, k)
	}
	sort.Strings(out)
	if _, ok := f.rates[DefaultCurrency]; !ok {
		out = append(out, DefaultCurrency)
	}
	return out
}

// SelectedCurrency returns the selected currency.
func (f *Finance) SelectedCurrency() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.currency
}

// DateRange returns the reporting date range.
func (f *Finance) DateRange() models.DateRange {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dateRange
}

// TotalBalance sums every transaction amount.
func (f *Finance) TotalBalance() decimal.Decimal {
	f.mu.RLock()
	defer f.mu.RUnlock()
	total := decimal.Zero
	for _, t := range f.transactions {
		total = total.Add(t.Amount)
	}
	return total
}

// IncomeTransactions returns transactions with a positive amount.
func (f *Finance) IncomeTransactions() []models.Transaction {
	return f.filter(models.Transaction.IsIncome)
}

// ExpenseTransactions returns transactions with a negative amount.
func (f *Finance) ExpenseTransactions() []models.Transaction {
	return f.filter(models.Transaction.IsExpense)
}

func (f *Finance) filter(keep func(models.Transaction) bool) []models.Transaction {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []models.Transaction{}
	for _, t := range f.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Ledger is the legacy expense/income ledger state.
type Ledger struct {
	Expenses           []models.LedgerEntry       `json:"expenses"`
	Incomes            []models.LedgerEntry       `json:"incomes"`
	Balance            decimal.Decimal            `json:"balance"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expensesByCategory"`
}

// Ledger returns a copy of the legacy ledger state.
func (f *Finance) Ledger() Ledger {
	f.mu.RLock()
	defer f.mu.RUnlock()
	byCategory := make(map[string]decimal.Decimal, len(f.expensesByCategory))
	for k, v := range f.expensesByCategory {
		byCategory[k] = v
	}
	return Ledger{
		Expenses:           append([]models.LedgerEntry{}, f.expenses...),
		Incomes:            append([]models.LedgerEntry{}, f.incomes...),
		Balance:            f.ledgerBalance,
		ExpensesByCategory: byCategory,
	}
}
