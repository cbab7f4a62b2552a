package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/store"
	"github.com/bobmcallan/finance-portal/internal/symbols"
	"github.com/shopspring/decimal"
)

// priceCurrency is the currency a quote is denominated in. Stocks are
// quoted in USD by the backend.
func priceCurrency(q models.PriceQuote) string {
	if q.Market != "" {
		return q.Market
	}
	return "USD"
}

func formatResolution(res symbols.Resolution) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Symbol:** %s\n", res.Corrected))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", res.DetectedType))
	if res.WasCorrected {
		sb.WriteString(fmt.Sprintf("**Corrected from:** %q\n", res.Original))
	}
	if res.Warning != "" {
		sb.WriteString(fmt.Sprintf("**Warning:** %s\n", res.Warning))
	}
	return sb.String()
}

func formatQuote(q models.PriceQuote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s (%s)\n\n", q.Symbol, q.Type))
	sb.WriteString(fmt.Sprintf("**Price:** %s\n", models.FormatMoney(q.Price, priceCurrency(q))))
	if !q.AsOf.IsZero() {
		sb.WriteString(fmt.Sprintf("**As of:** %s\n", q.AsOf.Format("2006-01-02 15:04")))
	}
	if q.Corrected {
		sb.WriteString(fmt.Sprintf("**Note:** %q was corrected to %s\n", q.OriginalSymbol, q.Symbol))
	}
	return sb.String()
}

func formatBatch(b models.BatchQuotes) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Prices (%s)\n\n", b.Type))
	sb.WriteString(fmt.Sprintf("%d of %d succeeded\n\n", b.SuccessCount, b.TotalCount))

	if len(b.Quotes) > 0 {
		syms := make([]string, 0, len(b.Quotes))
		for s := range b.Quotes {
			syms = append(syms, s)
		}
		sort.Strings(syms)

		sb.WriteString("| Symbol | Price |\n")
		sb.WriteString("|--------|-------|\n")
		for _, s := range syms {
			q := b.Quotes[s]
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", s, models.FormatMoney(q.Price, priceCurrency(q))))
		}
	}

	if len(b.Failed) > 0 {
		failed := make([]string, 0, len(b.Failed))
		for s := range b.Failed {
			failed = append(failed, s)
		}
		sort.Strings(failed)

		sb.WriteString("\n## Failed\n\n")
		for _, s := range failed {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", s, b.Failed[s]))
		}
	}
	return sb.String()
}

// formatSeries renders the last limit points, newest last.
func formatSeries(s models.Series, limit int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s %s\n\n", s.Symbol, s.Kind))
	if len(s.Points) == 0 {
		sb.WriteString("No data points.\n")
		return sb.String()
	}

	points := s.Points
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	sb.WriteString(fmt.Sprintf("Showing %d of %d points\n\n", len(points), len(s.Points)))
	sb.WriteString("| Time | Value |\n")
	sb.WriteString("|------|-------|\n")
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", p.Time.Format("2006-01-02 15:04"), p.Value.String()))
	}
	return sb.String()
}

func formatWatchlist(entries []models.WatchlistEntry) string {
	if len(entries) == 0 {
		return "The watchlist is empty."
	}

	var sb strings.Builder
	sb.WriteString("# Watchlist\n\n")
	sb.WriteString("| ID | Symbol | Name | Type | Invested | Amount | Txns |\n")
	sb.WriteString("|----|--------|------|------|----------|--------|------|\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %d |\n",
			e.ID, e.Symbol, e.Name, e.Type,
			models.FormatMoney(e.InvestedAmount, "USD"),
			e.TotalAmount.String(),
			e.TransactionCount,
		))
	}
	return sb.String()
}

func formatTransactions(txs []models.Transaction, finance *store.Finance) string {
	if len(txs) == 0 {
		return "No transactions."
	}

	var sb strings.Builder
	sb.WriteString("# Transactions\n\n")
	sb.WriteString("| ID | Date | Category | Description | Amount |\n")
	sb.WriteString("|----|------|----------|-------------|--------|\n")

	currencies := map[string]struct{}{}
	total := decimal.Zero
	for _, t := range txs {
		currencies[t.Currency] = struct{}{}
		total = total.Add(t.Amount)
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			t.ID, t.Date, finance.CategoryName(t.CategoryID), t.Description,
			models.FormatMoney(t.Amount, t.Currency),
		))
	}

	if len(currencies) == 1 {
		sb.WriteString(fmt.Sprintf("\n**Balance:** %s\n", models.FormatMoney(total, txs[0].Currency)))
	} else {
		sb.WriteString(fmt.Sprintf("\n**Balance:** %s (mixed currencies)\n", total.String()))
	}
	return sb.String()
}
