package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/request"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// fail prints err to stderr and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func parseType(raw string) (models.AssetType, error) {
	typ, ok := models.ParseAssetType(raw)
	if !ok {
		return "", fmt.Errorf("invalid -type %q: want crypto or stock", raw)
	}
	return typ, nil
}

func priceCurrency(q models.PriceQuote) string {
	if q.Market != "" {
		return q.Market
	}
	return "USD"
}

type resolveCmd struct {
	open opener
	typ  string
}

func (*resolveCmd) Name() string     { return "resolve" }
func (*resolveCmd) Synopsis() string { return "correct a ticker and detect whether it is crypto or stock" }
func (*resolveCmd) Usage() string {
	return `financectl resolve [-type crypto|stock] <symbol>...

  Applies the correction table (APPL -> AAPL, GOOG -> GOOGL) and the crypto
  set to each symbol. No request is sent.
`
}

func (c *resolveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "Expected asset type; a mismatch is reported, not rejected.")
}

func (c *resolveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	typ, err := parseType(c.typ)
	if err != nil {
		return fail(err)
	}
	e, err := c.open()
	if err != nil {
		return fail(err)
	}

	for _, raw := range f.Args() {
		res, err := e.resolver.Resolve(raw, typ)
		if err != nil {
			return fail(err)
		}
		line := fmt.Sprintf("%s\t%s", res.Corrected, res.DetectedType)
		if res.WasCorrected {
			line += fmt.Sprintf("\t(corrected from %q)", res.Original)
		}
		if res.Warning != "" {
			line += "\twarning: " + res.Warning
		}
		e.printf("%s\n", line)
	}
	return subcommands.ExitSuccess
}

type priceCmd struct {
	open   opener
	typ    string
	market string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "fetch the current price of one symbol" }
func (*priceCmd) Usage() string {
	return `financectl price [-type crypto|stock] [-market USD] <symbol>
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "Asset type; detected from the symbol when empty.")
	f.StringVar(&c.market, "market", "", "Quote currency for crypto (defaults to the configured market).")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	typ, err := parseType(c.typ)
	if err != nil {
		return fail(err)
	}
	e, err := c.open()
	if err != nil {
		return fail(err)
	}

	q, err := e.assets.GetPrice(ctx, f.Arg(0), typ, c.market)
	if err != nil {
		return fail(err)
	}
	line := fmt.Sprintf("%s\t%s", q.Symbol, models.FormatMoney(q.Price, priceCurrency(q)))
	if q.Corrected {
		line += fmt.Sprintf("\t(corrected from %q)", q.OriginalSymbol)
	}
	e.printf("%s\n", line)
	return subcommands.ExitSuccess
}

type pricesCmd struct {
	open   opener
	typ    string
	market string
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "fetch prices for several symbols in one request" }
func (*pricesCmd) Usage() string {
	return `financectl prices [-type crypto|stock] [-market USD] <symbol>...

  Without -type the batch is treated as crypto when most symbols are crypto.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "Asset type for the whole batch.")
	f.StringVar(&c.market, "market", "", "Quote currency for crypto.")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := parseType(c.typ)
	if err != nil {
		return fail(err)
	}
	e, err := c.open()
	if err != nil {
		return fail(err)
	}

	batch, err := e.assets.GetPrices(ctx, f.Args(), typ, c.market)
	if err != nil {
		return fail(err)
	}

	syms := make([]string, 0, len(batch.Quotes))
	for sym := range batch.Quotes {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	for _, sym := range syms {
		q := batch.Quotes[sym]
		e.printf("%s\t%s\n", sym, models.FormatMoney(q.Price, priceCurrency(q)))
	}

	failed := make([]string, 0, len(batch.Failed))
	for sym := range batch.Failed {
		failed = append(failed, sym)
	}
	sort.Strings(failed)
	for _, sym := range failed {
		e.printf("%s\tfailed: %s\n", sym, batch.Failed[sym])
	}
	e.printf("%d of %d succeeded\n", batch.SuccessCount, batch.TotalCount)
	return subcommands.ExitSuccess
}

type historyCmd struct {
	open     opener
	kind     string
	typ      string
	market   string
	period   string
	interval string
	limit    int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print the latest points of a price series" }
func (*historyCmd) Usage() string {
	return `financectl history [-kind history|intraday|chart] [-period daily] [-interval 5min] [-n 10] <symbol>
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", string(models.SeriesHistory), "Series kind: history, intraday or chart.")
	f.StringVar(&c.typ, "type", "", "Asset type; detected from the symbol when empty.")
	f.StringVar(&c.market, "market", "", "Quote currency for crypto.")
	f.StringVar(&c.period, "period", "", "Period for history and chart (history defaults to daily).")
	f.StringVar(&c.interval, "interval", "", "Interval for stock intraday and chart.")
	f.IntVar(&c.limit, "n", 10, "Number of most recent points to print (0 for all).")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	typ, err := parseType(c.typ)
	if err != nil {
		return fail(err)
	}
	e, err := c.open()
	if err != nil {
		return fail(err)
	}

	opts := request.Options{Market: c.market, Period: c.period, Interval: c.interval}
	var series models.Series
	switch models.SeriesKind(c.kind) {
	case models.SeriesHistory:
		series, err = e.assets.GetHistory(ctx, f.Arg(0), typ, opts)
	case models.SeriesIntraday:
		series, err = e.assets.GetIntraday(ctx, f.Arg(0), typ, opts)
	case models.SeriesChart:
		series, err = e.assets.GetChart(ctx, f.Arg(0), typ, opts)
	default:
		return fail(fmt.Errorf("invalid -kind %q", c.kind))
	}
	if err != nil {
		return fail(err)
	}

	points := series.Points
	if c.limit > 0 && len(points) > c.limit {
		points = points[len(points)-c.limit:]
	}
	for _, p := range points {
		e.printf("%s\t%s\n", p.Time.Format("2006-01-02 15:04"), p.Value.String())
	}
	e.printf("%s %s: %d of %d points\n", series.Symbol, series.Kind, len(points), len(series.Points))
	return subcommands.ExitSuccess
}

type watchlistCmd struct {
	open opener
}

func (*watchlistCmd) Name() string     { return "watchlist" }
func (*watchlistCmd) Synopsis() string { return "list, add or remove watchlist entries" }
func (*watchlistCmd) Usage() string {
	return `financectl watchlist
financectl watchlist add <symbol> [name]
financectl watchlist remove <id>
`
}

func (*watchlistCmd) SetFlags(*flag.FlagSet) {}

func (c *watchlistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := c.open()
	if err != nil {
		return fail(err)
	}

	switch f.Arg(0) {
	case "":
		entries, err := e.assets.GetWatchlist(ctx)
		if err != nil {
			return fail(err)
		}
		for _, entry := range entries {
			e.printf("%d\t%s\t%s\t%s\tinvested %s\n", entry.ID, entry.Symbol, entry.Type, entry.Name, entry.InvestedAmount.StringFixed(2))
		}
		e.printf("%d entries\n", len(entries))
	case "add":
		if f.NArg() < 2 {
			f.Usage()
			return subcommands.ExitUsageError
		}
		in := models.NewWatchlistEntry{Symbol: f.Arg(1), Name: strings.Join(f.Args()[2:], " ")}
		entry, err := e.assets.AddToWatchlist(ctx, in)
		if err != nil {
			return fail(err)
		}
		e.printf("added %s (%s) as #%d\n", entry.Symbol, entry.Type, entry.ID)
	case "remove":
		id, err := strconv.ParseInt(f.Arg(1), 10, 64)
		if err != nil || id <= 0 {
			return fail(fmt.Errorf("invalid id %q", f.Arg(1)))
		}
		if err := e.assets.RemoveFromWatchlist(ctx, id); err != nil {
			return fail(err)
		}
		e.printf("removed #%d\n", id)
	default:
		f.Usage()
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

type rateCmd struct {
	open   opener
	from   string
	to     string
	amount string
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "show an exchange rate or convert an amount" }
func (*rateCmd) Usage() string {
	return `financectl rate -from EUR -to USD [-amount 100]

  Without -amount prints the single-pair rate; with it converts the amount.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "EUR", "Source currency.")
	f.StringVar(&c.to, "to", "USD", "Target currency.")
	f.StringVar(&c.amount, "amount", "", "Amount to convert.")
}

func (c *rateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, to := strings.ToUpper(c.from), strings.ToUpper(c.to)
	e, err := c.open()
	if err != nil {
		return fail(err)
	}

	if c.amount == "" {
		rate, err := e.finance.GetExchangeRate(ctx, from, to)
		if err != nil {
			return fail(err)
		}
		e.printf("1 %s = %s %s\n", from, rate.Rate.String(), to)
		return subcommands.ExitSuccess
	}

	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		return fail(fmt.Errorf("invalid -amount %q", c.amount))
	}
	conv, err := e.finance.Convert(ctx, amount, from, to)
	if err != nil {
		return fail(err)
	}
	e.printf("%s = %s\n", models.FormatMoney(conv.Amount, conv.From), models.FormatMoney(conv.Result, conv.To))
	return subcommands.ExitSuccess
}
