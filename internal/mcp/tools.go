package mcp

import (
	"github.com/bobmcallan/finance-portal/internal/store"
	"github.com/bobmcallan/finance-portal/internal/symbols"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools registers every tool on the server and returns their names.
func registerTools(s *server.MCPServer, st *store.Store, resolver *symbols.Resolver) []string {
	tools := []server.ServerTool{
		{Tool: createGetVersionTool(), Handler: handleGetVersion()},
		{Tool: createResolveSymbolTool(), Handler: handleResolveSymbol(resolver)},
		{Tool: createGetPriceTool(), Handler: handleGetPrice(st.Assets)},
		{Tool: createGetPricesTool(), Handler: handleGetPrices(st.Assets)},
		{Tool: createGetHistoryTool(), Handler: handleGetHistory(st.Assets)},
		{Tool: createGetWatchlistTool(), Handler: handleGetWatchlist(st.Assets)},
		{Tool: createAddToWatchlistTool(), Handler: handleAddToWatchlist(st.Assets)},
		{Tool: createRemoveFromWatchlistTool(), Handler: handleRemoveFromWatchlist(st.Assets)},
		{Tool: createGetTransactionsTool(), Handler: handleGetTransactions(st.Finance)},
	}
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		s.AddTool(t.Tool, t.Handler)
		names = append(names, t.Tool.Name)
	}
	return names
}

// --- Tool definitions ---

func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the finance portal version. Use this to verify connectivity."),
	)
}

func createResolveSymbolTool() mcp.Tool {
	return mcp.NewTool("resolve_symbol",
		mcp.WithDescription("Normalise a ticker: trims, uppercases, fixes common typos (APPL -> AAPL) and detects whether it is crypto or a stock. No network call."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Ticker as typed, e.g. ' btc' or 'APPL'")),
		mcp.WithString("type", mcp.Enum("crypto", "stock"), mcp.Description("Expected asset type; a mismatch is reported, not rejected")),
	)
}

func createGetPriceTool() mcp.Tool {
	return mcp.NewTool("get_price",
		mcp.WithDescription("Get the latest price for one symbol. Crypto prices are quoted in the market currency (default USD)."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Ticker, e.g. 'BTC' or 'AAPL'")),
		mcp.WithString("type", mcp.Enum("crypto", "stock"), mcp.Description("Asset type; detected from the symbol when omitted")),
		mcp.WithString("market", mcp.Description("Quote currency for crypto (default: USD)")),
	)
}

func createGetPricesTool() mcp.Tool {
	return mcp.NewTool("get_prices",
		mcp.WithDescription("Get latest prices for several symbols in one request. Symbols that fail are listed separately."),
		mcp.WithArray("symbols", mcp.Required(), mcp.WithStringItems(), mcp.Description("Tickers to price")),
		mcp.WithString("type", mcp.Enum("crypto", "stock"), mcp.Description("Asset type for the whole batch; inferred by majority when omitted")),
		mcp.WithString("market", mcp.Description("Quote currency for crypto (default: USD)")),
	)
}

func createGetHistoryTool() mcp.Tool {
	return mcp.NewTool("get_history",
		mcp.WithDescription("Get a price series for a symbol: daily/weekly/monthly history, intraday bars, or chart data."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Ticker, e.g. 'ETH' or 'MSFT'")),
		mcp.WithString("kind", mcp.Enum("history", "intraday", "chart"), mcp.Description("Series kind (default: history)")),
		mcp.WithString("type", mcp.Enum("crypto", "stock"), mcp.Description("Asset type; detected from the symbol when omitted")),
		mcp.WithString("period", mcp.Description("History period: daily, weekly or monthly (default: daily)")),
		mcp.WithString("interval", mcp.Description("Intraday interval for stocks, e.g. '5min'")),
		mcp.WithString("market", mcp.Description("Quote currency for crypto (default: USD)")),
		mcp.WithNumber("limit", mcp.Description("Show only the most recent N points (default: 20)")),
	)
}

func createGetWatchlistTool() mcp.Tool {
	return mcp.NewTool("get_watchlist",
		mcp.WithDescription("List the watchlist with invested amounts and transaction counts."),
	)
}

func createAddToWatchlistTool() mcp.Tool {
	return mcp.NewTool("add_to_watchlist",
		mcp.WithDescription("Add an asset to the watchlist. The symbol is corrected and its type detected before saving."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Ticker to add")),
		mcp.WithString("name", mcp.Description("Display name")),
		mcp.WithString("type", mcp.Enum("crypto", "stock"), mcp.Description("Asset type; detected from the symbol when omitted")),
		mcp.WithString("notes", mcp.Description("Free-text notes")),
	)
}

func createRemoveFromWatchlistTool() mcp.Tool {
	return mcp.NewTool("remove_from_watchlist",
		mcp.WithDescription("Remove a watchlist entry by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Watchlist entry id")),
	)
}

func createGetTransactionsTool() mcp.Tool {
	return mcp.NewTool("get_transactions",
		mcp.WithDescription("List finance transactions with the running balance. At most one filter applies, in the order category, month, currency."),
		mcp.WithNumber("category", mcp.Description("Category id")),
		mcp.WithNumber("year", mcp.Description("Year for a month filter")),
		mcp.WithNumber("month", mcp.Description("Month 1-12 for a month filter")),
		mcp.WithString("currency", mcp.Description("Currency code, e.g. 'EUR'")),
	)
}
