package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bobmcallan/finance-portal/internal/config"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/request"
	"github.com/bobmcallan/finance-portal/internal/store"
	"github.com/bobmcallan/finance-portal/internal/symbols"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultHistoryLimit = 20

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// assetTypeArg reads the optional "type" argument.
func assetTypeArg(r mcp.CallToolRequest) (models.AssetType, error) {
	raw := r.GetString("type", "")
	typ, ok := models.ParseAssetType(raw)
	if !ok {
		return "", fmt.Errorf("type must be crypto or stock, got %q", raw)
	}
	return typ, nil
}

// --- Handlers ---

func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := json.Marshal(config.GetVersionInfo())
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return textResult(string(out)), nil
	}
}

func handleResolveSymbol(resolver *symbols.Resolver) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := r.RequireString("symbol")
		if err != nil {
			return errorResult("Error: symbol parameter is required"), nil
		}
		typ, err := assetTypeArg(r)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		res, err := resolver.Resolve(raw, typ)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return textResult(formatResolution(res)), nil
	}
}

func handleGetPrice(assets *store.Assets) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := r.RequireString("symbol")
		if err != nil {
			return errorResult("Error: symbol parameter is required"), nil
		}
		typ, err := assetTypeArg(r)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		q, err := assets.FetchPrice(ctx, symbol, typ, r.GetString("market", ""))
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return textResult(formatQuote(q)), nil
	}
}

func handleGetPrices(assets *store.Assets) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		syms := r.GetStringSlice("symbols", nil)
		if len(syms) == 0 {
			return errorResult("Error: symbols parameter is required"), nil
		}
		typ, err := assetTypeArg(r)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		res, err := assets.FetchPrices(ctx, syms, typ, r.GetString("market", ""))
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return textResult(formatBatch(res)), nil
	}
}

func handleGetHistory(assets *store.Assets) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := r.RequireString("symbol")
		if err != nil {
			return errorResult("Error: symbol parameter is required"), nil
		}
		typ, err := assetTypeArg(r)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		opts := request.Options{
			Market:   r.GetString("market", ""),
			Period:   r.GetString("period", ""),
			Interval: r.GetString("interval", ""),
		}

		var series models.Series
		switch kind := models.SeriesKind(r.GetString("kind", string(models.SeriesHistory))); kind {
		case models.SeriesHistory:
			series, err = assets.FetchHistory(ctx, symbol, typ, opts)
		case models.SeriesIntraday:
			series, err = assets.FetchIntraday(ctx, symbol, typ, opts)
		case models.SeriesChart:
			series, err = assets.FetchChart(ctx, symbol, typ, opts)
		default:
			return errorResult(fmt.Sprintf("Error: unknown kind %q", kind)), nil
		}
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return textResult(formatSeries(series, r.GetInt("limit", defaultHistoryLimit))), nil
	}
}

func handleGetWatchlist(assets *store.Assets) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := assets.FetchWatchlist(ctx)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return textResult(formatWatchlist(entries)), nil
	}
}

func handleAddToWatchlist(assets *store.Assets) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := r.RequireString("symbol")
		if err != nil {
			return errorResult("Error: symbol parameter is required"), nil
		}
		typ, err := assetTypeArg(r)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		entry, err := assets.AddToWatchlist(ctx, models.NewWatchlistEntry{
			Symbol: symbol,
			Name:   r.GetString("name", ""),
			Type:   typ,
			Notes:  r.GetString("notes", ""),
		})
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return textResult(fmt.Sprintf("Added %s (%s) to the watchlist as entry %d.", entry.Symbol, entry.Type, entry.ID)), nil
	}
}

func handleRemoveFromWatchlist(assets *store.Assets) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(r.GetInt("id", 0))
		if id <= 0 {
			return errorResult("Error: id parameter is required"), nil
		}
		if err := assets.RemoveFromWatchlist(ctx, id); err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return textResult(fmt.Sprintf("Removed watchlist entry %d.", id)), nil
	}
}

func handleGetTransactions(finance *store.Finance) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := models.TransactionFilter{
			CategoryID: int64(r.GetInt("category", 0)),
			Year:       r.GetInt("year", 0),
			Month:      r.GetInt("month", 0),
			Currency:   r.GetString("currency", ""),
		}
		if filter.Month < 0 || filter.Month > 12 {
			return errorResult(fmt.Sprintf("Error: month must be 1-12, got %d", filter.Month)), nil
		}
		txs, err := finance.FetchTransactions(ctx, filter)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return textResult(formatTransactions(txs, finance)), nil
	}
}
