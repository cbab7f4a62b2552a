package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/request"
	"github.com/bobmcallan/finance-portal/internal/symbols"
)

// AssetClient communicates with the backend asset API (/api/assets).
type AssetClient struct {
	t       *transport
	builder *request.Builder
}

// NewAssetClient creates a client targeting the given assets base URL.
func NewAssetClient(baseURL string, builder *request.Builder, opts ...Option) *AssetClient {
	return &AssetClient{
		t:       newTransport(baseURL, opts),
		builder: builder,
	}
}

// Builder returns the request builder the client shapes reads with.
func (c *AssetClient) Builder() *request.Builder {
	return c.builder
}

// Send executes a shaped request and decodes the reply into out.
func (c *AssetClient) Send(ctx context.Context, req request.Request, out any) error {
	return c.t.do(ctx, req.Method, req.Path, req.Query, req.Body, out)
}

// priceResult is one asset's reply from /price or one member of /prices.
type priceResult struct {
	Success   bool           `json:"success"`
	PriceData map[string]any `json:"priceData"`
	Error     string         `json:"error"`
}

// GetPrice fetches the current quote.
// GET /price/{symbol}?type=&market= -> { success, priceData: {...} }
func (c *AssetClient) GetPrice(ctx context.Context, symbol string, typ models.AssetType, market string) (models.PriceQuote, error) {
	req, err := c.builder.Build(request.OpPrice, symbol, typ, request.Options{Market: market})
	if err != nil {
		return models.PriceQuote{}, err
	}

	var result priceResult
	if err := c.Send(ctx, req, &result); err != nil {
		return models.PriceQuote{}, err
	}

	return quoteFrom(req.Resolution, req.Type, req.Query.Get("market"), result)
}

// GetPrices fetches quotes for several symbols in one call. Per-symbol
// failures are reported in BatchQuotes.Failed, not as an error.
// POST /prices {symbols, type, market?} -> { assets: {SYM: priceResult}, totalCount, ... }
func (c *AssetClient) GetPrices(ctx context.Context, syms []string, typ models.AssetType, market string) (models.BatchQuotes, error) {
	req, err := c.builder.BuildBatch(syms, typ, market)
	if err != nil {
		return models.BatchQuotes{}, err
	}
	body := req.Body.(request.BatchBody)

	var result struct {
		Assets       map[string]priceResult `json:"assets"`
		TotalCount   int                    `json:"totalCount"`
		SuccessCount int                    `json:"successCount"`
		FailedCount  int                    `json:"failedCount"`
	}
	if err := c.Send(ctx, req, &result); err != nil {
		return models.BatchQuotes{}, err
	}

	batch := models.BatchQuotes{
		Type:       body.Type,
		Market:     body.Market,
		Quotes:     make(map[string]models.PriceQuote, len(body.Symbols)),
		Failed:     make(map[string]string),
		TotalCount: len(body.Symbols),
	}
	for i, sym := range body.Symbols {
		pr, ok := result.Assets[sym]
		if !ok {
			batch.Failed[sym] = apierr.MsgNotFound
			continue
		}
		q, err := quoteFrom(req.Resolutions[i], body.Type, body.Market, pr)
		if err != nil {
			batch.Failed[sym] = err.Error()
			continue
		}
		batch.Quotes[sym] = q
	}
	batch.SuccessCount = len(batch.Quotes)
	batch.FailedCount = len(batch.Failed)

	return batch, nil
}

// quoteFrom turns a priceResult into a typed quote, marking corrected input.
func quoteFrom(res symbols.Resolution, typ models.AssetType, market string, pr priceResult) (models.PriceQuote, error) {
	if !pr.Success && len(pr.PriceData) == 0 {
		msg := pr.Error
		if msg == "" {
			msg = apierr.MsgNotFound
		}
		return models.PriceQuote{}, &apierr.APIError{Kind: apierr.KindNotFound, Status: http.StatusNotFound, Message: msg}
	}

	price, ok := models.ExtractPrice(pr.PriceData)
	if !ok {
		return models.PriceQuote{}, &apierr.APIError{
			Kind:    apierr.KindNotFound,
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("no price data for %s", res.Corrected),
		}
	}

	q := models.PriceQuote{
		Symbol:    res.Corrected,
		Type:      typ,
		Market:    market,
		Price:     price,
		AsOf:      models.ExtractTime(pr.PriceData),
		PriceData: pr.PriceData,
	}
	if res.WasCorrected {
		q.Corrected = true
		q.OriginalSymbol = res.Original
	}
	return q, nil
}

// GetHistory fetches the historical series (period defaults to daily).
func (c *AssetClient) GetHistory(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error) {
	return c.getSeries(ctx, request.OpHistory, symbol, typ, opts)
}

// GetIntraday fetches the intraday series.
func (c *AssetClient) GetIntraday(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error) {
	return c.getSeries(ctx, request.OpIntraday, symbol, typ, opts)
}

// GetChart fetches the chart-formatted series.
func (c *AssetClient) GetChart(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error) {
	return c.getSeries(ctx, request.OpChart, symbol, typ, opts)
}

// getSeries fetches any series endpoint.
// GET /{op}/{symbol}?type=... -> { success, historyData: {...} } or { points: [...] }
func (c *AssetClient) getSeries(ctx context.Context, op request.Operation, symbol string, typ models.AssetType, opts request.Options) (models.Series, error) {
	req, err := c.builder.Build(op, symbol, typ, opts)
	if err != nil {
		return models.Series{}, err
	}

	var result map[string]any
	if err := c.Send(ctx, req, &result); err != nil {
		return models.Series{}, err
	}
	if ok, present := result["success"].(bool); present && !ok {
		msg, _ := result["error"].(string)
		if msg == "" {
			msg = apierr.MsgNotFound
		}
		return models.Series{}, &apierr.APIError{Kind: apierr.KindNotFound, Status: http.StatusNotFound, Message: msg}
	}

	points := models.ExtractPoints(result)
	if points == nil {
		points = []models.SeriesPoint{}
	}

	return models.Series{
		Kind:     models.SeriesKind(op),
		Symbol:   req.Resolution.Corrected,
		Type:     req.Type,
		Market:   req.Query.Get("market"),
		Period:   req.Query.Get("period"),
		Interval: req.Query.Get("interval"),
		Points:   points,
	}, nil
}

// GetWatchlist fetches every watchlist entry.
// GET /watchlist -> [WatchlistEntry]
func (c *AssetClient) GetWatchlist(ctx context.Context) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	if err := c.t.do(ctx, http.MethodGet, "/watchlist", nil, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}
	return entries, nil
}

// GetEntry fetches one watchlist entry.
// GET /watchlist/{id} -> WatchlistEntry
func (c *AssetClient) GetEntry(ctx context.Context, id int64) (models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	err := c.t.do(ctx, http.MethodGet, idPath("/watchlist", id), nil, nil, &entry)
	return entry, err
}

// AddToWatchlist resolves the symbol and creates an entry. An empty Type is
// filled with the detected type.
// POST /watchlist {symbol, name, type, notes} -> WatchlistEntry
func (c *AssetClient) AddToWatchlist(ctx context.Context, in models.NewWatchlistEntry) (models.WatchlistEntry, error) {
	res, err := c.builder.Resolver().Resolve(in.Symbol, in.Type)
	if err != nil {
		return models.WatchlistEntry{}, err
	}
	in.Symbol = res.Corrected
	if in.Type == "" {
		in.Type = res.DetectedType
	}
	if err := models.Validate(in); err != nil {
		return models.WatchlistEntry{}, apierr.Validation("entry", "%v", err)
	}

	var entry models.WatchlistEntry
	err = c.t.do(ctx, http.MethodPost, "/watchlist", nil, in, &entry)
	return entry, err
}

// RemoveFromWatchlist deletes an entry.
// DELETE /watchlist/{id}
func (c *AssetClient) RemoveFromWatchlist(ctx context.Context, id int64) error {
	return c.t.do(ctx, http.MethodDelete, idPath("/watchlist", id), nil, nil, nil)
}

// AddInvestment records an investment; the backend creates the entry when
// the symbol is not on the watchlist yet.
// POST /investment {symbol, name, type, investmentAmount} -> InvestmentResult
func (c *AssetClient) AddInvestment(ctx context.Context, inv models.Investment) (models.InvestmentResult, error) {
	res, err := c.builder.Resolver().Resolve(inv.Symbol, inv.Type)
	if err != nil {
		return models.InvestmentResult{}, err
	}
	inv.Symbol = res.Corrected
	if inv.Type == "" {
		inv.Type = res.DetectedType
	}
	if strings.TrimSpace(inv.Name) == "" {
		inv.Name = inv.Symbol
	}
	if err := models.ValidateInvestment(inv); err != nil {
		return models.InvestmentResult{}, apierr.Validation("investment", "%v", err)
	}

	var result models.InvestmentResult
	err = c.t.do(ctx, http.MethodPost, "/investment", nil, inv, &result)
	return result, err
}

// GetPortfolio fetches the portfolio summary of one entry.
// GET /watchlist/{id}/portfolio -> PortfolioSummary
func (c *AssetClient) GetPortfolio(ctx context.Context, id int64) (models.PortfolioSummary, error) {
	var summary models.PortfolioSummary
	if err := c.t.do(ctx, http.MethodGet, idPath("/watchlist", id)+"/portfolio", nil, nil, &summary); err != nil {
		return models.PortfolioSummary{}, err
	}
	if summary.WatchlistID == 0 {
		summary.WatchlistID = id
	}
	return summary, nil
}

type noteBody struct {
	Text string `json:"text"`
}

// GetNotes fetches the notes attached to an entry.
// GET /watchlist/{id}/notes -> [Note]
func (c *AssetClient) GetNotes(ctx context.Context, entryID int64) ([]models.Note, error) {
	var notes []models.Note
	if err := c.t.do(ctx, http.MethodGet, idPath("/watchlist", entryID)+"/notes", nil, nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

// AddNote attaches a note to an entry.
// POST /watchlist/{id}/notes {text} -> Note
func (c *AssetClient) AddNote(ctx context.Context, entryID int64, text string) (models.Note, error) {
	if err := validateNoteText(text); err != nil {
		return models.Note{}, err
	}
	var note models.Note
	if err := c.t.do(ctx, http.MethodPost, idPath("/watchlist", entryID)+"/notes", nil, noteBody{Text: text}, &note); err != nil {
		return models.Note{}, err
	}
	if note.EntryID == 0 {
		note.EntryID = entryID
	}
	return note, nil
}

// UpdateNote replaces a note's text.
// PUT /notes/{noteId} {text} -> Note
func (c *AssetClient) UpdateNote(ctx context.Context, noteID int64, text string) (models.Note, error) {
	if err := validateNoteText(text); err != nil {
		return models.Note{}, err
	}
	var note models.Note
	err := c.t.do(ctx, http.MethodPut, idPath("/notes", noteID), nil, noteBody{Text: text}, &note)
	return note, err
}

// DeleteNote removes a note.
// DELETE /notes/{noteId}
func (c *AssetClient) DeleteNote(ctx context.Context, noteID int64) error {
	return c.t.do(ctx, http.MethodDelete, idPath("/notes", noteID), nil, nil, nil)
}

func validateNoteText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apierr.Validation("text", "is required")
	}
	if err := models.Validate(models.Note{Text: text}); err != nil {
		return apierr.Validation("text", "%v", err)
	}
	return nil
}
