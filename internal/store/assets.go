package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/cache"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/request"
)

// AssetAPI is the backend surface the assets module needs.
type AssetAPI interface {
	GetWatchlist(ctx context.Context) ([]models.WatchlistEntry, error)
	GetEntry(ctx context.Context, id int64) (models.WatchlistEntry, error)
	AddToWatchlist(ctx context.Context, in models.NewWatchlistEntry) (models.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, id int64) error
	GetNotes(ctx context.Context, entryID int64) ([]models.Note, error)
	AddNote(ctx context.Context, entryID int64, text string) (models.Note, error)
	UpdateNote(ctx context.Context, noteID int64, text string) (models.Note, error)
	DeleteNote(ctx context.Context, noteID int64) error
	GetPrice(ctx context.Context, symbol string, typ models.AssetType, market string) (models.PriceQuote, error)
	GetPrices(ctx context.Context, symbols []string, typ models.AssetType, market string) (models.BatchQuotes, error)
	GetHistory(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error)
	GetIntraday(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error)
	GetChart(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error)
	AddInvestment(ctx context.Context, inv models.Investment) (models.InvestmentResult, error)
	GetPortfolio(ctx context.Context, id int64) (models.PortfolioSummary, error)
}

// Assets is the watchlist module: entries, the selected entry, notes per
// entry, top gainers, latest quotes and per-entry portfolio summaries.
type Assets struct {
	root   *Root
	api    AssetAPI
	quotes *cache.QuoteCache

	mu         sync.RWMutex
	entries    []models.WatchlistEntry
	selected   *models.WatchlistEntry
	notes      map[int64][]models.Note
	topGainers []models.PriceQuote
	portfolios map[int64]models.PortfolioSummary
}

// NewAssets creates the assets module.
func NewAssets(root *Root, api AssetAPI, quotes *cache.QuoteCache) *Assets {
	return &Assets{
		root:       root,
		api:        api,
		quotes:     quotes,
		entries:    []models.WatchlistEntry{},
		notes:      make(map[int64][]models.Note),
		topGainers: []models.PriceQuote{},
		portfolios: make(map[int64]models.PortfolioSummary),
	}
}

// --- actions ---

// FetchWatchlist replaces the watchlist with the backend's.
func (a *Assets) FetchWatchlist(ctx context.Context) ([]models.WatchlistEntry, error) {
	act := a.root.Begin("assets.fetchWatchlist")
	defer act.End()

	entries, err := a.api.GetWatchlist(ctx)
	if err != nil {
		return nil, act.Fail(err)
	}
	a.setEntries(entries)
	return entries, nil
}

// FetchEntry loads one entry and makes it the selected entry.
func (a *Assets) FetchEntry(ctx context.Context, id int64) (models.WatchlistEntry, error) {
	act := a.root.Begin("assets.fetchEntry")
	defer act.End()

	entry, err := a.api.GetEntry(ctx, id)
	if err != nil {
		return models.WatchlistEntry{}, act.Fail(err)
	}
	a.setSelected(entry)
	return entry, nil
}

// AddToWatchlist creates an entry and appends it.
func (a *Assets) AddToWatchlist(ctx context.Context, in models.NewWatchlistEntry) (models.WatchlistEntry, error) {
	act := a.root.Begin("assets.addToWatchlist")
	defer act.End()

	entry, err := a.api.AddToWatchlist(ctx, in)
	if err != nil {
		return models.WatchlistEntry{}, act.Fail(err)
	}
	a.addEntry(entry)
	return entry, nil
}

// RemoveFromWatchlist deletes an entry and drops everything keyed by it.
func (a *Assets) RemoveFromWatchlist(ctx context.Context, id int64) error {
	act := a.root.Begin("assets.removeFromWatchlist")
	defer act.End()

	if err := a.api.RemoveFromWatchlist(ctx, id); err != nil {
		return act.Fail(err)
	}
	a.removeEntry(id)
	return nil
}

// FetchNotes replaces the notes of one entry.
func (a *Assets) FetchNotes(ctx context.Context, entryID int64) ([]models.Note, error) {
	act := a.root.Begin("assets.fetchNotes")
	defer act.End()

	notes, err := a.api.GetNotes(ctx, entryID)
	if err != nil {
		return nil, act.Fail(err)
	}
	a.setNotes(entryID, notes)
	return notes, nil
}

// AddNote attaches a note to an entry.
func (a *Assets) AddNote(ctx context.Context, entryID int64, text string) (models.Note, error) {
	act := a.root.Begin("assets.addNote")
	defer act.End()

	note, err := a.api.AddNote(ctx, entryID, text)
	if err != nil {
		return models.Note{}, act.Fail(err)
	}
	a.addNote(entryID, note)
	return note, nil
}

// UpdateNote replaces a note's text.
func (a *Assets) UpdateNote(ctx context.Context, entryID, noteID int64, text string) (models.Note, error) {
	act := a.root.Begin("assets.updateNote")
	defer act.End()

	note, err := a.api.UpdateNote(ctx, noteID, text)
	if err != nil {
		return models.Note{}, act.Fail(err)
	}
	if note.ID == 0 {
		note.ID = noteID
	}
	if note.EntryID == 0 {
		note.EntryID = entryID
	}
	if note.Text == "" {
		note.Text = text
	}
	a.updateNote(entryID, note)
	return note, nil
}

// DeleteNote removes a note.
func (a *Assets) DeleteNote(ctx context.Context, entryID, noteID int64) error {
	act := a.root.Begin("assets.deleteNote")
	defer act.End()

	if err := a.api.DeleteNote(ctx, noteID); err != nil {
		return act.Fail(err)
	}
	a.removeNote(entryID, noteID)
	return nil
}

// FetchPrice loads the current quote and remembers it.
func (a *Assets) FetchPrice(ctx context.Context, symbol string, typ models.AssetType, market string) (models.PriceQuote, error) {
	act := a.root.Begin("assets.fetchPrice")
	defer act.End()

	q, err := a.api.GetPrice(ctx, symbol, typ, market)
	if err != nil {
		return models.PriceQuote{}, act.Fail(err)
	}
	a.quotes.Put(q)
	return q, nil
}

// FetchPrices loads a batch of quotes. Per-symbol failures stay in the
// result; only a failed call is an error.
func (a *Assets) FetchPrices(ctx context.Context, symbols []string, typ models.AssetType, market string) (models.BatchQuotes, error) {
	act := a.root.Begin("assets.fetchPrices")
	defer act.End()

	batch, err := a.api.GetPrices(ctx, symbols, typ, market)
	if err != nil {
		return models.BatchQuotes{}, act.Fail(err)
	}
	for _, q := range batch.Quotes {
		a.quotes.Put(q)
	}
	return batch, nil
}

// FetchHistory loads the historical series.
func (a *Assets) FetchHistory(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error) {
	act := a.root.Begin("assets.fetchHistory")
	defer act.End()

	s, err := a.api.GetHistory(ctx, symbol, typ, opts)
	if err != nil {
		return models.Series{}, act.Fail(err)
	}
	return s, nil
}

// FetchIntraday loads the intraday series.
func (a *Assets) FetchIntraday(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error) {
	act := a.root.Begin("assets.fetchIntraday")
	defer act.End()

	s, err := a.api.GetIntraday(ctx, symbol, typ, opts)
	if err != nil {
		return models.Series{}, act.Fail(err)
	}
	return s, nil
}

// FetchChart loads the chart series.
func (a *Assets) FetchChart(ctx context.Context, symbol string, typ models.AssetType, opts request.Options) (models.Series, error) {
	act := a.root.Begin("assets.fetchChart")
	defer act.End()

	s, err := a.api.GetChart(ctx, symbol, typ, opts)
	if err != nil {
		return models.Series{}, act.Fail(err)
	}
	return s, nil
}

// AddInvestment records an investment and upserts the returned entry.
func (a *Assets) AddInvestment(ctx context.Context, inv models.Investment) (models.InvestmentResult, error) {
	act := a.root.Begin("assets.addInvestment")
	defer act.End()

	res, err := a.api.AddInvestment(ctx, inv)
	if err != nil {
		return models.InvestmentResult{}, act.Fail(err)
	}
	if !res.Success && res.WatchlistItem == nil {
		msg := res.Message
		if msg == "" {
			msg = fmt.Sprintf("investment in %s was not recorded", inv.Symbol)
		}
		return res, act.Fail(&apierr.APIError{Kind: apierr.KindInvalidRequest, Status: http.StatusBadRequest, Message: msg})
	}
	if res.WatchlistItem != nil {
		a.upsertEntry(*res.WatchlistItem)
	}
	return res, nil
}

// FetchPortfolioSummary loads the portfolio breakdown of one entry.
func (a *Assets) FetchPortfolioSummary(ctx context.Context, id int64) (models.PortfolioSummary, error) {
	act := a.root.Begin("assets.fetchPortfolioSummary")
	defer act.End()

	summary, err := a.api.GetPortfolio(ctx, id)
	if err != nil {
		return models.PortfolioSummary{}, act.Fail(err)
	}
	a.setPortfolio(id, summary)
	return summary, nil
}

// SetTopGainers replaces the top gainers list.
func (a *Assets) SetTopGainers(gainers []models.PriceQuote) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.topGainers = append([]models.PriceQuote{}, gainers...)
}

// --- mutations (no I/O) ---

func (a *Assets) setEntries(entries []models.WatchlistEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append([]models.WatchlistEntry{}, entries...)
}

func (a *Assets) setSelected(entry models.WatchlistEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selected = &entry
}

func (a *Assets) addEntry(entry models.WatchlistEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *Assets) upsertEntry(entry models.WatchlistEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.entries {
		if a.entries[i].ID == entry.ID {
			a.entries[i] = entry
			return
		}
	}
	a.entries = append(a.entries, entry)
}

func (a *Assets) removeEntry(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := make([]models.WatchlistEntry, 0, len(a.entries))
	for _, e := range a.entries {
		if e.ID != id {
			kept = append(kept, e)
			continue
		}
		a.quotes.Delete(e.Symbol)
	}
	a.entries = kept
	delete(a.notes, id)
	delete(a.portfolios, id)
	if a.selected != nil && a.selected.ID == id {
		a.selected = nil
	}
}

func (a *Assets) setNotes(entryID int64, notes []models.Note) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notes[entryID] = append([]models.Note{}, notes...)
}

func (a *Assets) addNote(entryID int64, note models.Note) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notes[entryID] = append(a.notes[entryID], note)
}

func (a *Assets) updateNote(entryID int64, note models.Note) {
	a.mu.Lock()
	defer a.mu.Unlock()
	notes := a.notes[entryID]
	for i := range notes {
		if notes[i].ID == note.ID {
			notes[i] = note
			return
		}
	}
}

func (a *Assets) removeNote(entryID, noteID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	notes, ok := a.notes[entryID]
	if !ok {
		return
	}
	kept := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	a.notes[entryID] = kept
}

func (a *Assets) setPortfolio(id int64, summary models.PortfolioSummary) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.portfolios[id] = summary
}

// --- getters ---

// Watchlist returns a copy of the entries in insertion order.
func (a *Assets) Watchlist() []models.WatchlistEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.WatchlistEntry{}, a.entries...)
}

// EntryByID finds an entry by id.
func (a *Assets) EntryByID(id int64) (models.WatchlistEntry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, e := range a.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.WatchlistEntry{}, false
}

// EntryBySymbol finds an entry by symbol, ignoring case.
func (a *Assets) EntryBySymbol(symbol string) (models.WatchlistEntry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, e := range a.entries {
		if strings.EqualFold(e.Symbol, symbol) {
			return e, true
		}
	}
	return models.WatchlistEntry{}, false
}

// NotesFor returns the notes of an entry; never nil.
func (a *Assets) NotesFor(entryID int64) []models.Note {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Note{}, a.notes[entryID]...)
}

// Selected returns the entry loaded by the last FetchEntry.
func (a *Assets) Selected() (models.WatchlistEntry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.selected == nil {
		return models.WatchlistEntry{}, false
	}
	return *a.selected, true
}

// Quote returns the latest remembered quote for a symbol, if still fresh.
func (a *Assets) Quote(typ models.AssetType, symbol string) (models.PriceQuote, bool) {
	return a.quotes.Get(typ, symbol)
}

// TopGainers returns the top gainers list.
func (a *Assets) TopGainers() []models.PriceQuote {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.PriceQuote{}, a.topGainers...)
}

// Portfolio returns the last loaded portfolio summary of an entry.
func (a *Assets) Portfolio(id int64) (models.PortfolioSummary, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.portfolios[id]
	return s, ok
}
