package store

import (
	"context"
	"time"

	"github.com/bobmcallan/finance-portal/internal/cache"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/interfaces"
)

// Store bundles the root state with the assets and finance modules.
type Store struct {
	Root    *Root
	Assets  *Assets
	Finance *Finance
}

// Deps are the collaborators a Store is built from.
type Deps struct {
	AssetAPI   AssetAPI
	FinanceAPI FinanceAPI
	Quotes     *cache.QuoteCache
	KV         interfaces.KeyValueStorage
	Logger     *common.Logger
	Now        func() time.Time
}

// New builds a Store and restores persisted preferences. A failure to read
// preferences is logged and the defaults are kept.
func New(ctx context.Context, deps Deps) *Store {
	if deps.Logger == nil {
		deps.Logger = common.NewSilentLogger()
	}
	if deps.Quotes == nil {
		deps.Quotes = cache.New(0, 0)
	}

	root := NewRoot(deps.KV, deps.Logger)
	s := &Store{
		Root:    root,
		Assets:  NewAssets(root, deps.AssetAPI, deps.Quotes),
		Finance: NewFinance(root, deps.FinanceAPI, deps.Now),
	}

	prefs, err := root.LoadPreferences(ctx)
	if err != nil {
		deps.Logger.Warn().Err(err).Msg("Failed to load preferences, using defaults")
	}
	s.Finance.restoreCurrency(prefs.SelectedCurrency)

	return s
}
