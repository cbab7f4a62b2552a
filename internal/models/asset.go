package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AssetType classifies a ticker as a cryptocurrency or an equity.
type AssetType string

const (
	AssetTypeCrypto AssetType = "crypto"
	AssetTypeStock  AssetType = "stock"
)

// ParseAssetType accepts "crypto"/"stock" in any case. The empty string
// parses to the zero AssetType with ok=true, meaning "not specified".
func ParseAssetType(s string) (AssetType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case string(AssetTypeCrypto):
		return AssetTypeCrypto, true
	case string(AssetTypeStock):
		return AssetTypeStock, true
	}
	return "", false
}

// Asset is a tracked instrument. Identity is Symbol plus Type.
type Asset struct {
	Symbol    string    `json:"symbol"`
	Type      AssetType `json:"type"`
	Name      string    `json:"name,omitempty"`
	DisplayID string    `json:"displayId,omitempty"`
}

// WatchlistEntry is one row of the user's watchlist as stored by the backend.
type WatchlistEntry struct {
	ID               int64           `json:"id"`
	Symbol           string          `json:"symbol"`
	Name             string          `json:"name"`
	Type             AssetType       `json:"type"`
	Notes            string          `json:"notes,omitempty"`
	InvestedAmount   decimal.Decimal `json:"investedAmount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int             `json:"transactionCount"`
	AveragePrice     decimal.Decimal `json:"averagePrice"`
	CreatedAt        string          `json:"createdAt,omitempty"`
}

// Asset returns the entry's asset identity.
func (e WatchlistEntry) Asset() Asset {
	return Asset{Symbol: e.Symbol, Type: e.Type, Name: e.Name}
}

// NewWatchlistEntry is the payload for adding an asset to the watchlist.
// Type may be left empty; the client fills in the detected type.
type NewWatchlistEntry struct {
	Symbol string    `json:"symbol" validate:"required,max=20"`
	Name   string    `json:"name,omitempty" validate:"max=120"`
	Type   AssetType `json:"type,omitempty" validate:"omitempty,oneof=crypto stock"`
	Notes  string    `json:"notes,omitempty" validate:"max=2000"`
}

// Investment records money put into an asset; the backend creates the
// watchlist entry when it does not exist yet.
type Investment struct {
	Symbol           string          `json:"symbol" validate:"required,max=20"`
	Name             string          `json:"name" validate:"max=120"`
	Type             AssetType       `json:"type" validate:"omitempty,oneof=crypto stock"`
	InvestmentAmount decimal.Decimal `json:"investmentAmount"`
}

// InvestmentResult is the backend reply to an investment.
type InvestmentResult struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message,omitempty"`
	WatchlistItem *WatchlistEntry `json:"watchlistItem,omitempty"`
}

// PortfolioSummary is the per-entry portfolio breakdown computed server-side.
type PortfolioSummary struct {
	WatchlistID         int64           `json:"watchlistId"`
	TotalInvested       decimal.Decimal `json:"totalInvested"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	TransactionCount    int             `json:"transactionCount"`
	PortfolioPercentage decimal.Decimal `json:"portfolioPercentage"`
	TotalPortfolioValue decimal.Decimal `json:"totalPortfolioValue"`
}
