package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is the latest price for one symbol. Symbol is always the
// canonical (corrected) form; OriginalSymbol is only set when the user's
// input was corrected.
type PriceQuote struct {
	Symbol         string          `json:"symbol"`
	Type           AssetType       `json:"type"`
	Market         string          `json:"market,omitempty"`
	Price          decimal.Decimal `json:"price"`
	AsOf           time.Time       `json:"asOf"`
	Corrected      bool            `json:"corrected"`
	OriginalSymbol string          `json:"originalSymbol,omitempty"`
	PriceData      map[string]any  `json:"priceData,omitempty"`
}

// BatchQuotes is the reply to a batch price request.
type BatchQuotes struct {
	Type         AssetType             `json:"type"`
	Market       string                `json:"market,omitempty"`
	Quotes       map[string]PriceQuote `json:"quotes"`
	Failed       map[string]string     `json:"failed,omitempty"`
	TotalCount   int                   `json:"totalCount"`
	SuccessCount int                   `json:"successCount"`
	FailedCount  int                   `json:"failedCount"`
}

// priceKeys lists the field names providers use for the current price, in
// order of preference.
var priceKeys = []string{"price", "close", "05. price", "4. close", "current_price"}

// timeKeys lists the field names providers use for the quote timestamp.
var timeKeys = []string{"timestamp", "asOf", "07. latest trading day", "latestTradingDay", "date"}

// ExtractPrice finds the price in a provider's loosely-shaped priceData map.
func ExtractPrice(data map[string]any) (decimal.Decimal, bool) {
	for _, k := range priceKeys {
		if v, ok := data[k]; ok && v != nil {
			d, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(v)))
			if err == nil {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}

// ExtractTime finds the quote time in priceData; zero if none parses.
func ExtractTime(data map[string]any) time.Time {
	for _, k := range timeKeys {
		if v, ok := data[k]; ok && v != nil {
			if t, ok := ParseTimestamp(fmt.Sprint(v)); ok {
				return t
			}
		}
	}
	return time.Time{}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp layouts seen in backend payloads,
// plus unix seconds and milliseconds.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if n, err := decimal.NewFromString(s); err == nil && n.IsInteger() && n.IsPositive() {
		v := n.IntPart()
		if v > 1e12 {
			return time.UnixMilli(v).UTC(), true
		}
		return time.Unix(v, 0).UTC(), true
	}
	return time.Time{}, false
}
