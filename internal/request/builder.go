// Package request shapes backend asset API requests from a raw ticker.
package request

import (
	"net/http"
	"net/url"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/bobmcallan/finance-portal/internal/symbols"
)

// Operation names an asset API read.
type Operation string

const (
	OpPrice       Operation = "price"
	OpHistory     Operation = "history"
	OpIntraday    Operation = "intraday"
	OpChart       Operation = "chart"
	OpBatchPrices Operation = "batchPrices"
)

// DefaultMarket is the quote currency for crypto when none is configured.
const DefaultMarket = "USD"

// DefaultPeriod is sent with history requests when the caller gives none.
const DefaultPeriod = "daily"

// Options carries the optional per-operation parameters.
type Options struct {
	Market   string
	Period   string
	Interval string
}

// Request is a fully shaped call, relative to the assets base URL.
type Request struct {
	Operation  Operation
	Method     string
	Path       string
	Query      url.Values
	Body       any
	Type       models.AssetType
	Resolution symbols.Resolution

	// Resolutions holds one entry per batch symbol, in input order.
	Resolutions []symbols.Resolution
}

// BatchBody is the JSON body of POST /prices.
type BatchBody struct {
	Symbols []string         `json:"symbols"`
	Type    models.AssetType `json:"type"`
	Market  string           `json:"market,omitempty"`
}

// Builder shapes requests; it owns the symbol resolution step.
type Builder struct {
	resolver *symbols.Resolver
	market   string
}

// NewBuilder creates a builder. An empty market falls back to USD.
func NewBuilder(resolver *symbols.Resolver, market string) *Builder {
	if market == "" {
		market = DefaultMarket
	}
	return &Builder{resolver: resolver, market: market}
}

// Resolver exposes the builder's resolver.
func (b *Builder) Resolver() *symbols.Resolver {
	return b.resolver
}

// Build shapes a single-symbol read. typ may be empty, in which case the
// detected type is used.
func (b *Builder) Build(op Operation, symbol string, typ models.AssetType, opts Options) (Request, error) {
	switch op {
	case OpPrice, OpHistory, OpIntraday, OpChart:
	case OpBatchPrices:
		return Request{}, apierr.Validation("operation", "batchPrices takes a symbol list, use BuildBatch")
	default:
		return Request{}, apierr.Validation("operation", "unknown operation %q", op)
	}

	res, err := b.resolver.Resolve(symbol, typ)
	if err != nil {
		return Request{}, err
	}
	actual := typ
	if actual == "" {
		actual = res.DetectedType
	}

	q := url.Values{}
	q.Set("type", string(actual))
	if actual == models.AssetTypeCrypto {
		q.Set("market", b.marketOr(opts.Market))
	}

	switch op {
	case OpHistory:
		period := opts.Period
		if period == "" {
			period = DefaultPeriod
		}
		q.Set("period", period)
	case OpChart:
		if opts.Period != "" {
			q.Set("period", opts.Period)
		}
	}
	if (op == OpIntraday || op == OpChart) && actual == models.AssetTypeStock && opts.Interval != "" {
		q.Set("interval", opts.Interval)
	}

	return Request{
		Operation:  op,
		Method:     http.MethodGet,
		Path:       "/" + string(op) + "/" + url.PathEscape(res.Corrected),
		Query:      q,
		Type:       actual,
		Resolution: res,
	}, nil
}

// BuildBatch shapes POST /prices. Every symbol is resolved; with no explicit
// type the batch is crypto only when strictly more than half the symbols are
// crypto, so ties go to stock.
func (b *Builder) BuildBatch(syms []string, typ models.AssetType, market string) (Request, error) {
	if len(syms) == 0 {
		return Request{}, apierr.Validation("symbols", "at least one symbol is required")
	}

	corrected := make([]string, 0, len(syms))
	resolutions := make([]symbols.Resolution, 0, len(syms))
	cryptoCount := 0
	for _, s := range syms {
		res, err := b.resolver.Resolve(s, typ)
		if err != nil {
			return Request{}, err
		}
		corrected = append(corrected, res.Corrected)
		resolutions = append(resolutions, res)
		if res.DetectedType == models.AssetTypeCrypto {
			cryptoCount++
		}
	}

	actual := typ
	if actual == "" {
		actual = MajorityType(cryptoCount, len(syms))
	}

	body := BatchBody{Symbols: corrected, Type: actual}
	if actual == models.AssetTypeCrypto {
		body.Market = b.marketOr(market)
	}

	return Request{
		Operation:   OpBatchPrices,
		Method:      http.MethodPost,
		Path:        "/prices",
		Query:       url.Values{},
		Body:        body,
		Type:        actual,
		Resolutions: resolutions,
	}, nil
}

// MajorityType returns crypto iff cryptoCount > total/2.
func MajorityType(cryptoCount, total int) models.AssetType {
	if 2*cryptoCount > total {
		return models.AssetTypeCrypto
	}
	return models.AssetTypeStock
}

func (b *Builder) marketOr(market string) string {
	if market != "" {
		return market
	}
	return b.market
}
