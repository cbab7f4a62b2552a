// Package symbols turns user-typed tickers into canonical symbols and
// decides whether they denote a cryptocurrency or a stock.
package symbols

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/models"
)

// corrections maps frequent typos to the intended ticker.
var corrections = map[string]string{
	"APPL": "AAPL",
	"GOOG": "GOOGL",
}

// cryptoSymbols is the fixed set of tickers treated as crypto.
var cryptoSymbols = map[string]struct{}{}

func init() {
	for _, s := range []string{
		"BTC", "ETH", "ADA", "DOT", "SOL", "MATIC", "LINK", "UNI",
		"AVAX", "ATOM", "XRP", "LTC", "USDT", "USDC", "BNB", "DOGE",
		"SHIB", "ALGO", "VET", "THETA", "FIL", "TRX", "EOS", "XLM",
		"NEAR", "FLOW", "ICP", "AAVE", "CRO", "SAND", "MANA", "AXS",
	} {
		cryptoSymbols[s] = struct{}{}
	}
}

// Resolution is the outcome of resolving one raw ticker.
type Resolution struct {
	Original     string           `json:"original"`
	Corrected    string           `json:"corrected"`
	DetectedType models.AssetType `json:"detectedType"`
	WasCorrected bool             `json:"wasCorrected"`
	// Warning is set when the caller expected a different type.
	Warning string `json:"warning,omitempty"`
}

// Resolver applies the correction table and crypto set. The logger only
// receives type-mismatch diagnostics.
type Resolver struct {
	logger *common.Logger
}

// NewResolver creates a resolver. A nil logger silences diagnostics.
func NewResolver(logger *common.Logger) *Resolver {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Resolver{logger: logger}
}

// Resolve validates and corrects raw. expected may be empty; when it is set
// and differs from the detected type a warning is logged and recorded on the
// Resolution, but the call still succeeds.
func (r *Resolver) Resolve(raw string, expected models.AssetType) (Resolution, error) {
	if strings.TrimSpace(raw) == "" {
		return Resolution{}, apierr.Validation("symbol", "is required")
	}

	corrected := Correct(raw)
	detected := DetectType(corrected)

	res := Resolution{
		Original:     raw,
		Corrected:    corrected,
		DetectedType: detected,
		// Compared against the untrimmed input: padded input counts as
		// corrected.
		WasCorrected: corrected != strings.ToUpper(raw),
	}

	if expected != "" && expected != detected {
		res.Warning = fmt.Sprintf("expected %s, but %s looks like %s", expected, corrected, detected)
		r.logger.Warn().
			Str("symbol", corrected).
			Str("expected", string(expected)).
			Str("detected", string(detected)).
			Msg("asset type mismatch")
	}

	return res, nil
}

// Correct normalises raw (trim, uppercase) and applies the typo table.
func Correct(raw string) string {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if fixed, ok := corrections[normalized]; ok {
		return fixed
	}
	return normalized
}

// DetectType reports crypto for members of the crypto set, stock otherwise.
func DetectType(symbol string) models.AssetType {
	if _, ok := cryptoSymbols[Correct(symbol)]; ok {
		return models.AssetTypeCrypto
	}
	return models.AssetTypeStock
}

// NeedsCorrection reports whether raw hits the typo table.
func NeedsCorrection(raw string) bool {
	_, ok := corrections[strings.ToUpper(strings.TrimSpace(raw))]
	return ok
}

// SuggestedCorrection returns the table entry for raw, if any.
func SuggestedCorrection(raw string) (string, bool) {
	fixed, ok := corrections[strings.ToUpper(strings.TrimSpace(raw))]
	return fixed, ok
}

// IsCrypto reports whether symbol is in the crypto set after correction.
func IsCrypto(symbol string) bool {
	return DetectType(symbol) == models.AssetTypeCrypto
}
