package symbols

import (
	"testing"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/models"
)

func newTestResolver() *Resolver {
	return NewResolver(common.NewSilentLogger())
}

func TestResolve_KnownTypos(t *testing.T) {
	r := newTestResolver()
	tests := []struct {
		raw, want string
	}{
		{"APPL", "AAPL"},
		{"GOOG", "GOOGL"},
		{"appl", "AAPL"},
	}
	for _, tt := range tests {
		res, err := r.Resolve(tt.raw, "")
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.raw, err)
		}
		if res.Corrected != tt.want {
			t.Errorf("Resolve(%q).Corrected = %q, want %q", tt.raw, res.Corrected, tt.want)
		}
		if !res.WasCorrected {
			t.Errorf("Resolve(%q) expected WasCorrected", tt.raw)
		}
	}
}

func TestResolve_CryptoSetDetection(t *testing.T) {
	r := newTestResolver()
	for sym := range cryptoSymbols {
		res, err := r.Resolve(sym, "")
		if err != nil {
			t.Fatalf("Resolve(%q): %v", sym, err)
		}
		if res.DetectedType != models.AssetTypeCrypto {
			t.Errorf("expected %s to be crypto, got %s", sym, res.DetectedType)
		}
	}
	if len(cryptoSymbols) != 32 {
		t.Errorf("expected 32 crypto symbols, got %d", len(cryptoSymbols))
	}

	for _, sym := range []string{"AAPL", "MSFT", "TSLA", "GOOGL", "BTCUSD", "X"} {
		res, err := r.Resolve(sym, "")
		if err != nil {
			t.Fatalf("Resolve(%q): %v", sym, err)
		}
		if res.DetectedType != models.AssetTypeStock {
			t.Errorf("expected %s to be stock, got %s", sym, res.DetectedType)
		}
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	r := newTestResolver()
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := r.Resolve(raw, "")
		if err == nil {
			t.Fatalf("Resolve(%q) expected error", raw)
		}
		if !apierr.IsValidation(err) {
			t.Errorf("Resolve(%q) expected ValidationError, got %T", raw, err)
		}
	}
}

func TestResolve_ExpectedMatches(t *testing.T) {
	res, err := newTestResolver().Resolve("appl", models.AssetTypeStock)
	if err != nil {
		t.Fatal(err)
	}
	want := Resolution{
		Original:     "appl",
		Corrected:    "AAPL",
		DetectedType: models.AssetTypeStock,
		WasCorrected: true,
	}
	if res != want {
		t.Errorf("got %+v, want %+v", res, want)
	}
}

func TestResolve_ExpectedMismatch(t *testing.T) {
	res, err := newTestResolver().Resolve("btc", models.AssetTypeStock)
	if err != nil {
		t.Fatalf("mismatch must not fail: %v", err)
	}
	if res.DetectedType != models.AssetTypeCrypto {
		t.Errorf("expected crypto, got %s", res.DetectedType)
	}
	if res.Corrected != "BTC" {
		t.Errorf("expected BTC, got %s", res.Corrected)
	}
	if res.Warning == "" {
		t.Error("expected mismatch diagnostic")
	}
	// Lowercase input only uppercases; that is not a correction.
	if res.WasCorrected {
		t.Error("expected WasCorrected=false for case-only change")
	}
}

func TestResolve_WhitespaceCountsAsCorrection(t *testing.T) {
	res, err := newTestResolver().Resolve(" eth ", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Corrected != "ETH" {
		t.Errorf("expected ETH, got %q", res.Corrected)
	}
	if !res.WasCorrected {
		t.Error("expected padded input to be reported as corrected")
	}
	if res.Original != " eth " {
		t.Errorf("expected original kept verbatim, got %q", res.Original)
	}
}

func TestResolve_NilLogger(t *testing.T) {
	r := NewResolver(nil)
	if _, err := r.Resolve("sol", models.AssetTypeStock); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCorrectionHelpers(t *testing.T) {
	if !NeedsCorrection(" appl ") {
		t.Error("expected APPL to need correction")
	}
	if NeedsCorrection("AAPL") {
		t.Error("expected AAPL not to need correction")
	}
	if fix, ok := SuggestedCorrection("goog"); !ok || fix != "GOOGL" {
		t.Errorf("expected GOOGL suggestion, got %q, %v", fix, ok)
	}
	if _, ok := SuggestedCorrection("MSFT"); ok {
		t.Error("expected no suggestion for MSFT")
	}
	if !IsCrypto("doge") || IsCrypto("appl") {
		t.Error("IsCrypto misclassified")
	}
}
