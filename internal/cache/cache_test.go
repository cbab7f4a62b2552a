package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/finance-portal/internal/models"
	"github.com/shopspring/decimal"
)

func quote(symbol string, typ models.AssetType, price string) models.PriceQuote {
	return models.PriceQuote{Symbol: symbol, Type: typ, Price: decimal.RequireFromString(price)}
}

func TestQuoteCache_PutGet(t *testing.T) {
	c := New(5*time.Second, 100)

	c.Put(quote("BTC", models.AssetTypeCrypto, "64000.5"))

	got, ok := c.Get(models.AssetTypeCrypto, "btc")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Price.String() != "64000.5" {
		t.Errorf("unexpected price: %s", got.Price)
	}

	if _, ok := c.Get(models.AssetTypeStock, "BTC"); ok {
		t.Error("expected miss for same symbol under a different type")
	}
}

func TestQuoteCache_Miss(t *testing.T) {
	c := New(5*time.Second, 100)

	if _, ok := c.Get(models.AssetTypeStock, "NONE"); ok {
		t.Error("expected cache miss for nonexistent key")
	}
}

func TestQuoteCache_TTLExpiration(t *testing.T) {
	c := New(time.Minute, 100)
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put(quote("AAPL", models.AssetTypeStock, "190"))

	if _, ok := c.Get(models.AssetTypeStock, "AAPL"); !ok {
		t.Fatal("expected cache hit before expiry")
	}

	now = now.Add(61 * time.Second)

	if _, ok := c.Get(models.AssetTypeStock, "AAPL"); ok {
		t.Error("expected cache miss after TTL expiration")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be removed, len=%d", c.Len())
	}
}

func TestQuoteCache_ZeroTTLNeverExpires(t *testing.T) {
	c := New(0, 0)
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put(quote("BTC", models.AssetTypeCrypto, "64000"))
	now = now.Add(365 * 24 * time.Hour)

	got, ok := c.Get(models.AssetTypeCrypto, "BTC")
	if !ok || got.Price.String() != "64000" {
		t.Fatalf("expected quote kept until superseded, got %+v ok=%v", got, ok)
	}

	for i := 0; i < 1000; i++ {
		c.Put(quote(fmt.Sprintf("S%d", i), models.AssetTypeStock, "1"))
	}
	if _, ok := c.Get(models.AssetTypeCrypto, "BTC"); !ok {
		t.Error("expected unbounded cache to keep the first quote")
	}
	if c.Len() != 1001 {
		t.Errorf("expected 1001 entries, got %d", c.Len())
	}
}

func TestQuoteCache_OverwriteKeepsLatest(t *testing.T) {
	c := New(time.Minute, 2)

	c.Put(quote("AAPL", models.AssetTypeStock, "190"))
	c.Put(quote("AAPL", models.AssetTypeStock, "191"))

	got, _ := c.Get(models.AssetTypeStock, "AAPL")
	if got.Price.String() != "191" {
		t.Errorf("expected last write to win, got %s", got.Price)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

func TestQuoteCache_Delete(t *testing.T) {
	c := New(time.Minute, 100)

	c.Put(quote("BTC", models.AssetTypeCrypto, "1"))
	c.Put(quote("BTC", models.AssetTypeStock, "2"))
	c.Put(quote("ETH", models.AssetTypeCrypto, "3"))

	c.Delete("btc")

	if _, ok := c.Get(models.AssetTypeCrypto, "BTC"); ok {
		t.Error("expected crypto BTC to be removed")
	}
	if _, ok := c.Get(models.AssetTypeStock, "BTC"); ok {
		t.Error("expected stock BTC to be removed")
	}
	if _, ok := c.Get(models.AssetTypeCrypto, "ETH"); !ok {
		t.Error("expected ETH to remain")
	}
}

func TestQuoteCache_MaxEntries(t *testing.T) {
	c := New(time.Minute, 3)

	c.Put(quote("A", models.AssetTypeStock, "1"))
	c.Put(quote("B", models.AssetTypeStock, "2"))
	c.Put(quote("C", models.AssetTypeStock, "3"))

	c.Put(quote("D", models.AssetTypeStock, "4"))

	if _, ok := c.Get(models.AssetTypeStock, "A"); ok {
		t.Error("expected A to be evicted (oldest entry)")
	}
	if _, ok := c.Get(models.AssetTypeStock, "D"); !ok {
		t.Error("expected D to be in cache")
	}
}

func TestQuoteCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Minute, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sym := fmt.Sprintf("S%d", (i*100+j)%80)
				c.Put(quote(sym, models.AssetTypeStock, "1"))
				c.Get(models.AssetTypeStock, sym)
				if j%25 == 0 {
					c.Delete(sym)
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("cache exceeded max entries: %d", c.Len())
	}
}
