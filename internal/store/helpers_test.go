package store

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/finance-portal/internal/client"
	"github.com/bobmcallan/finance-portal/internal/interfaces"
	"github.com/bobmcallan/finance-portal/internal/request"
	"github.com/bobmcallan/finance-portal/internal/symbols"
)

// memKV is an in-memory interfaces.KeyValueStorage.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", interfaces.ErrKeyNotFound, key)
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var fixedNow = time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC)

// newTestStore wires a Store to real clients talking to the given handlers.
func newTestStore(t *testing.T, assets, finance http.HandlerFunc, kv interfaces.KeyValueStorage) *Store {
	t.Helper()

	if assets == nil {
		assets = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }
	}
	if finance == nil {
		finance = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }
	}
	assetSrv := httptest.NewServer(assets)
	financeSrv := httptest.NewServer(finance)
	t.Cleanup(assetSrv.Close)
	t.Cleanup(financeSrv.Close)

	builder := request.NewBuilder(symbols.NewResolver(nil), "")
	return New(context.Background(), Deps{
		AssetAPI:   client.NewAssetClient(assetSrv.URL, builder),
		FinanceAPI: client.NewFinanceClient(financeSrv.URL),
		KV:         kv,
		Now:        func() time.Time { return fixedNow },
	})
}

func requestOptions() request.Options {
	return request.Options{Interval: "5min"}
}
