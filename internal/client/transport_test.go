package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/google/uuid"
)

func TestTransport_SetsRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(RequestIDHeader)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, nil)
	if err := tr.do(context.Background(), http.MethodGet, "/x", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("expected a uuid request id, got %q", got)
	}

	ctx := WithRequestID(context.Background(), "corr-123")
	if err := tr.do(ctx, http.MethodGet, "/x", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "corr-123" {
		t.Errorf("expected context request id, got %q", got)
	}
}

func TestTransport_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"echo": body["text"]})
	}))
	defer srv.Close()

	tr := newTransport(srv.URL+"/", nil)
	var out map[string]string
	if err := tr.do(context.Background(), http.MethodPost, "/echo", nil, map[string]string{"text": "hi"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["echo"] != "hi" {
		t.Errorf("expected echo hi, got %v", out)
	}
}

func TestTransport_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   apierr.Kind
		msg    string
	}{
		{http.StatusNotFound, `{"error":"Asset not found"}`, apierr.KindNotFound, "Asset not found"},
		{http.StatusTooManyRequests, ``, apierr.KindRateLimited, "rate limited, retry later"},
		{http.StatusBadRequest, `{"error":"bad symbol"}`, apierr.KindInvalidRequest, "bad symbol"},
		{http.StatusInternalServerError, `oops`, apierr.KindServerError, "server error"},
		{http.StatusServiceUnavailable, ``, apierr.KindHTTP, "HTTP 503"},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))

		err := newTransport(srv.URL, nil).do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		srv.Close()

		if apierr.KindOf(err) != tt.kind {
			t.Errorf("status %d: expected kind %s, got %s (%v)", tt.status, tt.kind, apierr.KindOf(err), err)
		}
		if err == nil || err.Error() != tt.msg {
			t.Errorf("status %d: expected message %q, got %v", tt.status, tt.msg, err)
		}
	}
}

func TestTransport_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := newTransport(url, nil).do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	if apierr.KindOf(err) != apierr.KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if err.Error() != "server unreachable" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, []Option{WithTimeout(20 * time.Millisecond)})
	err := tr.do(context.Background(), http.MethodGet, "/slow", nil, nil, nil)
	if apierr.KindOf(err) != apierr.KindNetwork {
		t.Errorf("expected network error on timeout, got %v", err)
	}
}

func TestTransport_RequestError(t *testing.T) {
	tr := newTransport("http://example.invalid", nil)
	err := tr.do(context.Background(), "BAD METHOD", "/x", nil, nil, nil)
	if apierr.KindOf(err) != apierr.KindRequest {
		t.Fatalf("expected request error, got %v", err)
	}
	if !strings.Contains(err.Error(), "method") {
		t.Errorf("expected underlying message, got %v", err)
	}

	err = tr.do(context.Background(), http.MethodPost, "/x", nil, make(chan int), nil)
	if apierr.KindOf(err) != apierr.KindRequest {
		t.Errorf("expected request error for unencodable body, got %v", err)
	}
}

func TestTransport_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTransport(srv.URL, nil).do(context.Background(), http.MethodGet, "/x", nil, nil, &out)
	if err == nil || !strings.Contains(err.Error(), "failed to parse response") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestTransport_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTransport(srv.URL, nil).do(context.Background(), http.MethodGet, "/x", nil, nil, &out)
	if apierr.KindOf(err) != apierr.KindHTTP {
		t.Fatalf("expected classified http error, got %v", err)
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("expected size in message, got %q", err.Error())
	}
}

func TestTransport_BodyAtLimitDecodes(t *testing.T) {
	pad := strings.Repeat("x", maxBodyBytes-len(`{"pad":""}`))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pad":"` + pad + `"}`))
	}))
	defer srv.Close()

	var out map[string]any
	if err := newTransport(srv.URL, nil).do(context.Background(), http.MethodGet, "/x", nil, nil, &out); err != nil {
		t.Fatalf("expected body of exactly the limit to decode, got %v", err)
	}
	if len(out["pad"].(string)) != len(pad) {
		t.Error("expected full body decoded")
	}
}
