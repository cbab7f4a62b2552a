// Package client talks to the backend asset and finance REST APIs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobmcallan/finance-portal/internal/apierr"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/google/uuid"
)

// DefaultTimeout bounds one backend round-trip.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// RequestIDHeader carries the per-request trace id to the backend.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID attaches a trace id that outgoing calls reuse instead of
// generating their own.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the trace id stored by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Option configures a client.
type Option func(*transport)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(t *transport) {
		if d > 0 {
			t.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(t *transport) {
		if hc != nil {
			t.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *common.Logger) Option {
	return func(t *transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// transport is the shared request/response plumbing of both clients.
type transport struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

func newTransport(baseURL string, opts []Option) *transport {
	t := &transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
// Every failure comes back classified: RequestError before sending,
// NetworkError when no response arrived, APIError for non-2xx statuses.
func (t *transport) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := t.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierr.FromTransport(fmt.Errorf("failed to encode request: %w", err), false)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apierr.FromTransport(err, false)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := RequestIDFrom(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	req.Header.Set(RequestIDHeader, reqID)

	t.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", reqID).
		Msg("Backend request")

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		t.logger.Error().Err(err).Str("path", path).Dur("duration", duration).Msg("Backend request failed")
		return apierr.FromTransport(err, true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return apierr.FromTransport(fmt.Errorf("failed to read response: %w", err), true)
	}
	oversized := len(respBody) > maxBodyBytes
	if oversized {
		respBody = respBody[:maxBodyBytes]
	}

	t.logger.Debug().
		Int("status_code", resp.StatusCode).
		Str("path", path).
		Dur("duration", duration).
		Msg("Backend response")

	if outcome := apierr.Evaluate(resp.StatusCode, respBody); !outcome.OK {
		t.logger.Warn().
			Int("status_code", resp.StatusCode).
			Str("path", path).
			Str("kind", string(outcome.Kind)).
			Str("message", outcome.Message).
			Msg("Backend call rejected")
		return outcome.Err()
	}

	// Error replies were classified above from the truncated body; a
	// successful one cannot be decoded partially.
	if oversized {
		t.logger.Warn().Int("status_code", resp.StatusCode).Str("path", path).Msg("Backend response too large")
		return &apierr.APIError{
			Kind:    apierr.KindHTTP,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("response body exceeds %d bytes", maxBodyBytes),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	return decode(respBody, out)
}

// decode parses JSON keeping numbers exact so prices survive as decimals.
func decode(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
