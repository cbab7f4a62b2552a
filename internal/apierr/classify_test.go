package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{"400 with detail", 400, `{"error":"Invalid symbol 'X' for type 'stock'"}`, KindInvalidRequest, "Invalid symbol 'X' for type 'stock'"},
		{"400 without body", 400, ``, KindInvalidRequest, MsgInvalidRequest},
		{"404 with detail", 404, `{"error":"Asset not found"}`, KindNotFound, "Asset not found"},
		{"404 without detail", 404, `{"success":false}`, KindNotFound, MsgNotFound},
		{"429 without body", 429, ``, KindRateLimited, MsgRateLimited},
		{"429 ignores detail", 429, `{"error":"slow down"}`, KindRateLimited, MsgRateLimited},
		{"500 with detail", 500, `{"error":"database down"}`, KindServerError, "database down"},
		{"500 html body", 500, `<html>oops</html>`, KindServerError, MsgServerError},
		{"503 generic", 503, ``, KindHTTP, "HTTP 503"},
		{"418 with detail", 418, `{"error":"teapot"}`, KindHTTP, "teapot"},
		{"non-string error field", 400, `{"error":{"code":1}}`, KindInvalidRequest, MsgInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.status, []byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, err.Kind)
			}
			if err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, err.Message)
			}
			if err.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, err.Status)
			}
		})
	}
}

func TestClassify_Success(t *testing.T) {
	for _, status := range []int{200, 201, 204} {
		if err := Classify(status, nil); err != nil {
			t.Errorf("status %d: expected nil, got %v", status, err)
		}
		o := Evaluate(status, nil)
		if !o.OK || o.Err() != nil {
			t.Errorf("status %d: expected OK outcome", status)
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	body := []byte(`{"error":"Asset not found"}`)
	a := Evaluate(http.StatusNotFound, body)
	b := Evaluate(http.StatusNotFound, body)
	if a != b {
		t.Errorf("expected identical outcomes, got %+v and %+v", a, b)
	}
	var apiErr *APIError
	if !errors.As(a.Err(), &apiErr) || apiErr.Message != "Asset not found" {
		t.Errorf("unexpected outcome error %v", a.Err())
	}
}

func TestFromTransport(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	sent := FromTransport(cause, true)
	if sent.Error() != MsgUnreachable {
		t.Errorf("expected %q, got %q", MsgUnreachable, sent.Error())
	}
	if KindOf(sent) != KindNetwork {
		t.Errorf("expected network kind, got %s", KindOf(sent))
	}
	if !errors.Is(sent, cause) {
		t.Error("expected network error to unwrap to cause")
	}

	built := FromTransport(errors.New("parse \"::\": missing protocol scheme"), false)
	if built.Error() != "parse \"::\": missing protocol scheme" {
		t.Errorf("expected underlying message, got %q", built.Error())
	}
	if KindOf(built) != KindRequest {
		t.Errorf("expected request kind, got %s", KindOf(built))
	}

	if FromTransport(nil, false).Error() != MsgUnknown {
		t.Error("expected unknown message for nil cause")
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("fetch price: %w", &APIError{Kind: KindRateLimited, Status: 429, Message: MsgRateLimited})
	if KindOf(wrapped) != KindRateLimited {
		t.Errorf("expected rate_limited through wrapping, got %s", KindOf(wrapped))
	}
	if KindOf(Validation("symbol", "is required")) != KindValidation {
		t.Error("expected validation kind")
	}
	if !IsValidation(fmt.Errorf("wrap: %w", Validation("", "symbols are required"))) {
		t.Error("expected IsValidation through wrapping")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("expected empty kind for foreign error")
	}
}

func TestValidationError_Message(t *testing.T) {
	if got := Validation("symbol", "is required").Error(); got != "symbol: is required" {
		t.Errorf("unexpected message %q", got)
	}
	if got := Validation("", "symbols are required").Error(); got != "symbols are required" {
		t.Errorf("unexpected message %q", got)
	}
}
