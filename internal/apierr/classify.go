package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// User-facing messages.
const (
	MsgInvalidRequest = "invalid request"
	MsgNotFound       = "not found"
	MsgRateLimited    = "rate limited, retry later"
	MsgServerError    = "server error"
	MsgUnreachable    = "server unreachable"
	MsgUnknown        = "unknown error"
)

// Outcome is the discriminated result of a backend call, derived only from
// the status code and body.
type Outcome struct {
	OK      bool
	Status  int
	Kind    Kind
	Message string
}

// Err returns the outcome as an *APIError, or nil when OK.
func (o Outcome) Err() error {
	if o.OK {
		return nil
	}
	return &APIError{Kind: o.Kind, Status: o.Status, Message: o.Message}
}

// Evaluate derives the Outcome for a response.
func Evaluate(status int, body []byte) Outcome {
	if status >= 200 && status < 300 {
		return Outcome{OK: true, Status: status}
	}
	detail := ServerDetail(body)
	o := Outcome{Status: status}
	switch status {
	case http.StatusBadRequest:
		o.Kind, o.Message = KindInvalidRequest, orDefault(detail, MsgInvalidRequest)
	case http.StatusNotFound:
		o.Kind, o.Message = KindNotFound, orDefault(detail, MsgNotFound)
	case http.StatusTooManyRequests:
		o.Kind, o.Message = KindRateLimited, MsgRateLimited
	case http.StatusInternalServerError:
		o.Kind, o.Message = KindServerError, orDefault(detail, MsgServerError)
	default:
		o.Kind, o.Message = KindHTTP, orDefault(detail, fmt.Sprintf("HTTP %d", status))
	}
	return o
}

// Classify maps a non-2xx response to an *APIError.
func Classify(status int, body []byte) *APIError {
	o := Evaluate(status, body)
	if o.OK {
		return nil
	}
	return &APIError{Kind: o.Kind, Status: o.Status, Message: o.Message}
}

// FromTransport classifies a failure that produced no response: a request
// that could not be built is a RequestError, anything after sending is a
// NetworkError.
func FromTransport(err error, sent bool) error {
	if sent {
		return &NetworkError{Err: err}
	}
	return &RequestError{Err: err}
}

// ServerDetail extracts the backend's "error" string from a JSON body, or
// "" when the body carries none.
func ServerDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Error.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
