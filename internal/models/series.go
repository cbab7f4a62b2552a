package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SeriesKind names the endpoint a series came from.
type SeriesKind string

const (
	SeriesHistory  SeriesKind = "history"
	SeriesIntraday SeriesKind = "intraday"
	SeriesChart    SeriesKind = "chart"
)

// SeriesPoint is one (timestamp, value) sample.
type SeriesPoint struct {
	Time  time.Time       `json:"timestamp"`
	Value decimal.Decimal `json:"value"`
}

// Series is an ordered, read-only price series.
type Series struct {
	Kind     SeriesKind    `json:"kind"`
	Symbol   string        `json:"symbol"`
	Type     AssetType     `json:"type"`
	Market   string        `json:"market,omitempty"`
	Period   string        `json:"period,omitempty"`
	Interval string        `json:"interval,omitempty"`
	Points   []SeriesPoint `json:"points"`
}

// Latest returns the most recent point.
func (s Series) Latest() (SeriesPoint, bool) {
	if len(s.Points) == 0 {
		return SeriesPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// ExtractPoints pulls (timestamp, close) samples out of a backend payload.
// It understands a ready-made "points" array as well as provider-style
// "Time Series (...)" maps keyed by timestamp. Points come back sorted by time.
func ExtractPoints(body map[string]any) []SeriesPoint {
	if inner, ok := body["historyData"].(map[string]any); ok {
		body = inner
	}

	var points []SeriesPoint
	if raw, ok := body["points"].([]any); ok {
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			t, okT := ParseTimestamp(fmt.Sprint(m["timestamp"]))
			v, okV := decimalOf(m["value"])
			if okT && okV {
				points = append(points, SeriesPoint{Time: t, Value: v})
			}
		}
	} else {
		for key, val := range body {
			if !strings.HasPrefix(key, "Time Series") {
				continue
			}
			samples, ok := val.(map[string]any)
			if !ok {
				continue
			}
			for ts, sample := range samples {
				t, ok := ParseTimestamp(ts)
				if !ok {
					continue
				}
				fields, ok := sample.(map[string]any)
				if !ok {
					continue
				}
				if v, ok := closeOf(fields); ok {
					points = append(points, SeriesPoint{Time: t, Value: v})
				}
			}
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

// closeOf picks the first field whose name mentions "close".
func closeOf(fields map[string]any) (decimal.Decimal, bool) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.Contains(strings.ToLower(k), "close") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if d, ok := decimalOf(fields[k]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

func decimalOf(v any) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(v)))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
