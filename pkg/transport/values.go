package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Values is a string-keyed map of scalar metadata (headers or properties).
type Values map[string]any

// String returns the value stored under name formatted as a string.
func (v Values) String(name string) string {
	raw, ok := v[name]
	if !ok || raw == nil {
		return ""
	}
	switch val := raw.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// EncodeValues serializes v as compact JSON. Keys are sorted, so equal maps
// always produce the same text.
func EncodeValues(v Values) (string, error) {
	if v == nil {
		v = Values{}
	}
	b, err := json.Marshal(map[string]any(v))
	if err != nil {
		return "", fmt.Errorf("encode values: %w", err)
	}
	return string(b), nil
}

// DecodeValues parses text produced by EncodeValues. Integral numbers decode
// as int64 and fractional numbers as float64; empty text and "null" decode
// to an empty map.
func DecodeValues(s string) (Values, error) {
	out := Values{}
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return out, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	for k, val := range raw {
		out[k] = normalizeNumber(val)
	}
	return out, nil
}

func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
