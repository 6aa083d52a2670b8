package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// marshalDocument writes fields and fixed as one flat JSON object. Keys in
// fixed win over keys in fields.
func marshalDocument(fields map[string]any, fixed map[string]any) ([]byte, error) {
	out := make(map[string]any, len(fields)+len(fixed))
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range fixed {
		out[k] = v
	}
	return json.Marshal(out)
}

func unmarshalDocument(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", ErrInvalidRequest)
	}
	normalizeNumbers(fields)
	return fields, nil
}

// takeString removes key from fields and returns its value. A missing key
// yields "", a non-string value is an error.
func takeString(fields map[string]any, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	delete(fields, key)
	if raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidRequest, key)
	}
	return s, nil
}

// normalizeNumbers turns json.Number values into int64 when they are whole
// numbers and float64 otherwise, so the BSON encoder stores real numbers.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeNumbers(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeNumbers(inner)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
