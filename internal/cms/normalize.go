package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NormalizeList turns any list-shaped API response into its elements: a bare
// array yields its elements, an object with an array "results" (DRF
// pagination) yields those. Every other shape yields an empty, non-nil slice.
// Only malformed JSON is an error.
func NormalizeList(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []json.RawMessage{}, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("cms: response is not valid JSON")
	}
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		if items == nil {
			items = []json.RawMessage{}
		}
		return items, nil
	case '{':
		var envelope struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		results := bytes.TrimSpace(envelope.Results)
		if len(results) == 0 || results[0] != '[' {
			return []json.RawMessage{}, nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal(results, &items); err != nil {
			return nil, err
		}
		if items == nil {
			items = []json.RawMessage{}
		}
		return items, nil
	}
	return []json.RawMessage{}, nil
}

// DecodeList normalizes body and decodes every element into T. Elements that
// do not fit T are left out; skipped, when non-nil, receives each one's index
// and decode error.
func DecodeList[T any](body []byte, skipped func(index int, err error)) ([]T, error) {
	raw, err := NormalizeList(body)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			if skipped != nil {
				skipped(i, err)
			}
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
