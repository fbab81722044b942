package api

import (
	"bytes"
	"encoding/json"

	"github.com/sadamiak/doodle/internal/types"
)

// EnvelopeKind names the response shapes the messages API may return.
type EnvelopeKind int

const (
	EnvelopeUnknown EnvelopeKind = iota
	EnvelopeArray
	EnvelopeData
	EnvelopeMessages
	EnvelopeSingle
)

func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopeArray:
		return "array"
	case EnvelopeData:
		return "data"
	case EnvelopeMessages:
		return "messages"
	case EnvelopeSingle:
		return "message"
	default:
		return "unknown"
	}
}

// Envelope is a parsed response body.
type Envelope struct {
	Kind    EnvelopeKind
	Records types.Page
	// Bare is set when an unknown-shaped object looks like a record itself.
	Bare *types.RawRecord
}

type shapePredicate struct {
	kind  EnvelopeKind
	match func(trimmed []byte, fields map[string]json.RawMessage) (json.RawMessage, bool)
}

// Shapes are tried in order; the first match wins.
var shapePredicates = []shapePredicate{
	{kind: EnvelopeArray, match: func(trimmed []byte, _ map[string]json.RawMessage) (json.RawMessage, bool) {
		return trimmed, isJSONArray(trimmed)
	}},
	{kind: EnvelopeData, match: fieldMatcher("data", isJSONArray)},
	{kind: EnvelopeMessages, match: fieldMatcher("messages", isJSONArray)},
	{kind: EnvelopeSingle, match: fieldMatcher("message", isJSONObject)},
}

func fieldMatcher(name string, accept func([]byte) bool) func([]byte, map[string]json.RawMessage) (json.RawMessage, bool) {
	return func(_ []byte, fields map[string]json.RawMessage) (json.RawMessage, bool) {
		raw, ok := fields[name]
		if !ok {
			return nil, false
		}
		raw = bytes.TrimSpace(raw)
		return raw, accept(raw)
	}
}

// ParseEnvelope classifies body and extracts its records. An empty body is
// an unknown envelope with no records; malformed JSON is an error.
func ParseEnvelope(body []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Envelope{Kind: EnvelopeUnknown}, nil
	}
	if !json.Valid(trimmed) {
		var decoded any
		return Envelope{}, json.Unmarshal(trimmed, &decoded)
	}

	var fields map[string]json.RawMessage
	if isJSONObject(trimmed) {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return Envelope{}, err
		}
	}

	for _, shape := range shapePredicates {
		raw, ok := shape.match(trimmed, fields)
		if !ok {
			continue
		}
		records, err := decodeRecords(shape.kind, raw)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{Kind: shape.kind, Records: records}, nil
	}

	env := Envelope{Kind: EnvelopeUnknown}
	if fields != nil {
		var record types.RawRecord
		if err := json.Unmarshal(trimmed, &record); err == nil && !record.IsZero() {
			env.Bare = &record
		}
	}
	return env, nil
}

func decodeRecords(kind EnvelopeKind, raw json.RawMessage) (types.Page, error) {
	if kind == EnvelopeSingle {
		var record types.RawRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, err
		}
		return types.Page{record}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	page := make(types.Page, 0, len(items))
	for _, item := range items {
		var record types.RawRecord
		if isJSONObject(bytes.TrimSpace(item)) {
			if err := json.Unmarshal(item, &record); err != nil {
				return nil, err
			}
		}
		page = append(page, record)
	}
	return page, nil
}

func isJSONArray(raw []byte) bool {
	return len(raw) > 0 && raw[0] == '['
}

func isJSONObject(raw []byte) bool {
	return len(raw) > 0 && raw[0] == '{'
}
