package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AnonymousAuthor is used when a record carries no usable author.
const AnonymousAuthor = "Anonymous Doodler"

// Message is a canonical timeline message.
type Message struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// RawRecord is a message as received from the server. Any field may be
// missing or blank.
type RawRecord struct {
	ID        string
	Author    string
	Body      string
	CreatedAt string
}

// IsZero reports whether no field was supplied.
func (r RawRecord) IsZero() bool {
	return r.ID == "" && r.Author == "" && r.Body == "" && r.CreatedAt == ""
}

// UnmarshalJSON accepts both the `_id`/`message` spelling used by the
// messages API and the plain `id`/`body` spelling. Non-string scalars are
// kept by their JSON text; objects, arrays and null are treated as absent.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = RawRecord{
		ID:        firstField(fields, "_id", "id"),
		Author:    firstField(fields, "author"),
		Body:      firstField(fields, "message", "body"),
		CreatedAt: firstField(fields, "createdAt", "created_at"),
	}
	return nil
}

// MarshalJSON writes the record in the messages API spelling.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID        string `json:"_id,omitempty"`
		Author    string `json:"author,omitempty"`
		Message   string `json:"message,omitempty"`
		CreatedAt string `json:"createdAt,omitempty"`
	}
	return json.Marshal(wire{ID: r.ID, Author: r.Author, Message: r.Body, CreatedAt: r.CreatedAt})
}

func firstField(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if value, ok := scalarText(raw); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func scalarText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return "", false
		}
		return value, true
	case '{', '[', 'n':
		return "", false
	default:
		return string(trimmed), true
	}
}

// Page is one batch of records from a single fetch, newest first.
type Page []RawRecord

// FetchParams controls a page fetch. Empty cursors mean no constraint.
type FetchParams struct {
	Before string
	After  string
	Limit  int
}

// SendInput is the payload of a new message.
type SendInput struct {
	Author string `json:"author"`
	Body   string `json:"message"`
}
