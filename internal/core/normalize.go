package core

import (
	"strings"

	"github.com/sadamiak/doodle/internal/types"
)

// Normalizer turns raw server records into canonical messages.
type Normalizer struct {
	Clock Clock
}

// NewNormalizer returns a Normalizer reading time from clock. A nil clock
// uses the system clock.
func NewNormalizer(clock Clock) *Normalizer {
	if clock == nil {
		clock = SystemClock
	}
	return &Normalizer{Clock: clock}
}

// Normalize never fails. Records without an id get the weak fallback
// identity "<createdAt>-<author>-<body>"; records without a timestamp get
// the current time, so normalizing such a record twice can differ.
func (n *Normalizer) Normalize(raw types.RawRecord) types.Message {
	timestamp := firstNonBlank(raw.CreatedAt)
	body := firstNonBlank(raw.Body)
	author := firstNonBlank(raw.Author)
	if author == "" {
		author = types.AnonymousAuthor
	}

	id := firstNonBlank(raw.ID)
	if id == "" {
		id = timestamp + "-" + author + "-" + body
	}
	if timestamp == "" {
		timestamp = FormatTimestamp(n.clock().Now())
	}

	return types.Message{
		ID:        id,
		Author:    author,
		Body:      body,
		CreatedAt: timestamp,
	}
}

// NormalizePage normalizes every record in order.
func (n *Normalizer) NormalizePage(page types.Page) []types.Message {
	messages := make([]types.Message, 0, len(page))
	for _, raw := range page {
		messages = append(messages, n.Normalize(raw))
	}
	return messages
}

func (n *Normalizer) clock() Clock {
	if n == nil || n.Clock == nil {
		return SystemClock
	}
	return n.Clock
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
