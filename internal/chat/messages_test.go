package chat

import (
	"testing"
	"time"
)

func TestFormatTimestampLabel(t *testing.T) {
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.Local)
	tests := []struct {
		name      string
		createdAt string
		want      string
	}{
		{"seconds", now.Add(-10 * time.Second).UTC().Format(time.RFC3339), "just now"},
		{"minutes", now.Add(-5 * time.Minute).UTC().Format(time.RFC3339), "5 minutes ago"},
		{"hours", now.Add(-3 * time.Hour).UTC().Format(time.RFC3339), "3 hours ago"},
		{"older", now.Add(-48 * time.Hour).UTC().Format(time.RFC3339), "Feb 28, 12:00 PM"},
		{"unparseable", "yesterday-ish", "yesterday-ish"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimestampLabel(tt.createdAt, now); got != tt.want {
				t.Errorf("formatTimestampLabel(%q) = %q, want %q", tt.createdAt, got, tt.want)
			}
		})
	}
}

func TestNewMessagesLabel(t *testing.T) {
	tests := []struct {
		authors []string
		want    string
	}{
		{nil, ""},
		{[]string{"bob"}, "↓ New messages from bob"},
		{[]string{"bob", "carol"}, "↓ New messages from bob and carol"},
		{[]string{"bob", "carol", "dan"}, "↓ New messages from bob and 2 others"},
	}
	for _, tt := range tests {
		if got := newMessagesLabel(tt.authors); got != tt.want {
			t.Errorf("newMessagesLabel(%v) = %q, want %q", tt.authors, got, tt.want)
		}
	}
}

func TestAddNewMessageAuthorDedupes(t *testing.T) {
	m := &Model{}
	m.addNewMessageAuthor("bob")
	m.addNewMessageAuthor("carol")
	m.addNewMessageAuthor("bob")
	if len(m.newMessageAuthors) != 2 {
		t.Fatalf("expected 2 authors, got %v", m.newMessageAuthors)
	}
	m.clearNewMessageNotification()
	if m.newMessageAuthors != nil {
		t.Fatalf("expected cleared authors")
	}
}
