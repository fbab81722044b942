package chat

import (
	"testing"

	"github.com/sadamiak/doodle/internal/types"
)

func TestTruncateNotification(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 100, "short"},
		{"hello\nworld", 100, "hello world"},
		{"  multiple   spaces  ", 100, "multiple spaces"},
		{"this is a long message that needs truncation", 20, "this is a long mess…"},
		{"héllo wörld", 6, "héllo…"},
		{"", 100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := truncateNotification(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncateNotification(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNotificationText(t *testing.T) {
	title, body := notificationText("lobby", []types.Message{{Author: "bob", Body: "hi"}})
	if title != "lobby · bob" || body != "hi" {
		t.Fatalf("got %q / %q", title, body)
	}

	title, body = notificationText("", []types.Message{
		{Author: "bob", Body: "one"},
		{Author: "", Body: "two"},
	})
	if title != types.AnonymousAuthor || body != "two (+1 more)" {
		t.Fatalf("got %q / %q", title, body)
	}
}
