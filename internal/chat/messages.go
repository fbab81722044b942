package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/types"
)

const (
	loadingText      = "Loading messages…"
	emptyTitle       = "No messages yet"
	emptyHint        = "Say hello to kick off the conversation."
	loadingOlderText = "Loading older messages…"
	loadOlderText    = "↑ Load older messages"
	beginningText    = "Beginning of conversation"
)

// renderContent renders the scrollable part of the screen: the history
// banner followed by the message list.
func (m *Model) renderContent() string {
	meta := lipgloss.NewStyle().Foreground(metaColor)
	if len(m.snap.Messages) == 0 {
		if !m.snap.Loaded || m.snap.LoadingInitial {
			return meta.Render(loadingText)
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(emptyTitle),
			meta.Render(emptyHint),
		)
	}
	return m.renderBanner() + "\n\n" + m.renderMessages()
}

func (m *Model) renderBanner() string {
	meta := lipgloss.NewStyle().Foreground(metaColor).Italic(true)
	switch {
	case m.snap.LoadingOlder:
		return meta.Render(loadingOlderText)
	case m.snap.HasOlder:
		return m.zoneManager.Mark(loadOlderZone, lipgloss.NewStyle().Foreground(statusColor).Underline(true).Render(loadOlderText))
	default:
		return meta.Render(beginningText)
	}
}

func (m *Model) renderMessages() string {
	chunks := make([]string, 0, len(m.snap.Messages))
	prevAuthor := ""
	for i, msg := range m.snap.Messages {
		showAuthor := i == 0 || normalizeAuthor(msg.Author) != prevAuthor
		prevAuthor = normalizeAuthor(msg.Author)
		chunks = append(chunks, m.formatMessage(msg, showAuthor))
	}
	return strings.Join(chunks, "\n")
}

func (m *Model) isOwn(msg types.Message) bool {
	return normalizeAuthor(msg.Author) == normalizeAuthor(m.author)
}

// formatMessage renders one message. Consecutive messages from the same
// author share a byline; the viewer's own messages never show one.
func (m *Model) formatMessage(msg types.Message, showAuthor bool) string {
	own := m.isOwn(msg)
	color := colorForAuthor(msg.Author)
	if own {
		color = userColor
	}

	width := m.viewport.Width
	body := highlightCodeBlocks(msg.Body)
	if width > 2 {
		body = ansi.Wrap(body, width-2, "")
	}

	gutter := "  "
	if own {
		gutter = lipgloss.NewStyle().Foreground(statusColor).Render("▌ ")
	}
	bodyLines := strings.Split(body, "\n")
	for i, line := range bodyLines {
		bodyLines[i] = gutter + lipgloss.NewStyle().Foreground(color).Render(line)
	}

	stamp := lipgloss.NewStyle().Foreground(metaColor).Faint(true).Render(formatTimestampLabel(msg.CreatedAt, m.now()))
	var lines []string
	if showAuthor && !own {
		byline := lipgloss.NewStyle().Foreground(color).Bold(true).Render(displayAuthor(msg.Author))
		lines = append(lines, "", byline+"  "+stamp)
	} else if showAuthor {
		lines = append(lines, "", stamp)
	}
	lines = append(lines, bodyLines...)
	return strings.Join(lines, "\n")
}

func displayAuthor(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return types.AnonymousAuthor
	}
	return author
}

// formatTimestampLabel renders recent messages relative to now and older
// ones as a short date. Unparseable timestamps are shown as-is.
func formatTimestampLabel(createdAt string, now time.Time) string {
	ts, ok := core.ParseTimestamp(createdAt)
	if !ok {
		return createdAt
	}
	ts = ts.Local()
	if age := now.Sub(ts); age >= 0 && age < 24*time.Hour {
		if age < time.Minute {
			return "just now"
		}
		return humanize.RelTime(ts, now, "ago", "from now")
	}
	return ts.Format("Jan 2, 3:04 PM")
}

func newMessagesLabel(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("↓ New messages from %s", authors[0])
	case 2:
		return fmt.Sprintf("↓ New messages from %s and %s", authors[0], authors[1])
	default:
		return fmt.Sprintf("↓ New messages from %s and %d others", authors[0], len(authors)-1)
	}
}
