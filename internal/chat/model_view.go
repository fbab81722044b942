package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func (m *Model) View() string {
	width := m.mainWidth()
	header := lipgloss.NewStyle().Background(headerBg).Bold(true).Padding(0, 1).Width(width).Render(m.title)

	lines := []string{header}
	if banner := m.errorBanner(); banner != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(errorColor).Width(width).Render(truncateLine(banner, width)))
	}
	lines = append(lines, m.viewport.View(), m.renderSlotLine())
	lines = append(lines, m.renderInput())
	lines = append(lines, lipgloss.NewStyle().Foreground(statusColor).Render(m.statusLine()))
	return m.zoneManager.Scan(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// errorBanner reports the latest fetch error, falling back to the send error.
func (m *Model) errorBanner() string {
	switch {
	case m.snap.LastFetchError != nil:
		return m.snap.LastFetchError.Error()
	case m.snap.LastSendError != nil && m.composerError == "":
		return m.snap.LastSendError.Error()
	}
	return ""
}

// renderSlotLine shows the composer error or the new messages bar.
func (m *Model) renderSlotLine() string {
	width := m.mainWidth()
	if m.composerError != "" {
		return lipgloss.NewStyle().Foreground(errorColor).Render(truncateLine(m.composerError, width))
	}
	if label := newMessagesLabel(m.newMessageAuthors); label != "" {
		bar := lipgloss.NewStyle().Background(bannerBg).Foreground(userColor).Width(width).Render(truncateLine(label, width))
		return m.zoneManager.Mark(newMessagesZone, bar)
	}
	return ""
}

func (m *Model) renderInput() string {
	style := lipgloss.NewStyle().Background(inputBg).Padding(1, 0, 1, inputPadding)
	if width := m.mainWidth(); width > 0 {
		style = style.Width(width)
	}
	return style.Render(m.input.View())
}

func (m *Model) statusLine() string {
	left := "@" + m.author
	if m.status != "" {
		left = fmt.Sprintf("%s · %s", left, m.status)
	}
	if m.sending || m.snap.Sending {
		left += " · sending…"
	}
	count := len(m.snap.Messages)
	right := fmt.Sprintf("%d messages", count)
	if count == 1 {
		right = "1 message"
	}
	if m.input.Value() == "" {
		right += " · ctrl+c to quit"
	}
	return alignStatusLine(left, right, m.mainWidth())
}

func alignStatusLine(left, right string, width int) string {
	if width <= 0 || right == "" {
		return left
	}
	leftWidth := ansi.StringWidth(left)
	rightWidth := ansi.StringWidth(right)
	if leftWidth+rightWidth+1 > width {
		return left
	}
	spaces := width - leftWidth - rightWidth
	return left + strings.Repeat(" ", spaces) + right
}

func truncateLine(value string, maxLen int) string {
	if maxLen <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
