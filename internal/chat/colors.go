package chat

import (
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var authorPalette = []lipgloss.Color{
	lipgloss.Color("111"),
	lipgloss.Color("157"),
	lipgloss.Color("216"),
	lipgloss.Color("36"),
	lipgloss.Color("183"),
	lipgloss.Color("230"),
}

var (
	userColor   = lipgloss.Color("231")
	metaColor   = lipgloss.Color("242")
	statusColor = lipgloss.Color("244")
	errorColor  = lipgloss.Color("196")
	inputBg     = lipgloss.Color("236")
	bannerBg    = lipgloss.Color("24")
	headerBg    = lipgloss.Color("237")
)

// colorForAuthor picks a stable palette color from the author's name.
func colorForAuthor(author string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalizeAuthor(author)))
	return authorPalette[int(h.Sum32()%uint32(len(authorPalette)))]
}

// normalizeAuthor is the comparison key for authors.
func normalizeAuthor(author string) string {
	return strings.ToLower(strings.TrimSpace(author))
}
