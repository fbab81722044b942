package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"
)

// maxMessageLength caps composer input in runes.
const maxMessageLength = 500

const emptyMessageError = "Enter a message to send"

func newInputModel() textarea.Model {
	input := textarea.New()
	input.Placeholder = "Message"
	input.Prompt = ""
	input.ShowLineNumbers = false
	input.CharLimit = maxMessageLength
	input.SetHeight(1)
	input.FocusedStyle.CursorLine = lipgloss.NewStyle()
	input.FocusedStyle.Base = lipgloss.NewStyle().Background(inputBg)
	input.BlurredStyle.Base = lipgloss.NewStyle().Background(inputBg)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()
	return input
}

func (m *Model) insertInputText(text string) {
	if text == "" {
		return
	}
	m.input.InsertString(text)
	m.resize()
}

// composerText returns the trimmed message body and whether it can be sent.
func (m *Model) composerText() (string, bool) {
	body := strings.TrimSpace(m.input.Value())
	return body, body != ""
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
