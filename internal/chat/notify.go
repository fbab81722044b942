package chat

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/sadamiak/doodle/internal/types"
)

// SendNotification raises a desktop notification.
func SendNotification(title, body string) error {
	return beeep.Notify(title, body, "")
}

// notifyCmd announces messages that arrived while the terminal was unfocused.
func (m *Model) notifyCmd(fresh []types.Message) tea.Cmd {
	if len(fresh) == 0 || m.notify == nil {
		return nil
	}
	title, body := notificationText(m.title, fresh)
	notify, logger := m.notify, m.logger
	return func() tea.Msg {
		if err := notify(title, body); err != nil {
			logger.Debug().Err(err).Msg("notification failed")
		}
		return nil
	}
}

func notificationText(room string, fresh []types.Message) (string, string) {
	last := fresh[len(fresh)-1]
	title := displayAuthor(last.Author)
	if room != "" {
		title = room + " · " + title
	}
	body := truncateNotification(last.Body, 100)
	if len(fresh) > 1 {
		body = truncateNotification(last.Body, 80) + " (+" + strconv.Itoa(len(fresh)-1) + " more)"
	}
	return title, body
}

func truncateNotification(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
