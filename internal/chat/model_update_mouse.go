package chat

import tea "github.com/charmbracelet/bubbletea"

const loadOlderZone = "load-older"
const newMessagesZone = "new-messages"

func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Shift {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if m.zoneManager.Get(loadOlderZone).InBounds(msg) {
			return m, m.loadOlderCmd()
		}
		if m.zoneManager.Get(newMessagesZone).InBounds(msg) {
			m.viewport.GotoBottom()
			m.clearNewMessageNotification()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, tea.Batch(cmd, m.afterScroll())
}
