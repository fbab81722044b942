package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes && msg.Paste {
		m.insertInputText(normalizeNewlines(string(msg.Runes)))
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() != "" {
			m.input.Reset()
			m.composerError = ""
			m.resize()
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyEsc:
		m.composerError = ""
		return m, nil
	case tea.KeyCtrlJ:
		m.insertInputText("\n")
		return m, nil
	case tea.KeyEnter:
		if msg.Alt {
			m.insertInputText("\n")
			return m, nil
		}
		return m, m.submit()
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyCtrlU, tea.KeyCtrlD, tea.KeyCtrlHome, tea.KeyCtrlEnd:
		return m, m.scrollViewport(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.composerError != "" {
		if _, ok := m.composerText(); ok {
			m.composerError = ""
		}
	}
	m.resize()
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	if m.sending || m.snap.Sending || m.engine == nil {
		return nil
	}
	body, ok := m.composerText()
	if !ok {
		m.composerError = emptyMessageError
		return nil
	}
	m.composerError = ""
	m.sending = true
	return m.sendCmd(strings.TrimSpace(body))
}

func (m *Model) scrollViewport(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyPgUp:
		m.viewport.PageUp()
	case tea.KeyPgDown:
		m.viewport.PageDown()
	case tea.KeyCtrlU:
		m.viewport.HalfPageUp()
	case tea.KeyCtrlD:
		m.viewport.HalfPageDown()
	case tea.KeyCtrlHome:
		m.viewport.GotoTop()
	case tea.KeyCtrlEnd:
		m.viewport.GotoBottom()
	}
	return m.afterScroll()
}
