package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadamiak/doodle/internal/timeline"
	"github.com/sadamiak/doodle/internal/types"
)

// snapshotMsg carries a published engine state.
type snapshotMsg struct {
	snap   timeline.Snapshot
	change timeline.Change
}

type opKind string

const (
	opInitial opKind = "initial"
	opOlder   opKind = "older"
)

// opDoneMsg reports a finished fetch along with the state it produced.
type opDoneMsg struct {
	op   opKind
	snap timeline.Snapshot
	err  error
}

type sendDoneMsg struct {
	msg  types.Message
	snap timeline.Snapshot
	err  error
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	case tea.FocusMsg:
		m.focused = true
		if m.scheduler != nil {
			m.scheduler.Focus()
		}
		return m, nil
	case tea.BlurMsg:
		m.focused = false
		return m, nil
	case snapshotMsg:
		return m, m.applySnapshot(msg.snap)
	case opDoneMsg:
		return m.handleOpDone(msg)
	case sendDoneMsg:
		return m.handleSendDone(msg)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.resize()
	return m, m.fillCmd()
}

func (m *Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Debug().Err(msg.err).Str("op", string(msg.op)).Msg("fetch finished with error")
	}
	return m, m.applySnapshot(msg.snap)
}

func (m *Model) handleSendDone(msg sendDoneMsg) (tea.Model, tea.Cmd) {
	m.sending = false
	cmd := m.applySnapshot(msg.snap)
	if msg.err != nil && msg.msg.ID == "" {
		m.composerError = msg.err.Error()
		return m, cmd
	}
	m.composerError = ""
	m.input.Reset()
	m.resize()
	m.viewport.GotoBottom()
	m.clearNewMessageNotification()
	return m, cmd
}

func (m *Model) loadInitialCmd() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		err := engine.LoadInitial(ctx)
		return opDoneMsg{op: opInitial, snap: engine.Snapshot(), err: err}
	}
}

func (m *Model) loadOlderCmd() tea.Cmd {
	if m.engine == nil || !m.snap.HasOlder || m.snap.LoadingOlder {
		return nil
	}
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		_, err := engine.LoadOlder(ctx)
		return opDoneMsg{op: opOlder, snap: engine.Snapshot(), err: err}
	}
}

func (m *Model) sendCmd(body string) tea.Cmd {
	engine, ctx, author := m.engine, m.ctx, m.author
	return func() tea.Msg {
		sent, err := engine.Send(ctx, author, body)
		return sendDoneMsg{msg: sent, snap: engine.Snapshot(), err: err}
	}
}
