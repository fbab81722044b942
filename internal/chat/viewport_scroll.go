package chat

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/scroll"
	"github.com/sadamiak/doodle/internal/timeline"
	"github.com/sadamiak/doodle/internal/types"
)

// applySnapshot renders a newer engine state and moves the viewport the way
// the scroll policy decides. Stale snapshots are ignored.
func (m *Model) applySnapshot(snap timeline.Snapshot) tea.Cmd {
	if snap.Version <= m.snap.Version {
		return nil
	}
	prev := m.snap
	prevHeight := lipgloss.Height(m.renderContent())
	input := scroll.Input{
		InitialLoad:        !prev.Loaded && snap.Loaded,
		OlderPageLoaded:    prev.PageCount() >= 1 && snap.PageCount() > prev.PageCount(),
		DistanceFromBottom: m.distanceFromBottom(),
		PrevOffset:         m.viewport.YOffset,
	}

	m.snap = snap
	content := m.renderContent()
	input.HeightAdded = lipgloss.Height(content) - prevHeight
	m.setContent(content)

	decision := scroll.Decide(input, m.thresholds)
	switch decision.Action {
	case scroll.StickToBottom:
		m.viewport.GotoBottom()
		m.clearNewMessageNotification()
	case scroll.PreserveAnchor:
		m.viewport.SetYOffset(decision.Offset)
	}

	var cmds []tea.Cmd
	fresh := m.freshMessages(prev, snap)
	if len(fresh) > 0 && !input.InitialLoad && !input.OlderPageLoaded {
		if decision.Action == scroll.None {
			for _, msg := range fresh {
				m.addNewMessageAuthor(msg.Author)
			}
		}
		if !m.focused {
			cmds = append(cmds, m.notifyCmd(fresh))
		}
	}
	for _, msg := range snap.Messages {
		m.seen[msg.ID] = struct{}{}
	}
	cmds = append(cmds, m.fillCmd())
	return tea.Batch(cmds...)
}

// freshMessages returns unseen messages from other authors that are newer
// than the previous newest message.
func (m *Model) freshMessages(prev, next timeline.Snapshot) []types.Message {
	newest, hasNewest := core.ParseTimestamp(prev.Newest())
	own := normalizeAuthor(m.author)
	var fresh []types.Message
	for _, msg := range next.Messages {
		if _, ok := m.seen[msg.ID]; ok {
			continue
		}
		if normalizeAuthor(msg.Author) == own {
			continue
		}
		if hasNewest {
			if ts, ok := core.ParseTimestamp(msg.CreatedAt); ok && !ts.After(newest) {
				continue
			}
		}
		fresh = append(fresh, msg)
	}
	return fresh
}

// setContent pads short content so messages sit at the bottom.
func (m *Model) setContent(content string) {
	if height := lipgloss.Height(content); m.viewport.Height > 0 && height < m.viewport.Height {
		content = strings.Repeat("\n", m.viewport.Height-height) + content
	}
	m.viewport.SetContent(content)
	if maxOffset := m.maxOffset(); m.viewport.YOffset > maxOffset {
		m.viewport.SetYOffset(maxOffset)
	}
}

func (m *Model) refreshViewport(scrollToBottom bool) {
	m.setContent(m.renderContent())
	if scrollToBottom {
		m.viewport.GotoBottom()
		m.clearNewMessageNotification()
	}
}

func (m *Model) maxOffset() int {
	offset := m.viewport.TotalLineCount() - m.viewport.Height
	if offset < 0 {
		return 0
	}
	return offset
}

func (m *Model) distanceFromBottom() int {
	if m.viewport.Height <= 0 {
		return 0
	}
	distance := m.maxOffset() - m.viewport.YOffset
	if distance < 0 {
		return 0
	}
	return distance
}

// afterScroll runs after the viewer moved the viewport.
func (m *Model) afterScroll() tea.Cmd {
	if m.distanceFromBottom() < m.thresholds.NearBottom {
		m.clearNewMessageNotification()
	}
	if scroll.ShouldLoadOlder(m.viewport.YOffset, m.snap.HasOlder, m.snap.LoadingOlder, m.thresholds) {
		return m.loadOlderCmd()
	}
	return nil
}

// fillCmd loads older history while the messages do not fill the viewport.
func (m *Model) fillCmd() tea.Cmd {
	if m.viewport.Height <= 0 || !m.snap.Loaded {
		return nil
	}
	if !scroll.NeedsFill(lipgloss.Height(m.renderContent()), m.viewport.Height, m.thresholds) {
		return nil
	}
	return m.loadOlderCmd()
}

// addNewMessageAuthor adds an author to the pending new message notification list
func (m *Model) addNewMessageAuthor(author string) {
	for _, existing := range m.newMessageAuthors {
		if existing == author {
			return
		}
	}
	m.newMessageAuthors = append(m.newMessageAuthors, author)
}

func (m *Model) clearNewMessageNotification() {
	m.newMessageAuthors = nil
}

func (m *Model) now() time.Time {
	return m.clock.Now()
}
