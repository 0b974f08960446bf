package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snek-arcade/engine"
	"github.com/brensch/snek-arcade/game"
)

// WatchUpdate is one event from a remote game. Exactly one of Snapshot (with
// Summary set on game over) or Err is meaningful; Closed marks the end of the
// stream.
type WatchUpdate struct {
	Snapshot game.Snapshot
	Summary  *engine.Summary
	Err      error
	Closed   bool
}

// WatchModel renders a game played elsewhere. It never sends input back.
type WatchModel struct {
	updates <-chan WatchUpdate
	styles  Styles
	source  string

	snap    game.Snapshot
	summary *engine.Summary
	seen    bool
	status  string
	frames  int
}

func NewWatchModel(source string, updates <-chan WatchUpdate) *WatchModel {
	return &WatchModel{
		updates: updates,
		styles:  DefaultStyles(),
		source:  source,
		status:  "connecting to " + source,
	}
}

func waitForUpdate(updates <-chan WatchUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return WatchUpdate{Closed: true}
		}
		return u
	}
}

func (m *WatchModel) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if act, _ := lookupKey(msg.String()); act == actionQuit {
			return m, tea.Quit
		}
	case WatchUpdate:
		switch {
		case msg.Closed:
			m.status = "stream closed"
			return m, nil
		case msg.Err != nil:
			m.status = fmt.Sprintf("error: %v", msg.Err)
			return m, nil
		}
		m.seen = true
		m.frames++
		m.snap = msg.Snapshot
		m.summary = msg.Summary
		m.status = "watching " + m.source
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m *WatchModel) View() string {
	footer := m.styles.Hint.Render(fmt.Sprintf("%s  frames: %d  [q] Quit", m.status, m.frames))
	if !m.seen {
		return footer
	}
	return Frame(m.snap, m.summary, m.styles, false, footer)
}
