// Package tui provides the Bubble Tea frontend for the snake game.
//
// The Model is at once the engine's renderer, its tick scheduler and its
// input adapter. Timer callbacks are delivered as messages, so ticks and key
// presses are handled one at a time on Bubble Tea's update loop.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snek-arcade/engine"
	"github.com/brensch/snek-arcade/game"
)

// Game is the part of the engine the frontend drives.
type Game interface {
	Start()
	HandleDirectionInput(d game.Direction)
	TogglePause()
	Restart()
	Snapshot() game.Snapshot
	State() game.Status
}

// timerMsg fires a callback armed with ScheduleAfter.
type timerMsg struct {
	id uint64
}

type pendingTimer struct {
	id    uint64
	after time.Duration
}

type Model struct {
	game   Game
	styles Styles
	footer string

	nextID uint64
	timers map[uint64]func()
	queued []pendingTimer

	snap    game.Snapshot
	summary *engine.Summary
}

func NewModel(footer string) *Model {
	return &Model{
		styles: DefaultStyles(),
		footer: footer,
		timers: make(map[uint64]func()),
	}
}

// Attach binds the engine. It must be called before the program starts.
func (m *Model) Attach(g Game) {
	m.game = g
	m.snap = g.Snapshot()
}

// ScheduleAfter implements engine.Scheduler. The timer is handed to Bubble
// Tea when the current message finishes processing.
func (m *Model) ScheduleAfter(d time.Duration, fn func()) {
	m.nextID++
	m.timers[m.nextID] = fn
	m.queued = append(m.queued, pendingTimer{id: m.nextID, after: d})
}

// Draw implements engine.Renderer.
func (m *Model) Draw(snap game.Snapshot) {
	m.snap = snap
	if snap.Status != game.GameOver {
		m.summary = nil
	}
}

// GameOver implements engine.Renderer.
func (m *Model) GameOver(summary engine.Summary) {
	m.snap = summary.Snapshot
	m.summary = &summary
}

func (m *Model) Init() tea.Cmd {
	m.game.Start()
	return m.flush()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerMsg:
		if fn, ok := m.timers[msg.id]; ok {
			delete(m.timers, msg.id)
			fn()
		}
	case tea.KeyMsg:
		act, dir := lookupKey(msg.String())
		switch act {
		case actionMove:
			m.game.HandleDirectionInput(dir)
		case actionPause:
			m.game.TogglePause()
		case actionRestart:
			m.game.Restart()
		case actionReplay:
			if m.game.State() == game.GameOver {
				m.game.Restart()
			}
		case actionQuit:
			return m, tea.Quit
		}
	}
	return m, m.flush()
}

func (m *Model) View() string {
	return Frame(m.snap, m.summary, m.styles, true, m.footer)
}

// flush turns timers armed during the last message into Bubble Tea commands.
func (m *Model) flush() tea.Cmd {
	if len(m.queued) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.queued))
	for _, t := range m.queued {
		id := t.id
		cmds = append(cmds, tea.Tick(t.after, func(time.Time) tea.Msg {
			return timerMsg{id: id}
		}))
	}
	m.queued = m.queued[:0]
	return tea.Batch(cmds...)
}
