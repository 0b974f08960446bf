package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snek-arcade/engine"
	"github.com/brensch/snek-arcade/game"
)

// Styles colours the board. Each grid cell is drawn two terminal columns wide
// so cells look square.
type Styles struct {
	Header  lipgloss.Style
	Border  lipgloss.Style
	Empty   lipgloss.Style
	Head    lipgloss.Style
	Body    lipgloss.Style
	Food    lipgloss.Style
	PowerUp lipgloss.Style
	Banner  lipgloss.Style
	Title   lipgloss.Style
	Hint    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).PaddingRight(2),
		Border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
		Head:    lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		Body:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Food:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		PowerUp: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")).Padding(0, 2),
		Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}
}

const (
	cellGlyph  = "██"
	emptyGlyph = "· "
)

// Header is the score line shown above the board.
func Header(snap game.Snapshot, st Styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		st.Header.Render(fmt.Sprintf("Score: %d", snap.Score)),
		st.Header.Render(fmt.Sprintf("High Score: %d", snap.HighScore)),
		st.Header.Render(fmt.Sprintf("Difficulty: %s", snap.Difficulty)),
	)
}

// Board draws the grid with the snake, food and power-up.
func Board(snap game.Snapshot, st Styles) string {
	if snap.CellSize <= 0 || snap.Width <= 0 || snap.Height <= 0 {
		return ""
	}
	cols, rows := snap.Width/snap.CellSize, snap.Height/snap.CellSize

	cells := make([]string, cols*rows)
	empty := st.Empty.Render(emptyGlyph)
	for i := range cells {
		cells[i] = empty
	}
	put := func(p game.Point, s string) {
		x, y := p.X/snap.CellSize, p.Y/snap.CellSize
		if x >= 0 && x < cols && y >= 0 && y < rows {
			cells[y*cols+x] = s
		}
	}
	if snap.HasFood {
		put(snap.Food, st.Food.Render(cellGlyph))
	}
	if snap.HasPowerUp {
		put(snap.PowerUp, st.PowerUp.Render(cellGlyph))
	}
	body := st.Body.Render(cellGlyph)
	for i := len(snap.Snake) - 1; i >= 1; i-- {
		put(snap.Snake[i], body)
	}
	if len(snap.Snake) > 0 {
		put(snap.Snake[0], st.Head.Render(cellGlyph))
	}

	var b strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(cells[y*cols:(y+1)*cols], ""))
	}
	return st.Border.Render(b.String())
}

// Frame renders the full screen for a snapshot. summary is non-nil once the
// game has ended; interactive adds the replay prompt to the game-over panel.
func Frame(snap game.Snapshot, summary *engine.Summary, st Styles, interactive bool, footer string) string {
	parts := []string{Header(snap, st), Board(snap, st)}
	switch {
	case summary != nil:
		parts = append(parts, st.Title.Render(summary.Title), summary.Message)
		if interactive {
			parts = append(parts, st.Hint.Render("[r] Replay   [q] Quit"))
		}
	case snap.Status == game.Paused:
		parts = append(parts, st.Banner.Render("PAUSED  (p to resume)"))
	}
	if footer != "" {
		parts = append(parts, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}
