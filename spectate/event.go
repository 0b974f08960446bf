// Package spectate streams a running game to read-only viewers over
// websockets.
//
// The Hub is an engine.Renderer: every draw intent becomes a JSON event that
// is fanned out to connected clients. Watch connects to a hub and decodes the
// stream back into snapshots.
package spectate

import (
	"encoding/json"
	"fmt"

	"github.com/brensch/snek-arcade/engine"
	"github.com/brensch/snek-arcade/game"
)

const (
	EventFrame    = "frame"
	EventGameOver = "game_over"
)

// Event is one message on the stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Frame is the wire form of game.Snapshot.
type Frame struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	CellSize     int     `json:"cell_size"`
	Turn         int     `json:"turn"`
	Status       string  `json:"status"`
	Direction    string  `json:"direction"`
	Snake        []Coord `json:"snake"`
	Food         *Coord  `json:"food,omitempty"`
	PowerUp      *Coord  `json:"power_up,omitempty"`
	Score        int     `json:"score"`
	HighScore    int     `json:"high_score"`
	Level        int     `json:"level"`
	Difficulty   string  `json:"difficulty"`
	PowerUpCount int     `json:"power_up_count"`
}

type GameOver struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Frame   Frame  `json:"frame"`
}

func NewFrame(snap game.Snapshot) Frame {
	f := Frame{
		Width:        snap.Width,
		Height:       snap.Height,
		CellSize:     snap.CellSize,
		Turn:         snap.Turn,
		Status:       snap.Status.String(),
		Direction:    snap.Direction.String(),
		Snake:        make([]Coord, len(snap.Snake)),
		Score:        snap.Score,
		HighScore:    snap.HighScore,
		Level:        snap.Level,
		Difficulty:   snap.Difficulty,
		PowerUpCount: snap.PowerUpCount,
	}
	for i, p := range snap.Snake {
		f.Snake[i] = Coord{X: p.X, Y: p.Y}
	}
	if snap.HasFood {
		f.Food = &Coord{X: snap.Food.X, Y: snap.Food.Y}
	}
	if snap.HasPowerUp {
		f.PowerUp = &Coord{X: snap.PowerUp.X, Y: snap.PowerUp.Y}
	}
	return f
}

var statuses = map[string]game.Status{
	game.Running.String():  game.Running,
	game.Paused.String():   game.Paused,
	game.GameOver.String(): game.GameOver,
}

var directions = map[string]game.Direction{
	game.Up.String():    game.Up,
	game.Down.String():  game.Down,
	game.Left.String():  game.Left,
	game.Right.String(): game.Right,
}

// Snapshot converts the frame back for rendering.
func (f Frame) Snapshot() (game.Snapshot, error) {
	status, ok := statuses[f.Status]
	if !ok {
		return game.Snapshot{}, fmt.Errorf("unknown status %q", f.Status)
	}
	dir, ok := directions[f.Direction]
	if !ok {
		return game.Snapshot{}, fmt.Errorf("unknown direction %q", f.Direction)
	}
	snap := game.Snapshot{
		Width:        f.Width,
		Height:       f.Height,
		CellSize:     f.CellSize,
		Snake:        make([]game.Point, len(f.Snake)),
		Direction:    dir,
		Score:        f.Score,
		HighScore:    f.HighScore,
		Level:        f.Level,
		Difficulty:   f.Difficulty,
		PowerUpCount: f.PowerUpCount,
		Turn:         f.Turn,
		Status:       status,
	}
	for i, c := range f.Snake {
		snap.Snake[i] = game.Point{X: c.X, Y: c.Y}
	}
	if f.Food != nil {
		snap.Food, snap.HasFood = game.Point{X: f.Food.X, Y: f.Food.Y}, true
	}
	if f.PowerUp != nil {
		snap.PowerUp, snap.HasPowerUp = game.Point{X: f.PowerUp.X, Y: f.PowerUp.Y}, true
	}
	return snap, nil
}

func encodeEvent(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return json.Marshal(Event{Type: typ, Data: raw})
}

// DecodeFrame unpacks a frame event.
func DecodeFrame(ev Event) (game.Snapshot, error) {
	if ev.Type != EventFrame {
		return game.Snapshot{}, fmt.Errorf("event %q is not a frame", ev.Type)
	}
	var f Frame
	if err := json.Unmarshal(ev.Data, &f); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode frame: %w", err)
	}
	return f.Snapshot()
}

// DecodeGameOver unpacks a game_over event.
func DecodeGameOver(ev Event) (engine.Summary, error) {
	if ev.Type != EventGameOver {
		return engine.Summary{}, fmt.Errorf("event %q is not game_over", ev.Type)
	}
	var g GameOver
	if err := json.Unmarshal(ev.Data, &g); err != nil {
		return engine.Summary{}, fmt.Errorf("decode game over: %w", err)
	}
	snap, err := g.Frame.Snapshot()
	if err != nil {
		return engine.Summary{}, err
	}
	return engine.Summary{Title: g.Title, Message: g.Message, Snapshot: snap}, nil
}
