// Package game defines the core state types for the arcade snake game.
//
// These types carry no behaviour beyond small helpers: transitions live in
// the rules package and the engine package drives them on ticks. The state is
// a single explicit record so it can be cloned and inspected without a live
// renderer.
package game

import "fmt"

// Point is a grid-aligned coordinate in pixels.
// (0,0) is the top-left cell; X grows right and Y grows down.
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p offset by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"Up", "Down", "Left", "Right"}

func (d Direction) String() string {
	if d < Up || d > Right {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Opposite returns the 180° reverse of d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Delta is the offset of one step of size cell in direction d.
func (d Direction) Delta(cell int) Point {
	switch d {
	case Up:
		return Point{Y: -cell}
	case Down:
		return Point{Y: cell}
	case Left:
		return Point{X: -cell}
	default:
		return Point{X: cell}
	}
}

// Status is the lifecycle state of a session.
type Status int

const (
	Running Status = iota
	Paused
	GameOver
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case GameOver:
		return "game_over"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Sound identifies an audio intent emitted by the engine.
type Sound int

const (
	SoundEat Sound = iota
	SoundPowerUp
	SoundGameOver
)

func (s Sound) String() string {
	switch s {
	case SoundEat:
		return "eat"
	case SoundPowerUp:
		return "powerup"
	case SoundGameOver:
		return "gameover"
	}
	return fmt.Sprintf("Sound(%d)", int(s))
}

// State is the complete mutable state of one game session.
// Snake is head first. Food and PowerUp are only meaningful when the matching
// Has flag is set. Direction is the direction the next tick will move in;
// Heading is the direction of the last committed move.
type State struct {
	Snake     []Point
	Direction Direction
	Heading   Direction

	Food       Point
	HasFood    bool
	PowerUp    Point
	HasPowerUp bool

	Score        int
	HighScore    int
	Level        int
	PowerUpCount int
	Turn         int

	Status Status
}

// Head returns the first snake segment.
func (s *State) Head() Point {
	return s.Snake[0]
}

// Occupies reports whether p is one of the snake's segments.
func (s *State) Occupies(p Point) bool {
	for _, seg := range s.Snake {
		if seg == p {
			return true
		}
	}
	return false
}

// Clone performs a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.Snake != nil {
		out.Snake = make([]Point, len(s.Snake))
		copy(out.Snake, s.Snake)
	}
	return &out
}

// Snapshot is a read-only view of a session handed to renderers and other
// collaborators. It never aliases engine memory.
type Snapshot struct {
	Width    int
	Height   int
	CellSize int

	Snake      []Point
	Direction  Direction
	Food       Point
	HasFood    bool
	PowerUp    Point
	HasPowerUp bool

	Score        int
	HighScore    int
	Level        int
	Difficulty   string
	PowerUpCount int
	Turn         int
	Status       Status
}

// NewSnapshot copies s into a Snapshot for the grid described by cfg.
func NewSnapshot(s *State, cfg Config) Snapshot {
	snake := make([]Point, len(s.Snake))
	copy(snake, s.Snake)
	return Snapshot{
		Width:        cfg.Width,
		Height:       cfg.Height,
		CellSize:     cfg.CellSize,
		Snake:        snake,
		Direction:    s.Direction,
		Food:         s.Food,
		HasFood:      s.HasFood,
		PowerUp:      s.PowerUp,
		HasPowerUp:   s.HasPowerUp,
		Score:        s.Score,
		HighScore:    s.HighScore,
		Level:        s.Level,
		Difficulty:   DifficultyLabel(s.Level),
		PowerUpCount: s.PowerUpCount,
		Turn:         s.Turn,
		Status:       s.Status,
	}
}
