// Package rules holds the pure state transitions of the snake game.
//
// Every function here mutates only the *game.State it is given and draws
// randomness only from the *rand.Rand it is given, so a session can be
// replayed exactly from a seed.
package rules

import (
	"fmt"
	"math/rand"

	"github.com/brensch/snek-arcade/game"
)

// Result describes what a single Step did.
type Result struct {
	Moved        bool // the head advanced one cell
	Collided     bool // the step ended the game
	AteFood      bool
	AtePowerUp   bool
	LevelsGained int
	NewHighScore bool
}

// NewState returns a fresh session: a one-segment snake at the board centre
// heading Right, food placed and one power-up roll made.
func NewState(cfg game.Config, rng *rand.Rand) *game.State {
	s := &game.State{}
	Reset(s, cfg, rng)
	return s
}

// Reset reinitialises every entity of s for a new game. HighScore is kept.
func Reset(s *game.State, cfg game.Config, rng *rand.Rand) {
	s.Snake = []game.Point{cfg.Center()}
	s.Direction = game.Right
	s.Heading = game.Right
	s.HasFood = false
	s.HasPowerUp = false
	s.Score = 0
	s.Level = 1
	s.PowerUpCount = 0
	s.Turn = 0
	s.Status = game.Running

	game.SpawnFood(s, cfg, rng)
	game.SpawnPowerUp(s, cfg, rng)
}

// Turn returns the direction that results from asking to go next while
// heading current. A 180° reversal is refused and current is kept.
func Turn(current, next game.Direction) game.Direction {
	if next == current.Opposite() {
		return current
	}
	return next
}

// Steer records d as the direction for the next tick. Input is ignored while
// paused. A reversal of either the pending direction or the last committed
// heading is refused without disturbing the earlier valid request.
func Steer(s *game.State, d game.Direction) bool {
	if s.Status == game.Paused {
		return false
	}
	if Turn(s.Direction, d) != d || Turn(s.Heading, d) != d {
		return false
	}
	s.Direction = d
	return true
}

// NextHead is where the head lands after one step in the current direction.
func NextHead(s *game.State, cfg game.Config) game.Point {
	return s.Head().Add(s.Direction.Delta(cfg.CellSize))
}

// Collides reports whether a head at p hits a wall or any current segment.
func Collides(s *game.State, cfg game.Config, p game.Point) bool {
	if !cfg.InBounds(p) {
		return true
	}
	return s.Occupies(p)
}

// Step advances a running session by one tick. Sessions that are paused or
// over are left untouched.
func Step(s *game.State, cfg game.Config, rng *rand.Rand) Result {
	var res Result
	if s.Status != game.Running {
		return res
	}

	newHead := NextHead(s, cfg)
	if Collides(s, cfg, newHead) {
		s.Status = game.GameOver
		res.Collided = true
		return res
	}

	if s.HasFood && s.HasPowerUp && s.Food == s.PowerUp {
		panic(fmt.Sprintf("rules: food and power-up share cell %v", s.Food))
	}

	// Shift the body forward, remembering the vacated tail cell for growth.
	tail := s.Snake[len(s.Snake)-1]
	copy(s.Snake[1:], s.Snake[:len(s.Snake)-1])
	s.Snake[0] = newHead
	s.Heading = s.Direction
	s.Turn++
	res.Moved = true

	if s.HasFood && newHead == s.Food {
		s.Snake = append(s.Snake, tail)
		s.HasFood = false
		game.SpawnFood(s, cfg, rng)
		res.AteFood = true
		addScore(s, cfg, cfg.FoodScore, &res)
	}

	if s.HasPowerUp && newHead == s.PowerUp {
		s.Snake = append(s.Snake, tail)
		s.HasPowerUp = false
		game.SpawnPowerUp(s, cfg, rng)
		s.PowerUpCount++
		res.AtePowerUp = true
		addScore(s, cfg, cfg.PowerUpBonus, &res)
	}

	return res
}

func addScore(s *game.State, cfg game.Config, points int, res *Result) {
	s.Score += points
	if s.Score > s.HighScore {
		s.HighScore = s.Score
		res.NewHighScore = true
	}
	level := game.LevelForScore(s.Score, cfg.LevelUpScore)
	if level > s.Level {
		res.LevelsGained += level - s.Level
		s.Level = level
	}
}
