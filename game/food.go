// food.go implements food and power-up spawning.

package game

import (
	"math/rand"
)

// freeCells lists every grid cell not covered by the snake or by any of the
// extra points.
func freeCells(state *State, cfg Config, extra ...Point) []Point {
	occupied := make(map[Point]struct{}, len(state.Snake)+len(extra))
	for _, p := range state.Snake {
		occupied[p] = struct{}{}
	}
	for _, p := range extra {
		occupied[p] = struct{}{}
	}

	cols, rows := cfg.Columns(), cfg.Rows()
	free := make([]Point, 0, cols*rows-len(occupied))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := Point{X: x * cfg.CellSize, Y: y * cfg.CellSize}
			if _, ok := occupied[p]; !ok {
				free = append(free, p)
			}
		}
	}
	return free
}

// SpawnFood places food uniformly at random over the cells not covered by the
// snake or the power-up. It returns false, leaving no food, if the board is full.
func SpawnFood(state *State, cfg Config, rng *rand.Rand) bool {
	var extra []Point
	if state.HasPowerUp {
		extra = append(extra, state.PowerUp)
	}
	free := freeCells(state, cfg, extra...)
	if len(free) == 0 {
		state.HasFood = false
		return false
	}
	state.Food = free[rng.Intn(len(free))]
	state.HasFood = true
	return true
}

// SpawnPowerUp makes one spawn attempt that succeeds with cfg.PowerUpChance.
// On success the power-up lands on a cell clear of the snake and the food.
// A failed roll leaves the power-up absent; nothing retries it later.
func SpawnPowerUp(state *State, cfg Config, rng *rand.Rand) bool {
	state.HasPowerUp = false
	if rng.Float64() >= cfg.PowerUpChance {
		return false
	}
	var extra []Point
	if state.HasFood {
		extra = append(extra, state.Food)
	}
	free := freeCells(state, cfg, extra...)
	if len(free) == 0 {
		return false
	}
	state.PowerUp = free[rng.Intn(len(free))]
	state.HasPowerUp = true
	return true
}
