package store

import (
	"github.com/brensch/snek-arcade/game"
)

// TurnRow is one committed tick of a recorded game. Coordinates are the
// engine's pixel coordinates; the snake is flattened head first.
type TurnRow struct {
	GameID   string `parquet:"game_id,dict"`
	Turn     int32  `parquet:"turn"`
	Width    int32  `parquet:"width"`
	Height   int32  `parquet:"height"`
	CellSize int32  `parquet:"cell_size"`

	SnakeX []int32 `parquet:"snake_x"`
	SnakeY []int32 `parquet:"snake_y"`

	HasFood bool  `parquet:"has_food"`
	FoodX   int32 `parquet:"food_x"`
	FoodY   int32 `parquet:"food_y"`

	HasPowerUp bool  `parquet:"has_power_up"`
	PowerUpX   int32 `parquet:"power_up_x"`
	PowerUpY   int32 `parquet:"power_up_y"`

	Direction    string `parquet:"direction,dict"`
	Score        int32  `parquet:"score"`
	HighScore    int32  `parquet:"high_score"`
	Level        int32  `parquet:"level"`
	PowerUpCount int32  `parquet:"power_up_count"`
	Status       string `parquet:"status,dict"`

	RecordedNs int64 `parquet:"recorded_ns"`
}

func newTurnRow(gameID string, snap game.Snapshot, recordedNs int64) TurnRow {
	row := TurnRow{
		GameID:       gameID,
		Turn:         int32(snap.Turn),
		Width:        int32(snap.Width),
		Height:       int32(snap.Height),
		CellSize:     int32(snap.CellSize),
		SnakeX:       make([]int32, len(snap.Snake)),
		SnakeY:       make([]int32, len(snap.Snake)),
		HasFood:      snap.HasFood,
		HasPowerUp:   snap.HasPowerUp,
		Direction:    snap.Direction.String(),
		Score:        int32(snap.Score),
		HighScore:    int32(snap.HighScore),
		Level:        int32(snap.Level),
		PowerUpCount: int32(snap.PowerUpCount),
		Status:       snap.Status.String(),
		RecordedNs:   recordedNs,
	}
	for i, p := range snap.Snake {
		row.SnakeX[i] = int32(p.X)
		row.SnakeY[i] = int32(p.Y)
	}
	if snap.HasFood {
		row.FoodX, row.FoodY = int32(snap.Food.X), int32(snap.Food.Y)
	}
	if snap.HasPowerUp {
		row.PowerUpX, row.PowerUpY = int32(snap.PowerUp.X), int32(snap.PowerUp.Y)
	}
	return row
}

// Snake rebuilds the body from the flattened columns.
func (r TurnRow) Snake() []game.Point {
	n := min(len(r.SnakeX), len(r.SnakeY))
	out := make([]game.Point, n)
	for i := 0; i < n; i++ {
		out[i] = game.Point{X: int(r.SnakeX[i]), Y: int(r.SnakeY[i])}
	}
	return out
}
