package game

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid game config")

// Config holds the fixed knobs of a session. All lengths are in pixels and
// Width and Height must be whole multiples of CellSize.
type Config struct {
	Width    int `toml:"width"`
	Height   int `toml:"height"`
	CellSize int `toml:"cell_size"`

	BaseInterval time.Duration `toml:"base_interval"`
	MinInterval  time.Duration `toml:"min_interval"`
	SpeedStep    time.Duration `toml:"speed_step"` // interval shaved off per level

	LevelUpScore  int     `toml:"level_up_score"`
	FoodScore     int     `toml:"food_score"`
	PowerUpBonus  int     `toml:"power_up_bonus"`
	PowerUpChance float64 `toml:"power_up_chance"` // probability in [0,1] per spawn attempt
}

// DefaultConfig matches the classic 600x400 board with 20px cells.
func DefaultConfig() Config {
	return Config{
		Width:         600,
		Height:        400,
		CellSize:      20,
		BaseInterval:  150 * time.Millisecond,
		MinInterval:   50 * time.Millisecond,
		SpeedStep:     20 * time.Millisecond,
		LevelUpScore:  5,
		FoodScore:     1,
		PowerUpBonus:  5,
		PowerUpChance: 0.10,
	}
}

// Validate reports the first unusable field. A bad config is a programming
// error; callers are expected to refuse to start on it.
func (c Config) Validate() error {
	switch {
	case c.CellSize <= 0:
		return fmt.Errorf("%w: cell size %d must be positive", ErrInvalidConfig, c.CellSize)
	case c.Width <= 0 || c.Width%c.CellSize != 0:
		return fmt.Errorf("%w: width %d must be a positive multiple of cell size %d", ErrInvalidConfig, c.Width, c.CellSize)
	case c.Height <= 0 || c.Height%c.CellSize != 0:
		return fmt.Errorf("%w: height %d must be a positive multiple of cell size %d", ErrInvalidConfig, c.Height, c.CellSize)
	case c.BaseInterval <= 0:
		return fmt.Errorf("%w: base interval %s must be positive", ErrInvalidConfig, c.BaseInterval)
	case c.MinInterval <= 0:
		return fmt.Errorf("%w: min interval %s must be positive", ErrInvalidConfig, c.MinInterval)
	case c.MinInterval > c.BaseInterval:
		return fmt.Errorf("%w: min interval %s exceeds base interval %s", ErrInvalidConfig, c.MinInterval, c.BaseInterval)
	case c.SpeedStep < 0:
		return fmt.Errorf("%w: speed step %s must not be negative", ErrInvalidConfig, c.SpeedStep)
	case c.LevelUpScore <= 0:
		return fmt.Errorf("%w: level up score %d must be positive", ErrInvalidConfig, c.LevelUpScore)
	case c.FoodScore < 0:
		return fmt.Errorf("%w: food score %d must not be negative", ErrInvalidConfig, c.FoodScore)
	case c.PowerUpBonus < 0:
		return fmt.Errorf("%w: power-up bonus %d must not be negative", ErrInvalidConfig, c.PowerUpBonus)
	case c.PowerUpChance < 0 || c.PowerUpChance > 1:
		return fmt.Errorf("%w: power-up chance %v must be within [0,1]", ErrInvalidConfig, c.PowerUpChance)
	}
	return nil
}

// Columns is the number of cells across the board.
func (c Config) Columns() int { return c.Width / c.CellSize }

// Rows is the number of cells down the board.
func (c Config) Rows() int { return c.Height / c.CellSize }

// InBounds reports whether p lies within [0,Width) x [0,Height).
func (c Config) InBounds(p Point) bool {
	return p.X >= 0 && p.X < c.Width && p.Y >= 0 && p.Y < c.Height
}

// Center is the grid-aligned cell at the middle of the board.
func (c Config) Center() Point {
	return Point{
		X: c.Columns() / 2 * c.CellSize,
		Y: c.Rows() / 2 * c.CellSize,
	}
}
