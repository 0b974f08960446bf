package game

import "time"

// LevelForScore derives the level from a score: one level per levelUpScore
// points, starting at 1.
func LevelForScore(score, levelUpScore int) int {
	if score < 0 {
		score = 0
	}
	return score/levelUpScore + 1
}

// DifficultyLabel maps a level to its display tier.
func DifficultyLabel(level int) string {
	switch {
	case level <= 3:
		return "Easy"
	case level <= 6:
		return "Medium"
	default:
		return "Hard"
	}
}

// TickInterval is the delay between ticks at the given level, floored at
// cfg.MinInterval.
func TickInterval(level int, cfg Config) time.Duration {
	d := cfg.BaseInterval - time.Duration(level-1)*cfg.SpeedStep
	if d < cfg.MinInterval {
		return cfg.MinInterval
	}
	return d
}
