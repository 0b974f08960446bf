package tui

import "github.com/brensch/snek-arcade/game"

type action int

const (
	actionNone action = iota
	actionMove
	actionPause
	actionRestart
	actionReplay // restart offered on the game-over panel
	actionQuit
)

var directionKeys = map[string]game.Direction{
	"up": game.Up, "w": game.Up, "k": game.Up,
	"down": game.Down, "s": game.Down, "j": game.Down,
	"left": game.Left, "a": game.Left, "h": game.Left,
	"right": game.Right, "d": game.Right, "l": game.Right,
}

// lookupKey maps a bubbletea key string to an input action.
func lookupKey(key string) (action, game.Direction) {
	if d, ok := directionKeys[key]; ok {
		return actionMove, d
	}
	switch key {
	case "p", " ":
		return actionPause, 0
	case "r":
		return actionRestart, 0
	case "enter":
		return actionReplay, 0
	case "q", "esc", "ctrl+c":
		return actionQuit, 0
	}
	return actionNone, 0
}
