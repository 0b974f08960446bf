package engine

import (
	"fmt"
	"time"

	"github.com/brensch/snek-arcade/game"
)

// Scheduler arms a one-shot callback. Implementations must run fn on the same
// logical thread that delivers input to the engine, never concurrently with
// another engine call.
type Scheduler interface {
	ScheduleAfter(d time.Duration, fn func())
}

// SoundPlayer plays a sound without waiting for it to finish.
type SoundPlayer interface {
	Play(kind game.Sound) error
}

// Renderer receives draw intents. Snapshots are copies and may be retained.
type Renderer interface {
	Draw(snap game.Snapshot)
	GameOver(summary Summary)
}

// Observer is told about session boundaries and every committed tick.
type Observer interface {
	GameStarted(snap game.Snapshot)
	TickObserved(snap game.Snapshot)
	GameEnded(snap game.Snapshot)
}

// Summary is the game-over overlay content.
type Summary struct {
	Title    string
	Message  string
	Snapshot game.Snapshot
}

func newSummary(snap game.Snapshot) Summary {
	return Summary{
		Title:    "Game Over",
		Message:  fmt.Sprintf("Power-Ups Collected: %d", snap.PowerUpCount),
		Snapshot: snap,
	}
}

type nopSound struct{}

func (nopSound) Play(game.Sound) error { return nil }

// NopSound discards every sound intent.
var NopSound SoundPlayer = nopSound{}

type multiRenderer []Renderer

func (m multiRenderer) Draw(snap game.Snapshot) {
	for _, r := range m {
		r.Draw(snap)
	}
}

func (m multiRenderer) GameOver(summary Summary) {
	for _, r := range m {
		r.GameOver(summary)
	}
}

// Renderers fans every intent out to each non-nil renderer in order.
func Renderers(rs ...Renderer) Renderer {
	out := make(multiRenderer, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
