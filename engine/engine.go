// Package engine drives a snake session in time.
//
// The Engine owns the game.State, applies the rules package transitions on
// every tick and re-arms itself through an injected Scheduler. Rendering,
// sound and storage are collaborators that only receive intents; the engine
// never waits on any of them.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/brensch/snek-arcade/game"
	"github.com/brensch/snek-arcade/rules"
)

type Engine struct {
	cfg   game.Config
	state *game.State
	rng   *rand.Rand

	sched     Scheduler
	sound     SoundPlayer
	render    Renderer
	observers []Observer
	log       *slog.Logger

	// epoch identifies the live tick chain. Arming, pausing and ending the
	// game bump it so that stale callbacks fall through.
	epoch uint64
}

type Option func(*Engine)

// WithRand sets the random source used for every spawn.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

func WithSound(p SoundPlayer) Option {
	return func(e *Engine) { e.sound = p }
}

func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.render = r }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New validates cfg and builds an engine with a fresh session. Nothing is
// scheduled until Start.
func New(cfg game.Config, sched Scheduler, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, errors.New("engine: scheduler is required")
	}

	e := &Engine{
		cfg:   cfg,
		sched: sched,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.sound == nil {
		e.sound = NopSound
	}
	if e.render == nil {
		e.render = Renderers()
	}
	if e.log == nil {
		e.log = slog.Default()
	}

	e.state = rules.NewState(cfg, e.rng)
	return e, nil
}

// Start announces the initial session and arms the first tick.
func (e *Engine) Start() {
	e.log.Info("game started", "width", e.cfg.Width, "height", e.cfg.Height, "cell", e.cfg.CellSize)
	e.begin()
}

// HandleDirectionInput requests a turn for the next tick. Ignored while
// paused; reversals of the current heading are refused.
func (e *Engine) HandleDirectionInput(d game.Direction) {
	if rules.Steer(e.state, d) {
		e.log.Debug("direction accepted", "direction", d.String())
	}
}

// Tick advances the session by one step. It is a no-op unless running.
func (e *Engine) Tick() {
	if e.state.Status != game.Running {
		return
	}

	res := rules.Step(e.state, e.cfg, e.rng)
	if res.Collided {
		e.epoch++
		e.endGame()
		return
	}

	snap := e.Snapshot()
	e.render.Draw(snap)
	for _, o := range e.observers {
		o.TickObserved(snap)
	}

	if res.AteFood {
		e.play(game.SoundEat)
	}
	if res.AtePowerUp {
		e.play(game.SoundPowerUp)
	}
	if res.LevelsGained > 0 {
		e.log.Info("level up",
			"level", e.state.Level,
			"difficulty", game.DifficultyLabel(e.state.Level),
			"interval", e.Interval(),
		)
	}

	e.arm()
}

// TogglePause flips between running and paused. Resuming re-arms the tick
// chain. A finished game is left alone.
func (e *Engine) TogglePause() {
	switch e.state.Status {
	case game.Running:
		e.state.Status = game.Paused
		e.epoch++
		e.log.Info("game paused", "turn", e.state.Turn)
		e.render.Draw(e.Snapshot())
	case game.Paused:
		e.state.Status = game.Running
		e.log.Info("game resumed", "turn", e.state.Turn)
		e.render.Draw(e.Snapshot())
		e.arm()
	}
}

// Restart begins a new session from any state. The high score survives.
func (e *Engine) Restart() {
	rules.Reset(e.state, e.cfg, e.rng)
	e.log.Info("game restarted", "high_score", e.state.HighScore)
	e.begin()
}

func (e *Engine) begin() {
	snap := e.Snapshot()
	for _, o := range e.observers {
		o.GameStarted(snap)
	}
	e.render.Draw(snap)
	e.arm()
}

func (e *Engine) endGame() {
	snap := e.Snapshot()
	e.log.Info("game over",
		"score", snap.Score,
		"high_score", snap.HighScore,
		"level", snap.Level,
		"power_ups", snap.PowerUpCount,
		"length", len(snap.Snake),
		"turn", snap.Turn,
	)
	e.render.GameOver(newSummary(snap))
	for _, o := range e.observers {
		o.GameEnded(snap)
	}
	e.play(game.SoundGameOver)
}

func (e *Engine) arm() {
	e.epoch++
	epoch := e.epoch
	e.sched.ScheduleAfter(e.Interval(), func() {
		if epoch != e.epoch {
			return
		}
		e.Tick()
	})
}

func (e *Engine) play(kind game.Sound) {
	if err := e.sound.Play(kind); err != nil {
		e.log.Warn("sound playback failed", "sound", kind.String(), "err", err)
	}
}

func (e *Engine) Config() game.Config { return e.cfg }

// Snapshot copies the current session for rendering.
func (e *Engine) Snapshot() game.Snapshot { return game.NewSnapshot(e.state, e.cfg) }

func (e *Engine) Snake() []game.Point {
	out := make([]game.Point, len(e.state.Snake))
	copy(out, e.state.Snake)
	return out
}

func (e *Engine) Food() (game.Point, bool)    { return e.state.Food, e.state.HasFood }
func (e *Engine) PowerUp() (game.Point, bool) { return e.state.PowerUp, e.state.HasPowerUp }
func (e *Engine) Direction() game.Direction   { return e.state.Direction }
func (e *Engine) Score() int                  { return e.state.Score }
func (e *Engine) HighScore() int              { return e.state.HighScore }
func (e *Engine) Level() int                  { return e.state.Level }
func (e *Engine) PowerUpCount() int           { return e.state.PowerUpCount }
func (e *Engine) State() game.Status          { return e.state.Status }

func (e *Engine) DifficultyLabel() string { return game.DifficultyLabel(e.state.Level) }

// Interval is the delay before the next tick at the current level.
func (e *Engine) Interval() time.Duration { return game.TickInterval(e.state.Level, e.cfg) }

func (e *Engine) String() string {
	return fmt.Sprintf("engine{status=%s score=%d level=%d len=%d}", e.state.Status, e.state.Score, e.state.Level, len(e.state.Snake))
}
