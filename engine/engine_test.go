package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/brensch/snek-arcade/game"
	"github.com/brensch/snek-arcade/logging"
	"github.com/brensch/snek-arcade/rules"
)

type timer struct {
	after time.Duration
	fn    func()
}

// manualScheduler queues callbacks until the test fires them.
type manualScheduler struct {
	pending []timer
}

func (s *manualScheduler) ScheduleAfter(d time.Duration, fn func()) {
	s.pending = append(s.pending, timer{after: d, fn: fn})
}

// fire runs the oldest queued callback and reports its delay.
func (s *manualScheduler) fire(t *testing.T) time.Duration {
	t.Helper()
	if len(s.pending) == 0 {
		t.Fatalf("no tick armed")
	}
	next := s.pending[0]
	s.pending = s.pending[1:]
	next.fn()
	return next.after
}

// drain fires every queued callback, including ones armed while draining,
// up to limit.
func (s *manualScheduler) drain(limit int) int {
	n := 0
	for len(s.pending) > 0 && n < limit {
		next := s.pending[0]
		s.pending = s.pending[1:]
		next.fn()
		n++
	}
	return n
}

type recordingRenderer struct {
	draws     []game.Snapshot
	summaries []Summary
}

func (r *recordingRenderer) Draw(snap game.Snapshot) { r.draws = append(r.draws, snap) }
func (r *recordingRenderer) GameOver(s Summary)      { r.summaries = append(r.summaries, s) }

type recordingSound struct {
	played []game.Sound
	err    error
}

func (s *recordingSound) Play(kind game.Sound) error {
	s.played = append(s.played, kind)
	return s.err
}

type recordingObserver struct {
	started, ticks, ended int
}

func (o *recordingObserver) GameStarted(game.Snapshot)  { o.started++ }
func (o *recordingObserver) TickObserved(game.Snapshot) { o.ticks++ }
func (o *recordingObserver) GameEnded(game.Snapshot)    { o.ended++ }

type fixture struct {
	eng   *Engine
	sched *manualScheduler
	draw  *recordingRenderer
	sound *recordingSound
	obs   *recordingObserver
	logs  *bytes.Buffer
}

func newFixture(t *testing.T, mutate func(*game.Config)) *fixture {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.PowerUpChance = 0
	if mutate != nil {
		mutate(&cfg)
	}
	f := &fixture{
		sched: &manualScheduler{},
		draw:  &recordingRenderer{},
		sound: &recordingSound{},
		obs:   &recordingObserver{},
		logs:  &bytes.Buffer{},
	}
	eng, err := New(cfg, f.sched,
		WithRand(rand.New(rand.NewSource(5))),
		WithRenderer(f.draw),
		WithSound(f.sound),
		WithObserver(f.obs),
		WithLogger(slog.New(logging.NewJSONHandler(f.logs, nil))),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	f.eng = eng
	return f
}

// place puts the snake and items at exact cells.
func (f *fixture) place(snake []game.Point, dir game.Direction, food *game.Point) {
	s := f.eng.state
	s.Snake = append([]game.Point(nil), snake...)
	s.Direction = dir
	s.Heading = dir
	s.HasPowerUp = false
	s.HasFood = food != nil
	if food != nil {
		s.Food = *food
	} else {
		s.Food = game.Point{}
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.BaseInterval = 0
	if _, err := New(cfg, &manualScheduler{}); !errors.Is(err, game.ErrInvalidConfig) {
		t.Fatalf("err=%v want ErrInvalidConfig", err)
	}
	if _, err := New(game.DefaultConfig(), nil); err == nil {
		t.Fatalf("nil scheduler accepted")
	}
}

func TestNew_InitialSession(t *testing.T) {
	f := newFixture(t, nil)
	cfg := f.eng.Config()

	if f.eng.State() != game.Running {
		t.Fatalf("status=%s want running", f.eng.State())
	}
	if snake := f.eng.Snake(); len(snake) != 1 || snake[0] != cfg.Center() {
		t.Fatalf("snake=%v want single segment at %v", snake, cfg.Center())
	}
	if f.eng.Direction() != game.Right || f.eng.Score() != 0 || f.eng.Level() != 1 {
		t.Fatalf("dir=%s score=%d level=%d", f.eng.Direction(), f.eng.Score(), f.eng.Level())
	}
	food, ok := f.eng.Food()
	if !ok || food == cfg.Center() {
		t.Fatalf("food=%v ok=%v", food, ok)
	}
	if _, ok := f.eng.PowerUp(); ok {
		t.Fatalf("power-up spawned with zero chance")
	}
	if f.eng.DifficultyLabel() != "Easy" {
		t.Fatalf("difficulty=%s", f.eng.DifficultyLabel())
	}
	if len(f.sched.pending) != 0 {
		t.Fatalf("ticks armed before Start")
	}

	f.eng.Start()
	if len(f.sched.pending) != 1 || f.sched.pending[0].after != 150*time.Millisecond {
		t.Fatalf("pending=%v want one tick at 150ms", f.sched.pending)
	}
	if len(f.draw.draws) != 1 || f.obs.started != 1 {
		t.Fatalf("draws=%d started=%d want=1/1", len(f.draw.draws), f.obs.started)
	}
}

func TestTick_EatsFood(t *testing.T) {
	f := newFixture(t, nil)
	f.place([]game.Point{{X: 100, Y: 100}}, game.Right, &game.Point{X: 120, Y: 100})
	f.eng.Start()

	f.sched.fire(t)

	snake := f.eng.Snake()
	if len(snake) != 2 || snake[0] != (game.Point{X: 120, Y: 100}) {
		t.Fatalf("snake=%v want head (120,100) len 2", snake)
	}
	if f.eng.Score() != 1 || f.eng.HighScore() != 1 {
		t.Fatalf("score=%d high=%d want=1/1", f.eng.Score(), f.eng.HighScore())
	}
	food, ok := f.eng.Food()
	if !ok {
		t.Fatalf("no food after eating")
	}
	for _, p := range snake {
		if p == food {
			t.Fatalf("new food %v on snake %v", food, snake)
		}
	}
	if len(f.sound.played) != 1 || f.sound.played[0] != game.SoundEat {
		t.Fatalf("sounds=%v want [eat]", f.sound.played)
	}
	if len(f.sched.pending) != 1 {
		t.Fatalf("pending=%d want=1 re-armed tick", len(f.sched.pending))
	}
	last := f.draw.draws[len(f.draw.draws)-1]
	if last.Score != 1 || len(last.Snake) != 2 {
		t.Fatalf("last draw score=%d len=%d", last.Score, len(last.Snake))
	}
}

func TestTick_PowerUp(t *testing.T) {
	f := newFixture(t, nil)
	f.place([]game.Point{{X: 100, Y: 100}}, game.Down, &game.Point{X: 0, Y: 0})
	f.eng.state.PowerUp = game.Point{X: 100, Y: 120}
	f.eng.state.HasPowerUp = true
	f.eng.Start()

	f.sched.fire(t)

	if f.eng.Score() != 5 || f.eng.PowerUpCount() != 1 || len(f.eng.Snake()) != 2 {
		t.Fatalf("score=%d powerups=%d len=%d", f.eng.Score(), f.eng.PowerUpCount(), len(f.eng.Snake()))
	}
	if f.eng.Level() != 2 {
		t.Fatalf("level=%d want=2", f.eng.Level())
	}
	if len(f.sound.played) != 1 || f.sound.played[0] != game.SoundPowerUp {
		t.Fatalf("sounds=%v want [powerup]", f.sound.played)
	}
	if _, ok := f.eng.PowerUp(); ok {
		t.Fatalf("power-up still present")
	}
	if d := f.sched.pending[0].after; d != 130*time.Millisecond {
		t.Fatalf("interval=%s want=130ms at level 2", d)
	}
}

func TestTick_WallEndsGame(t *testing.T) {
	f := newFixture(t, nil)
	cfg := f.eng.Config()
	f.place([]game.Point{{X: cfg.Width - cfg.CellSize, Y: 100}}, game.Right, &game.Point{X: 0, Y: 0})
	f.eng.state.PowerUpCount = 3
	f.eng.Start()

	f.sched.fire(t)

	if f.eng.State() != game.GameOver {
		t.Fatalf("status=%s want game over", f.eng.State())
	}
	if len(f.sched.pending) != 0 {
		t.Fatalf("pending=%d want no further ticks", len(f.sched.pending))
	}
	if len(f.draw.summaries) != 1 {
		t.Fatalf("summaries=%d want=1", len(f.draw.summaries))
	}
	sum := f.draw.summaries[0]
	if sum.Title != "Game Over" || sum.Message != "Power-Ups Collected: 3" {
		t.Fatalf("summary=%q / %q", sum.Title, sum.Message)
	}
	if len(f.sound.played) != 1 || f.sound.played[0] != game.SoundGameOver {
		t.Fatalf("sounds=%v want [gameover]", f.sound.played)
	}
	if f.obs.ended != 1 {
		t.Fatalf("observer ended=%d want=1", f.obs.ended)
	}

	before := f.eng.Snapshot()
	for i := 0; i < 3; i++ {
		f.eng.Tick()
		f.eng.TogglePause()
	}
	after := f.eng.Snapshot()
	if after.Score != before.Score || after.Level != before.Level || after.Snake[0] != before.Snake[0] || after.Status != game.GameOver {
		t.Fatalf("game over state mutated: %+v", after)
	}
	if len(f.sched.pending) != 0 {
		t.Fatalf("ticks armed after game over")
	}
}

func TestHandleDirectionInput(t *testing.T) {
	f := newFixture(t, nil)
	f.place([]game.Point{{X: 100, Y: 100}, {X: 80, Y: 100}}, game.Right, nil)

	f.eng.HandleDirectionInput(game.Left)
	if f.eng.Direction() != game.Right {
		t.Fatalf("dir=%s want Right after reversal", f.eng.Direction())
	}

	f.eng.HandleDirectionInput(game.Up)
	f.eng.HandleDirectionInput(game.Left) // reversal of the heading, refused
	if f.eng.Direction() != game.Up {
		t.Fatalf("dir=%s want Up", f.eng.Direction())
	}
	f.eng.HandleDirectionInput(game.Down) // reversal of the pending direction, refused
	if f.eng.Direction() != game.Up {
		t.Fatalf("dir=%s want Up after Down", f.eng.Direction())
	}

	f.eng.Tick()
	if head := f.eng.Snake()[0]; head != (game.Point{X: 100, Y: 80}) {
		t.Fatalf("head=%v want (100,80)", head)
	}
	f.eng.HandleDirectionInput(game.Left)
	if f.eng.Direction() != game.Left {
		t.Fatalf("dir=%s want Left once heading Up", f.eng.Direction())
	}
}

func TestPause_FreezesAndRearms(t *testing.T) {
	f := newFixture(t, nil)
	f.place([]game.Point{{X: 100, Y: 100}}, game.Right, &game.Point{X: 0, Y: 0})
	f.eng.Start()

	f.eng.TogglePause()
	if f.eng.State() != game.Paused {
		t.Fatalf("status=%s want paused", f.eng.State())
	}

	f.eng.HandleDirectionInput(game.Up)
	if f.eng.Direction() != game.Right {
		t.Fatalf("dir=%s changed while paused", f.eng.Direction())
	}

	before := f.eng.Snapshot()
	f.eng.Tick()
	f.sched.drain(10) // the tick armed before pausing must do nothing
	after := f.eng.Snapshot()
	if after.Snake[0] != before.Snake[0] || after.Turn != before.Turn {
		t.Fatalf("snake moved while paused: %v -> %v", before.Snake, after.Snake)
	}
	if len(f.sched.pending) != 0 {
		t.Fatalf("stale tick re-armed while paused")
	}

	f.eng.TogglePause()
	if f.eng.State() != game.Running || len(f.sched.pending) != 1 {
		t.Fatalf("status=%s pending=%d want running with one tick", f.eng.State(), len(f.sched.pending))
	}
	f.sched.fire(t)
	if head := f.eng.Snake()[0]; head != (game.Point{X: 120, Y: 100}) {
		t.Fatalf("head=%v want (120,100)", head)
	}
}

func TestPause_QuickResumeKeepsOneChain(t *testing.T) {
	f := newFixture(t, nil)
	f.place([]game.Point{{X: 0, Y: 100}}, game.Right, &game.Point{X: 0, Y: 0})
	f.eng.Start()

	// Pause and resume before the first tick fires: two callbacks queued,
	// only the newest may advance the snake.
	f.eng.TogglePause()
	f.eng.TogglePause()
	if len(f.sched.pending) != 2 {
		t.Fatalf("pending=%d want=2", len(f.sched.pending))
	}
	f.sched.fire(t)
	if f.eng.Snapshot().Turn != 0 {
		t.Fatalf("stale callback advanced the game")
	}
	f.sched.fire(t)
	if f.eng.Snapshot().Turn != 1 || len(f.sched.pending) != 1 {
		t.Fatalf("turn=%d pending=%d want=1/1", f.eng.Snapshot().Turn, len(f.sched.pending))
	}
}

func TestRestart_KeepsHighScore(t *testing.T) {
	f := newFixture(t, nil)
	f.place([]game.Point{{X: 100, Y: 100}}, game.Right, &game.Point{X: 120, Y: 100})
	f.eng.Start()
	f.sched.fire(t)
	if f.eng.HighScore() != 1 {
		t.Fatalf("high=%d want=1", f.eng.HighScore())
	}

	f.eng.Restart()

	cfg := f.eng.Config()
	if f.eng.State() != game.Running || f.eng.Score() != 0 || f.eng.Level() != 1 || f.eng.PowerUpCount() != 0 {
		t.Fatalf("restart did not reset counters: %s", f.eng)
	}
	if f.eng.HighScore() != 1 {
		t.Fatalf("high=%d want=1 after restart", f.eng.HighScore())
	}
	if snake := f.eng.Snake(); len(snake) != 1 || snake[0] != cfg.Center() || f.eng.Direction() != game.Right {
		t.Fatalf("snake=%v dir=%s", snake, f.eng.Direction())
	}
	if f.obs.started != 2 {
		t.Fatalf("observer started=%d want=2", f.obs.started)
	}

	// The chain armed before the restart and the new one are both queued;
	// exactly one tick may run.
	f.sched.fire(t)
	f.sched.fire(t)
	if f.eng.Snapshot().Turn != 1 {
		t.Fatalf("turn=%d want=1", f.eng.Snapshot().Turn)
	}
}

func TestRestart_AfterGameOver(t *testing.T) {
	f := newFixture(t, nil)
	f.place([]game.Point{{X: 0, Y: 0}}, game.Up, &game.Point{X: 100, Y: 100})
	f.eng.Start()
	f.sched.fire(t)
	if f.eng.State() != game.GameOver {
		t.Fatalf("status=%s want game over", f.eng.State())
	}

	f.eng.Restart()
	if f.eng.State() != game.Running || len(f.sched.pending) != 1 {
		t.Fatalf("status=%s pending=%d", f.eng.State(), len(f.sched.pending))
	}
	if f.sched.drain(1) != 1 || f.eng.Snapshot().Turn != 1 {
		t.Fatalf("restarted game did not tick")
	}
}

func TestSoundFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, nil)
	f.sound.err = errors.New("device busy")
	f.place([]game.Point{{X: 100, Y: 100}}, game.Right, &game.Point{X: 120, Y: 100})
	f.eng.Start()

	f.sched.fire(t)

	if f.eng.Score() != 1 || f.eng.State() != game.Running || len(f.sched.pending) != 1 {
		t.Fatalf("sound failure disturbed the game: %s pending=%d", f.eng, len(f.sched.pending))
	}
	if !strings.Contains(f.logs.String(), "sound playback failed") || !strings.Contains(f.logs.String(), "device busy") {
		t.Fatalf("failure not logged: %s", f.logs.String())
	}
}

func TestLevelShortensInterval(t *testing.T) {
	f := newFixture(t, nil)
	f.place([]game.Point{{X: 0, Y: 0}}, game.Right, nil)
	f.eng.Start()

	// The i-th fired tick was armed when the score was i.
	want := []time.Duration{150, 150, 150, 150, 150, 130, 130, 130, 130, 130}
	for i, w := range want {
		f.eng.state.Food = rules.NextHead(f.eng.state, f.eng.cfg)
		f.eng.state.HasFood = true
		d := f.sched.fire(t)
		if d != w*time.Millisecond {
			t.Fatalf("tick %d armed after %s want %s", i, d, w*time.Millisecond)
		}
	}
	if f.eng.Level() != 3 || f.eng.Score() != 10 {
		t.Fatalf("level=%d score=%d want=3/10", f.eng.Level(), f.eng.Score())
	}
}

func TestRenderersFanOut(t *testing.T) {
	a, b := &recordingRenderer{}, &recordingRenderer{}
	r := Renderers(a, nil, b)
	r.Draw(game.Snapshot{Score: 4})
	r.GameOver(Summary{Title: "Game Over"})
	if len(a.draws) != 1 || len(b.draws) != 1 || len(a.summaries) != 1 || len(b.summaries) != 1 {
		t.Fatalf("fan-out a=%d/%d b=%d/%d", len(a.draws), len(a.summaries), len(b.draws), len(b.summaries))
	}
}
