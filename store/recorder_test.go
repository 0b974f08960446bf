package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/brensch/snek-arcade/game"
)

func snapAt(turn int, status game.Status, snake ...game.Point) game.Snapshot {
	return game.Snapshot{
		Width:      200,
		Height:     160,
		CellSize:   20,
		Snake:      snake,
		Direction:  game.Right,
		Food:       game.Point{X: 180, Y: 0},
		HasFood:    true,
		Score:      turn,
		HighScore:  turn,
		Level:      1,
		Difficulty: "Easy",
		Turn:       turn,
		Status:     status,
	}
}

func newTestRecorder(t *testing.T) (*Recorder, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := NewRecorder(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, dir
}

func TestRecorder_WritesGameOnEnd(t *testing.T) {
	r, dir := newTestRecorder(t)

	r.GameStarted(snapAt(0, game.Running, game.Point{X: 100, Y: 80}))
	r.TickObserved(snapAt(1, game.Running, game.Point{X: 120, Y: 80}))
	withPowerUp := snapAt(2, game.Running, game.Point{X: 140, Y: 80}, game.Point{X: 120, Y: 80})
	withPowerUp.PowerUp, withPowerUp.HasPowerUp = game.Point{X: 0, Y: 140}, true
	r.TickObserved(withPowerUp)
	r.GameEnded(snapAt(2, game.GameOver, game.Point{X: 140, Y: 80}, game.Point{X: 120, Y: 80}))

	path := r.LastPath()
	if path == "" {
		t.Fatalf("no recording written")
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("path=%s not in %s", path, dir)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind: %v", err)
	}

	rows, err := ReadTurns(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows=%d want=4", len(rows))
	}
	gameID := rows[0].GameID
	if _, err := uuid.Parse(gameID); err != nil {
		t.Fatalf("game id %q: %v", gameID, err)
	}
	if filepath.Base(path) != gameID+".parquet" {
		t.Fatalf("file=%s id=%s", filepath.Base(path), gameID)
	}
	for i, row := range rows {
		if row.GameID != gameID {
			t.Fatalf("row %d game id=%s want=%s", i, row.GameID, gameID)
		}
	}

	if rows[2].PowerUpX != 0 || rows[2].PowerUpY != 140 || !rows[2].HasPowerUp {
		t.Fatalf("power-up not recorded: %+v", rows[2])
	}
	if rows[1].HasPowerUp {
		t.Fatalf("row 1 has phantom power-up")
	}
	last := rows[3]
	if last.Status != "game_over" || last.Turn != 2 || last.Direction != "right" {
		t.Fatalf("last row=%+v", last)
	}
	body := last.Snake()
	if len(body) != 2 || body[0] != (game.Point{X: 140, Y: 80}) || body[1] != (game.Point{X: 120, Y: 80}) {
		t.Fatalf("snake=%v", body)
	}

	if !r.Session().Has(gameID) || r.Session().Count() != 1 {
		t.Fatalf("session log ids=%v", r.Session().IDs())
	}
}

func TestRecorder_SchemaMetadata(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.GameStarted(snapAt(0, game.Running, game.Point{X: 100, Y: 80}))
	r.GameEnded(snapAt(0, game.GameOver, game.Point{X: 100, Y: 80}))

	f, err := os.Open(r.LastPath())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	if v, ok := pf.Lookup("schema"); !ok || v != SchemaVersion {
		t.Fatalf("schema=%q ok=%v want=%q", v, ok, SchemaVersion)
	}
	if pf.NumRows() != 2 {
		t.Fatalf("rows=%d want=2", pf.NumRows())
	}
}

func TestRecorder_RestartFlushesAbandonedGame(t *testing.T) {
	r, dir := newTestRecorder(t)

	r.GameStarted(snapAt(0, game.Running, game.Point{X: 100, Y: 80}))
	r.TickObserved(snapAt(1, game.Running, game.Point{X: 120, Y: 80}))

	r.GameStarted(snapAt(0, game.Running, game.Point{X: 100, Y: 80}))
	first := r.LastPath()
	if first == "" {
		t.Fatalf("abandoned game not written")
	}
	r.GameEnded(snapAt(0, game.GameOver, game.Point{X: 100, Y: 80}))
	second := r.LastPath()
	if second == first {
		t.Fatalf("second game reused path %s", first)
	}

	ids := r.Session().IDs()
	if len(ids) != 2 {
		t.Fatalf("ids=%v want 2", ids)
	}
	for _, id := range ids {
		if _, err := os.Stat(filepath.Join(dir, id+".parquet")); err != nil {
			t.Fatalf("missing recording for %s: %v", id, err)
		}
	}

	rows, err := ReadTurns(first)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 || rows[1].Status != "running" {
		t.Fatalf("abandoned rows=%+v", rows)
	}
}

func TestRecorder_FlushEmptyIsNoop(t *testing.T) {
	r, dir := newTestRecorder(t)
	path, err := r.Flush()
	if err != nil || path != "" {
		t.Fatalf("path=%q err=%v", path, err)
	}
	entries, _ := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if len(entries) != 0 {
		t.Fatalf("unexpected files %v", entries)
	}
}

func TestRecorder_CloseFlushesBufferedGame(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	r.GameStarted(snapAt(0, game.Running, game.Point{X: 100, Y: 80}))
	r.TickObserved(snapAt(1, game.Running, game.Point{X: 120, Y: 80}))
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	log, err := OpenSessionLog(filepath.Join(dir, SessionLogName))
	if err != nil {
		t.Fatalf("reopen log: %v", err)
	}
	defer log.Close()
	if log.Count() != 1 {
		t.Fatalf("logged=%d want=1", log.Count())
	}
}

func TestWriteGameParquet_RejectsEmpty(t *testing.T) {
	if err := WriteGameParquet(filepath.Join(t.TempDir(), "x.parquet"), nil); err == nil {
		t.Fatalf("empty write accepted")
	}
}
