package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/snek-arcade/game"
)

// SessionLogName is the session log's file name inside the record directory.
const SessionLogName = "games.log"

// Recorder buffers every committed tick of the current game and writes the
// game to <dir>/<game_id>.parquet when it ends or is abandoned by a restart.
// It implements engine.Observer and must be called from the engine's loop.
type Recorder struct {
	dir     string
	log     *slog.Logger
	session *SessionLog
	now     func() time.Time

	gameID   string
	rows     []TurnRow
	lastPath string
}

func NewRecorder(dir string, log *slog.Logger) (*Recorder, error) {
	if dir == "" {
		return nil, fmt.Errorf("record dir is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create record dir: %w", err)
	}
	session, err := OpenSessionLog(filepath.Join(dir, SessionLogName))
	if err != nil {
		return nil, err
	}
	return &Recorder{
		dir:     dir,
		log:     log.With("component", "recorder"),
		session: session,
		now:     time.Now,
	}, nil
}

// GameStarted begins a new recording. A game still buffered (restart before
// game over) is written first.
func (r *Recorder) GameStarted(snap game.Snapshot) {
	if len(r.rows) > 0 {
		r.flushAndLog()
	}
	r.gameID = uuid.NewString()
	r.rows = append(r.rows[:0], newTurnRow(r.gameID, snap, r.now().UnixNano()))
}

func (r *Recorder) TickObserved(snap game.Snapshot) {
	r.append(snap)
}

// GameEnded records the final frame and writes the game.
func (r *Recorder) GameEnded(snap game.Snapshot) {
	r.append(snap)
	r.flushAndLog()
}

func (r *Recorder) append(snap game.Snapshot) {
	if r.gameID == "" {
		r.gameID = uuid.NewString()
	}
	r.rows = append(r.rows, newTurnRow(r.gameID, snap, r.now().UnixNano()))
}

func (r *Recorder) flushAndLog() {
	start := time.Now()
	rows := len(r.rows)
	path, err := r.Flush()
	if err != nil {
		r.log.Error("write recording failed", "game_id", r.gameID, "rows", rows, "err", err)
		return
	}
	if path != "" {
		r.log.Info("recording written", "path", path, "rows", rows, "elapsed", time.Since(start))
	}
}

// Flush writes the buffered game, if any, and returns its path. The buffer is
// cleared even when the write fails so a broken disk cannot grow it forever.
func (r *Recorder) Flush() (string, error) {
	if len(r.rows) == 0 {
		return "", nil
	}
	gameID := r.gameID
	rows := r.rows
	r.rows = nil
	r.gameID = ""

	path := filepath.Join(r.dir, gameID+".parquet")
	if err := WriteGameParquet(path, rows); err != nil {
		return "", err
	}
	if err := r.session.Add(gameID); err != nil {
		return path, fmt.Errorf("log game %s: %w", gameID, err)
	}
	r.lastPath = path
	return path, nil
}

// LastPath is the most recently written recording.
func (r *Recorder) LastPath() string { return r.lastPath }

// Session exposes the log of written game ids.
func (r *Recorder) Session() *SessionLog { return r.session }

// Close writes any buffered game and closes the session log.
func (r *Recorder) Close() error {
	_, flushErr := r.Flush()
	return errors.Join(flushErr, r.session.Close())
}
