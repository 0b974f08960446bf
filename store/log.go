package store

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SessionLog is an append-only list of recorded game ids, one per line.
//
// Existing ids are loaded on open so a game is never logged twice.
type SessionLog struct {
	mu      sync.RWMutex
	path    string
	file    *os.File
	order   []string
	written map[string]struct{}
}

func OpenSessionLog(path string) (*SessionLog, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	l := &SessionLog{path: path, written: make(map[string]struct{})}
	for _, id := range parseSessionLog(raw) {
		l.written[id] = struct{}{}
		l.order = append(l.order, id)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	// Terminate a torn last line so the next id starts fresh.
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		if _, err := file.WriteString("\n"); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("repair log file: %w", err)
		}
	}
	l.file = file
	return l, nil
}

// ReadSessionLog returns the ids logged at path without opening it for append.
func ReadSessionLog(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return parseSessionLog(raw), nil
}

// parseSessionLog returns the distinct non-empty ids in first-seen order.
func parseSessionLog(raw []byte) []string {
	var ids []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (l *SessionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *SessionLog) Has(gameID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.written[gameID]
	return ok
}

func (l *SessionLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.written)
}

// IDs returns the logged ids in the order they were first written.
func (l *SessionLog) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.order...)
}

// Add appends gameID and fsyncs. Ids already present are ignored.
func (l *SessionLog) Add(gameID string) error {
	if gameID == "" {
		return fmt.Errorf("gameID is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.written[gameID]; ok {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("log file is closed")
	}

	if _, err := l.file.WriteString(gameID + "\n"); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}

	l.written[gameID] = struct{}{}
	l.order = append(l.order, gameID)
	return nil
}
