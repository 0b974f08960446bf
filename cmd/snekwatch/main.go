package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snek-arcade/spectate"
	"github.com/brensch/snek-arcade/tui"
)

func main() {
	defaults := spectate.DefaultClientConfig()
	url := flag.String("url", getEnvOrDefault("SNEK_WATCH_URL", defaults.URL), "Spectator websocket URL of a running snek")
	connectTimeout := flag.Duration("connect-timeout", getEnvDurationOrDefault("SNEK_WATCH_CONNECT_TIMEOUT", defaults.ConnectTimeout), "Dial timeout")
	flag.Parse()

	cfg := defaults
	cfg.URL = *url
	cfg.ConnectTimeout = *connectTimeout

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	updates := make(chan tui.WatchUpdate, 16)
	go func() {
		defer close(updates)
		err := spectate.Watch(ctx, cfg, func(ev spectate.Event) error {
			u, err := toUpdate(ev)
			if err != nil {
				return err
			}
			select {
			case updates <- u:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			updates <- tui.WatchUpdate{Err: err}
		}
	}()

	p := tea.NewProgram(tui.NewWatchModel(cfg.URL, updates), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
	cancel()
}

func toUpdate(ev spectate.Event) (tui.WatchUpdate, error) {
	switch ev.Type {
	case spectate.EventGameOver:
		sum, err := spectate.DecodeGameOver(ev)
		if err != nil {
			return tui.WatchUpdate{}, err
		}
		return tui.WatchUpdate{Snapshot: sum.Snapshot, Summary: &sum}, nil
	default:
		snap, err := spectate.DecodeFrame(ev)
		if err != nil {
			return tui.WatchUpdate{}, err
		}
		return tui.WatchUpdate{Snapshot: snap}, nil
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
