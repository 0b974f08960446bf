package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snek-arcade/audio"
	"github.com/brensch/snek-arcade/engine"
	"github.com/brensch/snek-arcade/logging"
	"github.com/brensch/snek-arcade/settings"
	"github.com/brensch/snek-arcade/spectate"
	"github.com/brensch/snek-arcade/store"
	"github.com/brensch/snek-arcade/tui"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "dump-config" {
		dumpConfig(args[1:])
		return
	}

	cfg, err := settings.Load("snek", args)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("snek: %v", err)
	}
}

// run owns every resource opened after settings load, so each one is closed
// on the way out whether the session ends normally or fails to start.
func run(cfg settings.Settings) (err error) {
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger, logCloser, err := logging.Open(cfg.LogPath, level)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()
	defer func() {
		if err != nil {
			logger.Error("snek stopped", "err", err)
		}
	}()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting snek", "seed", seed, "width", cfg.Game.Width, "height", cfg.Game.Height,
		"record_dir", cfg.RecordDir, "spectate_addr", cfg.SpectateAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []engine.Option{
		engine.WithRand(rand.New(rand.NewSource(seed))),
		engine.WithLogger(logger.With("component", "engine")),
		engine.WithSound(openSound(cfg, logger)),
	}

	if cfg.RecordDir != "" {
		rec, err := store.NewRecorder(cfg.RecordDir, logger)
		if err != nil {
			return fmt.Errorf("open recorder: %w", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Error("close recorder", "err", err)
			}
		}()
		opts = append(opts, engine.WithObserver(rec))
	}

	footer := "arrows/wasd move  p pause  r restart  q quit"
	if cfg.SpectateAddr != "" {
		footer += "  spectators: " + cfg.SpectateAddr
	}
	model := tui.NewModel(footer)

	var renderer engine.Renderer = model
	if cfg.SpectateAddr != "" {
		hub := spectate.NewHub(logger.With("component", "spectate"))
		defer hub.Close()
		go func() {
			if err := spectate.ListenAndServe(ctx, cfg.SpectateAddr, hub); err != nil {
				logger.Error("spectator server stopped", "addr", cfg.SpectateAddr, "err", err)
			}
		}()
		renderer = engine.Renderers(model, hub)
	}
	opts = append(opts, engine.WithRenderer(renderer))

	eng, err := engine.New(cfg.Game, model, opts...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	model.Attach(eng)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run program: %w", err)
	}
	logger.Info("snek exited", "score", eng.Score(), "high_score", eng.HighScore())
	fmt.Printf("High score: %d\n", eng.HighScore())
	return nil
}

// openSound falls back to silence when sound is disabled or no device opens.
func openSound(cfg settings.Settings, logger *slog.Logger) engine.SoundPlayer {
	if !cfg.Sound {
		return engine.NopSound
	}
	player, err := audio.Open(cfg.Volume)
	if err != nil {
		logger.Warn("audio unavailable, continuing silently", "err", err)
		return engine.NopSound
	}
	return player
}

func dumpConfig(args []string) {
	cfg, err := settings.Load("snek dump-config", args)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	if err := settings.Write(os.Stdout, cfg); err != nil {
		log.Fatalf("Failed to write settings: %v", err)
	}
}
