// Package settings resolves the game and app configuration from built-in
// defaults, an optional TOML file, SNEK_* environment variables and flags,
// each layer overriding the previous one.
package settings

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/brensch/snek-arcade/game"
	"github.com/brensch/snek-arcade/logging"
)

const envPrefix = "SNEK_"

// Settings is everything cmd/snek needs to start a session.
type Settings struct {
	Game game.Config `toml:"game"`

	LogPath  string `toml:"log_path"`
	LogLevel string `toml:"log_level"`

	Sound  bool    `toml:"sound"`
	Volume float64 `toml:"volume"`

	RecordDir    string `toml:"record_dir"`    // empty disables recording
	SpectateAddr string `toml:"spectate_addr"` // empty disables spectating
	Seed         int64  `toml:"seed"`          // 0 seeds from the clock
}

func Default() Settings {
	return Settings{
		Game:     game.DefaultConfig(),
		LogPath:  "snek.log",
		LogLevel: "info",
		Sound:    true,
		Volume:   0.5,
	}
}

func (s Settings) Validate() error {
	if err := s.Game.Validate(); err != nil {
		return err
	}
	if s.Volume < 0 || s.Volume > 1 {
		return fmt.Errorf("volume %.2f must be within [0,1]", s.Volume)
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// LoadFile overlays the TOML file at path onto s. Unknown keys are an error so
// a typo does not silently fall back to a default.
func LoadFile(path string, s *Settings) error {
	md, err := toml.DecodeFile(path, s)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("decode %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Write encodes s as TOML.
func Write(w io.Writer, s Settings) error {
	return toml.NewEncoder(w).Encode(s)
}

// Load resolves settings for a command line. The -config flag (or
// SNEK_CONFIG) names the TOML file; every other flag may also be given as
// SNEK_<FLAG_NAME>, e.g. SNEK_CELL_SIZE=10.
func Load(name string, args []string) (Settings, error) {
	// First pass only finds the config file.
	probe := flag.NewFlagSet(name, flag.ContinueOnError)
	probe.SetOutput(io.Discard)
	var scratch Settings
	configPath := register(probe, &scratch)
	if err := probe.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			full := flag.NewFlagSet(name, flag.ContinueOnError)
			register(full, &scratch)
			full.Usage()
		}
		return Settings{}, err
	}

	s := Default()
	if *configPath != "" {
		if err := LoadFile(*configPath, &s); err != nil {
			return Settings{}, err
		}
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	register(fs, &s)
	var envErr error
	fs.VisitAll(func(f *flag.Flag) {
		if envErr != nil || f.Name == "config" {
			return
		}
		if val, ok := os.LookupEnv(envName(f.Name)); ok && val != "" {
			if err := fs.Set(f.Name, normalizeEnv(val)); err != nil {
				envErr = fmt.Errorf("%s: %w", envName(f.Name), err)
			}
		}
	})
	if envErr != nil {
		return Settings{}, envErr
	}
	if err := fs.Parse(args); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// register binds the flags to s and returns the config path flag.
func register(fs *flag.FlagSet, s *Settings) *string {
	configPath := fs.String("config", getEnvOrDefault(envPrefix+"CONFIG", ""), "TOML settings file")

	fs.IntVar(&s.Game.Width, "width", s.Game.Width, "Board width in pixels")
	fs.IntVar(&s.Game.Height, "height", s.Game.Height, "Board height in pixels")
	fs.IntVar(&s.Game.CellSize, "cell-size", s.Game.CellSize, "Grid cell size in pixels")
	fs.DurationVar(&s.Game.BaseInterval, "base-interval", s.Game.BaseInterval, "Tick interval at level 1")
	fs.DurationVar(&s.Game.MinInterval, "min-interval", s.Game.MinInterval, "Fastest tick interval")
	fs.DurationVar(&s.Game.SpeedStep, "speed-step", s.Game.SpeedStep, "Interval removed per level")
	fs.IntVar(&s.Game.LevelUpScore, "level-up-score", s.Game.LevelUpScore, "Points per level")
	fs.Float64Var(&s.Game.PowerUpChance, "power-up-chance", s.Game.PowerUpChance, "Probability a power-up spawns")

	fs.StringVar(&s.LogPath, "log-path", s.LogPath, "Log file (empty discards logs)")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&s.Sound, "sound", s.Sound, "Play sound effects")
	fs.Float64Var(&s.Volume, "volume", s.Volume, "Sound volume in [0,1]")
	fs.StringVar(&s.RecordDir, "record-dir", s.RecordDir, "Directory for parquet game recordings (empty disables)")
	fs.StringVar(&s.SpectateAddr, "spectate-addr", s.SpectateAddr, "Listen address for spectators, e.g. :8090 (empty disables)")
	fs.Int64Var(&s.Seed, "seed", s.Seed, "Random seed (0 uses the clock)")
	return configPath
}

func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// normalizeEnv accepts yes/no for booleans alongside strconv's forms.
func normalizeEnv(val string) string {
	switch strings.ToLower(val) {
	case "yes", "on":
		return "true"
	case "no", "off":
		return "false"
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
