// Package config reads the player's settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nathoo/mazecaves/engine"
	"github.com/nathoo/mazecaves/engine/parser"
	"github.com/nathoo/mazecaves/engine/room"
	"gopkg.in/yaml.v3"
)

// Keys lists the key names bound to each input. The terminal UI matches
// them against key presses; the line UI accepts them as typed words.
type Keys struct {
	Left   []string `yaml:"left"`
	Up     []string `yaml:"up"`
	Right  []string `yaml:"right"`
	Down   []string `yaml:"down"`
	Action []string `yaml:"action"`
}

// Config holds the player's settings. Absent fields keep their defaults.
type Config struct {
	Player   string `yaml:"player"`
	Notify   string `yaml:"notify"`
	Keys     Keys   `yaml:"keys"`
	MaxHops  int    `yaml:"max_transmitter_hops"`
	SaveDir  string `yaml:"save_dir"`
	LogLevel string `yaml:"log_level"`
	Color    bool   `yaml:"color"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Player: string(room.DefaultGlyphs.Player),
		Notify: string(room.DefaultGlyphs.Notify),
		Keys: Keys{
			Left:   []string{"left", "west", "a", "h"},
			Up:     []string{"up", "north", "w", "k"},
			Right:  []string{"right", "east", "d", "l"},
			Down:   []string{"down", "south", "s", "j"},
			Action: []string{"action", "use", "press", "e", "x", "space", "enter"},
		},
		MaxHops:  engine.DefaultMaxHops,
		SaveDir:  "~/.mazecaves/saves",
		LogLevel: "info",
		Color:    true,
	}
}

// DefaultPath returns ~/.mazecaves/config.yaml, or "" when there is no
// home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mazecaves", "config.yaml")
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings for values the game cannot use.
func (c Config) Validate() error {
	var errs []error
	if utf8.RuneCountInString(c.Player) != 1 {
		errs = append(errs, fmt.Errorf("player glyph %q must be a single character", c.Player))
	}
	if utf8.RuneCountInString(c.Notify) != 1 {
		errs = append(errs, fmt.Errorf("notify glyph %q must be a single character", c.Notify))
	}
	if c.MaxHops < 1 {
		errs = append(errs, fmt.Errorf("max_transmitter_hops must be at least 1, got %d", c.MaxHops))
	}
	for name, keys := range map[string][]string{
		"left": c.Keys.Left, "up": c.Keys.Up, "right": c.Keys.Right,
		"down": c.Keys.Down, "action": c.Keys.Action,
	} {
		if len(keys) == 0 {
			errs = append(errs, fmt.Errorf("keys.%s is empty", name))
		}
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Glyphs returns the glyphs stamped into room grids.
func (c Config) Glyphs() room.Glyphs {
	g := room.DefaultGlyphs
	if r, _ := utf8.DecodeRuneInString(c.Player); r != utf8.RuneError {
		g.Player = r
	}
	if r, _ := utf8.DecodeRuneInString(c.Notify); r != utf8.RuneError {
		g.Notify = r
	}
	return g
}

// Bindings returns the word table for typed commands.
func (c Config) Bindings() parser.Bindings {
	return parser.NewBindings(c.Keys.Left, c.Keys.Up, c.Keys.Right, c.Keys.Down, c.Keys.Action)
}

// Level returns the configured log level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// SaveDirectory returns SaveDir with a leading "~" expanded.
func (c Config) SaveDirectory() string {
	dir := c.SaveDir
	if rest, ok := strings.CutPrefix(dir, "~"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, rest)
		}
	}
	return dir
}
