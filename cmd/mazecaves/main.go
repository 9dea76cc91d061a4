// Maze Caves is a tile-based puzzle game played in the terminal.
// Usage: mazecaves [--version] [--plain] [--script <file>] [--debug] [--trace]
//
//	[--config <file>] [--load <save>] [--log <file>] <level>
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/nathoo/mazecaves/cli"
	"github.com/nathoo/mazecaves/config"
	"github.com/nathoo/mazecaves/engine"
	"github.com/nathoo/mazecaves/engine/events"
	"github.com/nathoo/mazecaves/engine/save"
	"github.com/nathoo/mazecaves/loader"
	"github.com/nathoo/mazecaves/tui"
	"github.com/nathoo/mazecaves/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: mazecaves [--version] [--plain] [--script <file>] [--debug] [--trace] [--config <file>] [--load <save>] [--log <file>] <level>\n"

func main() {
	plain := false
	debug := false
	trace := false
	var levelPath, scriptFile, configPath, loadPath, logPath string

	args := os.Args[1:]
	value := func(i *int, flag string) string {
		if *i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
		*i++
		return args[*i]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("mazecaves %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--debug":
			debug = true
		case "--trace":
			trace = true
		case "--script":
			scriptFile = value(&i, "--script")
		case "--config":
			configPath = value(&i, "--config")
		case "--load":
			loadPath = value(&i, "--load")
		case "--log":
			logPath = value(&i, "--log")
		default:
			if levelPath == "" {
				levelPath = args[i]
			}
		}
	}

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var restore *save.Data
	if loadPath != "" {
		restore, err = save.Read(loadPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading save: %v\n", err)
			os.Exit(1)
		}
		if levelPath == "" {
			levelPath = restore.LevelPath
		}
	}
	if levelPath == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	interactive := scriptFile == "" && !plain && term.IsTerminal(int(os.Stdout.Fd()))

	logger, closeLog, err := newLogger(cfg, logPath, trace, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	open := func(path string, obs events.Observer) (*engine.Engine, error) {
		level, err := loader.Load(path, logger)
		if err != nil {
			return nil, err
		}
		if logPath != "" {
			obs = events.Multi{obs, events.Logging{Logger: logger}}
		}
		return engine.New(level, engine.Options{
			Glyphs:   cfg.Glyphs(),
			MaxHops:  cfg.MaxHops,
			Seed:     time.Now().UnixNano(),
			Observer: obs,
			Logger:   logger,
		}), nil
	}

	if interactive {
		err := tui.Run(levelPath, restore, tui.Options{
			Open:    open,
			Keys:    cfg.Keys,
			SaveDir: cfg.SaveDirectory(),
			Debug:   debug,
		})
		if err != nil {
			fail(err)
		}
		return
	}

	c := cli.New(cfg.Bindings(), cfg.SaveDirectory())
	c.Open = open
	c.Color = cfg.Color && scriptFile == "" && term.IsTerminal(int(os.Stdout.Fd()))
	c.ShowDebug = debug

	// Script mode: read commands from a file and echo them.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}

	c.Engine, err = open(levelPath, c)
	if err != nil {
		fail(err)
	}
	if err := c.Run(restore); err != nil {
		fail(err)
	}
}

// newLogger writes text logs to logPath when set. Otherwise warnings go to
// stderr, and nothing is logged under the full-screen UI.
func newLogger(cfg config.Config, logPath string, trace, interactive bool) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	if trace {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	closeLog := func() {}
	switch {
	case logPath != "":
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log: %w", err)
		}
		w = f
		closeLog = func() { f.Close() }
	case interactive:
		w = io.Discard
	default:
		level = max(level, slog.LevelWarn)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeLog, nil
}

func fail(err error) {
	switch {
	case errors.Is(err, types.ErrDeclined):
		os.Exit(0)
	case loader.IsValidation(err):
		fmt.Fprintf(os.Stderr, "Error loading level: %v\n", err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
