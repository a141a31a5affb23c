package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/freemove/internal/audio"
	"github.com/Versifine/freemove/internal/audio/speakerout"
	"github.com/Versifine/freemove/internal/body"
	"github.com/Versifine/freemove/internal/config"
	"github.com/Versifine/freemove/internal/debug"
	"github.com/Versifine/freemove/internal/event"
	"github.com/Versifine/freemove/internal/logger"
	"github.com/Versifine/freemove/internal/physics"
	"github.com/Versifine/freemove/internal/probe"
	"github.com/Versifine/freemove/internal/rig"
	"github.com/Versifine/freemove/internal/world"
)

const playerID probe.ActorID = 1

type options struct {
	configPath  string
	levelPath   string
	scriptPath  string
	interactive bool
	fast        bool
	logEvery    int
}

func main() {
	opts := options{}
	flag.StringVar(&opts.configPath, "config", "configs/freemove.yaml", "config file")
	flag.StringVar(&opts.levelPath, "level", "", "level file (overrides sim.level)")
	flag.StringVar(&opts.scriptPath, "script", "", "input script (overrides sim.script)")
	flag.BoolVar(&opts.interactive, "interactive", false, "drive the character from the terminal")
	flag.BoolVar(&opts.fast, "fast", false, "run the script without real-time pacing")
	flag.IntVar(&opts.logEvery, "log-every", 30, "log a snapshot every N script ticks (0 disables)")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("freemove failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logOut, closeLog, err := openLogOutput(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: logOut,
	})
	log := logger.With("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	levelPath := firstNonEmpty(opts.levelPath, cfg.Sim.Level)
	level, err := loadLevel(levelPath)
	if err != nil {
		return err
	}
	scene := level.Build()
	log.Info("Level loaded", "name", level.Name, "boxes", scene.BoxCount(), "chunks", scene.Terrain().LoadedChunkCount())

	player, closeAudio := newAudioPlayer(cfg)
	defer closeAudio()

	bus := event.NewBus()
	subscribeEvents(bus, player)

	character, err := newCharacter(cfg, level, scene, player, bus)
	if err != nil {
		return err
	}
	if l, ok := player.(body.Listener); ok {
		character.SetListener(l)
	}

	if watcher, err := config.NewWatcher(opts.configPath); err != nil {
		log.Warn("Config hot reload disabled", "error", err)
	} else {
		defer watcher.Close()
		go watchConfig(ctx, watcher, character)
	}

	if opts.interactive {
		console := debug.NewConsole(character, character.TickInterval())
		return console.Start(ctx)
	}

	scriptPath := firstNonEmpty(opts.scriptPath, cfg.Sim.Script)
	if scriptPath == "" {
		return errors.New("nothing to run: pass -script or -interactive")
	}
	script, err := body.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	interval := character.TickInterval()
	if opts.fast {
		interval = 0
	}
	err = character.RunScript(ctx, script, interval, func(snap rig.Snapshot) {
		if opts.logEvery > 0 && snap.Tick%uint64(opts.logEvery) == 0 {
			log.Info("Snapshot", "state", snap.String())
		}
	})
	if errors.Is(err, context.Canceled) {
		log.Info("Interrupted", "ticks", character.Ticks())
		return nil
	}
	return err
}

// newCharacter spawns the player capsule in scene and wires the rig to it.
func newCharacter(cfg *config.Config, level *world.Level, scene *world.Scene, player audio.Player, bus *event.Bus) (*body.Body, error) {
	rigParams, err := cfg.RigParams()
	if err != nil {
		return nil, err
	}
	phys := physics.NewBody(cfg.PhysicsParams(), scene, playerID)
	phys.Teleport(level.SpawnPoint(), level.SpawnYaw)

	r, err := rig.New(rigParams, rig.Collaborators{
		Movement:   phys,
		Controller: phys,
		Skeleton:   phys,
		Tracer:     scene,
		Audio:      player,
		Bus:        bus,
	}, playerID)
	if err != nil {
		return nil, fmt.Errorf("create rig: %w", err)
	}
	character, err := body.New(phys, r, cfg.TickInterval())
	if err != nil {
		return nil, fmt.Errorf("create body: %w", err)
	}
	return character, nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}

func loadLevel(path string) (*world.Level, error) {
	if path == "" {
		return defaultLevel(), nil
	}
	return world.LoadLevel(path)
}

// defaultLevel is a flat 40x40 m floor with the character standing at the
// origin.
func defaultLevel() *world.Level {
	return &world.Level{
		Name:     "flat",
		CellSize: world.DefaultCellSize,
		Spawn:    [3]float64{0, 0, physics.DefaultCapsuleHalfHeight},
		Solids:   []world.CellRange{{Min: [3]int{-20, -20, -1}, Max: [3]int{19, 19, -1}}},
	}
}

func openLogOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func newAudioPlayer(cfg *config.Config) (audio.Player, func()) {
	if !cfg.Audio.Enabled {
		return audio.NopPlayer{}, func() {}
	}
	sp := speakerout.New(cfg.AudioConfig())
	if err := sp.Init(); err != nil {
		slog.Warn("Audio disabled", "error", err)
		return audio.NopPlayer{}, func() {}
	}
	return sp, sp.Close
}

// subscribeEvents logs every rig event and voices jump and landing; the rig
// plays footsteps itself.
func subscribeEvents(bus *event.Bus, player audio.Player) {
	for _, name := range []string{
		event.EventJumpStart, event.EventJumpRelease, event.EventLanded, event.EventFallStart,
		event.EventFootstep, event.EventSprintStart, event.EventSprintStop,
	} {
		bus.Subscribe(name, event.LogHandler(name))
	}
	bus.Subscribe(event.EventJumpStart, func(raw any) {
		if e, ok := raw.(*event.JumpEvent); ok {
			player.PlayAt(audio.CueJump, e.Location)
		}
	})
	bus.Subscribe(event.EventLanded, func(raw any) {
		e, ok := raw.(*event.LandedEvent)
		if !ok {
			return
		}
		player.PlayAt(audio.CueLand, e.Location)
		if e.LongFall {
			slog.Info("Long fall landed", "distance", e.FallDistance)
		}
	})
}

func watchConfig(ctx context.Context, w *config.Watcher, character *body.Body) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-w.Configs:
			if !ok {
				return
			}
			rp, err := cfg.RigParams()
			if err != nil {
				slog.Warn("Reloaded config rejected", "error", err)
				continue
			}
			logger.SetLevel(cfg.Logging.Level)
			character.SetParams(rp, cfg.PhysicsParams())
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", "error", err)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
