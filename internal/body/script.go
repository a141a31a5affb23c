package body

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/freemove/internal/event"
	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/rig"
)

var (
	ErrEmptyScript = errors.New("input script has no steps")
	ErrInvalidStep = errors.New("invalid input script step")
)

// Script is a timeline of held inputs used for headless runs and
// reproducible scenarios.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step holds Input for Ticks ticks. Anim events and the teleport fire on the
// first tick of the step.
type Step struct {
	Label    string         `yaml:"label"`
	Ticks    int            `yaml:"ticks"`
	Input    rig.InputFrame `yaml:"input"`
	Anim     []string       `yaml:"anim"`
	Teleport []float64      `yaml:"teleport"`

	anims []event.AnimEvent
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, ErrEmptyScript
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.Ticks <= 0 {
			return nil, fmt.Errorf("%w: step %d ticks=%d", ErrInvalidStep, i, st.Ticks)
		}
		if n := len(st.Teleport); n != 0 && n != 3 && n != 4 {
			return nil, fmt.Errorf("%w: step %d teleport wants x y z [yaw]", ErrInvalidStep, i)
		}
		st.anims = st.anims[:0]
		for _, name := range st.Anim {
			e, err := event.ParseAnimEvent(name)
			if err != nil {
				return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidStep, i, err)
			}
			st.anims = append(st.anims, e)
		}
	}
	return s, nil
}

func (s *Script) TotalTicks() int {
	n := 0
	for _, st := range s.Steps {
		n += st.Ticks
	}
	return n
}

// RunScript plays s to the end. A zero interval runs ticks back to back;
// otherwise ticks are paced by a ticker. onTick may be nil.
func (b *Body) RunScript(ctx context.Context, s *Script, interval time.Duration, onTick func(rig.Snapshot)) error {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	slog.Info("Script started", "name", s.Name, "steps", len(s.Steps), "ticks", s.TotalTicks())
	for i, st := range s.Steps {
		if st.Label != "" {
			slog.Debug("Script step", "index", i, "label", st.Label)
		}
		for n := 0; n < st.Ticks; n++ {
			if tick != nil {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-tick:
				}
			} else if err := ctx.Err(); err != nil {
				return err
			}

			if n == 0 {
				b.startStep(st)
			}
			snap := b.Tick(st.Input)
			if onTick != nil {
				onTick(snap)
			}
		}
	}
	slog.Info("Script finished", "name", s.Name, "ticks", b.Ticks())
	return nil
}

func (b *Body) startStep(st Step) {
	if len(st.Teleport) >= 3 {
		yaw := b.PhysicsState().Rotation.Yaw
		if len(st.Teleport) == 4 {
			yaw = st.Teleport[3]
		}
		b.Teleport(mathx.Vec3{st.Teleport[0], st.Teleport[1], st.Teleport[2]}, yaw)
	}
	for _, e := range st.anims {
		b.OnAnimEvent(e)
	}
}
