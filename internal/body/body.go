// Package body couples the character rig with its movement integrator and
// runs them on a fixed step. Calls from other goroutines (debug console,
// config reload) are serialised with the tick.
package body

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Versifine/freemove/internal/event"
	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/physics"
	"github.com/Versifine/freemove/internal/rig"
)

var (
	ErrNilPhysics   = errors.New("body requires a physics body")
	ErrNilRig       = errors.New("body requires a rig")
	ErrInvalidDelta = errors.New("tick interval must be positive")
)

// Listener follows the character, e.g. the audio player's listener.
type Listener interface {
	SetListener(location mathx.Vec3)
}

type teleport struct {
	position mathx.Vec3
	yaw      float64
}

type Body struct {
	mu       sync.Mutex
	physics  *physics.Body
	rig      *rig.Rig
	listener Listener
	dt       float64
	pending  *teleport
	ticks    uint64
}

func New(phys *physics.Body, r *rig.Rig, dt float64) (*Body, error) {
	if phys == nil {
		return nil, ErrNilPhysics
	}
	if r == nil {
		return nil, ErrNilRig
	}
	if dt <= 0 {
		return nil, ErrInvalidDelta
	}
	return &Body{physics: phys, rig: r, dt: dt}, nil
}

func (b *Body) SetListener(l Listener) {
	b.mu.Lock()
	b.listener = l
	b.mu.Unlock()
}

// Tick runs the rig, then integrates movement with what the rig requested.
func (b *Body) Tick(frame rig.InputFrame) rig.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t := b.pending; t != nil {
		b.pending = nil
		b.physics.Teleport(t.position, t.yaw)
		b.rig.ResetIK()
		slog.Debug("Teleport applied", "position", t.position, "yaw", t.yaw)
	}

	snap := b.rig.Tick(b.dt, frame)
	b.physics.Step(b.dt)
	b.ticks++

	if b.listener != nil {
		b.listener.SetListener(b.physics.Location())
	}
	return snap
}

// Teleport moves the character at the start of the next tick.
func (b *Body) Teleport(position mathx.Vec3, yaw float64) {
	b.mu.Lock()
	b.pending = &teleport{position: position, yaw: yaw}
	b.mu.Unlock()
}

func (b *Body) OnAnimEvent(e event.AnimEvent) {
	b.rig.OnAnimEvent(e)
}

// SetParams swaps tuning from a reloaded config. Rig params land at the
// start of the next tick, physics params immediately.
func (b *Body) SetParams(rp rig.Params, pp physics.Params) {
	b.rig.SetParams(rp)
	b.mu.Lock()
	b.physics.SetParams(pp)
	b.mu.Unlock()
}

func (b *Body) PhysicsState() physics.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.physics.State()
}

func (b *Body) Snapshot() rig.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rig.Last()
}

func (b *Body) Ticks() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ticks
}

func (b *Body) DeltaTime() float64 {
	return b.dt
}

func (b *Body) TickInterval() time.Duration {
	return time.Duration(b.dt * float64(time.Second))
}
