// Package rig composes the per-tick character pipeline: queued animation
// commands, input edges, locomotion, head/torso orientation, the gravity
// state machine and foot/hand IK, publishing one Snapshot per tick.
package rig

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Versifine/freemove/internal/audio"
	"github.com/Versifine/freemove/internal/event"
	"github.com/Versifine/freemove/internal/gravity"
	"github.com/Versifine/freemove/internal/ik"
	"github.com/Versifine/freemove/internal/locomotion"
	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/orient"
	"github.com/Versifine/freemove/internal/probe"
)

var ErrNoMovement = errors.New("rig requires a movement collaborator")

// Movement is the movement integrator. The rig reads its state and never
// writes position or velocity.
type Movement interface {
	locomotion.Mover
	Location() mathx.Vec3
	Velocity() mathx.Vec3
	Rotation() mathx.Rotator
	IsFalling() bool
	SetGravityScale(scale float64)
	Jump()
	StopJumping()
	SetMovementEnabled(enabled bool)
}

type Params struct {
	Locomotion  locomotion.Params
	Gravity     gravity.Params
	IK          ik.Params
	Orientation orient.Params
}

func DefaultParams() Params {
	return Params{
		Locomotion:  locomotion.DefaultParams(),
		Gravity:     gravity.DefaultParams(),
		IK:          ik.DefaultParams(1, 96),
		Orientation: orient.DefaultParams(),
	}
}

// Collaborators are the rig's external dependencies. Only Movement is
// required; a nil Controller suppresses directional input, a nil Skeleton or
// Tracer makes every IK probe miss.
type Collaborators struct {
	Movement   Movement
	Controller locomotion.Controller
	Skeleton   ik.Skeleton
	Tracer     probe.Tracer
	Audio      audio.Player
	Bus        *event.Bus
}

type Rig struct {
	movement   Movement
	controller locomotion.Controller
	audio      audio.Player
	bus        *event.Bus

	prober     *probe.Prober
	locomotion *locomotion.Mapper
	gravity    *gravity.Machine
	orienter   *orient.Orienter
	ik         *ik.Solver

	anim    event.Queue
	mu      sync.Mutex
	actions []Action
	pending *Params

	canJump    bool
	jumpHeld   bool
	sprintHeld bool
	prevFrame  InputFrame
	tick       uint64
	outbox     []published
	last       Snapshot
}

type published struct {
	name    string
	payload any
}

func New(params Params, c Collaborators, self probe.ActorID) (*Rig, error) {
	if c.Movement == nil {
		return nil, ErrNoMovement
	}
	if c.Audio == nil {
		c.Audio = audio.NopPlayer{}
	}
	controller := c.Controller
	prober := probe.New(c.Tracer, self)
	r := &Rig{
		movement:   c.Movement,
		controller: controller,
		audio:      c.Audio,
		bus:        c.Bus,
		prober:     prober,
		locomotion: locomotion.New(params.Locomotion, c.Movement, controller),
		gravity:    gravity.NewMachine(params.Gravity),
		orienter:   orient.New(params.Orientation),
		ik:         ik.NewSolver(params.IK, prober, c.Skeleton),
		canJump:    true,
	}
	c.Movement.SetGravityScale(r.gravity.Scale())
	return r, nil
}

// SetParams stages new tuning for the start of the next tick. Safe to call
// from another goroutine.
func (r *Rig) SetParams(params Params) {
	r.mu.Lock()
	r.pending = &params
	r.mu.Unlock()
}

// OnAnimEvent queues an animation command. Safe to call from another
// goroutine.
func (r *Rig) OnAnimEvent(e event.AnimEvent) {
	r.anim.Push(e)
}

// HandleAction queues a discrete input edge for the next tick.
func (r *Rig) HandleAction(a Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
}

func (r *Rig) Last() Snapshot {
	return r.last
}

func (r *Rig) ProbeStats() probe.Stats {
	return r.prober.Stats()
}

func (r *Rig) applyPending() {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	actions := r.actions
	r.actions = nil
	r.mu.Unlock()

	if pending != nil {
		r.locomotion.SetParams(pending.Locomotion)
		r.gravity.SetParams(pending.Gravity)
		r.movement.SetGravityScale(r.gravity.Scale())
		r.ik.SetParams(pending.IK)
		r.orienter.SetParams(pending.Orientation)
		slog.Info("Rig params applied", "tick", r.tick)
	}
	for _, a := range actions {
		r.applyAction(a)
	}
}

func (r *Rig) applyAnimEvents() {
	for _, e := range r.anim.Drain() {
		switch e {
		case event.AnimEnableJump:
			r.canJump = true
		case event.AnimDisableJump:
			r.canJump = false
		case event.AnimEnableMovement:
			r.locomotion.SetMovementEnabled(true)
			r.movement.SetMovementEnabled(true)
		case event.AnimDisableMovement:
			r.locomotion.SetMovementEnabled(false)
			r.movement.SetMovementEnabled(false)
		case event.AnimFootstep:
			loc := r.movement.Location()
			r.audio.PlayAt(audio.CueFootstep, loc)
			r.publish(event.EventFootstep, &event.FootstepEvent{Location: loc})
		}
		slog.Debug("Anim event applied", "event", e.String(), "tick", r.tick)
	}
}

func (r *Rig) publish(name string, payload any) {
	r.outbox = append(r.outbox, published{name: name, payload: payload})
}

func (r *Rig) flush() {
	out := r.outbox
	r.outbox = nil
	for _, p := range out {
		r.bus.Publish(p.name, p.payload)
	}
}

// ResetIK drops smoothed limb offsets, e.g. after a teleport.
func (r *Rig) ResetIK() {
	r.ik.Reset()
}
