// Package locomotion maps raw input axes onto movement intent, controller
// rotation and speed changes.
package locomotion

import (
	"log/slog"

	"github.com/Versifine/freemove/internal/mathx"
)

const (
	DefaultWalkSpeed   = 600.0
	DefaultSprintSpeed = 1200.0
	// degrees per second at full axis deflection
	DefaultTurnRate   = 45.0
	DefaultLookUpRate = 45.0
)

// Controller is the facing reference. Its control rotation may carry pitch
// and roll; movement only ever uses the yaw.
type Controller interface {
	ControlRotation() mathx.Rotator
	AddYawInput(deg float64)
	AddPitchInput(deg float64)
}

// Mover is the movement integrator's input side.
type Mover interface {
	AddMovementInput(direction mathx.Vec3, scale float64)
	SetMaxWalkSpeed(speed float64)
}

type Params struct {
	WalkSpeed   float64
	SprintSpeed float64
	TurnRate    float64
	LookUpRate  float64
}

func DefaultParams() Params {
	return Params{
		WalkSpeed:   DefaultWalkSpeed,
		SprintSpeed: DefaultSprintSpeed,
		TurnRate:    DefaultTurnRate,
		LookUpRate:  DefaultLookUpRate,
	}
}

// Intent holds this tick's raw axis values. The directions are set only
// when the input reached the mover.
type Intent struct {
	Forward          float64
	Right            float64
	ForwardDirection mathx.Vec3
	RightDirection   mathx.Vec3
}

type Axis int

const (
	AxisForward Axis = iota
	AxisRight
)

// MoveDirection is the horizontal unit vector for axis under the yaw of
// control.
func MoveDirection(control mathx.Rotator, axis Axis) mathx.Vec3 {
	forward, right := mathx.YawBasis(control.YawOnly())
	if axis == AxisRight {
		return right
	}
	return forward
}

type Mapper struct {
	params     Params
	mover      Mover
	controller Controller

	sprinting       bool
	movementEnabled bool
	intent          Intent
}

// New applies the walk speed to mover immediately. Either collaborator may be
// nil; the matching inputs then do nothing.
func New(params Params, mover Mover, controller Controller) *Mapper {
	m := &Mapper{
		params:          params,
		mover:           mover,
		controller:      controller,
		movementEnabled: true,
	}
	m.applySpeed()
	return m
}

func (m *Mapper) SetParams(params Params) {
	m.params = params
	m.applySpeed()
}

func (m *Mapper) Params() Params {
	return m.params
}

// BeginTick clears the intent recorded during the previous tick.
func (m *Mapper) BeginTick() {
	m.intent = Intent{}
}

func (m *Mapper) Intent() Intent {
	return m.intent
}

// MoveForward reports whether the input reached the mover.
func (m *Mapper) MoveForward(value float64) bool {
	m.intent.Forward = value
	dir, ok := m.direction(value, AxisForward)
	if !ok {
		return false
	}
	m.mover.AddMovementInput(dir, value)
	m.intent.ForwardDirection = dir
	return true
}

func (m *Mapper) MoveRight(value float64) bool {
	m.intent.Right = value
	dir, ok := m.direction(value, AxisRight)
	if !ok {
		return false
	}
	m.mover.AddMovementInput(dir, value)
	m.intent.RightDirection = dir
	return true
}

func (m *Mapper) direction(value float64, axis Axis) (mathx.Vec3, bool) {
	if value == 0 || !m.movementEnabled || m.controller == nil || m.mover == nil {
		return mathx.Vec3{}, false
	}
	return MoveDirection(m.controller.ControlRotation(), axis), true
}

// TurnAtRate handles rate-style input (gamepad stick): rate in [-1, 1].
func (m *Mapper) TurnAtRate(rate, dt float64) {
	m.Turn(rate * m.params.TurnRate * dt)
}

func (m *Mapper) LookUpAtRate(rate, dt float64) {
	m.LookUp(rate * m.params.LookUpRate * dt)
}

// Turn forwards an absolute yaw delta (mouse).
func (m *Mapper) Turn(delta float64) {
	if m.controller == nil || delta == 0 {
		return
	}
	m.controller.AddYawInput(delta)
}

func (m *Mapper) LookUp(delta float64) {
	if m.controller == nil || delta == 0 {
		return
	}
	m.controller.AddPitchInput(delta)
}

func (m *Mapper) SprintStart() {
	if m.sprinting {
		return
	}
	m.sprinting = true
	m.applySpeed()
	slog.Debug("Sprint started", "max_speed", m.MaxSpeed())
}

func (m *Mapper) SprintStop() {
	if !m.sprinting {
		return
	}
	m.sprinting = false
	m.applySpeed()
	slog.Debug("Sprint stopped", "max_speed", m.MaxSpeed())
}

func (m *Mapper) Sprinting() bool {
	return m.sprinting
}

// MaxSpeed is the speed currently in effect.
func (m *Mapper) MaxSpeed() float64 {
	if m.sprinting {
		return m.params.SprintSpeed
	}
	return m.params.WalkSpeed
}

// SetMovementEnabled gates directional input. Rotation input is unaffected.
func (m *Mapper) SetMovementEnabled(enabled bool) {
	m.movementEnabled = enabled
}

func (m *Mapper) MovementEnabled() bool {
	return m.movementEnabled
}

func (m *Mapper) applySpeed() {
	if m.mover != nil {
		m.mover.SetMaxWalkSpeed(m.MaxSpeed())
	}
}
