// Package physics is a small capsule movement integrator: walking with
// braking, air control, jumping, a per-character gravity scale and
// orient-to-movement. It plays the movement collaborator for the rig.
package physics

import (
	"log/slog"

	"github.com/Versifine/freemove/internal/ik"
	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/probe"
	"github.com/Versifine/freemove/internal/world"
)

type MovementMode int

const (
	ModeWalking MovementMode = iota
	ModeFalling
	ModeNone
)

func (m MovementMode) String() string {
	switch m {
	case ModeWalking:
		return "walking"
	case ModeFalling:
		return "falling"
	case ModeNone:
		return "none"
	default:
		return "unknown"
	}
}

type Params struct {
	CapsuleRadius       float64
	CapsuleHalfHeight   float64
	Scale               float64
	GravityZ            float64
	JumpZVelocity       float64
	AirControl          float64
	RotationRate        float64
	MaxAcceleration     float64
	BrakingDeceleration float64
	GroundFriction      float64
	MaxStepHeight       float64
}

func DefaultParams() Params {
	return Params{
		CapsuleRadius:       DefaultCapsuleRadius,
		CapsuleHalfHeight:   DefaultCapsuleHalfHeight,
		Scale:               1,
		GravityZ:            DefaultGravityZ,
		JumpZVelocity:       DefaultJumpZVelocity,
		AirControl:          DefaultAirControl,
		RotationRate:        DefaultRotationRate,
		MaxAcceleration:     DefaultMaxAcceleration,
		BrakingDeceleration: DefaultBrakingDeceleration,
		GroundFriction:      DefaultGroundFriction,
		MaxStepHeight:       DefaultMaxStepHeight,
	}
}

// State is the authoritative movement state. Position is the capsule centre.
type State struct {
	Position mathx.Vec3
	Velocity mathx.Vec3
	Rotation mathx.Rotator
	Mode     MovementMode
	OnGround bool
}

type Body struct {
	params   Params
	geometry Geometry
	self     probe.ActorID

	state        State
	control      mathx.Rotator
	input        mathx.Vec3
	maxWalkSpeed float64
	gravityScale float64
	jumpPressed  bool
	gaitPhase    float64
}

func NewBody(params Params, geometry Geometry, self probe.ActorID) *Body {
	if params.Scale <= 0 {
		params.Scale = 1
	}
	b := &Body{
		params:       params,
		geometry:     geometry,
		self:         self,
		maxWalkSpeed: DefaultMaxWalkSpeed,
		gravityScale: 1,
	}
	b.state.Mode = ModeFalling
	b.publishBounds()
	return b
}

func (b *Body) SetParams(params Params) {
	if params.Scale <= 0 {
		params.Scale = 1
	}
	b.params = params
	b.publishBounds()
}

func (b *Body) Params() Params {
	return b.params
}

func (b *Body) State() State {
	return b.state
}

func (b *Body) Radius() float64 {
	return b.params.CapsuleRadius * b.params.Scale
}

func (b *Body) HalfHeight() float64 {
	return b.params.CapsuleHalfHeight * b.params.Scale
}

func (b *Body) Bounds() world.AABB {
	return CapsuleBounds(b.state.Position, b.Radius(), b.HalfHeight())
}

// Teleport places the capsule centre at pos facing yaw and clears velocity.
func (b *Body) Teleport(pos mathx.Vec3, yaw float64) {
	b.state.Position = pos
	b.state.Velocity = mathx.Vec3{}
	b.state.Rotation = mathx.Rotator{Yaw: mathx.NormalizeAngle(yaw)}
	b.control = mathx.Rotator{Yaw: b.state.Rotation.Yaw, Pitch: b.control.Pitch}
	b.state.OnGround = standingOn(b.geometry, b.Bounds(), b.self)
	if b.state.Mode != ModeNone {
		b.state.Mode = b.groundMode()
	}
	b.publishBounds()
	slog.Debug("Body teleported", "x", pos.X(), "y", pos.Y(), "z", pos.Z(), "on_ground", b.state.OnGround)
}

// Location and the methods below serve the rig's movement collaborator.
func (b *Body) Location() mathx.Vec3 {
	return b.state.Position
}

func (b *Body) Velocity() mathx.Vec3 {
	return b.state.Velocity
}

func (b *Body) Rotation() mathx.Rotator {
	return b.state.Rotation
}

func (b *Body) IsFalling() bool {
	return !b.state.OnGround
}

func (b *Body) GravityScale() float64 {
	return b.gravityScale
}

func (b *Body) SetGravityScale(scale float64) {
	if scale <= 0 {
		return
	}
	b.gravityScale = scale
}

// Jump requests a launch on the next Step. It only succeeds from the ground.
func (b *Body) Jump() {
	b.jumpPressed = true
}

func (b *Body) StopJumping() {
	b.jumpPressed = false
}

// SetMovementEnabled switches between the normal modes and ModeNone, which
// freezes the capsule in place.
func (b *Body) SetMovementEnabled(enabled bool) {
	if !enabled {
		if b.state.Mode != ModeNone {
			slog.Debug("Movement mode changed", "from", b.state.Mode.String(), "to", ModeNone.String())
		}
		b.state.Mode = ModeNone
		b.state.Velocity = mathx.Vec3{}
		b.input = mathx.Vec3{}
		return
	}
	if b.state.Mode == ModeNone {
		b.state.Mode = b.groundMode()
		slog.Debug("Movement mode changed", "from", ModeNone.String(), "to", b.state.Mode.String())
	}
}

func (b *Body) MovementMode() MovementMode {
	return b.state.Mode
}

// AddMovementInput accumulates scaled direction until the next Step.
func (b *Body) AddMovementInput(direction mathx.Vec3, scale float64) {
	b.input = b.input.Add(direction.Mul(scale))
}

func (b *Body) SetMaxWalkSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	b.maxWalkSpeed = speed
}

func (b *Body) MaxWalkSpeed() float64 {
	return b.maxWalkSpeed
}

func (b *Body) ControlRotation() mathx.Rotator {
	return b.control
}

func (b *Body) AddYawInput(deg float64) {
	b.control.Yaw = mathx.NormalizeAngle(b.control.Yaw + deg)
}

func (b *Body) AddPitchInput(deg float64) {
	b.control.Pitch = mathx.Clamp(b.control.Pitch+deg, -ControlPitchLimit, ControlPitchLimit)
}

func (b *Body) SetControlRotation(r mathx.Rotator) {
	b.control = mathx.Rotator{
		Yaw:   mathx.NormalizeAngle(r.Yaw),
		Pitch: mathx.Clamp(mathx.NormalizeAngle(r.Pitch), -ControlPitchLimit, ControlPitchLimit),
	}
}

// ComponentLocation is the mesh origin at the bottom of the capsule.
func (b *Body) ComponentLocation() mathx.Vec3 {
	return b.state.Position.Sub(mathx.Vec3{0, 0, b.HalfHeight()})
}

// SocketLocation returns a procedural limb pose driven by the gait phase.
func (b *Body) SocketLocation(name ik.Socket) (mathx.Vec3, bool) {
	forward, right := mathx.YawBasis(b.state.Rotation)
	speed := mathx.Horizontal(b.state.Velocity).Len()
	stride := 0.0
	if b.maxWalkSpeed > 0 && b.state.OnGround {
		stride = mathx.Clamp(speed/b.maxWalkSpeed, 0, 1)
	}
	swing := gaitSwing(b.gaitPhase)
	lift := gaitLift(b.gaitPhase)
	scale := b.params.Scale
	bottom := b.ComponentLocation()

	var side, along, up float64
	origin := bottom
	switch name {
	case ik.LeftFootSocket:
		side = -b.Radius() * footSpreadRatio
		along = swing * footSwing * stride * scale
		up = (ankleHeight + lift*footLift*stride) * scale
	case ik.RightFootSocket:
		side = b.Radius() * footSpreadRatio
		along = -swing * footSwing * stride * scale
		up = (ankleHeight + (1-lift)*footLift*stride) * scale
	case ik.LeftHandSocket:
		origin = b.state.Position
		side = -(b.Radius() + handSpread*scale)
		along = (handReach - swing*handSwing*stride) * scale
		up = b.HalfHeight() * shoulderRatio
	case ik.RightHandSocket:
		origin = b.state.Position
		side = b.Radius() + handSpread*scale
		along = (handReach + swing*handSwing*stride) * scale
		up = b.HalfHeight() * shoulderRatio
	default:
		return mathx.Vec3{}, false
	}
	return origin.Add(forward.Mul(along)).Add(right.Mul(side)).Add(mathx.Vec3{0, 0, up}), true
}

func (b *Body) groundMode() MovementMode {
	if b.state.OnGround {
		return ModeWalking
	}
	return ModeFalling
}

func (b *Body) publishBounds() {
	if pub, ok := b.geometry.(BoundsPublisher); ok && b.self != probe.NoActor {
		pub.SetActorBounds(b.self, b.Bounds())
	}
}
