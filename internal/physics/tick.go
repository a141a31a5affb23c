package physics

import (
	"math"

	"github.com/Versifine/freemove/internal/mathx"
)

// Step integrates one tick: consume input, launch a pending jump, update
// velocity for the current mode, collide, then re-detect ground.
func (b *Body) Step(dt float64) {
	defer b.clearInput()
	if dt <= 0 || math.IsNaN(dt) {
		return
	}
	if b.state.Mode == ModeNone {
		b.state.Velocity = mathx.Vec3{}
		return
	}

	accel := mathx.Horizontal(b.input)
	if l := accel.Len(); l > 1 {
		accel = accel.Mul(1 / l)
	}

	jumped := false
	if b.jumpPressed && b.state.OnGround {
		b.state.Velocity[2] = b.params.JumpZVelocity
		b.state.OnGround = false
		jumped = true
	}
	b.jumpPressed = false

	if b.state.OnGround {
		b.walkVelocity(accel, dt)
	} else {
		b.airVelocity(accel, dt)
	}

	wasOnGround := b.state.OnGround
	b.move(b.state.Velocity.Mul(dt), wasOnGround)

	b.state.OnGround = b.state.Velocity.Z() <= 0 && standingOn(b.geometry, b.Bounds(), b.self)
	if !b.state.OnGround && wasOnGround && !jumped {
		b.state.OnGround = b.stepDown()
	}
	if b.state.OnGround {
		b.state.Velocity[2] = 0
	}
	b.state.Mode = b.groundMode()

	if !mathx.NearlyZero(accel.Len()) {
		target := mathx.YawOf(accel)
		b.state.Rotation.Yaw = mathx.StepAngleTo(b.state.Rotation.Yaw, target, b.params.RotationRate*dt)
	}

	speed := mathx.Horizontal(b.state.Velocity).Len()
	b.gaitPhase = math.Mod(b.gaitPhase+speed*dt/strideLength, 1)
	zeroResidual(&b.state.Velocity)
	b.publishBounds()
}

// walkVelocity applies friction toward the input direction, acceleration
// capped at max walk speed scaled by input magnitude, or braking.
func (b *Body) walkVelocity(accel mathx.Vec3, dt float64) {
	v := mathx.Horizontal(b.state.Velocity)
	amount := accel.Len()
	if mathx.NearlyZero(amount) {
		speed := v.Len()
		if speed <= 0 {
			return
		}
		drop := (b.params.GroundFriction*speed + b.params.BrakingDeceleration) * dt
		next := math.Max(speed-drop, 0)
		v = v.Mul(next / speed)
	} else {
		dir := accel.Mul(1 / amount)
		speed := v.Len()
		turn := math.Min(dt*b.params.GroundFriction, 1)
		v = v.Sub(v.Sub(dir.Mul(speed)).Mul(turn))
		v = v.Add(accel.Mul(b.params.MaxAcceleration * dt))
		maxSpeed := b.maxWalkSpeed * amount
		if l := v.Len(); l > maxSpeed {
			v = v.Mul(maxSpeed / l)
		}
	}
	b.state.Velocity = mathx.Vec3{v.X(), v.Y(), 0}
}

// airVelocity applies reduced air control and scaled gravity. Air control
// never pushes horizontal speed past max walk speed, but keeps momentum that
// is already above it.
func (b *Body) airVelocity(accel mathx.Vec3, dt float64) {
	v := mathx.Horizontal(b.state.Velocity)
	before := v.Len()
	v = v.Add(accel.Mul(b.params.MaxAcceleration * b.params.AirControl * dt))
	limit := math.Max(before, b.maxWalkSpeed)
	if l := v.Len(); l > limit {
		v = v.Mul(limit / l)
	}
	vz := b.state.Velocity.Z() + b.params.GravityZ*b.gravityScale*dt
	b.state.Velocity = mathx.Vec3{v.X(), v.Y(), vz}
}

func (b *Body) move(delta mathx.Vec3, onGround bool) {
	box := b.Bounds()
	moved, blocked := ResolveMovement(b.geometry, box, delta, b.self)

	if onGround && (blocked[0] || blocked[1]) && b.params.MaxStepHeight > 0 {
		if stepped, ok := b.stepUp(delta); ok && mathx.Horizontal(stepped).Len() > mathx.Horizontal(moved).Len() {
			moved = stepped
			blocked = [3]bool{}
		}
	}

	b.state.Position = b.state.Position.Add(moved)
	for axis := 0; axis < 3; axis++ {
		if blocked[axis] {
			b.state.Velocity[axis] = 0
		}
	}
}

// stepUp retries a blocked horizontal move from MaxStepHeight higher and
// settles back down onto whatever is below.
func (b *Body) stepUp(delta mathx.Vec3) (mathx.Vec3, bool) {
	box := b.Bounds()
	height := b.params.MaxStepHeight * b.params.Scale
	up, _ := ResolveMovement(b.geometry, box, mathx.Vec3{0, 0, height}, b.self)
	box = box.Translate(up)
	across, _ := ResolveMovement(b.geometry, box, mathx.Vec3{delta.X(), delta.Y(), 0}, b.self)
	box = box.Translate(across)
	down, blocked := ResolveMovement(b.geometry, box, mathx.Vec3{0, 0, -up.Z() + math.Min(delta.Z(), 0)}, b.self)
	if !blocked[2] {
		return mathx.Vec3{}, false
	}
	return up.Add(across).Add(down), true
}

// stepDown keeps the capsule glued to floors up to MaxStepHeight below it
// when walking down stairs or slopes.
func (b *Body) stepDown() bool {
	height := b.params.MaxStepHeight * b.params.Scale
	if height <= 0 {
		return false
	}
	down, blocked := ResolveMovement(b.geometry, b.Bounds(), mathx.Vec3{0, 0, -height}, b.self)
	if !blocked[2] {
		return false
	}
	b.state.Position = b.state.Position.Add(down)
	return true
}

func (b *Body) clearInput() {
	b.input = mathx.Vec3{}
}

func zeroResidual(v *mathx.Vec3) {
	for i := 0; i < 3; i++ {
		if math.Abs(v[i]) < MinimumResidualSpeed {
			v[i] = 0
		}
	}
}

func gaitSwing(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

// gaitLift is 1 while the left foot is in its swing half of the cycle.
func gaitLift(phase float64) float64 {
	return math.Max(0, math.Cos(2*math.Pi*phase))
}
