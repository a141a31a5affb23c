package rig

import (
	"github.com/Versifine/freemove/internal/event"
	"github.com/Versifine/freemove/internal/gravity"
	"github.com/Versifine/freemove/internal/mathx"
)

// Tick runs one simulation step with dt in seconds. Nothing in it fails: a
// missed probe, missing controller or missing curve each fall back to a
// neutral value.
func (r *Rig) Tick(dt float64, frame InputFrame) Snapshot {
	r.tick++

	// commands first so no notify lands mid-tick
	r.applyPending()
	r.applyAnimEvents()
	r.frameEdges(frame)

	r.locomotion.BeginTick()
	r.locomotion.MoveForward(frame.Forward)
	r.locomotion.MoveRight(frame.Right)
	r.locomotion.TurnAtRate(frame.TurnRate, dt)
	r.locomotion.LookUpAtRate(frame.LookUpRate, dt)
	r.locomotion.Turn(frame.Turn)
	r.locomotion.LookUp(frame.LookUp)

	var control mathx.Rotator
	if r.controller != nil {
		control = r.controller.ControlRotation()
	}
	body := r.movement.Rotation()
	r.orienter.Update(dt, control, body, turnAxis(frame))

	r.updateGravity(dt)

	location := r.movement.Location()
	r.ik.UpdateFeet(dt, location)
	forward, right := mathx.YawBasis(body)
	r.ik.UpdateHands(forward, right)

	r.flush()
	r.last = r.snapshot()
	return r.last
}

func (r *Rig) updateGravity(dt float64) {
	velocity := r.movement.Velocity()
	tr := r.gravity.Update(dt, r.movement.IsFalling(), velocity.Z())
	r.movement.SetGravityScale(r.gravity.Scale())

	if tr.Landed {
		r.publish(event.EventLanded, &event.LandedEvent{
			Location:     r.movement.Location(),
			FallDistance: tr.FallDistance,
			LongFall:     tr.LongFall,
		})
		return
	}
	if tr.To == gravity.FallingUncontrolled && tr.From != gravity.FallingUncontrolled {
		r.publish(event.EventFallStart, &event.FallEvent{
			Location:     r.movement.Location(),
			GravityScale: r.gravity.Scale(),
			FromJump:     tr.From == gravity.JumpAscending,
		})
	}
}

// turnAxis feeds the torso from the mouse turn axis, falling back to the
// rate axis for sticks.
func turnAxis(frame InputFrame) float64 {
	if frame.Turn != 0 {
		return frame.Turn
	}
	return frame.TurnRate
}
