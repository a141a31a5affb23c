package rig

import (
	"fmt"

	"github.com/Versifine/freemove/internal/gravity"
	"github.com/Versifine/freemove/internal/ik"
	"github.com/Versifine/freemove/internal/locomotion"
	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/orient"
)

// Snapshot is the per-tick output read by presentation and animation.
type Snapshot struct {
	Tick     uint64
	Location mathx.Vec3
	Velocity mathx.Vec3
	Rotation mathx.Rotator
	Control  mathx.Rotator

	Intent      locomotion.Intent
	Orientation orient.State
	IK          ik.State

	GravityState   gravity.State
	GravityScale   float64
	DistanceFallen float64
	LongFall       bool
	JumpProgress   float64
	Airborne       bool

	MaxSpeed        float64
	Sprinting       bool
	CanJump         bool
	MovementEnabled bool
}

func (r *Rig) snapshot() Snapshot {
	s := Snapshot{
		Tick:            r.tick,
		Location:        r.movement.Location(),
		Velocity:        r.movement.Velocity(),
		Rotation:        r.movement.Rotation(),
		Intent:          r.locomotion.Intent(),
		Orientation:     r.orienter.State(),
		IK:              r.ik.State(),
		GravityState:    r.gravity.State(),
		GravityScale:    r.gravity.Scale(),
		DistanceFallen:  r.gravity.DistanceFallen(),
		LongFall:        r.gravity.LongFall(),
		JumpProgress:    r.gravity.JumpProgress(),
		Airborne:        r.gravity.Airborne(),
		MaxSpeed:        r.locomotion.MaxSpeed(),
		Sprinting:       r.locomotion.Sprinting(),
		CanJump:         r.canJump,
		MovementEnabled: r.locomotion.MovementEnabled(),
	}
	if r.controller != nil {
		s.Control = r.controller.ControlRotation()
	}
	return s
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"tick=%d pos=(%.1f,%.1f,%.1f) vel=(%.1f,%.1f,%.1f) yaw=%.1f gravity=%s scale=%.2f fallen=%.1f speed=%.0f hip=%.1f feet=(%.1f,%.1f) hands=(%t,%t) head=(%.1f,%.1f) torso=(%.1f,%.1f)",
		s.Tick,
		s.Location.X(), s.Location.Y(), s.Location.Z(),
		s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
		s.Rotation.Yaw,
		s.GravityState, s.GravityScale, s.DistanceFallen, s.MaxSpeed,
		s.IK.HipOffset, s.IK.LeftFootOffset, s.IK.RightFootOffset,
		s.IK.LeftHandBlocked, s.IK.RightHandBlocked,
		s.Orientation.HeadYaw, s.Orientation.HeadRoll,
		s.Orientation.TorsoYaw, s.Orientation.TorsoPitch,
	)
}
