package event

import "github.com/Versifine/freemove/internal/mathx"

const (
	EventJumpStart   = "jump.start"
	EventJumpRelease = "jump.release"
	EventLanded      = "landed"
	EventFallStart   = "fall.start"
	EventFootstep    = "footstep"
	EventSprintStart = "sprint.start"
	EventSprintStop  = "sprint.stop"
)

type JumpEvent struct {
	Location     mathx.Vec3
	GravityScale float64
}

type LandedEvent struct {
	Location     mathx.Vec3
	FallDistance float64
	LongFall     bool
}

type FallEvent struct {
	Location     mathx.Vec3
	GravityScale float64
	// FromJump is false when the character walked off a ledge.
	FromJump bool
}

type FootstepEvent struct {
	Location mathx.Vec3
}

type SprintEvent struct {
	MaxSpeed float64
}
