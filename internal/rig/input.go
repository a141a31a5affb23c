package rig

import (
	"github.com/Versifine/freemove/internal/event"
	"github.com/Versifine/freemove/internal/gravity"
)

// InputFrame is one tick of input. Axes are in [-1, 1] except Turn and
// LookUp, which are absolute degree deltas. Jump and Sprint are held flags;
// the rig turns their changes into press/release edges.
type InputFrame struct {
	Forward    float64 `yaml:"forward"`
	Right      float64 `yaml:"right"`
	TurnRate   float64 `yaml:"turn_rate"`
	LookUpRate float64 `yaml:"look_up_rate"`
	Turn       float64 `yaml:"turn"`
	LookUp     float64 `yaml:"look_up"`
	Jump       bool    `yaml:"jump"`
	Sprint     bool    `yaml:"sprint"`
}

type Action int

const (
	ActionJumpPressed Action = iota + 1
	ActionJumpReleased
	ActionSprintPressed
	ActionSprintReleased
)

func (a Action) String() string {
	switch a {
	case ActionJumpPressed:
		return "JumpPressed"
	case ActionJumpReleased:
		return "JumpReleased"
	case ActionSprintPressed:
		return "SprintPressed"
	case ActionSprintReleased:
		return "SprintReleased"
	default:
		return "Unknown"
	}
}

// frameEdges compares held flags with the previous frame. Callers that only
// use HandleAction keep the flags false and never produce edges here.
func (r *Rig) frameEdges(frame InputFrame) {
	if frame.Jump != r.prevFrame.Jump {
		if frame.Jump {
			r.applyAction(ActionJumpPressed)
		} else {
			r.applyAction(ActionJumpReleased)
		}
	}
	if frame.Sprint != r.prevFrame.Sprint {
		if frame.Sprint {
			r.applyAction(ActionSprintPressed)
		} else {
			r.applyAction(ActionSprintReleased)
		}
	}
	r.prevFrame = frame
}

// applyAction ignores edges that repeat the current held state, so the same
// press arriving through HandleAction and a frame counts once.
func (r *Rig) applyAction(a Action) {
	switch a {
	case ActionJumpPressed:
		if r.jumpHeld {
			return
		}
		r.jumpHeld = true
		if !r.canJump {
			return
		}
		tr := r.gravity.JumpPressed()
		r.movement.Jump()
		r.movement.SetGravityScale(r.gravity.Scale())
		if tr.To == gravity.JumpAscending {
			r.publish(event.EventJumpStart, &event.JumpEvent{
				Location:     r.movement.Location(),
				GravityScale: r.gravity.Scale(),
			})
		}
	case ActionJumpReleased:
		if !r.jumpHeld {
			return
		}
		r.jumpHeld = false
		tr := r.gravity.JumpReleased()
		r.movement.StopJumping()
		r.movement.SetGravityScale(r.gravity.Scale())
		if tr.From == gravity.JumpAscending && tr.To == gravity.FallingUncontrolled {
			r.publish(event.EventJumpRelease, &event.JumpEvent{
				Location:     r.movement.Location(),
				GravityScale: r.gravity.Scale(),
			})
		}
	case ActionSprintPressed:
		if r.sprintHeld {
			return
		}
		r.sprintHeld = true
		r.locomotion.SprintStart()
		r.publish(event.EventSprintStart, &event.SprintEvent{MaxSpeed: r.locomotion.MaxSpeed()})
	case ActionSprintReleased:
		if !r.sprintHeld {
			return
		}
		r.sprintHeld = false
		r.locomotion.SprintStop()
		r.publish(event.EventSprintStop, &event.SprintEvent{MaxSpeed: r.locomotion.MaxSpeed()})
	}
}
