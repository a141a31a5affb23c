// Package ik derives per-tick limb corrections from short environment probes:
// vertical foot offsets with hip compensation, and hand contact points
// against geometry in front of the character.
package ik

import (
	"math"

	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/probe"
)

type Socket string

const (
	LeftFootSocket  Socket = "LeftFootIKSocket"
	RightFootSocket Socket = "RightFootIKSocket"
	LeftHandSocket  Socket = "LeftArmIKSocket"
	RightHandSocket Socket = "RightArmIKSocket"
)

const (
	DefaultArmTraceDistance   = 60.0
	DefaultInterpSpeed        = 15.0
	DefaultHipOffsetThreshold = 50.0
	DefaultLeftHandOffset     = -10.0
	DefaultRightHandOffset    = 25.0
)

// Skeleton exposes the animated pose of the character mesh.
type Skeleton interface {
	SocketLocation(name Socket) (mathx.Vec3, bool)
	// ComponentLocation is the mesh origin, normally the capsule bottom.
	ComponentLocation() mathx.Vec3
}

type Prober interface {
	Probe(origin, direction mathx.Vec3, maxDistance float64, ignoreSelf bool) (probe.Hit, bool)
}

type Params struct {
	FootTraceDistance  float64
	ArmTraceDistance   float64
	InterpSpeed        float64
	HipOffsetThreshold float64
	LeftHandOffset     float64
	RightHandOffset    float64
}

// FootTraceDistanceFor scales the capsule half height by the character's
// uniform scale.
func FootTraceDistanceFor(scale, capsuleHalfHeight float64) float64 {
	return scale * capsuleHalfHeight
}

func DefaultParams(scale, capsuleHalfHeight float64) Params {
	return Params{
		FootTraceDistance:  FootTraceDistanceFor(scale, capsuleHalfHeight),
		ArmTraceDistance:   DefaultArmTraceDistance,
		InterpSpeed:        DefaultInterpSpeed,
		HipOffsetThreshold: DefaultHipOffsetThreshold,
		LeftHandOffset:     DefaultLeftHandOffset,
		RightHandOffset:    DefaultRightHandOffset,
	}
}

// State is the IK output for one tick. Only the smoothed foot offsets and
// the hip offset feed into the next tick.
type State struct {
	LeftFootOffset  float64
	RightFootOffset float64
	HipOffset       float64

	LeftFootHit  mathx.Vec3
	RightFootHit mathx.Vec3

	LeftHandLocation  mathx.Vec3
	RightHandLocation mathx.Vec3
	LeftHandBlocked   bool
	RightHandBlocked  bool
}

// HipOffset lowers the pelvis by half the height difference between the
// feet. Differences at or above threshold (steps, ledges) are left alone, so
// the result jumps from just under -threshold/2 to 0 at the boundary.
func HipOffset(leftZ, rightZ, threshold float64) float64 {
	delta := math.Abs(rightZ - leftZ)
	if delta < threshold {
		return -0.5 * delta
	}
	return 0
}
