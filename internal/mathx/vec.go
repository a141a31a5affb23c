package mathx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a world-space position or direction. Z is up.
type Vec3 = mgl64.Vec3

const epsilon = 1e-9

var (
	Up     = Vec3{0, 0, 1}
	Down   = Vec3{0, 0, -1}
	Zero3  = Vec3{}
	WorldX = Vec3{1, 0, 0}
	WorldY = Vec3{0, 1, 0}
)

// Rotator is a pitch/yaw/roll triple in degrees.
// Yaw turns X toward Y around Z; positive pitch looks up.
type Rotator struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

func (r Rotator) Normalized() Rotator {
	return Rotator{
		Pitch: NormalizeAngle(r.Pitch),
		Yaw:   NormalizeAngle(r.Yaw),
		Roll:  NormalizeAngle(r.Roll),
	}
}

// YawOnly drops pitch and roll.
func (r Rotator) YawOnly() Rotator {
	return Rotator{Yaw: r.Yaw}
}

// Forward returns the unit direction the rotator points along.
func (r Rotator) Forward() Vec3 {
	pitch := mgl64.DegToRad(r.Pitch)
	yaw := mgl64.DegToRad(r.Yaw)
	return Vec3{
		math.Cos(pitch) * math.Cos(yaw),
		math.Cos(pitch) * math.Sin(yaw),
		math.Sin(pitch),
	}
}

// YawBasis returns the horizontal forward and right axes of r. Pitch and
// roll never leak into the result.
func YawBasis(r Rotator) (forward, right Vec3) {
	m := mgl64.Rotate3DZ(mgl64.DegToRad(r.Yaw))
	return m.Mul3x1(WorldX), m.Mul3x1(WorldY)
}

// Horizontal zeroes the Z component.
func Horizontal(v Vec3) Vec3 {
	return Vec3{v.X(), v.Y(), 0}
}

// SafeNormalize returns the unit vector of v, or the zero vector when v is
// too short to normalise.
func SafeNormalize(v Vec3) (Vec3, bool) {
	l := v.Len()
	if l <= epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// YawOf returns the heading of v in degrees, ignoring Z.
func YawOf(v Vec3) float64 {
	return mgl64.RadToDeg(math.Atan2(v.Y(), v.X()))
}

func NearlyZero(v float64) bool {
	return math.Abs(v) <= epsilon
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
