package physics

import (
	"math"

	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/probe"
	"github.com/Versifine/freemove/internal/world"
)

// Geometry is the collision side of the environment.
type Geometry interface {
	Overlapping(query world.AABB, ignore probe.ActorID, fn func(world.AABB))
}

// BoundsPublisher is implemented by environments that let probes see the
// character.
type BoundsPublisher interface {
	SetActorBounds(owner probe.ActorID, bounds world.AABB)
}

// CapsuleBounds approximates a capsule centred on center by its bounding box.
func CapsuleBounds(center mathx.Vec3, radius, halfHeight float64) world.AABB {
	return world.BoxAround(center, mathx.Vec3{radius, radius, halfHeight})
}

// ResolveMovement moves box by delta one axis at a time (Z first) and
// returns the distance actually travelled plus which axes were cut short.
func ResolveMovement(geo Geometry, box world.AABB, delta mathx.Vec3, ignore probe.ActorID) (mathx.Vec3, [3]bool) {
	var moved mathx.Vec3
	var blocked [3]bool
	for _, axis := range [3]int{2, 0, 1} {
		allowed := resolveAxis(geo, box, axis, delta[axis], ignore)
		blocked[axis] = !nearlyEqual(allowed, delta[axis])
		moved[axis] = allowed
		var step mathx.Vec3
		step[axis] = allowed
		box = box.Translate(step)
	}
	return moved, blocked
}

// resolveAxis clips delta against solids ahead of box along axis. Solids the
// box already overlaps are ignored so a stuck character can move out.
func resolveAxis(geo Geometry, box world.AABB, axis int, delta float64, ignore probe.ActorID) float64 {
	if geo == nil || nearlyZero(delta) {
		return delta
	}
	var d mathx.Vec3
	d[axis] = delta
	sweep := box.Expand(d)

	allowed := delta
	geo.Overlapping(sweep, ignore, func(s world.AABB) {
		if !overlapsOtherAxes(box, s, axis) {
			return
		}
		if delta > 0 {
			if s.Min[axis] < box.Max[axis]-CollisionTolerance {
				return
			}
			allowed = math.Min(allowed, math.Max(s.Min[axis]-box.Max[axis], 0))
			return
		}
		if s.Max[axis] > box.Min[axis]+CollisionTolerance {
			return
		}
		allowed = math.Max(allowed, math.Min(s.Max[axis]-box.Min[axis], 0))
	})
	return allowed
}

func overlapsOtherAxes(a, b world.AABB, axis int) bool {
	for i := 0; i < 3; i++ {
		if i == axis {
			continue
		}
		if a.Min[i] >= b.Max[i] || a.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

// standingOn reports whether box rests on something within GroundProbeDistance.
func standingOn(geo Geometry, box world.AABB, ignore probe.ActorID) bool {
	return !nearlyEqual(resolveAxis(geo, box, 2, -GroundProbeDistance, ignore), -GroundProbeDistance)
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionTolerance
}
