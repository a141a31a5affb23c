package world

import (
	"math"

	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/probe"
)

type AABB struct {
	Min mathx.Vec3
	Max mathx.Vec3
}

// BoxAround builds an AABB centred on c with half extents h.
func BoxAround(c, h mathx.Vec3) AABB {
	return AABB{Min: c.Sub(h), Max: c.Add(h)}
}

func (b AABB) Contains(p mathx.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Box is free-standing geometry owned by an actor. Owner is probe.NoActor for
// static level geometry.
type Box struct {
	Bounds AABB
	Owner  probe.ActorID
}

// intersectSegment clips start->end against b with the slab method and
// returns the entry parameter in [0, 1] and the entry face normal.
func (b AABB) intersectSegment(start, end mathx.Vec3) (float64, mathx.Vec3, bool) {
	dir := end.Sub(start)
	tMin, tMax := 0.0, 1.0
	var normal mathx.Vec3

	for axis := 0; axis < 3; axis++ {
		if mathx.NearlyZero(dir[axis]) {
			if start[axis] < b.Min[axis] || start[axis] > b.Max[axis] {
				return 0, mathx.Vec3{}, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t1 := (b.Min[axis] - start[axis]) * inv
		t2 := (b.Max[axis] - start[axis]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tMin {
			tMin = t1
			normal = mathx.Vec3{}
			normal[axis] = sign
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, mathx.Vec3{}, false
		}
	}

	if normal == (mathx.Vec3{}) {
		// started inside the box
		back, _ := mathx.SafeNormalize(dir.Mul(-1))
		normal = back
	}
	return tMin, normal, true
}

// Intersects reports whether the interiors of a and o overlap. Touching
// faces do not count.
func (b AABB) Intersects(o AABB) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] >= o.Max[i] || b.Max[i] <= o.Min[i] {
			return false
		}
	}
	return true
}

// Expand grows b by delta along its sign on every axis.
func (b AABB) Expand(delta mathx.Vec3) AABB {
	out := b
	for i := 0; i < 3; i++ {
		if delta[i] > 0 {
			out.Max[i] += delta[i]
		} else {
			out.Min[i] += delta[i]
		}
	}
	return out
}

func (b AABB) Translate(d mathx.Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}
