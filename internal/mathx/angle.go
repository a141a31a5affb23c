package mathx

import "math"

// NormalizeAngle maps a into (-180, 180].
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}

// ClampAngle normalises a before clamping it into [lo, hi], so a delta of
// 270 degrees is treated as -90.
func ClampAngle(a, lo, hi float64) float64 {
	return Clamp(NormalizeAngle(a), lo, hi)
}

// DeltaAngle is the signed shortest rotation from -> to.
func DeltaAngle(from, to float64) float64 {
	return NormalizeAngle(to - from)
}
