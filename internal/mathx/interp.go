package mathx

import "math"

// interpSnapDistance is the distance under which InterpTo lands on the target.
const interpSnapDistance = 1e-4

// InterpTo moves current toward target by the fraction dt*rate of the
// remaining distance, clamped to [0, 1]. A non-positive rate snaps to target.
// With a stationary target and dt*rate > 0 the remaining distance shrinks
// every call.
func InterpTo(current, target, dt, rate float64) float64 {
	if rate <= 0 {
		return target
	}
	dist := target - current
	if math.Abs(dist) < interpSnapDistance {
		return target
	}
	alpha := Clamp(dt*rate, 0, 1)
	return current + dist*alpha
}

// InterpAngleTo is InterpTo along the shortest arc. The result is normalised.
func InterpAngleTo(current, target, dt, rate float64) float64 {
	if rate <= 0 {
		return NormalizeAngle(target)
	}
	dist := DeltaAngle(current, target)
	if math.Abs(dist) < interpSnapDistance {
		return NormalizeAngle(target)
	}
	alpha := Clamp(dt*rate, 0, 1)
	return NormalizeAngle(current + dist*alpha)
}

// StepAngleTo rotates current toward target by at most maxStep degrees.
func StepAngleTo(current, target, maxStep float64) float64 {
	if maxStep <= 0 {
		return NormalizeAngle(current)
	}
	delta := DeltaAngle(current, target)
	if delta > maxStep {
		delta = maxStep
	} else if delta < -maxStep {
		delta = -maxStep
	}
	return NormalizeAngle(current + delta)
}
