package ik

import (
	"github.com/Versifine/freemove/internal/mathx"
)

type Solver struct {
	params   Params
	prober   Prober
	skeleton Skeleton
	state    State
}

func NewSolver(params Params, prober Prober, skeleton Skeleton) *Solver {
	return &Solver{params: params, prober: prober, skeleton: skeleton}
}

func (s *Solver) SetParams(params Params) {
	s.params = params
}

func (s *Solver) Params() Params {
	return s.params
}

func (s *Solver) State() State {
	return s.state
}

// Reset clears carried offsets, e.g. after a teleport.
func (s *Solver) Reset() {
	s.state = State{}
}

// UpdateFeet probes under both feet, smooths the foot offsets toward the new
// targets and recomputes the hip offset used by the next tick.
func (s *Solver) UpdateFeet(dt float64, actorLocation mathx.Vec3) {
	leftHit, leftTarget := s.footTrace(LeftFootSocket, actorLocation)
	s.state.LeftFootOffset = mathx.InterpTo(s.state.LeftFootOffset, leftTarget, dt, s.params.InterpSpeed)

	rightHit, rightTarget := s.footTrace(RightFootSocket, actorLocation)
	s.state.RightFootOffset = mathx.InterpTo(s.state.RightFootOffset, rightTarget, dt, s.params.InterpSpeed)

	s.state.LeftFootHit = leftHit
	s.state.RightFootHit = rightHit
	s.state.HipOffset = HipOffset(leftHit.Z(), rightHit.Z(), s.params.HipOffsetThreshold)
}

// footTrace casts from the socket's XY at actor height down to
// FootTraceDistance below the socket. A miss yields the zero vector and a
// zero offset.
func (s *Solver) footTrace(socket Socket, actorLocation mathx.Vec3) (mathx.Vec3, float64) {
	if s.skeleton == nil || s.prober == nil {
		return mathx.Vec3{}, 0
	}
	loc, ok := s.skeleton.SocketLocation(socket)
	if !ok {
		return mathx.Vec3{}, 0
	}
	start := mathx.Vec3{loc.X(), loc.Y(), actorLocation.Z()}
	endZ := loc.Z() - s.params.FootTraceDistance
	hit, ok := s.prober.Probe(start, mathx.Down, start.Z()-endZ, true)
	if !ok {
		return mathx.Vec3{}, 0
	}
	meshZ := s.skeleton.ComponentLocation().Z()
	return hit.Location, (hit.Location.Z() - meshZ) - s.state.HipOffset
}

// UpdateHands probes ahead of each hand along forward, shifted sideways
// along right by the per-hand offset.
func (s *Solver) UpdateHands(forward, right mathx.Vec3) {
	s.state.LeftHandLocation, s.state.LeftHandBlocked = s.handTrace(LeftHandSocket, forward, right, s.params.LeftHandOffset)
	s.state.RightHandLocation, s.state.RightHandBlocked = s.handTrace(RightHandSocket, forward, right, s.params.RightHandOffset)
}

func (s *Solver) handTrace(socket Socket, forward, right mathx.Vec3, lateral float64) (mathx.Vec3, bool) {
	if s.skeleton == nil || s.prober == nil {
		return mathx.Vec3{}, false
	}
	start, ok := s.skeleton.SocketLocation(socket)
	if !ok {
		return mathx.Vec3{}, false
	}
	end := start.Add(forward.Mul(s.params.ArmTraceDistance)).Add(right.Mul(lateral))
	ray := end.Sub(start)
	hit, ok := s.prober.Probe(start, ray, ray.Len(), true)
	if !ok {
		return mathx.Vec3{}, false
	}
	return hit.Location, true
}
