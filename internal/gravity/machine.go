// Package gravity drives the character's gravity scale through a jump:
// a curve while the jump is held, a fixed falling scale once released or
// descending, and the default of 1 on the ground.
package gravity

import "log/slog"

const (
	DefaultScale            = 1.0
	DefaultFallingScale     = 4.5
	DefaultLongFallDistance = 500.0
	DefaultJumpDuration     = 0.6
)

type State int

const (
	Grounded State = iota
	JumpAscending
	FallingUncontrolled
)

func (s State) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case JumpAscending:
		return "jump_ascending"
	case FallingUncontrolled:
		return "falling"
	default:
		return "unknown"
	}
}

type Params struct {
	FallingScale     float64
	LongFallDistance float64
	// JumpDuration is the time in seconds the curve spans.
	JumpDuration float64
	// Curve may be nil, in which case a jump falls straight back to
	// FallingScale.
	Curve *Curve
}

func DefaultParams() Params {
	return Params{
		FallingScale:     DefaultFallingScale,
		LongFallDistance: DefaultLongFallDistance,
		JumpDuration:     DefaultJumpDuration,
	}
}

// Transition describes what one call changed.
type Transition struct {
	From         State
	To           State
	Landed       bool
	LongFall     bool
	FallDistance float64
}

func (t Transition) Changed() bool {
	return t.From != t.To || t.Landed
}

type Machine struct {
	params         Params
	state          State
	scale          float64
	timeline       Timeline
	airborne       bool
	pendingLaunch  bool
	distanceFallen float64
	longFall       bool
}

func NewMachine(params Params) *Machine {
	m := &Machine{state: Grounded, scale: DefaultScale}
	m.SetParams(params)
	return m
}

// SetParams swaps tuning. A running jump loses its curve if the new params
// have none.
func (m *Machine) SetParams(params Params) {
	if params.FallingScale <= 0 {
		params.FallingScale = DefaultFallingScale
	}
	m.params = params
	m.timeline.duration = params.JumpDuration
	if m.state == JumpAscending && !m.curveActive() {
		m.timeline.Stop()
		m.scale = params.FallingScale
	}
	if m.state == FallingUncontrolled {
		m.scale = params.FallingScale
	}
}

func (m *Machine) Params() Params {
	return m.params
}

func (m *Machine) curveActive() bool {
	return m.params.Curve != nil && m.params.JumpDuration > 0
}

// JumpPressed starts the curve from t=0, or restarts it when a jump is
// already rising. Ignored while falling, and in the air before the first
// descending tick has moved the state off Grounded.
func (m *Machine) JumpPressed() Transition {
	tr := Transition{From: m.state}
	switch {
	case m.state == Grounded && !m.airborne, m.state == JumpAscending:
		m.state = JumpAscending
		m.pendingLaunch = !m.airborne
		if m.curveActive() {
			m.timeline.PlayFromStart()
			m.scale = m.params.Curve.Sample(0)
		} else {
			m.timeline.Stop()
			m.scale = m.params.FallingScale
		}
	}
	tr.To = m.state
	m.logTransition(tr)
	return tr
}

// JumpReleased cuts a rising jump short. The falling scale applies
// immediately wherever the curve was. A release before the launch tick
// cancels the jump and settles back on the ground.
func (m *Machine) JumpReleased() Transition {
	tr := Transition{From: m.state}
	switch {
	case m.state == JumpAscending && m.pendingLaunch:
		m.land()
	case m.state == JumpAscending:
		m.timeline.Stop()
		m.state = FallingUncontrolled
		m.scale = m.params.FallingScale
	}
	tr.To = m.state
	m.logTransition(tr)
	return tr
}

// Update advances the machine by dt with the movement integrator's contact
// state and vertical velocity. The landing and falling checks run before the
// curve is sampled, so a stopped timeline is never read.
func (m *Machine) Update(dt float64, airborne bool, vz float64) Transition {
	tr := Transition{From: m.state}
	wasAirborne := m.airborne
	m.airborne = airborne

	switch {
	case wasAirborne && !airborne:
		tr.Landed = true
		tr.LongFall = m.longFall
		tr.FallDistance = m.distanceFallen
		m.land()
	case !airborne:
		if m.state != Grounded {
			if m.pendingLaunch {
				// the integrator applies the jump after this tick
				m.pendingLaunch = false
			} else {
				m.land()
			}
		}
		m.distanceFallen = 0
	default:
		m.pendingLaunch = false
	}

	if airborne && vz < 0 {
		if m.state != FallingUncontrolled {
			m.timeline.Stop()
			m.state = FallingUncontrolled
		}
		m.scale = m.params.FallingScale
		if dt > 0 {
			m.distanceFallen += -vz * dt
		}
		if m.params.LongFallDistance > 0 && m.distanceFallen > m.params.LongFallDistance {
			m.longFall = true
		}
	}

	if m.state == JumpAscending && m.timeline.Playing() {
		if m.timeline.Advance(dt) {
			if airborne {
				m.state = FallingUncontrolled
				m.scale = m.params.FallingScale
			} else {
				m.land()
			}
		} else {
			m.scale = m.params.Curve.Sample(m.timeline.Progress())
		}
	}

	tr.To = m.state
	m.logTransition(tr)
	return tr
}

func (m *Machine) land() {
	m.state = Grounded
	m.scale = DefaultScale
	m.timeline.Stop()
	m.pendingLaunch = false
	m.distanceFallen = 0
	m.longFall = false
}

func (m *Machine) logTransition(tr Transition) {
	if !tr.Changed() {
		return
	}
	slog.Debug("Gravity state changed",
		"from", tr.From.String(),
		"to", tr.To.String(),
		"landed", tr.Landed,
		"scale", m.scale,
	)
}

func (m *Machine) State() State {
	return m.state
}

// Scale is the gravity multiplier to hand to the movement integrator.
func (m *Machine) Scale() float64 {
	return m.scale
}

func (m *Machine) DistanceFallen() float64 {
	return m.distanceFallen
}

// LongFall reports whether the current fall has passed LongFallDistance.
func (m *Machine) LongFall() bool {
	return m.longFall
}

func (m *Machine) Airborne() bool {
	return m.airborne
}

func (m *Machine) TimelinePlaying() bool {
	return m.timeline.Playing()
}

func (m *Machine) JumpProgress() float64 {
	if !m.timeline.Playing() {
		return 0
	}
	return m.timeline.Progress()
}
