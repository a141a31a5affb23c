// Package orient turns camera and turn input into head and torso angles for
// the presentation layer.
package orient

import "github.com/Versifine/freemove/internal/mathx"

const (
	DefaultHeadYawLimit     = 90.0
	DefaultTorsoYawLimit    = 15.0
	DefaultTorsoTurnFactor  = 10.0
	DefaultTorsoInterpSpeed = 5.0
)

type Params struct {
	HeadYawLimit     float64
	TorsoYawLimit    float64
	TorsoTurnFactor  float64
	TorsoInterpSpeed float64
}

func DefaultParams() Params {
	return Params{
		HeadYawLimit:     DefaultHeadYawLimit,
		TorsoYawLimit:    DefaultTorsoYawLimit,
		TorsoTurnFactor:  DefaultTorsoTurnFactor,
		TorsoInterpSpeed: DefaultTorsoInterpSpeed,
	}
}

type State struct {
	HeadYaw    float64
	HeadRoll   float64
	TorsoYaw   float64
	TorsoPitch float64
}

// Orienter carries the smoothed torso pitch between ticks; everything else
// is recomputed from the current inputs.
type Orienter struct {
	params Params
	state  State
}

func New(params Params) *Orienter {
	return &Orienter{params: params}
}

func (o *Orienter) SetParams(params Params) {
	o.params = params
}

func (o *Orienter) State() State {
	return o.state
}

// Update recomputes the head from the control/body yaw difference and the
// torso from the turn axis. Looking up rolls the head back.
func (o *Orienter) Update(dt float64, control, body mathx.Rotator, turnAxis float64) State {
	o.state.HeadYaw = mathx.ClampAngle(control.Yaw-body.Yaw, -o.params.HeadYawLimit, o.params.HeadYawLimit)
	o.state.HeadRoll = -mathx.NormalizeAngle(control.Pitch)

	target := mathx.ClampAngle(turnAxis*o.params.TorsoTurnFactor, -o.params.TorsoYawLimit, o.params.TorsoYawLimit)
	o.state.TorsoYaw = target
	o.state.TorsoPitch = mathx.InterpTo(o.state.TorsoPitch, target, dt, o.params.TorsoInterpSpeed)
	return o.state
}

// Reset drops the carried torso pitch.
func (o *Orienter) Reset() {
	o.state = State{}
}
