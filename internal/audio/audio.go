// Package audio plays one-shot locomotion cues (footsteps, jump, landing).
package audio

import (
	"math"

	"github.com/Versifine/freemove/internal/mathx"
)

type Cue int

const (
	CueFootstep Cue = iota
	CueJump
	CueLand
)

func (c Cue) String() string {
	switch c {
	case CueFootstep:
		return "footstep"
	case CueJump:
		return "jump"
	case CueLand:
		return "land"
	default:
		return "unknown"
	}
}

// Player is the audio collaborator. PlayAt must not block the caller.
type Player interface {
	PlayAt(cue Cue, location mathx.Vec3)
}

type NopPlayer struct{}

func (NopPlayer) PlayAt(Cue, mathx.Vec3) {}

type Config struct {
	SampleRate int
	Volume     float64
	// FalloffDistance is where a cue fades to silence. Zero disables
	// attenuation.
	FalloffDistance float64
}

func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		Volume:          0.6,
		FalloffDistance: 2000,
	}
}

// Attenuation is a linear falloff from 1 at the listener to 0 at falloff.
func Attenuation(listener, source mathx.Vec3, falloff float64) float64 {
	if falloff <= 0 {
		return 1
	}
	d := source.Sub(listener).Len()
	if math.IsNaN(d) {
		return 0
	}
	return mathx.Clamp(1-d/falloff, 0, 1)
}
