package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type waveform int

const (
	waveSine waveform = iota
	waveNoise
)

const (
	footstepDuration = 70 * time.Millisecond
	footstepAttack   = 4 * time.Millisecond
	footstepRelease  = 55 * time.Millisecond
	footstepThump    = 85.0

	jumpDuration = 120 * time.Millisecond
	jumpAttack   = 10 * time.Millisecond
	jumpRelease  = 80 * time.Millisecond
	jumpFreq     = 220.0

	landDuration = 160 * time.Millisecond
	landAttack   = 3 * time.Millisecond
	landRelease  = 130 * time.Millisecond
	landThump    = 60.0
)

// tone is a fixed-length oscillator.
type tone struct {
	freq     float64
	phase    float64
	length   int
	position int
	wave     waveform
	rate     beep.SampleRate
	rng      *rand.Rand
}

func newTone(freq float64, d time.Duration, wave waveform, rate beep.SampleRate, rng *rand.Rand) *tone {
	return &tone{freq: freq, length: rate.N(d), wave: wave, rate: rate, rng: rng}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.length {
			return i, i > 0
		}
		var v float64
		switch t.wave {
		case waveSine:
			v = math.Sin(2 * math.Pi * t.phase)
		case waveNoise:
			v = t.rng.Float64()*2 - 1
		}
		samples[i][0] = v
		samples[i][1] = v
		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// shape applies a linear attack and release over a fixed length.
type shape struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newShape(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) *shape {
	return &shape{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(d),
	}
}

func (s *shape) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.streamer.Stream(samples)
	releaseStart := s.total - s.release
	for i := 0; i < n; i++ {
		if s.position >= s.total {
			return i, i > 0
		}
		gain := 1.0
		if s.attack > 0 && s.position < s.attack {
			gain = float64(s.position) / float64(s.attack)
		}
		if s.release > 0 && s.position >= releaseStart {
			gain = float64(s.total-s.position) / float64(s.release)
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		s.position++
	}
	return n, ok
}

func (s *shape) Err() error { return s.streamer.Err() }

// withGain wraps s in a base-2 volume effect; gain <= 0 is silent.
func withGain(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// Synth builds cue streamers at a fixed sample rate.
type Synth struct {
	rate beep.SampleRate
	rng  *rand.Rand
}

func NewSynth(sampleRate int, seed int64) *Synth {
	return &Synth{rate: beep.SampleRate(sampleRate), rng: rand.New(rand.NewSource(seed))}
}

func (s *Synth) SampleRate() beep.SampleRate {
	return s.rate
}

// Cue returns a finite streamer for c scaled by gain.
func (s *Synth) Cue(c Cue, gain float64) beep.Streamer {
	switch c {
	case CueJump:
		body := newShape(newTone(jumpFreq, jumpDuration, waveSine, s.rate, s.rng), jumpDuration, jumpAttack, jumpRelease, s.rate)
		return withGain(body, gain*0.5)
	case CueLand:
		return withGain(s.impact(landThump, landDuration, landAttack, landRelease), gain)
	default:
		return withGain(s.impact(footstepThump, footstepDuration, footstepAttack, footstepRelease), gain)
	}
}

// impact mixes a noise scuff over a low sine thump.
func (s *Synth) impact(thump float64, d, attack, release time.Duration) beep.Streamer {
	noise := newShape(newTone(0, d, waveNoise, s.rate, s.rng), d, attack, release, s.rate)
	low := newShape(newTone(thump, d, waveSine, s.rate, s.rng), d, attack, release, s.rate)
	return beep.Mix(withGain(noise, 0.35), withGain(low, 0.65))
}
