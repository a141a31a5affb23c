package audio

import (
	"sync"
	"time"

	"github.com/Versifine/freemove/internal/mathx"
	"github.com/gopxl/beep"
)

// MixerPlayer renders cues into a beep mixer. It does not own an output
// device; speakerout wires the mixer to the speaker.
type MixerPlayer struct {
	mu       sync.Mutex
	cfg      Config
	synth    *Synth
	mixer    *beep.Mixer
	listener mathx.Vec3
	played   int
	culled   int
	locker   sync.Locker
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

func NewMixerPlayer(cfg Config) *MixerPlayer {
	return NewLockedMixerPlayer(cfg, noLock{})
}

// NewLockedMixerPlayer guards every mixer mutation with locker, for mixers
// that an output device reads from another goroutine.
func NewLockedMixerPlayer(cfg Config, locker sync.Locker) *MixerPlayer {
	if locker == nil {
		locker = noLock{}
	}
	return &MixerPlayer{
		cfg:    cfg,
		synth:  NewSynth(cfg.SampleRate, time.Now().UnixNano()),
		mixer:  &beep.Mixer{},
		locker: locker,
	}
}

// SetListener moves the point cues are attenuated against.
func (p *MixerPlayer) SetListener(loc mathx.Vec3) {
	p.mu.Lock()
	p.listener = loc
	p.mu.Unlock()
}

func (p *MixerPlayer) PlayAt(cue Cue, location mathx.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gain := p.cfg.Volume * Attenuation(p.listener, location, p.cfg.FalloffDistance)
	if gain <= 0 {
		p.culled++
		return
	}
	s := p.synth.Cue(cue, gain)
	p.locker.Lock()
	p.mixer.Add(s)
	p.locker.Unlock()
	p.played++
}

func (p *MixerPlayer) Mixer() *beep.Mixer {
	return p.mixer
}

func (p *MixerPlayer) SampleRate() beep.SampleRate {
	return p.synth.SampleRate()
}

// Clear drops every cue still playing.
func (p *MixerPlayer) Clear() {
	p.locker.Lock()
	p.mixer.Clear()
	p.locker.Unlock()
}

// Stats returns how many cues were mixed and how many were too far away.
func (p *MixerPlayer) Stats() (played, culled int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played, p.culled
}
