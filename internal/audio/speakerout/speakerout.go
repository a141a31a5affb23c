// Package speakerout plays audio cues on the default output device. It is
// the only package that links the device backend.
package speakerout

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Versifine/freemove/internal/audio"
	"github.com/Versifine/freemove/internal/mathx"
	"github.com/gopxl/beep/speaker"
)

// Player opens the default audio device on the first cue.
type Player struct {
	*audio.MixerPlayer

	initOnce sync.Once
	initErr  error
	opened   bool
}

func New(cfg audio.Config) *Player {
	return &Player{MixerPlayer: audio.NewLockedMixerPlayer(cfg, speakerLock{})}
}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Init opens the device. PlayAt calls it lazily; calling it up front
// surfaces device errors at startup.
func (p *Player) Init() error {
	p.initOnce.Do(func() {
		rate := p.SampleRate()
		if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
			p.initErr = fmt.Errorf("init speaker: %w", err)
			return
		}
		speaker.Play(p.Mixer())
		p.opened = true
	})
	return p.initErr
}

func (p *Player) PlayAt(cue audio.Cue, location mathx.Vec3) {
	if err := p.Init(); err != nil {
		slog.Debug("Audio cue dropped", "cue", cue.String(), "error", err)
		return
	}
	p.MixerPlayer.PlayAt(cue, location)
}

// Close silences pending cues. It does not open the device.
func (p *Player) Close() {
	if !p.opened {
		return
	}
	p.Clear()
}
