package gravity

import "github.com/Versifine/freemove/internal/mathx"

// Timeline is a restartable progress driver over a fixed duration. Progress
// is a pure function of elapsed time.
type Timeline struct {
	duration float64
	elapsed  float64
	playing  bool
}

func NewTimeline(duration float64) Timeline {
	return Timeline{duration: duration}
}

func (t *Timeline) PlayFromStart() {
	t.elapsed = 0
	t.playing = t.duration > 0
}

func (t *Timeline) Stop() {
	t.playing = false
}

func (t *Timeline) Playing() bool {
	return t.playing
}

// Advance moves the timeline forward by dt seconds. It stops itself when
// progress reaches 1 and reports whether it finished on this call.
func (t *Timeline) Advance(dt float64) bool {
	if !t.playing || dt <= 0 {
		return false
	}
	t.elapsed += dt
	if t.elapsed >= t.duration {
		t.elapsed = t.duration
		t.playing = false
		return true
	}
	return false
}

func (t *Timeline) Progress() float64 {
	if t.duration <= 0 {
		return 1
	}
	return mathx.Clamp(t.elapsed/t.duration, 0, 1)
}

func (t *Timeline) Elapsed() float64 {
	return t.elapsed
}
