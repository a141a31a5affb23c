package event

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var ErrUnknownAnimEvent = errors.New("unknown anim event")

// AnimEvent is a command fired by animation-authored notifies. The rig
// applies queued commands at the start of its next tick.
type AnimEvent int

const (
	AnimEnableJump AnimEvent = iota + 1
	AnimDisableJump
	AnimEnableMovement
	AnimDisableMovement
	AnimFootstep
)

func (e AnimEvent) String() string {
	switch e {
	case AnimEnableJump:
		return "EnableJump"
	case AnimDisableJump:
		return "DisableJump"
	case AnimEnableMovement:
		return "EnableMovement"
	case AnimDisableMovement:
		return "DisableMovement"
	case AnimFootstep:
		return "Footstep"
	default:
		return "Unknown"
	}
}

func (e AnimEvent) Valid() bool {
	return e >= AnimEnableJump && e <= AnimFootstep
}

// ParseAnimEvent accepts the names returned by String, case-insensitively.
func ParseAnimEvent(s string) (AnimEvent, error) {
	name := strings.TrimSpace(s)
	for e := AnimEnableJump; e <= AnimFootstep; e++ {
		if strings.EqualFold(name, e.String()) {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAnimEvent, s)
}

// Queue collects anim events between ticks. Push may be called from any
// goroutine.
type Queue struct {
	mu      sync.Mutex
	pending []AnimEvent
}

func (q *Queue) Push(e AnimEvent) {
	if !e.Valid() {
		slog.Warn("Dropping invalid anim event", "event", int(e))
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()
}

// Drain returns the queued events in arrival order and empties the queue.
func (q *Queue) Drain() []AnimEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// LogHandler logs every event it receives at debug level.
func LogHandler(eventName string) HandlerFunc {
	return func(raw any) {
		slog.Debug("Rig event", "event", eventName, "payload", fmt.Sprintf("%+v", raw))
	}
}
