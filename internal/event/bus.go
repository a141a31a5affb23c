package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

// Bus fans named events out to subscribers. Publish runs handlers in order
// on the caller's goroutine, so everything a tick publishes has been handled
// before the tick returns.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *Bus) Publish(eventName string, evt any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]HandlerFunc, len(b.handlers[eventName]))
	copy(handlers, b.handlers[eventName])
	b.mu.RUnlock()

	for _, handler := range handlers {
		dispatch(eventName, handler, evt)
	}
}

func dispatch(eventName string, h HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	h(evt)
}
