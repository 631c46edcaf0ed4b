package events

import (
	"context"
	"log"
	"sync"
)

type Handler func(context.Context, Event)

// Bus is an in-process fan-out. Publish delivers to every subscriber on the
// calling goroutine, in subscription order; handlers must not block.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("events: handler panic for %s: %v", event.Kind, r)
				}
			}()
			handler(ctx, event)
		}()
	}
}
