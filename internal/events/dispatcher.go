package events

import (
	"context"
	"sync"
)

// EventHandler handles a published change event.
type EventHandler func(context.Context, ChangeEvent) error

// CancelFunc removes a subscription. Calling it more than once is harmless.
type CancelFunc func()

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Subscribe(collection Collection, handler EventHandler) CancelFunc
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[Collection][]subscription
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[Collection][]subscription),
	}
}

// Publish synchronously invokes handlers for the event's collection.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event ChangeEvent) error {
	d.mu.RLock()
	subs := append([]subscription{}, d.listeners[event.Collection]...)
	d.mu.RUnlock()

	var firstErr error
	for _, sub := range subs {
		if err := sub.handler(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Subscribe registers a handler for the given collection.
func (d *inMemoryDispatcher) Subscribe(collection Collection, handler EventHandler) CancelFunc {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[collection] = append(d.listeners[collection], subscription{id: id, handler: handler})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			subs := d.listeners[collection]
			for i, sub := range subs {
				if sub.id == id {
					d.listeners[collection] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		})
	}
}
