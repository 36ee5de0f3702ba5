package relay

import (
	"context"
	"sync"
)

// subscriberBuffer absorbs bursts of taps while a subscriber is busy.
const subscriberBuffer = 64

// Local is an in-process Relay.
type Local struct {
	mu sync.RWMutex

	// subs maps each subscription to the done chan of the context it was made with.
	subs   map[chan Event]<-chan struct{}
	closed bool
}

func NewLocal() *Local {
	return &Local{subs: map[chan Event]<-chan struct{}{}}
}

// Publish delivers e to every subscriber, blocking on a full subscriber until either
// side's context is done.
func (l *Local) Publish(ctx context.Context, e Event) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	for sub, subDone := range l.subs {
		select {
		case sub <- e:
		case <-subDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := make(chan Event, subscriberBuffer)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	l.subs[sub] = ctx.Done()
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.unsubscribe(sub)
	}()
	return sub, nil
}

func (l *Local) unsubscribe(sub chan Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[sub]; ok {
		delete(l.subs, sub)
		close(sub)
	}
}

// Close closes every subscription.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	for sub := range l.subs {
		delete(l.subs, sub)
		close(sub)
	}
	return nil
}

// Subscribers is the number of open subscriptions.
func (l *Local) Subscribers() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs)
}
