package libbus

import (
	"context"
	"sync"
)

// InMem is an in-memory implementation of Messenger for single-process use.
// It does not use NATS or any network. Publish delivers to local Stream
// subscribers only.
type InMem struct {
	mu      sync.RWMutex
	closed  bool
	streams map[string][]chan<- []byte
}

// inmemSubscription removes this subscriber from the stream on Unsubscribe.
type inmemSubscription struct {
	subject string
	ch      chan<- []byte
	inmem   *InMem
}

// NewInMem returns a new in-memory Messenger. Use for local single-process mode (no NATS).
func NewInMem() *InMem {
	return &InMem{
		streams: make(map[string][]chan<- []byte),
	}
}

// Publish sends a fire-and-forget message to all Stream subscribers for the subject.
func (p *InMem) Publish(ctx context.Context, subject string, data []byte) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrConnectionClosed
	}
	// Copy subscriber list so we don't hold the lock while sending
	subs := make([]chan<- []byte, len(p.streams[subject]))
	copy(subs, p.streams[subject])
	p.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- data:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Stream creates a subscription to a subject; messages are delivered to ch.
func (p *InMem) Stream(ctx context.Context, subject string, ch chan<- []byte) (Subscription, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	if p.streams[subject] == nil {
		p.streams[subject] = make([]chan<- []byte, 0, 1)
	}
	p.streams[subject] = append(p.streams[subject], ch)
	sub := &inmemSubscription{subject: subject, ch: ch, inmem: p}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()

	return sub, nil
}

// Close marks the messenger closed and drops all subscribers.
func (p *InMem) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.streams = nil
	return nil
}

func (s *inmemSubscription) Unsubscribe() error {
	s.inmem.mu.Lock()
	defer s.inmem.mu.Unlock()
	if s.inmem.closed {
		return nil
	}
	subs := s.inmem.streams[s.subject]
	for i, ch := range subs {
		if ch == s.ch {
			s.inmem.streams[s.subject] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	return nil
}
