// Package live provides a value holder that pushes every change to its subscribers.
package live

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Value holds the latest value of T. Subscribers receive the current value
// immediately and then every later value, in order.
type Value[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[uuid.UUID]*Subscription[T]
}

// New creates a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[uuid.UUID]*Subscription[T]),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set replaces the current value and queues it for every subscriber.
// It never blocks on a slow subscriber.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = next
	for _, s := range v.subs {
		s.push(next)
	}
}

// Subscribe registers a subscriber. The subscription ends when ctx is done
// or Cancel is called; its channel is closed afterwards.
func (v *Value[T]) Subscribe(ctx context.Context) *Subscription[T] {
	s := &Subscription[T]{
		id:   uuid.New(),
		ch:   make(chan T),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	v.mu.Lock()
	s.push(v.cur)
	v.subs[s.id] = s
	v.mu.Unlock()

	s.cancel = func() {
		v.mu.Lock()
		delete(v.subs, s.id)
		v.mu.Unlock()
		close(s.done)
	}

	go s.pump()
	go func() {
		select {
		case <-ctx.Done():
			s.Cancel()
		case <-s.done:
		}
	}()
	return s
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Subscription is a single consumer of a Value.
type Subscription[T any] struct {
	id     uuid.UUID
	ch     chan T
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
	cancel func()

	mu    sync.Mutex
	queue []T
}

// ID identifies the subscription in logs.
func (s *Subscription[T]) ID() uuid.UUID { return s.id }

// C delivers values in order. It is closed once the subscription ends.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Cancel ends the subscription. Safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
}

func (s *Subscription[T]) push(x T) {
	s.mu.Lock()
	s.queue = append(s.queue, x)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pump() {
	defer close(s.ch)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		next := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- next:
		case <-s.done:
			log.Printf("[live] subscription %s closed with undelivered values", s.id)
			return
		}
	}
}
