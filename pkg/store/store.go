package store

import (
	"sync"
	"sync/atomic"
)

// Subscriber receives store values.
type Subscriber[T any] func(T)

// Unsubscriber removes a subscription. Calling it more than once is a no-op.
type Unsubscriber func()

// Updater computes a new value from the current one.
type Updater[T any] func(T) T

// StartStopNotifier is called with the store's setter when the first
// subscriber arrives. The returned function, if non-nil, is called when the
// last subscriber unsubscribes.
type StartStopNotifier[T any] func(set func(T)) (stop func())

// Readable is a store that can be observed.
type Readable[T any] interface {
	Subscribe(fn Subscriber[T]) Unsubscriber
	Get() T
}

// Writable is a store that can also be set.
type Writable[T any] interface {
	Readable[T]
	Set(v T)
	Update(fn Updater[T])
}

// Option configures a Value.
type Option[T any] func(*Value[T])

// WithOnStart attaches a start/stop notifier.
func WithOnStart[T any](fn StartStopNotifier[T]) Option[T] {
	return func(s *Value[T]) {
		s.onStart = fn
	}
}

// WithEqual makes Set skip notification when equal(old, new) reports true.
// Without it every Set notifies.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(s *Value[T]) {
		s.equal = equal
	}
}

type subscription[T any] struct {
	fn     Subscriber[T]
	active bool
}

type delivery[T any] struct {
	sub   *subscription[T]
	value T
}

// Value is a writable observable store.
// It is safe for concurrent use.
type Value[T any] struct {
	mu sync.Mutex

	value T
	subs  []*subscription[T]

	// pending notifications, delivered in FIFO order
	queue []delivery[T]

	// deliverMu is held by the goroutine delivering the queue; drainer is
	// that goroutine's ID while it does.
	deliverMu sync.Mutex
	drainer   atomic.Uint64

	onStart StartStopNotifier[T]
	stop    func()
	started chan struct{} // non-nil while onStart runs

	equal func(a, b T) bool
}

// NewWritable creates a store holding initial.
func NewWritable[T any](initial T, opts ...Option[T]) *Value[T] {
	s := &Value[T]{value: initial}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current value.
// For stores with a start notifier and no subscribers, the notifier is run
// for the duration of the call so the value is fresh.
func (s *Value[T]) Get() T {
	s.mu.Lock()
	s.waitStartedLocked()
	if s.onStart == nil || len(s.subs) > 0 {
		v := s.value
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()

	unsubscribe := s.Subscribe(func(T) {})
	defer unsubscribe()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores v and notifies all subscribers.
func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	s.storeLocked(v)
	s.mu.Unlock()
	s.flush()
}

// Update stores fn(current) and notifies all subscribers.
// fn runs while the store is locked and must not call back into the store.
func (s *Value[T]) Update(fn Updater[T]) {
	s.mu.Lock()
	s.storeLocked(fn(s.value))
	s.mu.Unlock()
	s.flush()
}

// UpdateIf applies fn to the current value and stores the result only when
// fn reports a change. It returns whether a value was stored.
// fn runs while the store is locked and must not call back into the store.
func (s *Value[T]) UpdateIf(fn func(T) (T, bool)) bool {
	s.mu.Lock()
	next, changed := fn(s.value)
	if changed {
		s.storeLocked(next)
	}
	s.mu.Unlock()
	s.flush()
	return changed
}

// Subscribe registers fn. It is called with the current value before
// Subscribe returns and then with every subsequent value. Called from inside
// a callback of the same store, the current value is delivered after the
// callback returns.
func (s *Value[T]) Subscribe(fn Subscriber[T]) Unsubscriber {
	sub := &subscription[T]{fn: fn, active: true}

	s.mu.Lock()
	s.waitStartedLocked()
	s.subs = append(s.subs, sub)
	if len(s.subs) == 1 && s.onStart != nil && s.stop == nil {
		started := make(chan struct{})
		s.started = started
		s.mu.Unlock()

		stop := s.onStart(s.Set)
		if stop == nil {
			stop = func() {}
		}

		s.mu.Lock()
		s.started = nil
		s.stop = stop
		close(started)
	}

	// Enqueued under the same lock as the append so no Set can slip in
	// between registration and priming.
	s.queue = append(s.queue, delivery[T]{sub: sub, value: s.value})
	s.mu.Unlock()
	s.flush()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(sub) })
	}
}

// Len returns the number of active subscribers.
func (s *Value[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Value[T]) unsubscribe(sub *subscription[T]) {
	s.mu.Lock()
	sub.active = false
	for i, p := range s.subs {
		if p == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}

	var stop func()
	if len(s.subs) == 0 && s.stop != nil {
		stop = s.stop
		s.stop = nil
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// waitStartedLocked blocks while another caller runs the start notifier.
// Caller must hold s.mu; it is held again on return.
func (s *Value[T]) waitStartedLocked() {
	for s.started != nil {
		started := s.started
		s.mu.Unlock()
		<-started
		s.mu.Lock()
	}
}

// storeLocked replaces the value and queues a notification per subscriber.
// Caller must hold s.mu.
func (s *Value[T]) storeLocked(v T) {
	if s.equal != nil && s.equal(s.value, v) {
		return
	}
	s.value = v

	// Values set from inside a start notifier reach subscribers through
	// the priming delivery.
	if s.started != nil {
		return
	}
	for _, sub := range s.subs {
		s.queue = append(s.queue, delivery[T]{sub: sub, value: v})
	}
}

// flush delivers queued notifications and returns once the queue is empty.
// A call made from inside a callback returns immediately; the enclosing
// delivery loop picks up what it queued.
func (s *Value[T]) flush() {
	id := goroutineID()
	if s.drainer.Load() == id {
		return
	}

	s.deliverMu.Lock()
	s.drainer.Store(id)
	defer func() {
		s.drainer.Store(0)
		s.deliverMu.Unlock()
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		d := s.queue[0]
		s.queue[0] = delivery[T]{}
		s.queue = s.queue[1:]
		active := d.sub.active
		s.mu.Unlock()

		if active {
			d.sub.fn(d.value)
		}
	}
}

// Compile-time interface satisfaction check.
var _ Writable[int] = (*Value[int])(nil)
