package store

// View is a read-only handle on a store.
type View[T any] struct {
	src *Value[T]
}

// Readonly returns a read-only view of s.
func Readonly[T any](s *Value[T]) *View[T] {
	return &View[T]{src: s}
}

// Subscribe registers fn on the underlying store.
func (v *View[T]) Subscribe(fn Subscriber[T]) Unsubscriber {
	return v.src.Subscribe(fn)
}

// Get returns the current value of the underlying store.
func (v *View[T]) Get() T {
	return v.src.Get()
}

// Derived returns a store whose value is fn applied to the value of src.
// The source is only subscribed to while the derived store has subscribers.
func Derived[S, T any](src Readable[S], fn func(S) T) *View[T] {
	var zero T
	s := NewWritable(zero, WithOnStart(func(set func(T)) func() {
		// Seed from Get so the derived value is never the zero value, even
		// when the subscription's priming is deferred behind a running
		// delivery of src.
		set(fn(src.Get()))
		return src.Subscribe(func(v S) {
			set(fn(v))
		})
	}))
	return Readonly(s)
}

// Compile-time interface satisfaction check.
var _ Readable[int] = (*View[int])(nil)
