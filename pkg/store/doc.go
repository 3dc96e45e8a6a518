// Package store implements observable value containers.
//
// A store holds a single value and notifies subscribers whenever it changes.
// It is the shared source of truth for state that many consumers display,
// such as the remaining seconds of a countdown.
//
// # Subscription
//
// Subscribe registers a callback and immediately delivers the current value
// to it (priming). Every later change is delivered in emission order. The
// returned Unsubscriber is idempotent.
//
// # Delivery
//
// Notifications are synchronous: Set, Update and Subscribe return once the
// notifications they queued have been delivered. Deliveries for a store are
// made by one goroutine at a time; a call from another goroutine waits for
// the running delivery round and then for its own. Callbacks may call Set
// or Subscribe on the same store; those values are queued and delivered after
// the current callback returns, so each subscriber still observes values in
// the order they were stored.
//
// # Start/Stop Notifier
//
// WithOnStart attaches a function that runs when the first subscriber
// arrives. The function it returns runs when the last subscriber leaves.
// Derived stores use this to subscribe to their source lazily.
package store
