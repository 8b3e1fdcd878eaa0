package model

import "sync"

// subscriber delivers values to one listener, newest first wins. A value
// arriving while the listener runs is queued and replaces any older queued
// one; the running delivery hands it over once the listener returns.
type subscriber[T any] struct {
	id int
	fn func(T)

	mx     sync.Mutex
	busy   bool
	seen   bool
	last   uint64
	queued bool
	next   T
}

func (s *subscriber[T]) deliver(n uint64, v T) {
	s.mx.Lock()
	if s.seen && n <= s.last {
		s.mx.Unlock()
		return
	}
	s.seen, s.last = true, n
	s.next, s.queued = v, true
	if s.busy {
		s.mx.Unlock()
		return
	}
	s.busy = true
	for s.queued {
		v := s.next
		s.queued = false
		s.mx.Unlock()
		s.call(v)
		s.mx.Lock()
	}
	s.busy = false
	s.mx.Unlock()
}

func (s *subscriber[T]) call(v T) {
	ok := false
	defer func() {
		if !ok {
			s.mx.Lock()
			s.busy, s.queued = false, false
			s.mx.Unlock()
		}
	}()
	s.fn(v)
	ok = true
}

// Cell is an observable value. Setting it notifies every subscriber on the
// caller's goroutine after the value is stored. A subscriber never receives
// a value older than one it already received.
type Cell[T any] struct {
	value     T
	listeners []*subscriber[T]
	nextID    int
	// seq counts stored values.
	seq uint64
	mx  sync.RWMutex
}

// NewCell returns a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.value
}

// Set stores v and notifies subscribers.
func (c *Cell[T]) Set(v T) {
	c.swap(v)()
}

// Update replaces the value with fn(current) and notifies subscribers.
// fn runs with the cell locked and must not touch the cell.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mx.Lock()
	c.value = fn(c.value)
	notify := c.notifier()
	c.mx.Unlock()

	notify()
}

// Subscribe registers fn, calls it with the current value and then on every
// change. The returned func unregisters it.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	c.mx.Lock()
	c.nextID++
	s := &subscriber[T]{id: c.nextID, fn: fn}
	c.listeners = append(c.listeners, s)
	n, v := c.seq, c.value
	c.mx.Unlock()

	s.deliver(n, v)

	return func() { c.unsubscribe(s.id) }
}

func (c *Cell[T]) unsubscribe(id int) {
	c.mx.Lock()
	defer c.mx.Unlock()

	for i, l := range c.listeners {
		if l.id == id {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// swap stores v without notifying. The returned func delivers the
// notification and must be called once no caller lock is held.
func (c *Cell[T]) swap(v T) func() {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.value = v
	return c.notifier()
}

// notifier snapshots value and listeners. Caller must hold the lock.
func (c *Cell[T]) notifier() func() {
	c.seq++
	n, v := c.seq, c.value
	listeners := make([]*subscriber[T], len(c.listeners))
	copy(listeners, c.listeners)

	return func() {
		for _, l := range listeners {
			l.deliver(n, v)
		}
	}
}
