// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package command

// ringStack is a bounded LIFO over a circular buffer.
//
// # Description
//
// Holds the undo history at a fixed capacity. Pushing onto a full stack
// evicts the oldest entry; eviction is permanent — an evicted command can
// never be undone. Memory is pre-allocated for the full capacity.
//
// # Thread Safety
//
// Not synchronized; the owning Manager serializes access.
type ringStack struct {
	buf      []Command
	start    int // index of the oldest entry
	size     int
	capacity int
	evicted  int64
}

func newRingStack(capacity int) *ringStack {
	if capacity <= 0 {
		panic("ring stack capacity must be positive")
	}
	return &ringStack{
		buf:      make([]Command, capacity),
		capacity: capacity,
	}
}

// push adds a command on top. Returns true when the oldest entry was
// evicted to make room.
func (r *ringStack) push(c Command) bool {
	dropped := false
	if r.size == r.capacity {
		r.buf[r.start] = nil
		r.start = (r.start + 1) % r.capacity
		r.size--
		r.evicted++
		dropped = true
	}
	r.buf[(r.start+r.size)%r.capacity] = c
	r.size++
	return dropped
}

// pop removes and returns the newest entry.
func (r *ringStack) pop() (Command, bool) {
	if r.size == 0 {
		return nil, false
	}
	idx := (r.start + r.size - 1) % r.capacity
	c := r.buf[idx]
	r.buf[idx] = nil // clear for GC
	r.size--
	return c, true
}

// peek returns the newest entry without removing it.
func (r *ringStack) peek() (Command, bool) {
	if r.size == 0 {
		return nil, false
	}
	return r.buf[(r.start+r.size-1)%r.capacity], true
}

func (r *ringStack) len() int { return r.size }

func (r *ringStack) evictedCount() int64 { return r.evicted }

func (r *ringStack) clear() {
	for i := range r.buf {
		r.buf[i] = nil
	}
	r.start = 0
	r.size = 0
}

// items returns the stack newest-first (the order a history viewer shows).
func (r *ringStack) items() []Command {
	if r.size == 0 {
		return nil
	}
	out := make([]Command, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+r.size-1-i)%r.capacity]
	}
	return out
}
