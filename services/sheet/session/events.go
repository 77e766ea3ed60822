// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"log/slog"
	"sync"

	"github.com/latticehq/lattice/services/sheet/command"
)

// EventKind classifies a session change notification.
type EventKind string

const (
	EventApply EventKind = "apply"
	EventUndo  EventKind = "undo"
	EventRedo  EventKind = "redo"
	EventLoad  EventKind = "load"
)

// Event describes one document change for observers.
type Event struct {
	Kind        EventKind
	Generation  uint64
	Description string
	Range       command.Range
}

// hub fans events out to named subscribers. Sends never block: a
// subscriber whose buffer is full misses the event and should resync from
// a snapshot when the generation gap shows.
type hub struct {
	mu      sync.Mutex
	subs    map[string]chan Event
	dropped map[string]int64
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		subs:    make(map[string]chan Event),
		dropped: make(map[string]int64),
		logger:  logger,
	}
}

func (h *hub) subscribe(name string, buf int) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.subs[name]; ok {
		close(old)
	}
	ch := make(chan Event, buf)
	h.subs[name] = ch
	return ch, func() { h.unsubscribe(name, ch) }
}

func (h *hub) unsubscribe(name string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.subs[name]; ok && cur == ch {
		delete(h.subs, name)
		close(cur)
	}
}

func (h *hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped[name]++
			h.logger.Warn("dropped event for slow subscriber",
				"subscriber", name,
				"kind", string(ev.Kind),
				"total_dropped", h.dropped[name])
		}
	}
}
