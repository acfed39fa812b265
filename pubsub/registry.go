// Copyright (C) 2025 beam-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package pubsub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/queries"
	"github.com/beam-project/beamq/store"
)

// listener is one registered subscription: a compiled filter and the
// queue live updates are written to.
type listener[T any, I comparable] struct {
	id     uuid.UUID
	query  queries.Query[I]
	filter func(T) bool
	queue  *Queue[T]

	mu        sync.Mutex
	buffering bool
	pending   []queries.SequencedValue[T]
	last      queries.Sequence
}

// push delivers a live update to the listener. While the listener is
// buffering, updates accumulate for the historical splice; afterwards
// they are forwarded with duplicate suppression.
//
// The returned action tells the registry what to do with the listener.
func (l *listener[T, I]) push(value queries.SequencedValue[T]) pushResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.buffering {
		l.pending = append(l.pending, value)
		return pushOK
	}
	if value.Sequence <= l.last {
		switch l.query.InterruptionPolicy {
		case queries.BreakQuery:
			l.queue.Break(errors.ErrQueryInterrupted.
				WithDetail("sequence", value.Sequence.String()).
				WithDetail("last", l.last.String()))
			return pushBroken
		case queries.RecoverData:
			return pushRecover
		default:
			return pushSuppressed
		}
	}
	if err := l.queue.Push(value); err != nil {
		return pushBroken
	}
	l.last = value.Sequence
	return pushOK
}

// activate ends the buffering phase: buffered updates at or below the
// last historical sequence are suppressed, the rest delivered.
// It returns the number of suppressed duplicates.
func (l *listener[T, I]) activate(last queries.Sequence) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	suppressed := 0
	l.last = last
	for _, value := range l.pending {
		if value.Sequence <= l.last {
			suppressed++
			continue
		}
		if err := l.queue.Push(value); err != nil {
			break
		}
		l.last = value.Sequence
	}
	l.pending = nil
	l.buffering = false
	return suppressed
}

type pushResult uint8

const (
	pushOK pushResult = iota
	pushSuppressed
	pushBroken
	pushRecover
)

// Registry maps each index to its set of active listeners and fans
// published values out to the listeners whose filters match.
type Registry[T any, I comparable] struct {
	options store.Options[T]

	mu      sync.Mutex
	entries map[I]*registryEntry[T, I]
	closed  bool
}

type registryEntry[T any, I comparable] struct {
	mu        sync.Mutex
	listeners []*listener[T, I]
}

// NewRegistry creates an empty subscription registry.
func NewRegistry[T any, I comparable](
	options store.Options[T]) *Registry[T, I] {
	return &Registry[T, I]{
		options: options,
		entries: make(map[I]*registryEntry[T, I]),
	}
}

func (r *Registry[T, I]) entry(index I) (*registryEntry[T, I], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.ErrNotConnected
	}
	entry, ok := r.entries[index]
	if !ok {
		entry = &registryEntry[T, I]{}
		r.entries[index] = entry
	}
	return entry, nil
}

// add compiles the query's filter and registers a listener in buffering
// mode.
func (r *Registry[T, I]) add(query queries.Query[I], queue *Queue[T]) (
	*listener[T, I], error) {
	filter, err := r.options.CompileFilter(query.Filter)
	if err != nil {
		return nil, err
	}
	entry, err := r.entry(query.Index)
	if err != nil {
		return nil, err
	}

	l := &listener[T, I]{
		id:        uuid.New(),
		query:     query,
		filter:    filter,
		queue:     queue,
		buffering: true,
	}
	entry.mu.Lock()
	entry.listeners = append(entry.listeners, l)
	entry.mu.Unlock()
	return l, nil
}

// remove drops a listener from its index.
func (r *Registry[T, I]) remove(l *listener[T, I]) {
	r.mu.Lock()
	entry, ok := r.entries[l.query.Index]
	r.mu.Unlock()
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	for i, candidate := range entry.listeners {
		if candidate.id == l.id {
			entry.listeners = append(
				entry.listeners[:i], entry.listeners[i+1:]...)
			return
		}
	}
}

// publish fans a value out to the index's listeners. Listeners whose
// queues broke are dropped. Listeners requesting recovery are returned
// to the caller.
func (r *Registry[T, I]) publish(value queries.IndexedValue[T, I]) (
	recovering []*listener[T, I], delivered, suppressed int) {
	r.mu.Lock()
	entry, ok := r.entries[value.Index]
	r.mu.Unlock()
	if !ok {
		return nil, 0, 0
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	kept := entry.listeners[:0]
	for _, l := range entry.listeners {
		if !l.filter(value.Value) {
			kept = append(kept, l)
			continue
		}
		switch l.push(value.Sequenced()) {
		case pushBroken:
			// dropped
		case pushRecover:
			recovering = append(recovering, l)
			kept = append(kept, l)
		case pushSuppressed:
			suppressed++
			kept = append(kept, l)
		default:
			delivered++
			kept = append(kept, l)
		}
	}
	entry.listeners = kept
	return recovering, delivered, suppressed
}

// count returns the number of registered listeners.
func (r *Registry[T, I]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, entry := range r.entries {
		entry.mu.Lock()
		total += len(entry.listeners)
		entry.mu.Unlock()
	}
	return total
}

// close breaks every listener's queue with end of file.
func (r *Registry[T, I]) close() {
	r.mu.Lock()
	r.closed = true
	entries := make([]*registryEntry[T, I], 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	r.mu.Unlock()

	for _, entry := range entries {
		entry.mu.Lock()
		for _, l := range entry.listeners {
			l.queue.Break(errors.ErrEndOfFile)
		}
		entry.listeners = nil
		entry.mu.Unlock()
	}
}
