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
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/beam-project/beamq/observability/logging"
	"github.com/beam-project/beamq/observability/metrics"
	"github.com/beam-project/beamq/queries"
	"github.com/beam-project/beamq/routines"
	"github.com/beam-project/beamq/store"
)

// Publisher glues historical loads to live tails. Monitor registers a
// listener, issues its historical query and splices the result with the
// live updates buffered during the load, suppressing duplicates.
type Publisher[T any, I comparable] struct {
	dataStore store.DataStore[T, I]
	registry  *Registry[T, I]
	options   store.Options[T]
	logger    logging.Logger
	metrics   *metrics.StoreMetrics

	state *routines.OpenState
	group errgroup.Group
}

// PublisherOption configures a Publisher.
type PublisherOption[T any, I comparable] func(*Publisher[T, I])

// WithLogger supplies the publisher's logger.
func WithLogger[T any, I comparable](
	logger logging.Logger) PublisherOption[T, I] {
	return func(p *Publisher[T, I]) {
		p.logger = logger
	}
}

// WithMetrics supplies the publisher's metrics.
func WithMetrics[T any, I comparable](
	m *metrics.StoreMetrics) PublisherOption[T, I] {
	return func(p *Publisher[T, I]) {
		p.metrics = m
	}
}

// NewPublisher creates a Publisher over the store holding the
// historical data.
func NewPublisher[T any, I comparable](dataStore store.DataStore[T, I],
	options store.Options[T],
	publisherOptions ...PublisherOption[T, I]) *Publisher[T, I] {
	p := &Publisher[T, I]{
		dataStore: dataStore,
		registry:  NewRegistry[T, I](options),
		options:   options,
		logger:    logging.Nop(),
		state:     routines.NewOpenState(),
	}
	for _, option := range publisherOptions {
		option(p)
	}
	return p
}

// Monitor registers a listener for the query and spawns its historical
// load. The queue receives the historical snapshot followed by live
// updates, with duplicates suppressed at the splice. The call returns
// once the listener is registered; delivery is asynchronous.
func (p *Publisher[T, I]) Monitor(ctx context.Context,
	query queries.Query[I], queue *Queue[T]) error {
	if err := p.state.EnsureOpen(); err != nil {
		return err
	}
	l, err := p.registry.add(query, queue)
	if err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.ActiveSubscribers.Set(float64(p.registry.count()))
	}

	p.group.Go(func() error {
		p.runHistorical(ctx, query, l)
		return nil
	})
	return nil
}

// runHistorical loads the listener's snapshot, delivers it and splices
// in the buffered live updates.
func (p *Publisher[T, I]) runHistorical(ctx context.Context,
	query queries.Query[I], l *listener[T, I]) {
	snapshot, err := p.dataStore.Load(ctx, query)
	if err != nil {
		p.logger.Error(ctx, "historical load failed",
			logging.Any("index", query.Index), logging.Error(err))
		l.queue.Break(err)
		p.registry.remove(l)
		return
	}

	last := queries.SequenceFirst
	for _, value := range snapshot {
		if err := l.queue.Push(value); err != nil {
			p.registry.remove(l)
			return
		}
		last = value.Sequence
	}
	suppressed := l.activate(last)
	if p.metrics != nil && suppressed > 0 {
		p.metrics.SuppressedValues.Add(float64(suppressed))
	}

	// A purely historical window is complete once the snapshot is
	// delivered.
	end := query.Range.End()
	if end.IsSequence() && end.Sequence() <= queries.SequencePresent {
		l.queue.Break(nil)
		p.registry.remove(l)
	}
}

// Publish delivers a live update to every listener on the value's index
// whose filter matches. Listeners with broken queues are dropped;
// listeners whose policy requests recovery get a recovery load.
func (p *Publisher[T, I]) Publish(ctx context.Context,
	value queries.IndexedValue[T, I]) error {
	if err := p.state.EnsureOpen(); err != nil {
		return err
	}
	recovering, delivered, suppressed := p.registry.publish(value)
	if p.metrics != nil {
		if delivered > 0 {
			p.metrics.PublishedValues.Add(float64(delivered))
		}
		if suppressed > 0 {
			p.metrics.SuppressedValues.Add(float64(suppressed))
		}
	}
	for _, l := range recovering {
		l := l
		p.group.Go(func() error {
			p.recover(ctx, l)
			return nil
		})
	}
	return nil
}

// recover re-issues a load for the gap between the listener's last
// delivered sequence and the present, then resumes live delivery.
func (p *Publisher[T, I]) recover(ctx context.Context, l *listener[T, I]) {
	l.mu.Lock()
	if l.buffering {
		// Another recovery is already in flight.
		l.mu.Unlock()
		return
	}
	l.buffering = true
	last := l.last
	l.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecoveryLoads.Inc()
	}
	gap, err := queries.NewSequenceRange(last.Next(), queries.SequenceLast)
	if err != nil {
		l.queue.Break(err)
		p.registry.remove(l)
		return
	}
	recovery := l.query
	recovery.Range = gap
	recovery.SnapshotLimit = queries.SnapshotLimitUnlimited

	snapshot, err := p.dataStore.Load(ctx, recovery)
	if err != nil {
		p.logger.Error(ctx, "recovery load failed",
			logging.Any("index", l.query.Index), logging.Error(err))
		l.queue.Break(err)
		p.registry.remove(l)
		return
	}

	floor := last
	for _, value := range snapshot {
		if value.Sequence <= floor {
			continue
		}
		if err := l.queue.Push(value); err != nil {
			p.registry.remove(l)
			return
		}
		floor = value.Sequence
	}
	suppressedCount := l.activate(floor)
	if p.metrics != nil && suppressedCount > 0 {
		p.metrics.SuppressedValues.Add(float64(suppressedCount))
	}
}

// Close stops accepting listeners and publishes, waits for in-flight
// loads and breaks every listener's queue.
func (p *Publisher[T, I]) Close(ctx context.Context) error {
	if p.state.SetClosing() {
		return nil
	}
	err := p.group.Wait()
	p.registry.close()
	if p.metrics != nil {
		p.metrics.ActiveSubscribers.Set(0)
	}
	p.state.Close()
	return err
}
