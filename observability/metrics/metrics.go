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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StoreMetrics collects activity counters for the data store stack and
// the publisher layer.
type StoreMetrics struct {
	registry *prometheus.Registry

	Loads        *prometheus.CounterVec
	LoadErrors   *prometheus.CounterVec
	LoadLatency  *prometheus.HistogramVec
	Stores       *prometheus.CounterVec
	StoreErrors  *prometheus.CounterVec
	StoreLatency *prometheus.HistogramVec

	PublishedValues   prometheus.Counter
	SuppressedValues  prometheus.Counter
	BrokenQueues      prometheus.Counter
	RecoveryLoads     prometheus.Counter
	ActiveSubscribers prometheus.Gauge
}

// NewStoreMetrics creates metrics registered on a private registry.
func NewStoreMetrics() *StoreMetrics {
	registry := prometheus.NewRegistry()
	m := &StoreMetrics{
		registry: registry,
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beamq_store_loads_total",
			Help: "Queries answered per store.",
		}, []string{"store"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beamq_store_load_errors_total",
			Help: "Failed loads per store.",
		}, []string{"store"}),
		LoadLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beamq_store_load_seconds",
			Help:    "Load latency per store.",
			Buckets: prometheus.DefBuckets,
		}, []string{"store"}),
		Stores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beamq_store_writes_total",
			Help: "Records written per store.",
		}, []string{"store"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beamq_store_write_errors_total",
			Help: "Failed writes per store.",
		}, []string{"store"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beamq_store_write_seconds",
			Help:    "Write latency per store.",
			Buckets: prometheus.DefBuckets,
		}, []string{"store"}),
		PublishedValues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beamq_published_values_total",
			Help: "Values delivered to subscription queues.",
		}),
		SuppressedValues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beamq_suppressed_values_total",
			Help: "Duplicate values suppressed at the historical splice.",
		}),
		BrokenQueues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beamq_broken_queues_total",
			Help: "Subscription queues broken by errors or back-pressure.",
		}),
		RecoveryLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beamq_recovery_loads_total",
			Help: "Recovery loads issued after ordering gaps.",
		}),
		ActiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beamq_active_subscribers",
			Help: "Currently registered subscription listeners.",
		}),
	}
	registry.MustRegister(
		m.Loads, m.LoadErrors, m.LoadLatency,
		m.Stores, m.StoreErrors, m.StoreLatency,
		m.PublishedValues, m.SuppressedValues, m.BrokenQueues,
		m.RecoveryLoads, m.ActiveSubscribers,
	)
	return m
}

// Handler returns an HTTP handler exposing the metrics.
func (m *StoreMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
