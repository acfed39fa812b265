// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewStoreMetrics_RegistersCollectors(t *testing.T) {
	m := NewStoreMetrics()

	m.Loads.WithLabelValues("local").Inc()
	m.Stores.WithLabelValues("local").Add(3)
	m.PublishedValues.Inc()
	m.ActiveSubscribers.Set(2)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body := recorder.Body.String()
	for _, metric := range []string{
		"beamq_store_loads_total",
		"beamq_store_writes_total",
		"beamq_published_values_total",
		"beamq_active_subscribers",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}
