// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	noop := defaultNoopMetrics()
	noop.GetOrCreateCountMeter("c").Add(1)
	noop.GetOrCreateGaugeVecMeter("g", []string{"a"}).SetWithLabel(1, map[string]string{"b": "c"})
	noop.GetOrCreateHistogramMeter("h", nil).Observe(3)

	rec := httptest.NewRecorder()
	noop.GetOrCreateHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	lazy := LazyLoadCounter("lazy_counter")
	lazy().Add(2)
	Counter("lazy_counter").Add(3)

	CounterVec("ops_total", []string{"op"}).AddWithLabel(4, map[string]string{"op": "stake"})
	Gauge("height").Set(7)
	GaugeVec("balances", []string{"token"}).SetWithLabel(9, map[string]string{"token": "native"})
	Histogram("exec_ms", BucketExecution).Observe(12)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.Metric {
			switch {
			case m.Counter != nil:
				values[mf.GetName()] += m.Counter.GetValue()
			case m.Gauge != nil:
				values[mf.GetName()] += m.Gauge.GetValue()
			case m.Histogram != nil:
				values[mf.GetName()] += m.Histogram.GetSampleSum()
			}
		}
	}

	assert.Equal(t, float64(5), values["stakerd_lazy_counter"])
	assert.Equal(t, float64(4), values["stakerd_ops_total"])
	assert.Equal(t, float64(7), values["stakerd_height"])
	assert.Equal(t, float64(9), values["stakerd_balances"])
	assert.Equal(t, float64(12), values["stakerd_exec_ms"])
}
