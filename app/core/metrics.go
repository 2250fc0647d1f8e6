package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mobilien/mobi-agent/pkg/metrics"
)

type Metrics struct {
	apiResponseTime      *prometheus.HistogramVec
	apiErrorCounter      *prometheus.CounterVec
	upstreamRequestTime  *prometheus.HistogramVec
	upstreamErrorCounter *prometheus.CounterVec
	contextLoadTime      *prometheus.HistogramVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:      metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:      metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		upstreamRequestTime:  metrics.NewHistogramVec("upstream_request_time", []string{"target"}),
		upstreamErrorCounter: metrics.NewCounterVec("upstream_error", []string{"type"}),
		contextLoadTime:      metrics.NewHistogramVec("context_load_time", []string{"source"}),
	}

	return m
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) UpstreamRequestTimer(target string) *prometheus.Timer {
	return prometheus.NewTimer(m.upstreamRequestTime.WithLabelValues(target))
}

func (m *Metrics) UpstreamErrorInc(types string) {
	m.upstreamErrorCounter.WithLabelValues(types).Inc()
}

func (m *Metrics) ContextLoadTimer(source string) *prometheus.Timer {
	return prometheus.NewTimer(m.contextLoadTime.WithLabelValues(source))
}
