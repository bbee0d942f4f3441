// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Vote path
	MetricVotesCast      = "pollbooth_votes_cast_total"
	MetricVoteRejections = "pollbooth_vote_rejections_total"
	MetricVoteDuration   = "pollbooth_vote_duration_seconds"
	// Conditional writes
	MetricWriteConflicts = "pollbooth_write_conflicts_total"
	MetricWriteRetries   = "pollbooth_write_retries_total"
	// Administration
	MetricPollsCreated = "pollbooth_polls_created_total"
	MetricPollsClosed  = "pollbooth_polls_closed_total"
)

// MetricService owns a private registry so several instances can coexist
// in one process. All methods are safe on a nil receiver.
type MetricService struct {
	MetricsMap map[string]prometheus.Collector
	registry   *prometheus.Registry
}

func NewMetricService() *MetricService {
	reg := prometheus.NewRegistry()
	ms := make(map[string]prometheus.Collector)

	votesCastMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricVotesCast,
		Help: "Votes recorded",
	})
	ms[MetricVotesCast] = votesCastMetric
	reg.MustRegister(votesCastMetric)

	voteRejectionsMetric := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricVoteRejections,
		Help: "Votes refused, by error kind",
	}, []string{"kind"})
	ms[MetricVoteRejections] = voteRejectionsMetric
	reg.MustRegister(voteRejectionsMetric)

	voteDurationMetric := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricVoteDuration,
		Help:    "Duration of a cast vote call including retries",
		Buckets: prometheus.DefBuckets,
	})
	ms[MetricVoteDuration] = voteDurationMetric
	reg.MustRegister(voteDurationMetric)

	writeConflictsMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricWriteConflicts,
		Help: "Conditional poll writes rejected because the version moved",
	})
	ms[MetricWriteConflicts] = writeConflictsMetric
	reg.MustRegister(writeConflictsMetric)

	writeRetriesMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricWriteRetries,
		Help: "Poll writes retried after a conflict",
	})
	ms[MetricWriteRetries] = writeRetriesMetric
	reg.MustRegister(writeRetriesMetric)

	pollsCreatedMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPollsCreated,
		Help: "Polls created",
	})
	ms[MetricPollsCreated] = pollsCreatedMetric
	reg.MustRegister(pollsCreatedMetric)

	pollsClosedMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPollsClosed,
		Help: "Polls closed by an administrator",
	})
	ms[MetricPollsClosed] = pollsClosedMetric
	reg.MustRegister(pollsClosedMetric)

	reg.MustRegister(collectors.NewGoCollector())

	return &MetricService{
		MetricsMap: ms,
		registry:   reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricService) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Vote path
func (m *MetricService) IncVotesCast() {
	if m == nil {
		return
	}
	m.MetricsMap[MetricVotesCast].(prometheus.Counter).Inc()
}

func (m *MetricService) IncVoteRejected(kind string) {
	if m == nil {
		return
	}
	m.MetricsMap[MetricVoteRejections].(*prometheus.CounterVec).WithLabelValues(kind).Inc()
}

func (m *MetricService) ObserveVoteDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.MetricsMap[MetricVoteDuration].(prometheus.Histogram).Observe(d.Seconds())
}

// Conditional writes
func (m *MetricService) IncWriteConflicts() {
	if m == nil {
		return
	}
	m.MetricsMap[MetricWriteConflicts].(prometheus.Counter).Inc()
}

func (m *MetricService) IncWriteRetries() {
	if m == nil {
		return
	}
	m.MetricsMap[MetricWriteRetries].(prometheus.Counter).Inc()
}

// Administration
func (m *MetricService) IncPollsCreated() {
	if m == nil {
		return
	}
	m.MetricsMap[MetricPollsCreated].(prometheus.Counter).Inc()
}

func (m *MetricService) IncPollsClosed() {
	if m == nil {
		return
	}
	m.MetricsMap[MetricPollsClosed].(prometheus.Counter).Inc()
}
