// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := NewMetricService()

	m.IncVotesCast()
	m.IncVotesCast()
	m.IncVoteRejected("duplicate_vote")
	m.IncWriteConflicts()
	m.IncWriteRetries()
	m.IncPollsCreated()
	m.IncPollsClosed()
	m.ObserveVoteDuration(20 * time.Millisecond)

	if got := testutil.ToFloat64(m.MetricsMap[MetricVotesCast].(prometheus.Counter)); got != 2 {
		t.Errorf("Expected 2 votes cast, got %v", got)
	}
	rejections := m.MetricsMap[MetricVoteRejections].(*prometheus.CounterVec)
	if got := testutil.ToFloat64(rejections.WithLabelValues("duplicate_vote")); got != 1 {
		t.Errorf("Expected 1 duplicate rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.MetricsMap[MetricWriteConflicts].(prometheus.Counter)); got != 1 {
		t.Errorf("Expected 1 conflict, got %v", got)
	}
	if n := testutil.CollectAndCount(m.MetricsMap[MetricVoteDuration]); n != 1 {
		t.Errorf("Expected one duration series, got %d", n)
	}
}

func TestNilServiceIsNoop(t *testing.T) {
	var m *MetricService

	m.IncVotesCast()
	m.IncVoteRejected("conflict")
	m.ObserveVoteDuration(time.Second)
	m.IncWriteConflicts()
	m.IncWriteRetries()
	m.IncPollsCreated()
	m.IncPollsClosed()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 from a nil service, got %d", w.Code)
	}
}

func TestHandler(t *testing.T) {
	m := NewMetricService()
	m.IncPollsCreated()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	if !strings.Contains(body, MetricPollsCreated+" 1") {
		t.Errorf("Expected %s 1 in output", MetricPollsCreated)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("Expected Go runtime metrics in output")
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := NewMetricService(), NewMetricService()
	a.IncVotesCast()

	if got := testutil.ToFloat64(b.MetricsMap[MetricVotesCast].(prometheus.Counter)); got != 0 {
		t.Errorf("Expected separate registries, got %v", got)
	}
}
