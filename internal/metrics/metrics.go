// Package metrics collects Prometheus metrics for the API and its collaborators.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by middleware and services.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordCollaboratorFailure(collaborator string)
	RecordJournalAnnotated(success bool)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	requests             *prometheus.CounterVec
	latency              *prometheus.HistogramVec
	collaboratorFailures *prometheus.CounterVec
	annotations          *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queens_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "queens_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queens_collaborator_failures_total",
			Help: "Failed calls to external collaborators.",
		}, []string{"collaborator"}),
		annotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queens_journal_annotations_total",
			Help: "Journal emotion annotations by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.requests, c.latency, c.collaboratorFailures, c.annotations)
	return c
}

// RecordRequest records one served request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCollaboratorFailure records a failed outbound call.
func (c *Collector) RecordCollaboratorFailure(collaborator string) {
	c.collaboratorFailures.WithLabelValues(collaborator).Inc()
}

// RecordJournalAnnotated records the outcome of an asynchronous annotation.
func (c *Collector) RecordJournalAnnotated(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.annotations.WithLabelValues(outcome).Inc()
}

// Handler serves the Prometheus scrape endpoint on Fiber.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// Nop discards all metrics.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordCollaboratorFailure(string)                 {}
func (Nop) RecordJournalAnnotated(bool)                      {}
