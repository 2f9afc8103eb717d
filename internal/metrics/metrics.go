// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package metrics provides Prometheus instrumentation for the feed
// service. Metrics are exposed at /metrics in Prometheus text format.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Recommendation Metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode"}, // "personalized", "fallback"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation scoring duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
	)

	// Training Metrics
	TrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_train_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	TrainErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "model_train_errors_total",
			Help: "Total number of failed training runs",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Currently published model version",
		},
	)

	ModelPostCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_post_count",
			Help: "Number of posts in the published model",
		},
	)

	ModelTopicCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_topic_count",
			Help: "Number of topic clusters in the published model",
		},
	)

	TrainLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_train_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Interaction Metrics
	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_recorded_total",
			Help: "Total number of interactions recorded",
		},
		[]string{"type"},
	)

	// WAL Metrics
	WALAppends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_appends_total",
			Help: "Total number of interactions appended to the WAL",
		},
	)

	WALFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_flushed_total",
			Help: "Total number of WAL entries drained to the database",
		},
	)

	WALFlushErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_flush_errors_total",
			Help: "Total number of WAL flush failures",
		},
	)

	WALPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wal_pending_entries",
			Help: "Interactions waiting in the WAL to be drained",
		},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records one database query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordTraining records a training run and refreshes the model gauges
// on success.
func RecordTraining(duration time.Duration, version, posts, topics int, err error) {
	TrainDuration.Observe(duration.Seconds())
	if err != nil {
		TrainErrors.Inc()
		return
	}
	ModelVersion.Set(float64(version))
	ModelPostCount.Set(float64(posts))
	ModelTopicCount.Set(float64(topics))
	TrainLastSuccess.SetToCurrentTime()
}
