package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts in-app notification rows by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iblue_notifications_created_total",
			Help: "In-app notifications written, by type",
		},
		[]string{"type"},
	)

	// EmailsTotal counts email notification outcomes (sent, failed, skipped_*).
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iblue_email_notifications_total",
			Help: "Email notification outcomes, by status",
		},
		[]string{"status"},
	)

	PushTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iblue_push_messages_total",
			Help: "Web push delivery results",
		},
		[]string{"result"},
	)

	LanguageFanoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "iblue_language_fanout_duration_seconds",
			Help:    "Time spent fanning out one post to language subscribers",
			Buckets: prometheus.DefBuckets,
		},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iblue_llm_requests_total",
			Help: "LLM completion requests, by result (ok, error, fallback)",
		},
		[]string{"result"},
	)

	OutboxJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iblue_email_outbox_jobs_total",
			Help: "Email outbox job transitions (enqueued, sent, retry, failed)",
		},
		[]string{"result"},
	)
)
