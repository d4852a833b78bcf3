package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Total number of quiz sessions started",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_active_sessions",
			Help: "Number of quiz sessions currently running",
		},
	)

	// Submissions is labelled by result: correct or incorrect.
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Total number of graded answer submissions",
		},
		[]string{"result"},
	)

	// Notifications is labelled by status: ok, failed or canceled.
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_session_notifications_total",
			Help: "Outcome of session start notifications",
		},
		[]string{"status"},
	)
)
