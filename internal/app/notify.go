package app

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"daily-quiz-service/internal/metrics"
)

// SessionStartEvent is reported once when a session begins.
type SessionStartEvent struct {
	SessionID  string    `json:"sessionId"`
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId"`
	Segment    string    `json:"segment"`
	StartedAt  time.Time `json:"startedAt"`
}

// Notifier delivers session-start events to an external endpoint.
type Notifier interface {
	NotifySessionStart(ctx context.Context, event SessionStartEvent) error
}

// PathSegment extracts the last non-empty path segment of location, which may
// be a full URL or a bare path. Query and fragment are ignored.
func PathSegment(location string) string {
	path := location
	if u, err := url.Parse(location); err == nil {
		path = u.Path
	}
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// notifySessionStart runs one notification. Cancellation is silent; any other
// failure is logged and counted but never reaches the session.
func notifySessionStart(ctx context.Context, notifier Notifier, timeout time.Duration, event SessionStartEvent) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	err := notifier.NotifySessionStart(ctx, event)
	switch {
	case err == nil:
		metrics.Notifications.WithLabelValues("ok").Inc()
	case errors.Is(err, context.Canceled):
		metrics.Notifications.WithLabelValues("canceled").Inc()
	default:
		metrics.Notifications.WithLabelValues("failed").Inc()
		log.Printf("session start notification failed for %s: %v", event.SessionID, err)
	}
}
