package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daily-quiz-service/internal/app"
)

// HTTPNotifier reports session starts with a GET to <baseURL>/<segment>.
// The response body is drained and discarded.
type HTTPNotifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPNotifier(baseURL string, timeout time.Duration) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPNotifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (n *HTTPNotifier) NotifySessionStart(ctx context.Context, event app.SessionStartEvent) error {
	target := n.baseURL
	if event.Segment != "" {
		target += "/" + url.PathEscape(event.Segment)
	}
	if event.UserID != "" {
		target += "?" + url.Values{"userId": {event.UserID}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notification endpoint returned %s", resp.Status)
	}
	return nil
}
