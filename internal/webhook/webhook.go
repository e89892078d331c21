// Package webhook notifies the automation workflow (n8n) when an export job
// finishes.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Event is the JSON body posted to the webhook.
type Event struct {
	JobID      string    `json:"job_id"`
	ProjectID  string    `json:"project_id"`
	Format     string    `json:"format"`
	OutputPath string    `json:"output_path,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// WebhookError represents a non-2xx response from the webhook endpoint.
type WebhookError struct {
	StatusCode int
	Body       string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx) and rate limiting.
// Other client errors (4xx) are considered permanent.
func (e *WebhookError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// HTTPNotifier posts events to a single webhook URL.
type HTTPNotifier struct {
	url        string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPNotifier(url, token string, logger *slog.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Casadark-Request-Id", uuid.NewString())
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		n.logger.Info("webhook delivered",
			"job_id", event.JobID,
			"status", event.Status,
			"http_status", resp.StatusCode,
		)
		return nil
	}

	return &WebhookError{StatusCode: resp.StatusCode, Body: string(respBody)}
}

// StubNotifier only logs. It is used when no webhook URL is configured.
type StubNotifier struct {
	logger *slog.Logger
}

func NewStubNotifier(logger *slog.Logger) *StubNotifier {
	return &StubNotifier{logger: logger}
}

func (n *StubNotifier) Notify(ctx context.Context, event Event) error {
	n.logger.Debug("webhook stub: event dropped", "job_id", event.JobID, "status", event.Status)
	return nil
}

// New returns an HTTPNotifier for url, or a StubNotifier when url is empty.
func New(url, token string, logger *slog.Logger) Notifier {
	if url == "" {
		return NewStubNotifier(logger)
	}
	return NewHTTPNotifier(url, token, logger)
}
