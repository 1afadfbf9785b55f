package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bridge/internal/config"
)

const userAgent = "Bridge-Go/0.1.0"

// Service defines the notification surface exposed to the handoff engine.
// NotifyHandoff addresses the member a stage was just handed to.
type Service interface {
	NotifyHandoff(ctx context.Context, recipientName, podName, handoffLink string) error
	NotifyPodCompleted(ctx context.Context, podName string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.NtfyRequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyHandoff(ctx context.Context, recipientName, podName, handoffLink string) error {
	recipientName = strings.TrimSpace(recipientName)
	podName = strings.TrimSpace(podName)
	message := fmt.Sprintf("%s is up next on %s", recipientName, podName)
	if handoffLink = strings.TrimSpace(handoffLink); handoffLink != "" {
		message = fmt.Sprintf("%s\nHandoff: %s", message, handoffLink)
	}
	data := payload{
		title:   "Bridge - Handoff",
		message: message,
		tags:    []string{"bridge", "handoff", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPodCompleted(ctx context.Context, podName string) error {
	podName = strings.TrimSpace(podName)
	data := payload{
		title:    "Bridge - Pod Complete",
		message:  fmt.Sprintf("All stages complete: %s", podName),
		tags:     []string{"bridge", "pod", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Bridge - Error",
		message:  builder.String(),
		tags:     []string{"bridge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Bridge - Test",
		message:  "Notification system test",
		tags:     []string{"bridge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyHandoff(context.Context, string, string, string) error { return nil }
func (noopService) NotifyPodCompleted(context.Context, string) error            { return nil }
func (noopService) NotifyError(context.Context, error, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
