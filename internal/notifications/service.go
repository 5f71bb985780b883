package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subsmith/internal/config"
)

const userAgent = "Subsmith/0.1.0"

// Event identifies a notification milestone.
type Event string

const (
	EventJobReceived    Event = "job_received"
	EventJobCompleted   Event = "job_completed"
	EventQueueStarted   Event = "queue_started"
	EventQueueCompleted Event = "queue_completed"
	EventError          Event = "error"
	EventTest           Event = "test"
)

// Payload carries event-specific fields used to render the message.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		cfg:      cfg,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	cfg      *config.Config
}

// Publish renders and sends the event when its category is enabled.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.eventEnabled(event) {
		return nil
	}
	data, ok := renderMessage(event, payload)
	if !ok {
		return fmt.Errorf("unknown notification event %q", event)
	}
	return n.send(ctx, data)
}

func (n *ntfyService) eventEnabled(event Event) bool {
	switch event {
	case EventJobReceived:
		return n.cfg.Notifications.JobReceived
	case EventJobCompleted, EventQueueCompleted, EventQueueStarted:
		return n.cfg.Notifications.JobCompleted
	case EventError:
		return n.cfg.Notifications.Errors
	default:
		return true
	}
}

func renderMessage(event Event, payload Payload) (message, bool) {
	switch event {
	case EventJobReceived:
		return message{
			title: "Subsmith - Job Received",
			body:  fmt.Sprintf("Received %s (%s)", payloadString(payload, "source"), payloadString(payload, "language")),
			tags:  []string{"subsmith", "job", "received"},
		}, true
	case EventJobCompleted:
		return message{
			title: "Subsmith - Subtitles Ready",
			body:  fmt.Sprintf("Subtitles ready: %s", payloadString(payload, "subtitle")),
			tags:  []string{"subsmith", "job", "completed"},
		}, true
	case EventQueueStarted:
		return message{
			title: "Subsmith - Queue Started",
			body:  fmt.Sprintf("Processing %d job(s)", payloadInt(payload, "count")),
			tags:  []string{"subsmith", "queue", "started"},
		}, true
	case EventQueueCompleted:
		return message{
			title: "Subsmith - Queue Complete",
			body: fmt.Sprintf("Processed %d job(s), %d failed in %s",
				payloadInt(payload, "processed"),
				payloadInt(payload, "failed"),
				payloadDuration(payload, "duration").Round(time.Second)),
			tags: []string{"subsmith", "queue", "completed"},
		}, true
	case EventError:
		return message{
			title:    "Subsmith - Error",
			body:     fmt.Sprintf("Error with %s: %s", payloadString(payload, "context"), payloadString(payload, "error")),
			tags:     []string{"subsmith", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title: "Subsmith - Test",
			body:  "Notification delivery is working",
			tags:  []string{"subsmith", "test"},
		}, true
	default:
		return message{}, false
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch value := payload[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case error:
		return strings.TrimSpace(value.Error())
	case fmt.Stringer:
		return strings.TrimSpace(value.String())
	default:
		if value == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch value := payload[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	default:
		return 0
	}
}

func payloadDuration(payload Payload, key string) time.Duration {
	if payload == nil {
		return 0
	}
	if value, ok := payload[key].(time.Duration); ok {
		return value
	}
	return 0
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

var (
	_ Service = (*ntfyService)(nil)
	_ Service = noopService{}
)
