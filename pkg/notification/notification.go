// Package notification delivers short operational messages (such as "new
// order received") to outside channels: the admin websocket hub, an SSE
// stream, Slack, email, a Kafka topic or any JSON webhook.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	outbound "github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Message is what every channel renders.
type Message struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	TargetID uint           `json:"targetId,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Notifier sends a message through every configured channel.
type Notifier struct {
	channels []Channel
}

func NewNotifier(channels ...Channel) *Notifier {
	return &Notifier{channels: channels}
}

// Send tries every channel and joins the failures.
func (n *Notifier) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, ch := range n.channels {
		if err := ch.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notification: %s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) Channels() []string {
	names := make([]string, len(n.channels))
	for i, ch := range n.channels {
		names[i] = ch.Name()
	}
	return names
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

// HubChannel broadcasts the message as JSON to connected websocket clients.
type HubChannel struct {
	Hub *ws.Hub
}

func (HubChannel) Name() string { return "ws" }

func (c HubChannel) Send(_ context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if !c.Hub.Broadcast(raw) {
		return errors.New("hub is saturated")
	}
	return nil
}

// ─── SSE ──────────────────────────────────────────────────────────────────────

// StreamChannel publishes the message as an event named after its type.
// Having no subscriber is not an error.
type StreamChannel struct {
	Broker *sse.Broker
}

func (StreamChannel) Name() string { return "sse" }

func (c StreamChannel) Send(_ context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.Broker.Publish(sse.Event{Name: msg.Type, Data: raw})
	return nil
}

// ─── Mail ─────────────────────────────────────────────────────────────────────

// MailChannel emails the message to To.
type MailChannel struct {
	Mailer *mail.Mailer
	To     []string
}

func (MailChannel) Name() string { return "mail" }

func (c MailChannel) Send(ctx context.Context, msg Message) error {
	var body strings.Builder
	body.WriteString(msg.Text)
	if len(msg.Data) > 0 {
		keys := make([]string, 0, len(msg.Data))
		for k := range msg.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		body.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&body, "\n%s: %v", k, msg.Data[k])
		}
	}
	return c.Mailer.Send(ctx, mail.Message{To: c.To, Subject: msg.Title, Text: body.String()})
}

// ─── Slack ────────────────────────────────────────────────────────────────────

// SlackChannel posts to a Slack incoming webhook.
type SlackChannel struct {
	WebhookURL string
	Attempts   int
}

func (SlackChannel) Name() string { return "slack" }

type slackAttachment struct {
	Color string `json:"color,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

func (c SlackChannel) Send(ctx context.Context, msg Message) error {
	body := map[string]any{
		"text":        msg.Title,
		"attachments": []slackAttachment{{Color: "good", Title: msg.Title, Text: msg.Text}},
	}
	return postJSON(ctx, c.WebhookURL, body, nil, c.Attempts)
}

// ─── Webhook ──────────────────────────────────────────────────────────────────

// WebhookChannel POSTs the message as JSON to URL.
type WebhookChannel struct {
	URL      string
	Headers  map[string]string
	Attempts int
}

func (WebhookChannel) Name() string { return "webhook" }

func (c WebhookChannel) Send(ctx context.Context, msg Message) error {
	return postJSON(ctx, c.URL, msg, c.Headers, c.Attempts)
}

func postJSON(ctx context.Context, url string, body any, headers map[string]string, attempts int) error {
	if url == "" {
		return errors.New("url not configured")
	}
	resp, err := outbound.Post(url).
		WithContext(ctx).
		Headers(headers).
		Body(body).
		Timeout(5*time.Second).
		Retry(attempts, 500*time.Millisecond).
		Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}
