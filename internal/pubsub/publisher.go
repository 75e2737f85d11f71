// Package pubsub publishes usage telemetry events. Publishing is synchronous
// fire-and-forget from the caller's perspective: failures are logged by the
// caller and never surface to the client.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
)

// UsageEvent records one counted generation for analytics.
type UsageEvent struct {
	Tool      string    `json:"tool"`
	IPAddress string    `json:"ip_address"`
	Count     int       `json:"count"`
	Event     string    `json:"event"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher for the given GCP project.
func NewPublisher(ctx context.Context, projectID string) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubPublisher{client: client}, nil
}

// Publish sends the payload to the given Pub/Sub topic and returns the message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	t := p.client.Topic(topic)
	result := t.Publish(ctx, &pubsub.Message{Data: payload})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return id, nil
}

// Close releases the underlying client.
func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

// PublishUsageEvent marshals and publishes a usage event.
func PublishUsageEvent(ctx context.Context, pub Publisher, topic string, ev UsageEvent) (string, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("failed to marshal usage event: %w", err)
	}
	return pub.Publish(ctx, topic, payload)
}
