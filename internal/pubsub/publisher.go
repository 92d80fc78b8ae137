package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"syllabye/internal/config"
	"syllabye/internal/model"

	"cloud.google.com/go/pubsub"
)

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher using the GCP project from config.
func NewPublisher(ctx context.Context, cfg *config.Config) (*PubSubPublisher, error) {
	if cfg.GCPProjectID == "" {
		return nil, errors.New("GCP project ID is not set")
	}
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID)
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

func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

// UploadNotifier publishes completed syllabus uploads to a topic.
type UploadNotifier struct {
	publisher Publisher
	topic     string
}

func NewUploadNotifier(publisher Publisher, topic string) *UploadNotifier {
	return &UploadNotifier{publisher: publisher, topic: topic}
}

func (n *UploadNotifier) PublishUpload(ctx context.Context, event model.UploadEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling upload event: %w", err)
	}
	if _, err := n.publisher.Publish(ctx, n.topic, data); err != nil {
		return err
	}
	return nil
}
