// Package kafka ships audit events to a Kafka topic for downstream
// consumers. The sink is best-effort: delivery failures are reported to the
// caller for logging but must never fail the business operation.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "vims/pkg/platform/audit"
)

// Sink produces audit events to a Kafka topic, keyed by user id so one
// user's trail stays ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// payload is the JSON wire shape published to the topic.
type payload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// New connects to the brokers and ensures the topic exists.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin := kadm.NewClient(client)
	// Idempotent: existing topics report an "already exists" per-topic error
	// we deliberately ignore.
	if _, err := admin.CreateTopic(ctx, -1, -1, nil, topic); err != nil {
		topics, listErr := admin.ListTopics(ctx, topic)
		if listErr != nil || !topics.Has(topic) {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic %q: %w", topic, err)
		}
	}

	return &Sink{client: client, topic: topic}, nil
}

// Publish produces one audit event synchronously.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	p := payload{
		ID:        event.ID,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		UserAgent: event.UserAgent,
	}
	var key []byte
	if !event.UserID.IsNil() {
		p.UserID = event.UserID.String()
		key = []byte(p.UserID)
	} else {
		key = []byte(uuid.NewString())
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{Topic: s.topic, Key: key, Value: value}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the Kafka client.
func (s *Sink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Flush(ctx); err != nil {
		s.client.Close()
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	s.client.Close()
	return nil
}
