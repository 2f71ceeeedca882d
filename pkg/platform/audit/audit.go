// Package audit publishes configuration change events to a Kafka topic for
// offline review.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Event is one audited occurrence.
type Event struct {
	Type     string         `json:"type"`
	At       time.Time      `json:"at"`
	Identity string         `json:"identity,omitempty"`
	Detail   map[string]any `json:"detail,omitempty"`
}

// Publisher emits audit events. Publish must not block the caller's hot
// path beyond local buffering.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Kafka publishes events with franz-go. Delivery is fire-and-forget; a
// broker outage costs audit records, never settings writes.
type Kafka struct {
	client *kgo.Client
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client}, nil
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	k.client.Produce(ctx, &kgo.Record{
		Key:   []byte(e.Type),
		Value: raw,
	}, nil)
	return nil
}

func (k *Kafka) Close() error {
	k.client.Close()
	return nil
}

// Nop discards every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
