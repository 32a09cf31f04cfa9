// Package events publishes audit events for entity mutations. Publishing is
// fire-and-forget: a broker outage must never fail a user request.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Event describes one mutation of a user-owned entity.
type Event struct {
	Type     string    `json:"type"` // e.g. "entry.created"
	UserID   int64     `json:"user_id"`
	EntityID int64     `json:"entity_id,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher emits audit events. Implementations must not block the caller
// beyond serialization.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Nop discards all events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Kafka publishes events to a single topic via franz-go.
type Kafka struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafka connects to the given brokers (comma-separated) and ensures the
// topic exists before returning.
func NewKafka(brokers, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil &&
		!errors.Is(err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, err
	}

	return &Kafka{client: client, logger: logger}, nil
}

// Publish produces the event asynchronously. Delivery failures are logged.
func (k *Kafka) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		k.logger.ErrorContext(ctx, "marshal audit event", "error", err, "type", event.Type)
		return
	}
	record := &kgo.Record{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: payload,
	}
	k.client.Produce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
		if err != nil {
			k.logger.Error("publish audit event", "error", err, "type", event.Type)
		}
	})
}

// Close flushes pending records and releases the client.
func (k *Kafka) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = k.client.Flush(ctx)
	k.client.Close()
}
