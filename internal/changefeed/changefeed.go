// Package changefeed publishes record-change events to Kafka/Redpanda.
//
// Publishing is fail-open: a broker outage degrades to a logged warning and
// never fails the originating request. A nil Publisher is valid and drops all
// events, which is how the service runs with no brokers configured.
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"confcrm/internal/crm/models"
)

// DefaultTopic is the topic record-change events are produced to.
const DefaultTopic = "confcrm.record-changes"

// Action describes what happened to a record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is one record change.
type Event struct {
	Action     Action            `json:"action"`
	Collection models.Collection `json:"collection"`
	RecordID   uuid.UUID         `json:"record_id"`
	ActorID    uuid.UUID         `json:"actor_id"`
	At         time.Time         `json:"at"`
}

// Publisher produces change events to Kafka. The zero value of a nil pointer
// is usable and drops events.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects a producer and ensures the topic exists. Returns nil (a valid
// no-op publisher) when no brokers are configured.
func New(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	if topic == "" {
		topic = DefaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, t := range resp {
		if t.Err != nil && !kerr.IsRetriable(t.Err) && t.Err != kerr.TopicAlreadyExists {
			return fmt.Errorf("create topic %s: %w", topic, t.Err)
		}
	}
	return nil
}

// Publish produces the event asynchronously. Failures are logged, never
// returned: the record mutation already happened and must not be rolled back
// over a feed outage.
func (p *Publisher) Publish(ctx context.Context, e Event) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.ErrorContext(ctx, "changefeed marshal failed", "error", err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.RecordID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.WarnContext(ctx, "changefeed publish failed",
				"error", err,
				"collection", e.Collection,
				"record_id", e.RecordID,
			)
		}
	})
}

// Close flushes pending records and closes the producer. Safe on nil.
func (p *Publisher) Close(ctx context.Context) {
	if p == nil {
		return
	}
	if err := p.client.Flush(ctx); err != nil {
		p.logger.WarnContext(ctx, "changefeed flush failed", "error", err)
	}
	p.client.Close()
}
